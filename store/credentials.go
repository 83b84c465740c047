package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Yulian302/classroom-tokens/apperror"
	"github.com/Yulian302/classroom-tokens/health"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamoTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const clientIDAttr = "client_id"

type CredentialRecord struct {
	ClientID string `json:"client_id" dynamodbav:"client_id"`
	Token    string `json:"token" dynamodbav:"token"`
}

type CredentialStore interface {
	// InsertIfAbsent stores token for clientID unless a record already
	// exists, in which case the stored token is left untouched.
	InsertIfAbsent(ctx context.Context, clientID, token string) error
	Find(ctx context.Context, clientID string) (string, error)
	Delete(ctx context.Context, clientID string) error

	health.ReadinessCheck
}

// DynamoDBAPI is the subset of *dynamodb.Client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

type DynamoDbCredentialStore struct {
	Client    DynamoDBAPI
	TableName string
}

func NewCredentialStore(dbClient DynamoDBAPI, tableName string) *DynamoDbCredentialStore {
	return &DynamoDbCredentialStore{
		Client:    dbClient,
		TableName: tableName,
	}
}

func (s *DynamoDbCredentialStore) IsReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	_, err := s.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.TableName),
	})

	return err
}

func (s *DynamoDbCredentialStore) Name() string {
	return "CredentialStore[" + s.TableName + "]"
}

func (s *DynamoDbCredentialStore) InsertIfAbsent(ctx context.Context, clientID, token string) error {
	item, err := attributevalue.MarshalMap(CredentialRecord{ClientID: clientID, Token: token})
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	// The condition makes lookup and insert a single atomic step, so two
	// concurrent subscribes for one client cannot both write.
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.TableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + clientIDAttr + ")"),
	})
	if err != nil {
		var ccf *dynamoTypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil
		}
		return fmt.Errorf("%w: %w", apperror.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *DynamoDbCredentialStore) Find(ctx context.Context, clientID string) (string, error) {
	res, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.TableName),
		Key:            clientKey(clientID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrStoreUnavailable, err)
	}
	if res.Item == nil {
		return "", apperror.ErrCredentialNotFound
	}

	var record CredentialRecord
	if err := attributevalue.UnmarshalMap(res.Item, &record); err != nil {
		return "", fmt.Errorf("%w: unmarshal credential: %w", apperror.ErrStoreUnavailable, err)
	}

	return record.Token, nil
}

func (s *DynamoDbCredentialStore) Delete(ctx context.Context, clientID string) error {
	res, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.TableName),
		Key:          clientKey(clientID),
		ReturnValues: dynamoTypes.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrStoreUnavailable, err)
	}
	if len(res.Attributes) == 0 {
		return apperror.ErrCredentialNotFound
	}
	return nil
}

// EnsureTable creates the credentials table when it does not exist yet.
// Meant for DynamoDB Local and fresh dev accounts.
func (s *DynamoDbCredentialStore) EnsureTable(ctx context.Context, maxWait time.Duration) error {
	_, err := s.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.TableName),
	})
	if err == nil {
		return nil
	}
	var rnf *dynamoTypes.ResourceNotFoundException
	if !errors.As(err, &rnf) {
		return fmt.Errorf("describe table %s: %w", s.TableName, err)
	}

	_, err = s.Client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.TableName),
		AttributeDefinitions: []dynamoTypes.AttributeDefinition{
			{AttributeName: aws.String(clientIDAttr), AttributeType: dynamoTypes.ScalarAttributeTypeS},
		},
		KeySchema: []dynamoTypes.KeySchemaElement{
			{AttributeName: aws.String(clientIDAttr), KeyType: dynamoTypes.KeyTypeHash},
		},
		BillingMode: dynamoTypes.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *dynamoTypes.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("create table %s: %w", s.TableName, err)
		}
	}

	waiter := dynamodb.NewTableExistsWaiter(s.Client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.TableName)}, maxWait)
}

func clientKey(clientID string) map[string]dynamoTypes.AttributeValue {
	return map[string]dynamoTypes.AttributeValue{
		clientIDAttr: &dynamoTypes.AttributeValueMemberS{Value: clientID},
	}
}
