package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Yulian302/classroom-tokens/apperror"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamoTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps items keyed by client_id and honours the
// attribute_not_exists condition used by InsertIfAbsent.
type fakeDynamo struct {
	mu      sync.Mutex
	items   map[string]map[string]dynamoTypes.AttributeValue
	tables  map[string]bool
	err     error
	puts    int
	lastGet *dynamodb.GetItemInput
}

func newFakeDynamo(tables ...string) *fakeDynamo {
	f := &fakeDynamo{
		items:  make(map[string]map[string]dynamoTypes.AttributeValue),
		tables: make(map[string]bool),
	}
	for _, t := range tables {
		f.tables[t] = true
	}
	return f
}

func keyOf(item map[string]dynamoTypes.AttributeValue) string {
	return item[clientIDAttr].(*dynamoTypes.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.lastGet = in
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	key := keyOf(in.Item)
	if _, exists := f.items[key]; exists && in.ConditionExpression != nil {
		return nil, &dynamoTypes.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	f.items[key] = in.Item
	f.puts++
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	key := keyOf(in.Key)
	old := f.items[key]
	delete(f.items, key)
	return &dynamodb.DeleteItemOutput{Attributes: old}, nil
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if !f.tables[aws.ToString(in.TableName)] {
		return nil, &dynamoTypes.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	return &dynamodb.DescribeTableOutput{
		Table: &dynamoTypes.TableDescription{
			TableName:   in.TableName,
			TableStatus: dynamoTypes.TableStatusActive,
		},
	}, nil
}

func (f *fakeDynamo) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tables[aws.ToString(in.TableName)] = true
	return &dynamodb.CreateTableOutput{}, nil
}

func TestDynamoDbCredentialStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo("classroom-tokens")
	s := NewCredentialStore(db, "classroom-tokens")

	_, err := s.Find(ctx, "u1")
	assert.ErrorIs(t, err, apperror.ErrCredentialNotFound)

	require.NoError(t, s.InsertIfAbsent(ctx, "u1", `{"token":"t1"}`))

	token, err := s.Find(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, `{"token":"t1"}`, token)
	assert.True(t, aws.ToBool(db.lastGet.ConsistentRead))

	require.NoError(t, s.Delete(ctx, "u1"))

	_, err = s.Find(ctx, "u1")
	assert.ErrorIs(t, err, apperror.ErrCredentialNotFound)
}

func TestDynamoDbCredentialStore_InsertIfAbsentKeepsFirstToken(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo("classroom-tokens")
	s := NewCredentialStore(db, "classroom-tokens")

	require.NoError(t, s.InsertIfAbsent(ctx, "u1", "first"))
	require.NoError(t, s.InsertIfAbsent(ctx, "u1", "second"))

	token, err := s.Find(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "first", token)
	assert.Equal(t, 1, db.puts)
}

func TestDynamoDbCredentialStore_ConcurrentInsertWritesOnce(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo("classroom-tokens")
	s := NewCredentialStore(db, "classroom-tokens")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.InsertIfAbsent(ctx, "u1", "token"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, db.puts)
	assert.Len(t, db.items, 1)
}

func TestDynamoDbCredentialStore_DeleteUnknown(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo("classroom-tokens")
	s := NewCredentialStore(db, "classroom-tokens")

	require.NoError(t, s.InsertIfAbsent(ctx, "u1", "t1"))

	err := s.Delete(ctx, "ghost")
	assert.ErrorIs(t, err, apperror.ErrCredentialNotFound)

	token, err := s.Find(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
}

func TestDynamoDbCredentialStore_DriverErrors(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo("classroom-tokens")
	db.err = errors.New("connection reset")
	s := NewCredentialStore(db, "classroom-tokens")

	err := s.InsertIfAbsent(ctx, "u1", "t1")
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)

	_, err = s.Find(ctx, "u1")
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, apperror.ErrCredentialNotFound)

	err = s.Delete(ctx, "u1")
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)

	assert.Error(t, s.IsReady(ctx))
}

func TestDynamoDbCredentialStore_IsReady(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewCredentialStore(newFakeDynamo("classroom-tokens"), "classroom-tokens").IsReady(ctx))
	assert.Error(t, NewCredentialStore(newFakeDynamo(), "classroom-tokens").IsReady(ctx))
	assert.Equal(t, "CredentialStore[classroom-tokens]", NewCredentialStore(nil, "classroom-tokens").Name())
}

func TestDynamoDbCredentialStore_EnsureTable(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo()
	s := NewCredentialStore(db, "classroom-tokens")

	require.NoError(t, s.EnsureTable(ctx, time.Second))
	assert.True(t, db.tables["classroom-tokens"])

	// second call finds the table and does nothing
	require.NoError(t, s.EnsureTable(ctx, time.Second))
}
