package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreBackendDynamoDB = "dynamodb"
	StoreBackendMemory   = "memory"
)

type Config struct {
	Env         string `env:"ENV" envDefault:"DEV"`
	Addr        string `env:"ADDR" envDefault:":8001"`
	CorsOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	Tracing     bool   `env:"TRACING" envDefault:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"classroom-tokens"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"dynamodb"`

	AWSConfig      AWSConfig
	DynamoDBConfig DynamoDBConfig
	RedisConfig    RedisConfig
	OAuthConfig    OAuthConfig
	ServerConfig   ServerConfig
}

type AWSConfig struct {
	Region string `env:"AWS_REGION" envDefault:"eu-central-1"`
}

type DynamoDBConfig struct {
	Endpoint    string `env:"DYNAMODB_ENDPOINT"`
	TableName   string `env:"DYNAMODB_TABLE" envDefault:"classroom-tokens"`
	CreateTable bool   `env:"DYNAMODB_CREATE_TABLE" envDefault:"false"`
}

// RedisConfig is optional; an empty Addr disables the credential cache.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

type OAuthConfig struct {
	CredentialsFile string        `env:"CREDENTIALS_FILE" envDefault:"credentials.json"`
	RedirectURI     string        `env:"OAUTH_REDIRECT_URI" envDefault:"http://localhost:8001/classroom/subscribe"`
	Timeout         time.Duration `env:"OAUTH_TIMEOUT" envDefault:"10s"`
}

type ServerConfig struct {
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case StoreBackendDynamoDB:
		if c.AWSConfig.Region == "" {
			errs = append(errs, errors.New("AWS_REGION is required for the dynamodb backend"))
		}
		if c.DynamoDBConfig.TableName == "" {
			errs = append(errs, errors.New("DYNAMODB_TABLE is required for the dynamodb backend"))
		}
	case StoreBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend))
	}

	if c.OAuthConfig.RedirectURI == "" {
		errs = append(errs, errors.New("OAUTH_REDIRECT_URI is required"))
	}
	if c.OAuthConfig.CredentialsFile == "" {
		errs = append(errs, errors.New("CREDENTIALS_FILE is required"))
	}

	return errors.Join(errs...)
}

func (c Config) IsProd() bool {
	return c.Env == "PROD"
}

func (c Config) CacheEnabled() bool {
	return c.RedisConfig.Addr != ""
}
