package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Yulian302/classroom-tokens/config"
	"github.com/Yulian302/classroom-tokens/logging"
	"github.com/Yulian302/classroom-tokens/tracing"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	DynamoDB *dynamodb.Client
	Redis    *redis.Client

	Config    config.Config
	AwsConfig aws.Config
	Logger    *slog.Logger

	Services       *Services
	TracerProvider *trace.TracerProvider
}

// Overridden in tests.
var (
	newRedisClient = initRedis
	startTracing   = tracing.StartTracing
)

func SetupApp(ctx context.Context) (_ *App, err error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.CreateLogger(cfg.Env)
	slog.SetDefault(logger)

	app := &App{
		Config: cfg,
		Logger: logger,
	}
	defer func() {
		if err != nil {
			app.Shutdown(ctx)
		}
	}()

	if cfg.StoreBackend == config.StoreBackendDynamoDB {
		awsCfg, err := initAWS(ctx, cfg.AWSConfig)
		if err != nil {
			return nil, err
		}
		app.AwsConfig = awsCfg
		app.DynamoDB = initDynamo(awsCfg, cfg.DynamoDBConfig)
	}

	if cfg.CacheEnabled() {
		app.Redis = newRedisClient(cfg.RedisConfig)
	}

	if cfg.Tracing {
		tp, err := startTracing(ctx, cfg.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("start tracing: %w", err)
		}
		app.TracerProvider = tp
	}

	app.Services, err = BuildServices(ctx, app)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context, r *gin.Engine) error {
	srv := &http.Server{
		Addr:         a.Config.Addr,
		Handler:      r,
		ReadTimeout:  a.Config.ServerConfig.ReadTimeout,
		WriteTimeout: a.Config.ServerConfig.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", slog.String("addr", a.Config.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ServerConfig.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func initAWS(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

func initDynamo(cfg aws.Config, dbCfg config.DynamoDBConfig) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if dbCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(dbCfg.Endpoint)
		}
	})
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (a *App) Shutdown(ctx context.Context) {
	if a.Services != nil {
		_ = a.Services.Shutdown(ctx)
	} else if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.TracerProvider != nil {
		_ = a.TracerProvider.Shutdown(ctx)
	}
}
