package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Yulian302/classroom-tokens/auth/oauth"
	"github.com/Yulian302/classroom-tokens/config"
	"github.com/Yulian302/classroom-tokens/health"
	"github.com/Yulian302/classroom-tokens/services"
	"github.com/Yulian302/classroom-tokens/services/caching"
	"github.com/Yulian302/classroom-tokens/store"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
)

const ensureTableTimeout = 30 * time.Second

type Stores struct {
	credentials store.CredentialStore
}

type Providers struct {
	Google oauth.Provider
}

type Services struct {
	Subscriptions services.SubscriptionService
	Cache         caching.CachingService

	Stores *Stores

	Providers *Providers
}

type Shutdowner interface {
	Shutdown(context.Context) error
}

func BuildServices(ctx context.Context, app *App) (*Services, error) {
	credStore, err := buildCredentialStore(ctx, app)
	if err != nil {
		return nil, err
	}

	var cacheSvc caching.CachingService = caching.NewNullCachingService()
	if app.Redis != nil {
		cacheSvc = caching.NewRedisCachingService(app.Redis)
	}

	oauthBreaker := gobreaker.NewCircuitBreaker[*oauth2.Token](gobreaker.Settings{
		Name: "google-oauth:exchange",

		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},

		IsSuccessful: func(err error) bool {
			return err == nil || !oauth.IsProviderOutage(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			app.Logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	googleProvider, err := oauth.NewGoogleProvider(app.Config.OAuthConfig, oauthBreaker)
	if err != nil {
		return nil, fmt.Errorf("init google provider: %w", err)
	}

	subscriptionSvc := services.NewSubscriptionService(credStore, googleProvider, cacheSvc, app.Config.RedisConfig.CacheTTL)

	return &Services{
		Subscriptions: subscriptionSvc,
		Cache:         cacheSvc,

		Stores: &Stores{
			credentials: credStore,
		},

		Providers: &Providers{
			Google: googleProvider,
		},
	}, nil
}

func buildCredentialStore(ctx context.Context, app *App) (store.CredentialStore, error) {
	if app.Config.StoreBackend == config.StoreBackendMemory {
		app.Logger.Warn("using in-memory credential store, records are lost on restart")
		return store.NewMemoryCredentialStore(), nil
	}

	dynamoStore := store.NewCredentialStore(app.DynamoDB, app.Config.DynamoDBConfig.TableName)
	if app.Config.DynamoDBConfig.CreateTable {
		if err := dynamoStore.EnsureTable(ctx, ensureTableTimeout); err != nil {
			return nil, fmt.Errorf("ensure credentials table: %w", err)
		}
	}
	return dynamoStore, nil
}

func (s *Services) ReadinessChecks() []health.ReadinessCheck {
	checks := []health.ReadinessCheck{s.Stores.credentials}
	if rc, ok := s.Cache.(health.ReadinessCheck); ok {
		checks = append(checks, rc)
	}
	return checks
}

func (s *Services) Shutdown(ctx context.Context) error {
	slog.Info("shutting down services")

	shutdownIfPossible := func(name string, v any) {
		if sh, ok := v.(Shutdowner); ok {
			if err := sh.Shutdown(ctx); err != nil {
				slog.Error("shutdown error", slog.String("component", name), slog.Any("error", err))
			}
		}
	}

	if s.Stores != nil {
		shutdownIfPossible("credentials", s.Stores.credentials)
	}
	shutdownIfPossible("cache", s.Cache)

	slog.Info("services shutdown complete")
	return nil
}
