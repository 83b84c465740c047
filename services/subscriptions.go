package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Yulian302/classroom-tokens/apperror"
	"github.com/Yulian302/classroom-tokens/auth/oauth"
	"github.com/Yulian302/classroom-tokens/logging"
	"github.com/Yulian302/classroom-tokens/services/caching"
	"github.com/Yulian302/classroom-tokens/state"
	"github.com/Yulian302/classroom-tokens/store"
)

type SubscriptionService interface {
	// Subscribe completes the OAuth callback and returns the client id
	// carried in the state parameter.
	Subscribe(ctx context.Context, code, rawState string) (string, error)
	Check(ctx context.Context, clientID string) (string, error)
	Unsubscribe(ctx context.Context, clientID string) error
}

type SubscriptionServiceImpl struct {
	credentials store.CredentialStore
	provider    oauth.Provider
	cache       caching.CachingService
	cacheTTL    time.Duration
}

func NewSubscriptionService(credentials store.CredentialStore, provider oauth.Provider, cache caching.CachingService, cacheTTL time.Duration) *SubscriptionServiceImpl {
	return &SubscriptionServiceImpl{
		credentials: credentials,
		provider:    provider,
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

func (s *SubscriptionServiceImpl) Subscribe(ctx context.Context, code, rawState string) (string, error) {
	st, err := state.Decode(rawState)
	if err != nil {
		return "", err
	}

	log := logging.FromContext(ctx).With(slog.String("client_id", st.ClientID))
	log.Info("received oauth callback")

	token, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return st.ClientID, err
	}

	// An existing subscription keeps its original token even when the new
	// one differs; re-subscribing is an idempotent success.
	if err := s.credentials.InsertIfAbsent(ctx, st.ClientID, token); err != nil {
		return st.ClientID, fmt.Errorf("insert credential: %w", err)
	}

	log.Info("client subscribed")
	return st.ClientID, nil
}

func (s *SubscriptionServiceImpl) Check(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return "", apperror.ErrMissingClientID
	}

	log := logging.FromContext(ctx).With(slog.String("client_id", clientID))
	key := caching.CredentialKey(clientID)

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("credential cache read failed", slog.Any("error", err))
	}
	if cached != "" {
		log.Debug("token served from cache")
		return cached, nil
	}

	// The version must be read before the store so a concurrent Unsubscribe
	// rejects this fill.
	version, versionErr := s.cache.Version(ctx, key)
	if versionErr != nil {
		log.Warn("credential cache version read failed", slog.Any("error", versionErr))
	}

	token, err := s.credentials.Find(ctx, clientID)
	if err != nil {
		return "", err
	}

	if versionErr == nil {
		if _, err := s.cache.SetIfVersion(ctx, key, version, token, s.cacheTTL); err != nil {
			log.Warn("credential cache write failed", slog.Any("error", err))
		}
	}

	log.Info("token retrieved")
	return token, nil
}

func (s *SubscriptionServiceImpl) Unsubscribe(ctx context.Context, clientID string) error {
	if clientID == "" {
		return apperror.ErrMissingClientID
	}

	log := logging.FromContext(ctx).With(slog.String("client_id", clientID))

	deleteErr := s.credentials.Delete(ctx, clientID)

	// Invalidate even when the record was already gone.
	if err := s.cache.Invalidate(ctx, caching.CredentialKey(clientID)); err != nil {
		log.Warn("credential cache invalidation failed", slog.Any("error", err))
	}

	if deleteErr != nil {
		return deleteErr
	}

	log.Info("client unsubscribed")
	return nil
}
