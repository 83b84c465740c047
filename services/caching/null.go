package caching

import (
	"context"
	"time"
)

type NullCachingService struct {
	// do nothing
}

func NewNullCachingService() *NullCachingService {
	return &NullCachingService{}
}

func (svc *NullCachingService) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (svc *NullCachingService) Version(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (svc *NullCachingService) SetIfVersion(ctx context.Context, key, version, value string, ttl time.Duration) (bool, error) {
	return false, nil
}

func (svc *NullCachingService) Invalidate(ctx context.Context, key string) error {
	return nil
}
