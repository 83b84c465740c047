package caching

import (
	"context"
	"time"
)

// CachingService returns ("", nil) on a miss.
//
// Fills are versioned: read Version before loading the value from the store,
// then SetIfVersion. Invalidate bumps the version, so a fill that raced with
// it is dropped instead of resurrecting the deleted value.
type CachingService interface {
	Get(ctx context.Context, key string) (string, error)
	Version(ctx context.Context, key string) (string, error)
	SetIfVersion(ctx context.Context, key, version, value string, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, key string) error
}

const credentialPrefix = "classroom:token:"

func CredentialKey(clientID string) string {
	return credentialPrefix + clientID
}

func versionKey(key string) string {
	return key + ":version"
}
