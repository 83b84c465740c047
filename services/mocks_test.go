package services

import (
	"context"
	"sync"

	"github.com/Yulian302/classroom-tokens/store"
	"github.com/stretchr/testify/mock"
)

type mockCredentialStore struct {
	mock.Mock
}

func (m *mockCredentialStore) InsertIfAbsent(ctx context.Context, clientID, token string) error {
	args := m.Called(ctx, clientID, token)
	return args.Error(0)
}

func (m *mockCredentialStore) Find(ctx context.Context, clientID string) (string, error) {
	args := m.Called(ctx, clientID)
	return args.String(0), args.Error(1)
}

func (m *mockCredentialStore) Delete(ctx context.Context, clientID string) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

func (m *mockCredentialStore) IsReady(ctx context.Context) error {
	return nil
}

func (m *mockCredentialStore) Name() string {
	return "mock"
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

// pausingStore blocks Find after it has read the record until release is closed.
type pausingStore struct {
	*store.MemoryCredentialStore

	found   chan struct{}
	release chan struct{}
	once    sync.Once
}

func newPausingStore() *pausingStore {
	return &pausingStore{
		MemoryCredentialStore: store.NewMemoryCredentialStore(),
		found:                 make(chan struct{}),
		release:               make(chan struct{}),
	}
}

func (s *pausingStore) Find(ctx context.Context, clientID string) (string, error) {
	token, err := s.MemoryCredentialStore.Find(ctx, clientID)
	s.once.Do(func() {
		close(s.found)
		<-s.release
	})
	return token, err
}
