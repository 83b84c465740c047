package store

import (
	"context"
	"sync"

	"github.com/Yulian302/classroom-tokens/apperror"
)

// MemoryCredentialStore keeps credentials in process memory. It is used for
// local development and tests; records are lost on restart.
type MemoryCredentialStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		tokens: make(map[string]string),
	}
}

func (s *MemoryCredentialStore) IsReady(ctx context.Context) error {
	return nil
}

func (s *MemoryCredentialStore) Name() string {
	return "CredentialStore[memory]"
}

func (s *MemoryCredentialStore) InsertIfAbsent(ctx context.Context, clientID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[clientID]; !ok {
		s.tokens[clientID] = token
	}
	return nil
}

func (s *MemoryCredentialStore) Find(ctx context.Context, clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[clientID]
	if !ok {
		return "", apperror.ErrCredentialNotFound
	}
	return token, nil
}

func (s *MemoryCredentialStore) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[clientID]; !ok {
		return apperror.ErrCredentialNotFound
	}
	delete(s.tokens, clientID)
	return nil
}

func (s *MemoryCredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tokens)
}
