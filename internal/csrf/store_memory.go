package csrf

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store useful for tests.
// It is not intended for production use.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]string // user_id -> token
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (s *MemoryStore) Replace(ctx context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, token, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[userID] == token && token != "", nil
}

func (s *MemoryStore) DeleteByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}

// RecordCount reports live records for a user; test helper.
func (s *MemoryStore) RecordCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[userID]; ok {
		return 1
	}
	return 0
}
