package access

import (
	"context"
	"sync"
)

type grantKey struct {
	menuCode string
	roleID   string
}

// MemoryStore is an in-memory Store useful for tests.
type MemoryStore struct {
	mu     sync.Mutex
	grants map[grantKey]Permission
	calls  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{grants: make(map[grantKey]Permission)}
}

func (s *MemoryStore) Grant(menuCode, roleID string, p Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.MenuCode == "" {
		p.MenuCode = menuCode
	}
	s.grants[grantKey{menuCode, roleID}] = p
}

func (s *MemoryStore) GetPermission(ctx context.Context, menuCode, roleID string) (Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if p, ok := s.grants[grantKey{menuCode, roleID}]; ok {
		return p, nil
	}
	return Permission{}, ErrPermissionNotFound
}

// Calls reports how many lookups were made; test helper.
func (s *MemoryStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
