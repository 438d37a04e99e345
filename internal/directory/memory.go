package directory

import (
	"context"
	"strings"
	"sync"
)

// MemoryDirectory is an in-memory UserDirectory useful for tests.
// It is not intended for production use.
type MemoryDirectory struct {
	mu        sync.Mutex
	users     []UserRecord
	actorRefs map[string]string // userID -> officer/citizen id
}

func NewMemoryDirectory(users ...UserRecord) *MemoryDirectory {
	return &MemoryDirectory{users: users, actorRefs: make(map[string]string)}
}

func (d *MemoryDirectory) SetActorRef(userID, refID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actorRefs[userID] = refID
}

func (d *MemoryDirectory) FindByEmail(ctx context.Context, email string, includePassword bool) (UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			if !includePassword {
				out.PasswordHash = ""
			}
			return out, nil
		}
	}
	return UserRecord{}, ErrNotFound
}

func (d *MemoryDirectory) FindByPublicID(ctx context.Context, publicID string) (UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.PublicID == publicID {
			out := u
			out.PasswordHash = ""
			return out, nil
		}
	}
	return UserRecord{}, ErrNotFound
}

func (d *MemoryDirectory) ResolveActorRefID(ctx context.Context, userID string, kind ActorKind) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.actorRefs[userID]; ok {
		return id, nil
	}
	return "", ErrNotFound
}

func (d *MemoryDirectory) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == userID {
			d.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return ErrNotFound
}
