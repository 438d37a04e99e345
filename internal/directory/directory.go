package directory

import (
	"context"
	"errors"
)

// ActorKind classifies an authenticated identity and determines which
// profile table (operators, officers, citizens) owns its detail record.
type ActorKind string

const (
	ActorOperator ActorKind = "operator"
	ActorOfficer  ActorKind = "officer"
	ActorCitizen  ActorKind = "citizen"
)

// UserRecord is the directory view of one account. PasswordHash is only
// populated when explicitly requested.
type UserRecord struct {
	ID           string
	PublicID     string
	Email        string
	PasswordHash string
	Name         string
	RoleID       string
	RoleCode     string
	RoleName     string
	ActorKind    ActorKind
	IsActive     bool
}

var ErrNotFound = errors.New("directory: user not found")

// UserDirectory resolves accounts for the auth subsystem. The entity CRUD
// modules own the underlying tables; this is a read-mostly lookup surface.
type UserDirectory interface {
	// FindByEmail resolves an account by email. The password hash is
	// included only when includePassword is set.
	FindByEmail(ctx context.Context, email string, includePassword bool) (UserRecord, error)

	// FindByPublicID resolves an account by its stable public id, the
	// subject carried inside session tokens.
	FindByPublicID(ctx context.Context, publicID string) (UserRecord, error)

	// ResolveActorRefID looks up the officer/citizen record owned by a user.
	// For operators the public id doubles as the actor reference.
	ResolveActorRefID(ctx context.Context, userID string, kind ActorKind) (string, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
