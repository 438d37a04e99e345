package auth

import (
	"civic-platform/internal/directory"

	"github.com/golang-jwt/jwt/v5"
)

// Kind selects the TTL class of a session token. Refresh tokens are the
// primary proof of authentication; access tokens are an optional short-lived
// second layer. Both carry the same claim shape.
type Kind string

const (
	KindRefresh Kind = "refresh"
	KindAccess  Kind = "access"
)

// Claims is the only supported JWT claims shape for this service.
// Subject identity is the user's stable public id; the raw DB id never
// leaves the process inside a token.
type Claims struct {
	jwt.RegisteredClaims

	PublicID   string              `json:"id"`
	ActorKind  directory.ActorKind `json:"actor_kind"`
	ActorRefID string              `json:"actor_ref_id,omitempty"`
}
