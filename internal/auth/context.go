package auth

import (
	"context"

	"civic-platform/internal/directory"

	"github.com/gin-gonic/gin"
)

// Identity is the request authentication context built by the session guard.
// It lives for one request and is never persisted.
type Identity struct {
	Claims       Claims
	User         directory.UserRecord
	RefreshToken string
}

type ctxKey struct{}

const ginIdentityKey = "auth_identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// SetIdentity attaches the identity to both the gin context and the
// underlying request context so non-gin code can read it.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(ginIdentityKey, id)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
}

func IdentityFromGin(c *gin.Context) (Identity, bool) {
	if v, ok := c.Get(ginIdentityKey); ok {
		if id, ok := v.(Identity); ok {
			return id, true
		}
	}
	return Identity{}, false
}
