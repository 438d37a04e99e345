package access

import (
	"errors"
	"net/http"

	"civic-platform/internal/auth"
	"civic-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Options configures the access guard for one route group. The zero value
// of the Skip fields means both checks run, matching how nearly every route
// is guarded; skipping is the exception.
type Options struct {
	// MenuCode names the protected resource. An empty code is a wiring
	// mistake and makes the guard reject everything rather than fail open.
	MenuCode string

	// SkipMenuAccess bypasses the permission-record lookup.
	SkipMenuAccess bool
	// SkipMenuPermission bypasses the method-vs-flags check.
	SkipMenuPermission bool
}

const (
	ginMenuCodeKey   = "menu_code"
	ginPermissionKey = "menu_permission"
)

// PermissionFromGin returns the permission record the guard attached.
func PermissionFromGin(c *gin.Context) (Permission, bool) {
	if v, ok := c.Get(ginPermissionKey); ok {
		if p, ok := v.(Permission); ok {
			return p, true
		}
	}
	return Permission{}, false
}

// Guard enforces menu-based access for the caller's role. It must run after
// the session guard.
func Guard(store Store, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		default:
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed"})
			return
		}

		if opts.MenuCode == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access undefined, please contact your administrator"})
			return
		}
		c.Set(ginMenuCodeKey, opts.MenuCode)

		if opts.SkipMenuAccess {
			c.Next()
			return
		}

		identity, ok := auth.IdentityFromGin(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token not found"})
			return
		}

		permission, err := store.GetPermission(c.Request.Context(), opts.MenuCode, identity.User.RoleID)
		if err != nil {
			if errors.Is(err, ErrPermissionNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access not found"})
				return
			}
			logger.FromGin(c).Error("access guard: permission lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "unexpected error"})
			return
		}
		c.Set(ginPermissionKey, permission)

		if !opts.SkipMenuPermission {
			if !MethodAllowed(permission, c.Request.Method) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access not Allowed"})
				return
			}
		}

		c.Next()
	}
}
