package auth

import (
	"errors"
	"net/http"
	"time"

	"civic-platform/internal/config"
	"civic-platform/internal/directory"
	"civic-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// GuardConfig controls the optional access-token layer of the session guard.
type GuardConfig struct {
	AccessEnabled bool
	// AccessRefreshPath is exempt from the access-token check so an expired
	// access token can still be renewed with a valid refresh token.
	AccessRefreshPath string
}

// RequireSession authenticates the request from the refresh-token cookie
// (plus the access-token cookie when that layer is enabled), resolves the
// account via the directory and attaches the Identity to the request.
// It performs no menu/permission checks; those belong to internal/access.
func RequireSession(m *Manager, dir directory.UserDirectory, cfg GuardConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, _ := c.Cookie(config.CookieRefreshToken)
		if refreshToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token not found"})
			return
		}

		claims, err := m.Verify(refreshToken, time.Now())
		if err != nil {
			abortTokenError(c, err)
			return
		}

		// The access layer is an independent check; its failure never
		// invalidates the refresh token.
		if cfg.AccessEnabled && c.Request.URL.Path != cfg.AccessRefreshPath {
			accessToken, _ := c.Cookie(config.CookieAccessToken)
			if accessToken == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "access token not found"})
				return
			}
			if _, err := m.Verify(accessToken, time.Now()); err != nil {
				abortTokenError(c, err)
				return
			}
		}

		user, err := dir.FindByPublicID(c.Request.Context(), claims.PublicID)
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token invalid"})
				return
			}
			logger.FromGin(c).Error("session guard: directory lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "unexpected error"})
			return
		}

		SetIdentity(c, Identity{
			Claims:       claims,
			User:         user,
			RefreshToken: refreshToken,
		})
		c.Next()
	}
}

func abortTokenError(c *gin.Context, err error) {
	var te *TokenError
	if errors.As(err, &te) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": te.Code, "message": te.Message})
		return
	}
	logger.FromGin(c).Error("session guard: token verify fault", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "unexpected error"})
}
