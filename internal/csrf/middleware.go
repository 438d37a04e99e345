package csrf

import (
	"net/http"

	"civic-platform/internal/auth"
	"civic-platform/internal/config"
	"civic-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

const ginRotateKey = "csrf_rotate"

// MarkRotation flags this request for CSRF token rotation. The flag is
// request-scoped; the response pipeline reads it after the handler runs.
func MarkRotation(c *gin.Context) {
	c.Set(ginRotateKey, true)
}

// RotationRequested reports whether the guard verified a token on this
// request and a fresh one should be issued.
func RotationRequested(c *gin.Context) bool {
	return c.GetBool(ginRotateKey)
}
// Guard validates the CSRF cookie on state-changing requests. It must run
// after the session guard so the record lookup can be scoped to the caller.
func Guard(svc *Service, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		identity, ok := auth.IdentityFromGin(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token not found"})
			return
		}

		token, _ := c.Cookie(config.CookieCsrfToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "CSRF token not found"})
			return
		}

		valid, err := svc.Verify(c.Request.Context(), token, identity.User.ID)
		if err != nil {
			logger.FromGin(c).Error("csrf guard: verify fault", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "unexpected error"})
			return
		}
		if !valid {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "CSRF token invalid"})
			return
		}

		MarkRotation(c)
		c.Next()
	}
}
