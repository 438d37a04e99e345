package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"civic-platform/internal/auth"
	"civic-platform/internal/session"
	"civic-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// LoginThrottle caps credential attempts. *session.LoginLimiter is the real
// implementation.
type LoginThrottle interface {
	Allow(ctx context.Context, email, ip string) bool
	Reset(ctx context.Context, email, ip string)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Sessions *session.Service
	Cookies  *session.CookieWriter
	Limiter  LoginThrottle
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Platform string `json:"platform"`
}

func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	ip := c.ClientIP()
	if h.Limiter != nil && !h.Limiter.Allow(c.Request.Context(), req.Email, ip) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many login attempts, try again later"})
		return
	}

	res, err := h.Sessions.Login(c.Request.Context(), session.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Platform: req.Platform,
		ClientIP: ip,
	})
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Email or password invalid"})
			return
		}
		logger.FromGin(c).Error("login failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "unexpected error"})
		return
	}

	if h.Limiter != nil {
		h.Limiter.Reset(c.Request.Context(), req.Email, ip)
	}
	h.Cookies.SetLoginCookies(c, res)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login success",
		"data": gin.H{
			"public_id":  res.PublicID,
			"email":      res.Email,
			"name":       res.Name,
			"actor_kind": res.ActorKind,
			"role_code":  res.RoleCode,
			"role_name":  res.RoleName,
			"login_time": res.LoginTime,
			"token": gin.H{
				"refresh": true,
				"access":  res.AccessToken != "",
				"csrf":    res.CsrfToken != "",
			},
		},
	})
}

type logoutRequest struct {
	Token string `json:"token"`
}

func (h Handlers) Logout(c *gin.Context) {
	identity, ok := auth.IdentityFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token not found"})
		return
	}

	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}

	if err := h.Sessions.Logout(c.Request.Context(), identity, req.Token); err != nil {
		var te *auth.TokenError
		switch {
		case errors.As(err, &te):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": te.Code, "message": te.Message})
		case errors.Is(err, session.ErrTokenMismatch):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token invalid"})
		default:
			logger.FromGin(c).Error("logout failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "unexpected error"})
		}
		return
	}

	h.Cookies.ClearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout success", "logout_time": time.Now().UTC()})
}

// RefreshToken re-issues the access or CSRF token for an authenticated
// caller. Responds 201 when a token was generated, 200 when the requested
// layer is disabled.
func (h Handlers) RefreshToken(c *gin.Context) {
	identity, ok := auth.IdentityFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token not found"})
		return
	}

	var (
		token     string
		generated bool
		err       error
	)
	switch c.Param("type") {
	case "access":
		token, generated, err = h.Sessions.RefreshAccessToken(identity)
		if err == nil && generated {
			h.Cookies.SetAccess(c, token)
		}
	case "csrf":
		token, generated, err = h.Sessions.RefreshCsrfToken(c.Request.Context(), identity)
		if err == nil && generated {
			h.Cookies.SetCsrf(c, token)
		}
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "unknown token type"})
		return
	}

	if err != nil {
		logger.FromGin(c).Error("token refresh failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "unexpected error"})
		return
	}
	if !generated {
		c.JSON(http.StatusOK, gin.H{"message": "No token generated", "generated": false})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Token generated", "generated": true})
}

func (h Handlers) Profile(c *gin.Context) {
	identity, ok := auth.IdentityFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token not found"})
		return
	}
	u := identity.User
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"public_id":  u.PublicID,
			"email":      u.Email,
			"name":       u.Name,
			"actor_kind": u.ActorKind,
			"role_code":  u.RoleCode,
			"role_name":  u.RoleName,
			"is_active":  u.IsActive,
		},
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h Handlers) ChangePassword(c *gin.Context) {
	identity, ok := auth.IdentityFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token not found"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	if len(req.NewPassword) < 8 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "new password must be at least 8 characters"})
		return
	}

	if err := h.Sessions.ChangePassword(c.Request.Context(), identity, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Email or password invalid"})
			return
		}
		logger.FromGin(c).Error("change password failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "unexpected error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
