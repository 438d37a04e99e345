package session

import (
	"github.com/gin-gonic/gin"

	"civic-platform/internal/auth"
	"civic-platform/internal/csrf"
	"civic-platform/pkg/logger"
)

// ResponseTokens re-issues session cookies as part of writing the response:
// on every successful authenticated request outside the login endpoint it
// refreshes the access-token cookie (when that layer is enabled), and
// rotates the CSRF cookie when the CSRF guard flagged the request.
//
// Cookies must be in the headers before the first body byte, so the
// middleware wraps the writer and injects them when the status becomes
// known, instead of acting after the handler returns. Register it before
// the guard chain.
func ResponseTokens(svc *Service, cookies *CookieWriter, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &tokenWriter{ResponseWriter: c.Writer, c: c, svc: svc, cookies: cookies, loginPath: loginPath}
		c.Next()
	}
}

type tokenWriter struct {
	gin.ResponseWriter
	c         *gin.Context
	svc       *Service
	cookies   *CookieWriter
	loginPath string
	injected  bool
}

func (w *tokenWriter) WriteHeader(code int) {
	w.inject(code)
	w.ResponseWriter.WriteHeader(code)
}

func (w *tokenWriter) Write(b []byte) (int, error) {
	w.inject(w.ResponseWriter.Status())
	return w.ResponseWriter.Write(b)
}

func (w *tokenWriter) WriteString(s string) (int, error) {
	w.inject(w.ResponseWriter.Status())
	return w.ResponseWriter.WriteString(s)
}

func (w *tokenWriter) inject(status int) {
	if w.injected {
		return
	}
	w.injected = true

	if status >= 300 {
		return
	}
	if w.c.Request.URL.Path == w.loginPath {
		return
	}
	identity, ok := auth.IdentityFromGin(w.c)
	if !ok {
		return
	}
	// Logout cleared the cookies; re-issuing any of them here would hand
	// the client a live credential back.
	if w.c.GetBool(ginSessionClearedKey) {
		return
	}

	if w.svc.cfg.AccessEnabled {
		tok, generated, err := w.svc.RefreshAccessToken(identity)
		if err != nil {
			logger.FromGin(w.c).Error("response pipeline: access token refresh failed", "err", err)
		} else if generated {
			w.cookies.SetAccess(w.c, tok)
		}
	}

	if w.svc.cfg.CsrfEnabled && w.svc.cfg.CsrfRotate && csrf.RotationRequested(w.c) {
		tok, generated, err := w.svc.RefreshCsrfToken(w.c.Request.Context(), identity)
		if err != nil {
			logger.FromGin(w.c).Error("response pipeline: csrf rotation failed", "err", err)
		} else if generated {
			w.cookies.SetCsrf(w.c, tok)
		}
	}
}
