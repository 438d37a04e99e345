package session

import (
	"net/http"

	"civic-platform/internal/config"

	"github.com/gin-gonic/gin"
)

// CookieWriter sets and clears the session cookies. All cookies are
// HttpOnly; Secure follows the environment.
type CookieWriter struct {
	cfg    config.TokenConfig
	secure bool
}

func NewCookieWriter(cfg config.TokenConfig, production bool) *CookieWriter {
	return &CookieWriter{cfg: cfg, secure: production}
}

func (w *CookieWriter) SetRefresh(c *gin.Context, token string) {
	w.set(c, config.CookieRefreshToken, token, int(w.cfg.RefreshTTL.Seconds()))
}

func (w *CookieWriter) SetAccess(c *gin.Context, token string) {
	w.set(c, config.CookieAccessToken, token, int(w.cfg.AccessTTL.Seconds()))
}

// SetCsrf writes a session cookie: CSRF tokens have no time-based expiry,
// the server-side record governs their life.
func (w *CookieWriter) SetCsrf(c *gin.Context, token string) {
	w.set(c, config.CookieCsrfToken, token, 0)
}

// SetLoginCookies attaches every cookie a successful login produced.
func (w *CookieWriter) SetLoginCookies(c *gin.Context, res LoginResult) {
	w.SetRefresh(c, res.RefreshToken)
	if res.AccessToken != "" {
		w.SetAccess(c, res.AccessToken)
	}
	if res.CsrfToken != "" {
		w.SetCsrf(c, res.CsrfToken)
	}
}

// ginSessionClearedKey flags a request whose handler tore the session down.
// The response pipeline must not re-issue any cookie after that.
const ginSessionClearedKey = "session_cleared"

// ClearSessionCookies drops the refresh cookie plus the access/CSRF cookies
// for whichever layers are enabled, and stops the response pipeline from
// re-issuing anything on this request.
func (w *CookieWriter) ClearSessionCookies(c *gin.Context) {
	c.Set(ginSessionClearedKey, true)
	w.set(c, config.CookieRefreshToken, "", -1)
	if w.cfg.AccessEnabled {
		w.set(c, config.CookieAccessToken, "", -1)
	}
	if w.cfg.CsrfEnabled {
		w.set(c, config.CookieCsrfToken, "", -1)
	}
}

func (w *CookieWriter) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", w.cfg.Domain, w.secure, true)
}
