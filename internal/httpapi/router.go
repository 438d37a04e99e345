package httpapi

import (
	"log/slog"
	"net/http"

	"civic-platform/internal/access"
	"civic-platform/internal/auth"
	"civic-platform/internal/config"
	"civic-platform/internal/csrf"
	"civic-platform/internal/directory"
	"civic-platform/internal/session"
	"civic-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

const loginPath = "/v1/login"
const accessRefreshPath = "/v1/refresh-token/access"

// Deps carries everything the router needs. Wiring stays explicit and
// static; no runtime discovery of routes.
type Deps struct {
	Log          *slog.Logger
	Cfg          config.Config
	TokenManager *auth.Manager
	Directory    directory.UserDirectory
	CsrfService  *csrf.Service
	AccessStore  access.Store
	Sessions     *session.Service
	Cookies      *session.CookieWriter
	Limiter      LoginThrottle

	// Mounts are protected route groups contributed by the entity CRUD
	// modules. Each is registered behind the full guard chain with its
	// menu code.
	Mounts []ProtectedMount
}

// ProtectedMount describes one guarded route group.
type ProtectedMount struct {
	Path     string
	MenuCode string
	Register func(g *gin.RouterGroup)
}

// NewRouter assembles the gin engine with the guard chain
// (session → CSRF → access) on every protected surface.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if d.Log != nil {
		r.Use(logger.Middleware(d.Log))
	}
	r.Use(session.ResponseTokens(d.Sessions, d.Cookies, loginPath))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := Handlers{Sessions: d.Sessions, Cookies: d.Cookies, Limiter: d.Limiter}

	sessionGuard := auth.RequireSession(d.TokenManager, d.Directory, auth.GuardConfig{
		AccessEnabled:     d.Cfg.Token.AccessEnabled,
		AccessRefreshPath: accessRefreshPath,
	})
	csrfGuard := csrf.Guard(d.CsrfService, d.Cfg.Token.CsrfEnabled)

	v1 := r.Group("/v1")
	v1.POST("/login", h.Login)

	protected := v1.Group("")
	protected.Use(sessionGuard)
	{
		protected.POST("/logout", csrfGuard, h.Logout)
		protected.GET("/refresh-token/:type", h.RefreshToken)
		protected.GET("/profile", h.Profile)
		protected.PUT("/change-password", csrfGuard,
			access.Guard(d.AccessStore, access.Options{MenuCode: "profile"}),
			h.ChangePassword,
		)

		for _, m := range d.Mounts {
			g := protected.Group(m.Path,
				csrfGuard,
				access.Guard(d.AccessStore, access.Options{MenuCode: m.MenuCode}),
			)
			m.Register(g)
		}
	}

	return r
}
