package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civic-platform/internal/access"
	"civic-platform/internal/audit"
	"civic-platform/internal/auth"
	"civic-platform/internal/config"
	"civic-platform/internal/csrf"
	"civic-platform/internal/directory"
	"civic-platform/internal/httpapi"
	"civic-platform/internal/session"
	"civic-platform/pkg/logger"
	"civic-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	production := cfg.App.Env == "production"
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewManager(cfg.Token.SecretKey, cfg.Issuer(), cfg.Token.RefreshTTL, cfg.Token.AccessTTL)
	if err != nil {
		log.Error("token manager init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	dir := directory.NewPostgresDirectory(db)
	csrfSvc, err := csrf.NewService(cfg.Token.SecretKey, csrf.NewPostgresStore(db))
	if err != nil {
		log.Error("csrf init failed", "err", err)
		os.Exit(1)
	}
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	sessions := session.NewService(dir, tokens, csrfSvc, auditSvc, cfg.Token)

	r := httpapi.NewRouter(httpapi.Deps{
		Log:          log,
		Cfg:          cfg,
		TokenManager: tokens,
		Directory:    dir,
		CsrfService:  csrfSvc,
		AccessStore:  access.NewPostgresStore(db),
		Sessions:     sessions,
		Cookies:      session.NewCookieWriter(cfg.Token, production),
		Limiter:      session.NewLoginLimiter(rdb, cfg.Security.LoginAttemptLimit, cfg.Security.LoginAttemptWindow),
		Mounts:       protectedMounts(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
