package session

import (
	"context"
	"strings"
	"time"

	"civic-platform/pkg/logger"
	"civic-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles credential attempts per (email, client IP) inside a
// fixed window. It fails open: a broken limiter must never lock everyone out
// of the login endpoint.
type LoginLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewLoginLimiter(rdb *redis.Client, limit int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{rdb: rdb, limit: limit, window: window}
}

func (l *LoginLimiter) Allow(ctx context.Context, email, ip string) bool {
	if l == nil || l.rdb == nil {
		return true
	}
	key := "login_attempts:" + strings.ToLower(email) + ":" + ip
	n, err := utils.CountAttempt(ctx, l.rdb, key, l.window)
	if err != nil {
		logger.From(ctx).Warn("login limiter unavailable", "err", err)
		return true
	}
	return n <= int64(l.limit)
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email, ip string) {
	if l == nil || l.rdb == nil {
		return
	}
	key := "login_attempts:" + strings.ToLower(email) + ":" + ip
	if err := utils.ResetAttempts(ctx, l.rdb, key); err != nil {
		logger.From(ctx).Warn("login limiter reset failed", "err", err)
	}
}
