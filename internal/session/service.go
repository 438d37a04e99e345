package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civic-platform/internal/audit"
	"civic-platform/internal/auth"
	"civic-platform/internal/config"
	"civic-platform/internal/csrf"
	"civic-platform/internal/directory"
	"civic-platform/pkg/logger"
)

var (
	// ErrInvalidCredentials covers unknown email, inactive account and wrong
	// password alike so responses cannot be used for user enumeration.
	ErrInvalidCredentials = errors.New("session: email or password invalid")

	// ErrTokenMismatch means the logout body token differs from the cookie
	// the guard authenticated with.
	ErrTokenMismatch = errors.New("session: token mismatch")
)

// Service orchestrates credential verification, token issuance and CSRF
// bookkeeping for login/logout and the token-refresh endpoints.
type Service struct {
	dir    directory.UserDirectory
	tokens *auth.Manager
	csrf   *csrf.Service
	audit  *audit.Service
	cfg    config.TokenConfig

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(dir directory.UserDirectory, tokens *auth.Manager, csrfSvc *csrf.Service, auditSvc *audit.Service, cfg config.TokenConfig) *Service {
	return &Service{
		dir:    dir,
		tokens: tokens,
		csrf:   csrfSvc,
		audit:  auditSvc,
		cfg:    cfg,
		clock:  time.Now,
	}
}

type LoginInput struct {
	Email    string
	Password string
	Platform string
	ClientIP string
}

type LoginResult struct {
	PublicID  string              `json:"public_id"`
	Email     string              `json:"email"`
	Name      string              `json:"name"`
	ActorKind directory.ActorKind `json:"actor_kind"`
	RoleCode  string              `json:"role_code"`
	RoleName  string              `json:"role_name"`

	// Issued credentials. AccessToken/CsrfToken are empty when the
	// respective layer is disabled.
	RefreshToken string `json:"-"`
	AccessToken  string `json:"-"`
	CsrfToken    string `json:"-"`

	LoginTime time.Time `json:"login_time"`
}

func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	user, err := s.dir.FindByEmail(ctx, in.Email, true)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("session: user lookup: %w", err)
	}
	if !user.IsActive {
		return LoginResult{}, ErrInvalidCredentials
	}

	if !auth.ComparePassword(in.Password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	// Best-effort audit trail; never blocks login.
	if s.audit != nil {
		if err := s.audit.LogLogin(ctx, user.PublicID, user.Email, in.Platform, in.ClientIP); err != nil {
			logger.From(ctx).Warn("login audit append failed", "err", err)
		}
	}

	// Wipe any CSRF state from earlier sessions before issuing anything.
	// Issue replaces the record as well, but a fresh login must invalidate
	// everything immediately even if issuance fails halfway.
	if s.cfg.CsrfEnabled {
		if err := s.csrf.Revoke(ctx, user.ID); err != nil {
			return LoginResult{}, fmt.Errorf("session: csrf revoke: %w", err)
		}
	}

	actorRefID := user.PublicID
	if user.ActorKind != directory.ActorOperator {
		actorRefID, err = s.dir.ResolveActorRefID(ctx, user.ID, user.ActorKind)
		if err != nil {
			return LoginResult{}, fmt.Errorf("session: actor ref lookup: %w", err)
		}
	}

	now := s.clock().UTC()
	out := LoginResult{
		PublicID:  user.PublicID,
		Email:     user.Email,
		Name:      user.Name,
		ActorKind: user.ActorKind,
		RoleCode:  user.RoleCode,
		RoleName:  user.RoleName,
		LoginTime: now,
	}

	out.RefreshToken, err = s.tokens.Issue(now, auth.KindRefresh, user.PublicID, user.ActorKind, actorRefID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("session: refresh token issue: %w", err)
	}

	if s.cfg.AccessEnabled {
		out.AccessToken, err = s.tokens.Issue(now, auth.KindAccess, user.PublicID, user.ActorKind, actorRefID)
		if err != nil {
			return LoginResult{}, fmt.Errorf("session: access token issue: %w", err)
		}
	}

	if s.cfg.CsrfEnabled {
		out.CsrfToken, err = s.csrf.Issue(ctx, user.ID)
		if err != nil {
			return LoginResult{}, fmt.Errorf("session: csrf issue: %w", err)
		}
	}

	return out, nil
}

// Logout validates the token echoed in the request body against the cookie
// the guard authenticated with, then revokes the caller's CSRF record.
// A stale or foreign token value is rejected even though the cookie already
// authenticated the request.
func (s *Service) Logout(ctx context.Context, identity auth.Identity, presentedToken string) error {
	if _, err := s.tokens.Verify(presentedToken, s.clock()); err != nil {
		return err
	}
	if presentedToken != identity.RefreshToken {
		return ErrTokenMismatch
	}

	if s.cfg.CsrfEnabled {
		if err := s.csrf.Revoke(ctx, identity.User.ID); err != nil {
			return fmt.Errorf("session: csrf revoke: %w", err)
		}
	}
	return nil
}

// RefreshAccessToken issues a fresh access token for an authenticated
// caller. generated is false when the access layer is disabled.
func (s *Service) RefreshAccessToken(identity auth.Identity) (token string, generated bool, err error) {
	if !s.cfg.AccessEnabled {
		return "", false, nil
	}
	tok, err := s.tokens.Issue(s.clock().UTC(), auth.KindAccess,
		identity.Claims.PublicID, identity.Claims.ActorKind, identity.Claims.ActorRefID)
	if err != nil {
		return "", false, fmt.Errorf("session: access token issue: %w", err)
	}
	return tok, true, nil
}

// RefreshCsrfToken rotates the caller's CSRF token. generated is false when
// the CSRF layer is disabled.
func (s *Service) RefreshCsrfToken(ctx context.Context, identity auth.Identity) (token string, generated bool, err error) {
	if !s.cfg.CsrfEnabled {
		return "", false, nil
	}
	tok, err := s.csrf.Issue(ctx, identity.User.ID)
	if err != nil {
		return "", false, err
	}
	return tok, true, nil
}

// ChangePassword verifies the current password and replaces the stored
// hash. The failure message is the same generic one as login's.
func (s *Service) ChangePassword(ctx context.Context, identity auth.Identity, current, next string) error {
	user, err := s.dir.FindByEmail(ctx, identity.User.Email, true)
	if err != nil {
		return fmt.Errorf("session: user lookup: %w", err)
	}
	if !auth.ComparePassword(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("session: password hash: %w", err)
	}
	if err := s.dir.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("session: password update: %w", err)
	}
	return nil
}
