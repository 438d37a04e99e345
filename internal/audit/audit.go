package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event is an immutable login-audit record.
//
// Invariants:
// - Events are never updated or deleted.
// - Appending is best-effort; a failed audit write must not block login.
type Event struct {
	ID string `json:"id" db:"id"`

	// UserPublicID identifies the account without exposing the raw DB id.
	UserPublicID string `json:"user_public_id" db:"user_public_id"`
	Email        string `json:"email" db:"email"`

	// Platform is the self-reported client platform (web, mobile, ...).
	Platform string `json:"platform,omitempty" db:"platform"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Repository is the persistence contract for audit events.
// It MUST be append-only; no Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

var ErrInvalidEvent = errors.New("audit: invalid event")

// Service records login activity.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.UserPublicID == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogLogin records a successful login.
func (s *Service) LogLogin(ctx context.Context, userPublicID, email, platform, ip string) error {
	return s.Append(ctx, Event{
		UserPublicID: userPublicID,
		Email:        email,
		Platform:     platform,
		IPAddress:    ip,
	})
}
