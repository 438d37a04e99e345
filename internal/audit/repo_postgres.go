package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo appends audit events to the login_audit table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_audit (id, user_public_id, email, platform, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserPublicID, e.Email, e.Platform, e.IPAddress, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit repo: append: %w", err)
	}
	return nil
}
