package csrf

import (
	"context"
	"database/sql"
	"fmt"

	"civic-platform/pkg/utils"
)

// PostgresStore keeps CSRF records in the user_tokens table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Replace runs delete-all + insert in one transaction so a concurrent login
// or rotation for the same user can never observe two live records.
func (s *PostgresStore) Replace(ctx context.Context, userID, token string) error {
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_tokens WHERE user_id = $1`, userID,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_tokens (token, user_id, created_at) VALUES ($1, $2, now())`,
			token, userID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("csrf store: replace: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, token, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM user_tokens WHERE token = $1 AND user_id = $2`,
		token, userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("csrf store: lookup: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1`, userID,
	); err != nil {
		return fmt.Errorf("csrf store: delete by user: %w", err)
	}
	return nil
}
