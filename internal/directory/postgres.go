package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresDirectory reads the users/roles tables maintained by the entity
// CRUD modules.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

const userColumns = `
	u.id, u.public_id, u.email, u.name, u.role_id, u.actor_kind, u.is_active,
	r.code, r.name`

func (d *PostgresDirectory) FindByEmail(ctx context.Context, email string, includePassword bool) (UserRecord, error) {
	cols := userColumns
	if includePassword {
		cols += ", u.password_hash"
	}
	q := fmt.Sprintf(`
		SELECT %s
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1`, cols)

	row := d.db.QueryRowContext(ctx, q, email)

	var rec UserRecord
	dest := []any{
		&rec.ID, &rec.PublicID, &rec.Email, &rec.Name, &rec.RoleID,
		&rec.ActorKind, &rec.IsActive, &rec.RoleCode, &rec.RoleName,
	}
	if includePassword {
		dest = append(dest, &rec.PasswordHash)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, fmt.Errorf("directory: find by email: %w", err)
	}
	return rec, nil
}

func (d *PostgresDirectory) FindByPublicID(ctx context.Context, publicID string) (UserRecord, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.public_id = $1`, userColumns)

	var rec UserRecord
	err := d.db.QueryRowContext(ctx, q, publicID).Scan(
		&rec.ID, &rec.PublicID, &rec.Email, &rec.Name, &rec.RoleID,
		&rec.ActorKind, &rec.IsActive, &rec.RoleCode, &rec.RoleName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, fmt.Errorf("directory: find by public id: %w", err)
	}
	return rec, nil
}

func (d *PostgresDirectory) ResolveActorRefID(ctx context.Context, userID string, kind ActorKind) (string, error) {
	var q string
	switch kind {
	case ActorOfficer:
		q = `SELECT id FROM officers WHERE user_id = $1`
	case ActorCitizen:
		q = `SELECT id FROM citizens WHERE user_id = $1`
	default:
		return "", fmt.Errorf("directory: no actor table for kind %q", kind)
	}

	var id string
	if err := d.db.QueryRowContext(ctx, q, userID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("directory: resolve actor ref: %w", err)
	}
	return id, nil
}

func (d *PostgresDirectory) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("directory: update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
