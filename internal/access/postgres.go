package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore resolves permissions from the menus/role_menus tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetPermission resolves the menu by code first (inactive menus are
// invisible), then the role's grant on it.
func (s *PostgresStore) GetPermission(ctx context.Context, menuCode, roleID string) (Permission, error) {
	var menuID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM menus WHERE code = $1 AND is_active = true`,
		menuCode,
	).Scan(&menuID)
	if errors.Is(err, sql.ErrNoRows) {
		return Permission{}, ErrPermissionNotFound
	}
	if err != nil {
		return Permission{}, fmt.Errorf("access store: menu lookup: %w", err)
	}

	var p Permission
	err = s.db.QueryRowContext(ctx, `
		SELECT rm.menu_id, m.code, m.name, rm.allow_create, rm.allow_edit, rm.allow_delete
		FROM role_menus rm
		JOIN menus m ON m.id = rm.menu_id
		WHERE rm.role_id = $1 AND rm.menu_id = $2`,
		roleID, menuID,
	).Scan(&p.MenuID, &p.MenuCode, &p.MenuName, &p.AllowCreate, &p.AllowEdit, &p.AllowDelete)
	if errors.Is(err, sql.ErrNoRows) {
		return Permission{}, ErrPermissionNotFound
	}
	if err != nil {
		return Permission{}, fmt.Errorf("access store: permission lookup: %w", err)
	}
	return p, nil
}
