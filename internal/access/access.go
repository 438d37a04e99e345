package access

import (
	"context"
	"errors"
	"net/http"
)

// Permission is one role's grant on one menu. A (role, menu) pair has at
// most one record; no record means no access.
type Permission struct {
	MenuID      string `json:"menu_id"`
	MenuCode    string `json:"menu_code"`
	MenuName    string `json:"menu_name"`
	AllowCreate bool   `json:"allow_create"`
	AllowEdit   bool   `json:"allow_edit"`
	AllowDelete bool   `json:"allow_delete"`
}

var ErrPermissionNotFound = errors.New("access: permission not found")

// Store resolves role→menu permission records. Records are administered by
// the role/menu CRUD modules; this surface is read-only.
type Store interface {
	GetPermission(ctx context.Context, menuCode, roleID string) (Permission, error)
}

// MethodAllowed maps an HTTP method onto the permission flags. DELETE is
// checked against AllowEdit, not AllowDelete: the role-menu seed data was
// authored against that mapping, so changing it here would flip live grants.
func MethodAllowed(p Permission, method string) bool {
	switch method {
	case http.MethodPost:
		return p.AllowCreate
	case http.MethodPut, http.MethodPatch:
		return p.AllowEdit
	case http.MethodDelete:
		return p.AllowEdit
	default:
		return method == http.MethodGet
	}
}
