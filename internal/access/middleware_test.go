package access

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"civic-platform/internal/auth"
	"civic-platform/internal/directory"

	"github.com/gin-gonic/gin"
)

func guardedRouter(store Store, opts Options, roleID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setIdentity := func(c *gin.Context) {
		auth.SetIdentity(c, auth.Identity{
			User: directory.UserRecord{ID: "u-1", RoleID: roleID, RoleCode: "officer"},
		})
		c.Next()
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.Any("/r", setIdentity, Guard(store, opts), ok)
	return r
}

func do(r *gin.Engine, method string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/r", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGuard_MethodFlagMapping(t *testing.T) {
	store := NewMemoryStore()
	store.Grant("complaints", "role-1", Permission{
		MenuID:      "m-1",
		AllowCreate: true,
		AllowEdit:   false,
		AllowDelete: true,
	})
	r := guardedRouter(store, Options{MenuCode: "complaints"}, "role-1")

	// GET always passes; POST follows allow_create.
	if w := do(r, http.MethodGet); w.Code != http.StatusOK {
		t.Fatalf("GET: expected 200, got %d", w.Code)
	}
	if w := do(r, http.MethodPost); w.Code != http.StatusOK {
		t.Fatalf("POST: expected 200, got %d", w.Code)
	}
	if w := do(r, http.MethodPut); w.Code != http.StatusForbidden {
		t.Fatalf("PUT: expected 403, got %d", w.Code)
	}
	// DELETE is gated by allow_edit, not allow_delete: allow_delete is true
	// here but allow_edit is false, so DELETE must still be denied.
	if w := do(r, http.MethodDelete); w.Code != http.StatusForbidden {
		t.Fatalf("DELETE: expected 403 via allow_edit, got %d", w.Code)
	}
}

func TestGuard_MethodNotAllowed(t *testing.T) {
	store := NewMemoryStore()
	r := guardedRouter(store, Options{MenuCode: "complaints"}, "role-1")

	if w := do(r, http.MethodPatch); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PATCH: expected 405, got %d", w.Code)
	}
	if store.Calls() != 0 {
		t.Fatalf("store must not be consulted for disallowed methods")
	}
}

func TestGuard_EmptyMenuCodeAlwaysDenied(t *testing.T) {
	store := NewMemoryStore()
	store.Grant("complaints", "role-1", Permission{AllowCreate: true, AllowEdit: true, AllowDelete: true})
	r := guardedRouter(store, Options{}, "role-1")

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		if w := do(r, method); w.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 for undefined access, got %d", method, w.Code)
		}
	}
}

func TestGuard_PermissionRecordMissing(t *testing.T) {
	store := NewMemoryStore()
	r := guardedRouter(store, Options{MenuCode: "complaints"}, "role-without-grant")

	w := do(r, http.MethodGet)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestGuard_SkipChecks(t *testing.T) {
	store := NewMemoryStore()
	r := guardedRouter(store, Options{MenuCode: "complaints", SkipMenuAccess: true}, "role-1")
	if w := do(r, http.MethodPost); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with access check skipped, got %d", w.Code)
	}

	store2 := NewMemoryStore()
	store2.Grant("complaints", "role-1", Permission{})
	r2 := guardedRouter(store2, Options{MenuCode: "complaints", SkipMenuPermission: true}, "role-1")
	if w := do(r2, http.MethodPost); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with permission check skipped, got %d", w.Code)
	}
}

func TestMethodAllowed_PatchFollowsEdit(t *testing.T) {
	p := Permission{AllowEdit: true}
	if !MethodAllowed(p, http.MethodPatch) {
		t.Fatalf("PATCH should follow allow_edit")
	}
	if MethodAllowed(Permission{}, "TRACE") {
		t.Fatalf("unknown methods must be denied")
	}
}
