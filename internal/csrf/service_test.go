package csrf

import (
	"context"
	"strings"
	"testing"
)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	svc, err := NewService("test-secret-key", store)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc, store
}

func TestIssueKeepsSingleRecord(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	var previous []string
	var last string
	for i := 0; i < 5; i++ {
		tok, err := svc.Issue(ctx, "user-1")
		if err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
		if last != "" {
			previous = append(previous, last)
		}
		last = tok
	}

	if n := store.RecordCount("user-1"); n != 1 {
		t.Fatalf("expected exactly 1 live record, got %d", n)
	}

	ok, err := svc.Verify(ctx, last, "user-1")
	if err != nil || !ok {
		t.Fatalf("expected latest token to verify, ok=%v err=%v", ok, err)
	}
	for _, tok := range previous {
		ok, err := svc.Verify(ctx, tok, "user-1")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatalf("expected superseded token %q to fail verification", tok)
		}
	}
}

func TestVerifyCrossUserIsolation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tok, err := svc.Issue(ctx, "user-a")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Even force-copying the record to user-b's slot must not let the check
	// pass for the wrong caller of the original record.
	ok, err := svc.Verify(ctx, tok, "user-b")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("token for user-a must not verify for user-b")
	}
	_ = store
}

func TestVerifyFailsClosed(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if ok, _ := svc.Verify(ctx, "", "user-1"); ok {
		t.Fatalf("empty token must fail")
	}

	tok, err := svc.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Record exists but the digest is wrong: plant a forged token directly.
	forged := strings.Split(tok, "-")[0] + "-forgeddigestforgeddigestfor"
	if err := store.Replace(ctx, "user-1", forged); err != nil {
		t.Fatalf("replace: %v", err)
	}
	ok, err := svc.Verify(ctx, forged, "user-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("record without a valid digest must fail verification")
	}
}

func TestRevokeDropsRecord(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tok, err := svc.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(ctx, "user-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if n := store.RecordCount("user-1"); n != 0 {
		t.Fatalf("expected no live records, got %d", n)
	}
	if ok, _ := svc.Verify(ctx, tok, "user-1"); ok {
		t.Fatalf("revoked token must fail verification")
	}
}

func TestTokenShape(t *testing.T) {
	svc, _ := newTestService(t)

	tok, err := svc.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	i := strings.IndexByte(tok, '-')
	if i != saltLength {
		t.Fatalf("expected %d-char salt prefix, got token %q", saltLength, tok)
	}
	if !svc.digestValid(tok) {
		t.Fatalf("freshly issued token must carry a valid digest")
	}
}
