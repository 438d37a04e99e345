package auth

import (
	"errors"
	"testing"
	"time"

	"civic-platform/internal/directory"
)

func testManager(t *testing.T, issuer string) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", issuer, 24*time.Hour, 5*time.Minute)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	m := testManager(t, "urn:civic.local:issuer")
	now := time.Unix(1700000000, 0).UTC()

	tok, err := m.Issue(now, KindRefresh, "pub-1", directory.ActorOfficer, "officer-9")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok == "" {
		t.Fatalf("expected token string")
	}

	claims, err := m.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.PublicID != "pub-1" || claims.ActorKind != directory.ActorOfficer || claims.ActorRefID != "officer-9" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := testManager(t, "urn:civic.local:issuer")
	now := time.Unix(1700000000, 0).UTC()

	tok, err := m.Issue(now, KindAccess, "pub-1", directory.ActorOperator, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Past the 5m access TTL.
	_, err = m.Verify(tok, now.Add(10*time.Minute))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyIssuerPinning(t *testing.T) {
	issuerA := testManager(t, "urn:a:issuer")
	issuerB := testManager(t, "urn:b:issuer")
	now := time.Unix(1700000000, 0).UTC()

	tok, err := issuerA.Issue(now, KindRefresh, "pub-1", directory.ActorCitizen, "cit-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = issuerB.Verify(tok, now)
	if !errors.Is(err, ErrClaimValidation) {
		t.Fatalf("expected ErrClaimValidation, got %v", err)
	}
}

func TestVerifyGarbageAndTamper(t *testing.T) {
	m := testManager(t, "urn:civic.local:issuer")
	now := time.Unix(1700000000, 0).UTC()

	if _, err := m.Verify("not-a-token", now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for garbage, got %v", err)
	}

	tok, err := m.Issue(now, KindRefresh, "pub-1", directory.ActorOperator, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tampered := tok[:len(tok)-2] + "xx"
	if _, err := m.Verify(tampered, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered signature, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	m1, _ := NewManager("secret-one", "urn:x:issuer", time.Hour, time.Minute)
	m2, _ := NewManager("secret-two", "urn:x:issuer", time.Hour, time.Minute)

	tok, err := m1.Issue(now, KindRefresh, "pub-1", directory.ActorOperator, "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m2.Verify(tok, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !ComparePassword("secret1", hash) {
		t.Fatalf("expected password to match")
	}
	if ComparePassword("secret2", hash) {
		t.Fatalf("expected mismatch for wrong password")
	}
}
