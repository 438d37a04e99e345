package csrf

import (
	"context"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Token format: <salt>-<digest>, where digest = base64url(SHA-1(salt-secret)).
// The digest secret is derived once from SECRET_KEY as hex(SHA-1(SECRET_KEY)).
// SHA-1 here is a compatibility constraint with tokens already held by
// deployed frontends, not a strength claim; the server-side record, not the
// digest, is the revocation mechanism. Tokens never expire by time
// (validity 0): deleting the record is the only way to kill one.
const saltLength = 16

const saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Store persists the single live CSRF record per user.
type Store interface {
	// Replace deletes every record for userID and inserts the new token as
	// one atomic operation.
	Replace(ctx context.Context, userID, token string) error

	// Exists reports whether this exact (token, user) pair is live. The
	// lookup must be scoped by user; a token string alone proves nothing.
	Exists(ctx context.Context, token, userID string) (bool, error)

	// DeleteByUser drops all records for userID.
	DeleteByUser(ctx context.Context, userID string) error
}

// Service issues and verifies per-user anti-CSRF tokens.
type Service struct {
	secret string
	store  Store
}

func NewService(secretKey string, store Store) (*Service, error) {
	if secretKey == "" {
		return nil, errors.New("csrf: secret key is required")
	}
	if store == nil {
		return nil, errors.New("csrf: store is required")
	}
	return &Service{secret: deriveSecret(secretKey), store: store}, nil
}

// Issue mints a fresh token for the user and replaces any previous record,
// so at most one token per user is ever live.
func (s *Service) Issue(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("csrf: user id is required")
	}

	salt, err := randomSalt()
	if err != nil {
		return "", fmt.Errorf("csrf: salt generation failed: %w", err)
	}
	token := salt + "-" + s.digest(salt)

	if err := s.store.Replace(ctx, userID, token); err != nil {
		return "", fmt.Errorf("csrf: token registration failed: %w", err)
	}
	return token, nil
}

// Verify fails closed: an empty token, a missing server-side record for this
// user, or a digest mismatch all yield false. The error is non-nil only for
// store faults.
func (s *Service) Verify(ctx context.Context, token, userID string) (bool, error) {
	if token == "" || userID == "" {
		return false, nil
	}

	ok, err := s.store.Exists(ctx, token, userID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	return s.digestValid(token), nil
}

// Revoke drops every live token for the user. Called on login (session
// fixation defense) and logout.
func (s *Service) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("csrf: user id is required")
	}
	return s.store.DeleteByUser(ctx, userID)
}

func (s *Service) digest(salt string) string {
	h := sha1.Sum([]byte(salt + "-" + s.secret))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

func (s *Service) digestValid(token string) bool {
	i := strings.IndexByte(token, '-')
	if i < 0 {
		return false
	}
	expected := token[:i] + "-" + s.digest(token[:i])
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

func deriveSecret(secretKey string) string {
	h := sha1.Sum([]byte(secretKey))
	return hex.EncodeToString(h[:])
}

func randomSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(buf), nil
}
