package auth

import (
	"errors"
	"time"

	"civic-platform/internal/directory"

	"github.com/golang-jwt/jwt/v5"
)

// TokenError is a terminal verification outcome. Malformed, expired and
// claim-rejected tokens are values to the caller, never panics; only faults
// outside the token itself propagate as plain errors.
type TokenError struct {
	Code    string
	Message string
}

func (e *TokenError) Error() string { return e.Message }

var (
	ErrTokenExpired    = &TokenError{Code: "ERR_JWT_EXPIRED", Message: "Token expired"}
	ErrTokenInvalid    = &TokenError{Code: "ERR_JWT_INVALID", Message: "Token invalid"}
	ErrClaimValidation = &TokenError{Code: "ERR_JWT_CLAIM_VALIDATION_FAILED", Message: "Token claim validation failed"}
)

// Manager issues and verifies signed session tokens. The secret and issuer
// are process-wide configuration fixed at startup.
type Manager struct {
	secret     []byte
	issuer     string
	refreshTTL time.Duration
	accessTTL  time.Duration
}

func NewManager(secretKey, issuer string, refreshTTL, accessTTL time.Duration) (*Manager, error) {
	if secretKey == "" {
		return nil, errors.New("SECRET_KEY is required")
	}
	if issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if refreshTTL <= 0 || accessTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	return &Manager{
		secret:     []byte(secretKey),
		issuer:     issuer,
		refreshTTL: refreshTTL,
		accessTTL:  accessTTL,
	}, nil
}

// Issue signs a token of the given kind. The kind selects the TTL only;
// refresh and access tokens share one claim shape and verification path.
func (m *Manager) Issue(now time.Time, kind Kind, publicID string, actorKind directory.ActorKind, actorRefID string) (string, error) {
	if publicID == "" {
		return "", errors.New("public id is required")
	}

	ttl := m.refreshTTL
	if kind == KindAccess {
		ttl = m.accessTTL
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		PublicID:   publicID,
		ActorKind:  actorKind,
		ActorRefID: actorRefID,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return t.SignedString(m.secret)
}

// Verify checks signature, issuer and expiration. The returned error is one
// of the TokenError values for any problem with the token itself.
func (m *Manager) Verify(tokenString string, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return Claims{}, ErrClaimValidation
		default:
			return Claims{}, ErrTokenInvalid
		}
	}

	if claims.PublicID == "" {
		return Claims{}, ErrClaimValidation
	}
	return claims, nil
}
