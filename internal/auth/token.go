package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/bookstore-service/internal/config"
)

var (
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
)

// Token is an issued bearer token. Only the subject and expiry are embedded;
// roles are always re-read from the identity store.
type Token struct {
	Raw       string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec issues and validates HS256 signed, expiring identity tokens.
// The key is copied at construction and never changes for the life of the process.
type TokenCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenCodec builds a codec with the given signing key and default lifetime.
func NewTokenCodec(key []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(key) < config.MinSigningKeyLength {
		return nil, fmt.Errorf("%w: got %d bytes", config.ErrSigningKeyMissing, len(key))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	owned := make([]byte, len(key))
	copy(owned, key)
	return &TokenCodec{key: owned, ttl: ttl, now: time.Now}, nil
}

// TTL returns the default token lifetime.
func (tc *TokenCodec) TTL() time.Duration {
	return tc.ttl
}

// Issue signs a token for subject valid from issuedAt for ttl. A non-positive
// ttl falls back to the codec default. Times keep nanosecond precision, so the
// token expires exactly at issuedAt+ttl.
func (tc *TokenCodec) Issue(subject string, issuedAt time.Time, ttl time.Duration) (Token, error) {
	if subject == "" {
		return Token{}, fmt.Errorf("%w: empty subject", ErrTokenMalformed)
	}
	if ttl <= 0 {
		ttl = tc.ttl
	}
	issuedAt = issuedAt.Round(0)
	expiresAt := issuedAt.Add(ttl)

	iat, exp := numericDate(issuedAt), numericDate(expiresAt)
	claims := &tokenClaims{Subject: subject, IssuedAt: &iat, ExpiresAt: &exp}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.key)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Raw: raw, Subject: subject, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// IssueNow signs a token for subject with the default lifetime.
func (tc *TokenCodec) IssueNow(subject string) (Token, error) {
	return tc.Issue(subject, tc.now(), tc.ttl)
}

// Validate checks raw against the current time and returns the embedded subject.
func (tc *TokenCodec) Validate(raw string) (string, error) {
	return tc.ValidateAt(raw, tc.now())
}

// ValidateAt checks raw as of the instant at. A token is expired when at is
// equal to or after its expiry. Errors wrap one of ErrTokenMalformed,
// ErrTokenBadSignature or ErrTokenExpired.
func (tc *TokenCodec) ValidateAt(raw string, at time.Time) (string, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, tc.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return at }),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return "", classifyTokenError(err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrTokenMalformed)
	}
	return claims.Subject, nil
}

func (tc *TokenCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.New("unexpected signing method")
	}
	return tc.key, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrTokenBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}
