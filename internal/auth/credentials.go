package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// Credential failures. Callers only ever see a generic authentication failure;
// the distinction exists for logs and counters.
var (
	ErrInvalidCredentialPayload = errors.New("invalid credential payload")
	ErrUnknownIdentity          = errors.New("unknown identity")
	ErrBadSecret                = errors.New("bad secret")
	ErrInactiveIdentity         = errors.New("inactive identity")
)

// ErrIdentityStore wraps failures of the identity lookup itself.
var ErrIdentityStore = errors.New("identity store unavailable")

// IdentityStore looks identities up by their unique email. A missing identity
// is reported as pgx.ErrNoRows.
type IdentityStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

// CredentialVerifier checks an (email, password) pair against stored identities.
type CredentialVerifier struct {
	identities IdentityStore
	matches    PasswordMatcher
	decoyHash  string
}

// NewCredentialVerifier constructs a verifier. decoyHash is compared against
// when the identity does not exist, so both failure paths pay for one hash comparison.
func NewCredentialVerifier(identities IdentityStore, matches PasswordMatcher, decoyHash string) *CredentialVerifier {
	return &CredentialVerifier{identities: identities, matches: matches, decoyHash: decoyHash}
}

// Verify returns the identity owning the credential.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*domain.Customer, error) {
	identity, err := v.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			v.matches(password, v.decoyHash)
			return nil, ErrUnknownIdentity
		}
		return nil, fmt.Errorf("%w: %w", ErrIdentityStore, err)
	}
	if !v.matches(password, identity.PasswordHash) {
		return nil, ErrBadSecret
	}
	if !identity.IsActive() {
		return nil, ErrInactiveIdentity
	}
	return identity, nil
}
