package auth

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// fakeIdentityStore implements IdentityStore for testing.
type fakeIdentityStore struct {
	mu         sync.Mutex
	identities map[string]*domain.Customer
	err        error
	lookups    int
}

func newFakeIdentityStore(identities ...*domain.Customer) *fakeIdentityStore {
	store := &fakeIdentityStore{identities: make(map[string]*domain.Customer)}
	for _, identity := range identities {
		store.identities[identity.Email] = identity
	}
	return store
}

func (f *fakeIdentityStore) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	identity, ok := f.identities[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := *identity
	copy.Roles = append([]domain.Role(nil), identity.Roles...)
	return &copy, nil
}

func (f *fakeIdentityStore) put(identity *domain.Customer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identities[identity.Email] = identity
}

func (f *fakeIdentityStore) remove(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.identities, email)
}

var _ IdentityStore = (*fakeIdentityStore)(nil)

// recordingMatcher is a cheap PasswordMatcher for tests: hash is "hashed:" + plaintext.
type recordingMatcher struct {
	mu     sync.Mutex
	hashes []string
}

func (m *recordingMatcher) match(plaintext, hash string) bool {
	m.mu.Lock()
	m.hashes = append(m.hashes, hash)
	m.mu.Unlock()
	return hash == fakeHash(plaintext)
}

func fakeHash(plaintext string) string {
	return "hashed:" + plaintext
}

const testDecoyHash = "decoy"

func customer(id int, email string, roles ...domain.Role) *domain.Customer {
	return &domain.Customer{
		ID:           id,
		Name:         "customer name",
		Email:        email,
		PasswordHash: fakeHash("pw"),
		Status:       domain.CustomerStatusActive,
		Roles:        roles,
	}
}
