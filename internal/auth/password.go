package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordMatcher reports whether plaintext hashes to hash. Implementations
// must compare in constant time.
type PasswordMatcher func(plaintext, hash string) bool

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// MatchPassword is the bcrypt PasswordMatcher.
func MatchPassword(plaintext, hash string) bool {
	return ComparePassword(hash, plaintext) == nil
}

// DecoyHash returns a hash of a random secret at cost. Comparing against it
// costs the same as comparing against a real account's hash.
func DecoyHash(cost int) (string, error) {
	return HashPassword(uuid.NewString(), cost)
}
