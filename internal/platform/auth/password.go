package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxSecretBytes is the longest secret bcrypt accepts.
const MaxSecretBytes = 72

var (
	// ErrEmptySecret is returned when asked to hash an empty credential.
	ErrEmptySecret = errors.New("credential secret is empty")
	// ErrSecretTooLong is returned for secrets over MaxSecretBytes.
	ErrSecretTooLong = fmt.Errorf("credential secret exceeds %d bytes", MaxSecretBytes)
)

// PasswordHasher hashes credentials with bcrypt on write and verifies them
// with bcrypt's constant-time comparison on login.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if len(secret) > MaxSecretBytes {
		return "", ErrSecretTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(b), nil
}

// Check reports whether secret matches hash. Malformed hashes never match.
func (h *PasswordHasher) Check(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
