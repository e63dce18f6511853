// Package secrets hashes passwords and mints random keys.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "projecthub/pkg/domain-errors"
)

const keyBytes = 32

var ErrMismatch = errors.New("secret does not match")

// Generate returns 32 random bytes, base64url encoded without padding.
func Generate() (string, error) {
	key := make([]byte, keyBytes)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("read random key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}

// Hash bcrypts secret. Costs bcrypt would reject are replaced by its default.
func Hash(secret string, cost int) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(secret), clampCost(cost))
	switch {
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
	case err != nil:
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(out), nil
}

// Verify returns ErrMismatch for a wrong secret and a wrapped error for a
// hash that cannot be parsed.
func Verify(secret, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("bcrypt compare: %w", err)
	}
}

func clampCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}
