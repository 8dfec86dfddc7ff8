package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashOrRead bcrypt-hashes a plaintext password, passing through values that
// are already bcrypt digests so operators can supply either form via env.
func HashOrRead(password string) ([]byte, error) {
	if strings.HasPrefix(password, "$2a$") || strings.HasPrefix(password, "$2b$") || strings.HasPrefix(password, "$2y$") {
		return []byte(password), nil
	}
	return bcrypt.GenerateFromPassword([]byte(password), 10)
}
