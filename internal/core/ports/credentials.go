package ports

import (
	"time"

	"github.com/autostack/access-service/internal/core/domain"
)

// CredentialHasher performs one-way salted password hashing.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. An empty hash means the
	// principal was not found and always yields false.
	Verify(plaintext, hash string) bool
}

// TokenCodec signs claims into bearer tokens and verifies them.
type TokenCodec interface {
	Sign(claims domain.Claims, ttl time.Duration) (string, error)
	Verify(token string) (domain.Claims, error)
}
