package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/autostack/access-service/internal/core/domain"
)

// DefaultCost matches ten adaptive-hash rounds.
const DefaultCost = bcrypt.DefaultCost

// dummyPassword is hashed once at startup so that verifying against an absent
// or malformed hash costs the same as a real comparison.
const dummyPassword = "access-service:no-such-principal"

// BcryptHasher implements ports.CredentialHasher with bcrypt.
type BcryptHasher struct {
	cost      int
	dummyHash []byte
}

// NewBcryptHasher returns a hasher using cost, or DefaultCost when cost is 0.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt dummy hash: %w", err)
	}
	return &BcryptHasher{cost: cost, dummyHash: dummy}, nil
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt digest of plaintext. A fresh salt is drawn on
// every call, so hashing the same input twice yields different digests.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("%w: bcrypt: %w", domain.ErrInternalAuth, err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches hash. Empty or malformed hashes
// never reach the comparison against hash and always report false.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
