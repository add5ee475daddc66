// Package password turns plaintext passwords into salted bcrypt digests.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the work factor used for new digests.
const DefaultCost = 10

// MaxPasswordBytes is the longest input bcrypt takes into account.
// Longer passwords are cut to this length before hashing and comparing.
const MaxPasswordBytes = 72

// Hasher produces and checks bcrypt digests with a fixed cost.
type Hasher struct {
	cost int
}

// New returns a Hasher for the given cost. Costs outside bcrypt's
// supported range are rejected.
func New(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("in internal/password/password.go/New(): unsupported bcrypt cost %d", cost)
	}

	return &Hasher{cost: cost}, nil
}

// Hash returns the digest of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(truncate(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("in internal/password/password.go/Hash(): error while `bcrypt.GenerateFromPassword()` calling: %w", err)
	}

	return string(digest), nil
}

// Compare returns nil when plain matches digest.
func (h *Hasher) Compare(digest, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(digest), truncate(plain))
}

func truncate(plain string) []byte {
	b := []byte(plain)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}

	return b
}
