package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"auth-service/internal/domain"
)

// DefaultCost is bcrypt's 10 rounds.
const DefaultCost = bcrypt.DefaultCost

type Hasher struct {
	Cost int
}

func NewHasher() *Hasher { return &Hasher{Cost: DefaultCost} }

// Hash returns the 60-char modular crypt form ($2a$<cost>$<salt+hash>), salted per call.
func (h *Hasher) Hash(pw string) (string, error) {
	if pw == "" {
		return "", fmt.Errorf("%w: empty password", domain.ErrHashing)
	}
	cost := h.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
	return string(b), nil
}

// Verify reports whether pw matches hashed. A malformed hash is a mismatch.
func (h *Hasher) Verify(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
