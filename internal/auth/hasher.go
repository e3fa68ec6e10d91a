package auth

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a configurable cost factor. The hash output is
// self-describing (algorithm, cost and salt are embedded), so no extra
// bookkeeping is stored next to it.
type Hasher struct {
	cost   int
	logger *zap.Logger
}

func NewHasher(cost int, logger *zap.Logger) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 12
	}
	return &Hasher{cost: cost, logger: logger}
}

// Hash produces a bcrypt hash from a plaintext password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", newValidationError("password", "password is required")
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password against a stored hash in constant time.
// A malformed stored hash is reported as a mismatch, never an error.
func (h *Hasher) Verify(password, storedHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	if err == nil {
		return true
	}
	if err != bcrypt.ErrMismatchedHashAndPassword {
		h.logger.Warn("malformed password hash in store", zap.Error(err))
	}
	return false
}
