package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password bounds enforced by callers before hashing. bcrypt rejects input
// longer than MaxPasswordBytes.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

// Passwords hashes and compares user passwords with bcrypt. Every hash
// carries its own random salt.
type Passwords struct {
	cost int
}

// NewPasswords returns a hasher using the given bcrypt cost. Zero selects
// bcrypt.DefaultCost.
func NewPasswords(cost int) (*Passwords, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	return &Passwords{cost: cost}, nil
}

// Hash returns a salted one-way hash of plain.
func (p *Passwords) Hash(plain string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Matches reports whether plain hashes to hash. A mismatch is a normal
// negative result; only a corrupt hash is returned as an error.
func (p *Passwords) Matches(hash []byte, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(hash, []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}
