package services

import "golang.org/x/crypto/bcrypt"

// Hasher is the one-way password hashing collaborator. Verification is out
// of scope here; the login flow lives in a separate service.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// BcryptHasher hashes passwords with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
