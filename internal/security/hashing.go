package security

import "golang.org/x/crypto/bcrypt"

// Hasher derives and checks bcrypt password hashes. The cost comes from
// BCRYPT_COST; plaintext passwords must never be logged or persisted.
type Hasher struct {
	cost int
}

// NewHasher clamps cost into bcrypt's valid range; a non-positive cost falls
// back to the bcrypt default.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a storable bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare checks password against a stored hash. Returns nil on match;
// bcrypt.ErrMismatchedHashAndPassword on a wrong password.
func (h *Hasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
