package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes account passwords and checks login attempts
// against the stored hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptPasswordHasher returns a bcrypt-backed hasher at the default
// work factor.
func NewBcryptPasswordHasher() PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

// NewBcryptPasswordHasherWithCost returns a bcrypt-backed hasher with an
// explicit work factor.
func NewBcryptPasswordHasherWithCost(cost int) PasswordHasher {
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compare returns a non-nil error when plain does not match hash.
func (h *bcryptHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
