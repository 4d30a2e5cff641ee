package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordService hashes account passwords on register and change-password,
// and checks them on login
type PasswordService struct {
	cost int
}

// NewPasswordService hashes with bcrypt.DefaultCost
func NewPasswordService() *PasswordService {
	return NewPasswordServiceWithCost(bcrypt.DefaultCost)
}

// NewPasswordServiceWithCost falls back to bcrypt.DefaultCost when cost is
// outside bcrypt's accepted range
func NewPasswordServiceWithCost(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordService{cost: cost}
}

// HashPassword returns the stored form of a plaintext password
func (s *PasswordService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash. A malformed
// hash never matches.
func (s *PasswordService) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
