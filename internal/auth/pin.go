package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPin hashes the device PIN. The hash never leaves the local store.
func HashPin(pin string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}
	return hash, nil
}

// VerifyPin reports whether pin matches the stored hash.
func VerifyPin(hash []byte, pin string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(pin)) == nil
}
