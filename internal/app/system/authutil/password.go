// internal/app/system/authutil/password.go
package authutil

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Password constants
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	BcryptCost        = 12
)

// Password validation errors
var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must be less than 128 characters")
)

// ValidatePassword checks if a password meets the length requirements.
// Used when seeding or creating accounts; login verification only compares.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plain-text password with a bcrypt hash.
// Returns true if the password matches, false otherwise.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
