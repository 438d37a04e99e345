package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Passwords are stored bcrypt-hashed. Cost 12 matches the seed data; do not
// lower it without re-hashing existing accounts.
const bcryptCost = 12

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword reports whether password matches the stored hash.
func ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
