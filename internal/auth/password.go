package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrCorruptHash indicates the stored hash is not a valid bcrypt value.
// This is a data integrity failure, not a wrong password.
var ErrCorruptHash = errors.New("stored password hash is malformed")

// HashPassword hashes a plaintext password with the configured cost.
// Output is salted: two calls on the same input produce different hashes.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value. A mismatch
// returns (false, nil); an unparseable stored hash returns ErrCorruptHash.
func ComparePassword(hashed, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, ErrCorruptHash
}
