package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is the minimum required password length (NIST recommendation).
	MinPasswordLength = 12
	// MaxPasswordLength is bcrypt's input limit.
	MaxPasswordLength = 72
)

var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password exceeds maximum length of %d bytes", MaxPasswordLength)
)

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string, cost int) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password with its hash.
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return err
	}
	return nil
}

// GenerateAPIToken returns a random plaintext token and the hash to store.
func GenerateAPIToken() (plaintext string, hash string, err error) {
	plaintext, err = randomHex(32)
	if err != nil {
		return "", "", err
	}
	return plaintext, HashToken(plaintext), nil
}

// HashToken creates a SHA-256 hash of an API token for secure storage.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// GenerateSessionSecret creates a random 32-byte hex secret for CSRF signing.
func GenerateSessionSecret() (string, error) {
	return randomHex(32)
}

// DecodeSessionSecret decodes a hex secret; gorilla/csrf needs exactly 32 bytes.
func DecodeSessionSecret(secret string) ([]byte, error) {
	key, err := hex.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("session secret must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("session secret must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
