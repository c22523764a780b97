package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const apiKeyPrefix = "ak_live_"

// GenerateAPIKey generates a new random API key.
// Returns the raw key (shown once) and its SHA-256 hash for storage.
func GenerateAPIKey() (string, string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate api key: %w", err)
	}

	rawKey := apiKeyPrefix + hex.EncodeToString(buf)
	return rawKey, HashAPIKey(rawKey), nil
}

// HashAPIKey returns the SHA-256 hash of an API key.
// Keys are high-entropy, so a deterministic hash is enough for lookup.
func HashAPIKey(rawKey string) string {
	hash := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(hash[:])
}

// KeyPrefix returns the display prefix of an API key (e.g. "ak_live_3fa2").
func KeyPrefix(rawKey string) string {
	if len(rawKey) <= len(apiKeyPrefix)+4 {
		return rawKey
	}
	return rawKey[:len(apiKeyPrefix)+4]
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password against its bcrypt hash.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
