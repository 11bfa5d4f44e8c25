package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// APIKeyPrefix marks TapMove merchant credentials.
	APIKeyPrefix = "tm_"
	// apiKeyBytes yields 48 hex characters after the prefix.
	apiKeyBytes = 24
)

var randomRead = rand.Read

// GenerateAPIKey mints a new merchant credential and its storage hash.
// The plain key is shown to the merchant exactly once; only the hash is
// persisted.
func GenerateAPIKey() (plainKey, hash string, err error) {
	bytes := make([]byte, apiKeyBytes)
	if _, err := randomRead(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate api key: %w", err)
	}
	plainKey = APIKeyPrefix + hex.EncodeToString(bytes)
	return plainKey, HashAPIKey(plainKey), nil
}

// HashAPIKey returns the hex SHA-256 digest of a credential. The hash is
// deterministic so merchants can be looked up by it at request time.
func HashAPIKey(plainKey string) string {
	sum := sha256.Sum256([]byte(plainKey))
	return hex.EncodeToString(sum[:])
}
