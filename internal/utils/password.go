package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GeneratePassword returns a random password in the format XXXX-XXXX-XXXX-XXXX.
func GeneratePassword() (string, error) {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	hex := hex.EncodeToString(bytes)
	return fmt.Sprintf("%s-%s-%s-%s",
		hex[0:4],
		hex[4:8],
		hex[8:12],
		hex[12:16],
	), nil
}

// GenerateSecret returns n random bytes hex encoded.
func GenerateSecret(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
