package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecret generates a cryptographically secure random secret
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateDeploymentSecrets generates the session signing secret and the public health-check key
func GenerateDeploymentSecrets() (jwtSecret, anonKey string, err error) {
	jwtSecret, err = GenerateSecret(32) // 256-bit
	if err != nil {
		return "", "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	anonKey, err = GenerateSecret(16)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate anon key: %w", err)
	}

	return jwtSecret, anonKey, nil
}
