package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewMagicLinkToken generates a cryptographically random 64-character hex token.
func NewMagicLinkToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate magic link token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
