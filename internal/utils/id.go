package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// tokenBytes is the entropy of a session token.
const tokenBytes = 32

// NewID returns a unique identifier for a live connection.
func NewID() string {
	return uuid.NewString()
}

// NewToken returns a cryptographically random, hex-encoded session token.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
