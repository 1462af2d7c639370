package utils

import (
	"crypto/rand"
	"fmt"
)

// tokenAlphabet is exactly 32 characters (no 0/O/1/I), so a uniform random
// byte maps to a uniform character without modulo bias.
const tokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GiftCodeLength is the fixed length of generated gift codes.
const GiftCodeLength = 12

// RandomToken returns a cryptographically random token of the given length
// over the uniform alphabet.
func RandomToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(out), nil
}

// NewAPIKey returns a prefixed player API key.
func NewAPIKey() (string, error) {
	token, err := RandomToken(32)
	if err != nil {
		return "", err
	}
	return "pmk_" + token, nil
}
