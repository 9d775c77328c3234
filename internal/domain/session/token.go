package session

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenBytes is the entropy of a scan token. Twelve hex characters keep the
// QR payload short while staying unguessable within a check-in window.
const TokenBytes = 6

// NewToken generates a random scan token.
// POST: Returns a 12-character lower-case hex string
func NewToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
