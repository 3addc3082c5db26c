package auth

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	shareKeyBytes   = 24
	resetTokenBytes = 32
)

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewShareKey returns an unguessable URL-safe share key.
func NewShareKey() (string, error) {
	return randomToken(shareKeyBytes)
}

// NewResetToken returns an opaque single-use token value for reset and
// verification flows.
func NewResetToken() (string, error) {
	return randomToken(resetTokenBytes)
}
