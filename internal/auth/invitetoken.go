package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// InviteTokenBytes is the amount of entropy in an invite token (256 bits).
const InviteTokenBytes = 32

// GenerateInviteToken returns a URL-safe random token suitable for embedding
// in an invite link.
func GenerateInviteToken() (string, error) {
	buf := make([]byte, InviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth.GenerateInviteToken: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the SHA-256 fingerprint under which a token is
// stored and looked up. The raw token never reaches the database.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
