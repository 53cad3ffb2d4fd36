package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewSessionID returns a cryptographically secure opaque session
// identifier (48 random bytes, hex encoded). The raw value goes to the
// client cookie; only its hash is stored server-side.
func NewSessionID() (string, error) {
	return randomHex(48)
}

// NewCSRFToken returns the per-session anti-forgery token (32 random
// bytes, hex encoded).
func NewCSRFToken() (string, error) {
	return randomHex(32)
}

// HashSessionID returns the SHA-256 hash of the raw session identifier
// as a hex string. Storing only the hash prevents attackers from using
// stolen database rows to impersonate live sessions.
func HashSessionID(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
