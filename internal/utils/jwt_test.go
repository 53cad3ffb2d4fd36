package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "moderator", "abc123", 5)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	claims, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "moderator", claims.Role)
	assert.Equal(t, "abc123", claims.SessionHash)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "user", "abc123", 5)
	require.NoError(t, err)

	_, err = ParseAccessToken("other-secret", tok.Token)
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "user", "abc123", -1)
	require.NoError(t, err)

	_, err = ParseAccessToken("secret", tok.Token)
	assert.Error(t, err)
}

func TestAccessTokenGarbage(t *testing.T) {
	_, err := ParseAccessToken("secret", "not.a.token")
	assert.Error(t, err)
}

func TestAccessTokenRequiresSessionReference(t *testing.T) {
	// A token that names no session cannot be revoked, so it is invalid.
	tok, err := NewAccessToken("secret", 42, "user", "", 5)
	require.NoError(t, err)

	_, err = ParseAccessToken("secret", tok.Token)
	assert.Error(t, err)
}

func TestHashSessionID(t *testing.T) {
	a := HashSessionID("raw-session")
	b := HashSessionID("raw-session")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // sha256 hex
	assert.NotEqual(t, a, HashSessionID("other-session"))
}

func TestNewSessionIDUnique(t *testing.T) {
	a, err := NewSessionID()
	require.NoError(t, err)
	b, err := NewSessionID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 96) // 48 bytes hex encoded
}
