package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoleSet(t *testing.T) {
	set := ParseRoleSet("moderator,admin")
	assert.True(t, set["moderator"])
	assert.True(t, set["admin"])
	assert.False(t, set["user"])
}

func TestParseRoleSetNormalizes(t *testing.T) {
	set := ParseRoleSet(" Moderator , ADMIN ,, ")
	assert.True(t, set["moderator"])
	assert.True(t, set["admin"])
	assert.Len(t, set, 2)
}

func TestParseRoleSetEmpty(t *testing.T) {
	assert.Empty(t, ParseRoleSet(""))
}

func TestOAuthEnabled(t *testing.T) {
	assert.False(t, Config{}.OAuthEnabled())
	assert.False(t, Config{GoogleClientID: "id"}.OAuthEnabled())
	assert.True(t, Config{GoogleClientID: "id", GoogleClientSec: "sec"}.OAuthEnabled())
}
