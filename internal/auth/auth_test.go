package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword("correct horse battery staple", hash))
	assert.False(t, CheckPassword("wrong password", hash))
	assert.False(t, CheckPassword("correct horse battery staple", "not-a-hash"))
}

func TestGenerateSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for range 10 {
		token, err := GenerateSessionToken()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(token), 40, "token should encode 32 random bytes")
		assert.False(t, seen[token], "tokens must not repeat")
		seen[token] = true
	}
}
