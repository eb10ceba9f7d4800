package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlperErd0gan/Filizlen-App/internal/config"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig.JWTSecret = secret
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestJWT_RoundTrip(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateJWT("ciftci@example.com")
	require.NoError(t, err)

	sub, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "ciftci@example.com", sub)
}

func TestJWT_WrongSecret(t *testing.T) {
	withSecret(t, "one")
	token, err := GenerateJWT("a@example.com")
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "two"
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWT_NoSecret(t *testing.T) {
	withSecret(t, "")
	_, err := GenerateJWT("a@example.com")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("gizli")
	require.NoError(t, err)
	assert.NotEqual(t, "gizli", hash)
	assert.True(t, CheckPasswordHash("gizli", hash))
	assert.False(t, CheckPasswordHash("yanlış", hash))
}
