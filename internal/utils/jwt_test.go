package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret-a", 42, "buyer@example.com", "user", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	claims, err := ParseToken("secret-a", tok.Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "buyer@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret-a", 1, "x@y.z", "user", 15)
	require.NoError(t, err)

	_, err = ParseToken("secret-b", tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenUsesOwnSecret(t *testing.T) {
	// A refresh token must not parse as an access token: different secret.
	tok, err := NewRefreshToken("refresh-secret", 7, "x@y.z", "admin", 30)
	require.NoError(t, err)

	_, err = ParseToken("access-secret", tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := ParseToken("refresh-secret", tok.Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("secret", "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashToken(t *testing.T) {
	a := HashToken("some-long-refresh-jwt-value")
	b := HashToken("some-long-refresh-jwt-value")
	c := HashToken("different")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // sha256 hex
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
}
