package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	InitJWT("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := GenerateAccessToken(42, "frontdesk", "receptionist")
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "frontdesk", claims.Username)
	assert.Equal(t, "receptionist", claims.Role)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	InitJWT("access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour)

	token, err := GenerateAccessToken(1, "admin", "admin")
	require.NoError(t, err)

	_, err = ValidateAccessToken(token)
	require.Error(t, err)
}

func TestTamperedTokenRejected(t *testing.T) {
	InitJWT("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := GenerateAccessToken(1, "admin", "admin")
	require.NoError(t, err)

	InitJWT("different-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	_, err = ValidateAccessToken(token)
	require.Error(t, err)
}

func TestHashRefreshTokenDeterministic(t *testing.T) {
	token, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.Equal(t, HashRefreshToken(token), HashRefreshToken(token))
	assert.NotEqual(t, HashRefreshToken(token), HashRefreshToken(token+"x"))
	assert.Len(t, HashRefreshToken(token), 64)
}
