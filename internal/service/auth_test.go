package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RoundTrip(t *testing.T) {
	// Given: An auth service with a secret
	auth, err := NewAuthService("secret", time.Hour)
	require.NoError(t, err)

	// When: Issuing and parsing a token for a player
	token, err := auth.GenerateToken("player-1")
	require.NoError(t, err)

	playerID, err := auth.ParseToken(token)

	// Then: The player id survives
	require.NoError(t, err)
	assert.Equal(t, "player-1", playerID)
}

func TestAuthService_Rejects(t *testing.T) {
	auth, err := NewAuthService("secret", time.Hour)
	require.NoError(t, err)

	other, err := NewAuthService("other", time.Hour)
	require.NoError(t, err)
	foreign, err := other.GenerateToken("player-1")
	require.NoError(t, err)

	expired := &authServiceImpl{
		secretKey: []byte("secret"),
		ttl:       time.Minute,
		now:       func() time.Time { return time.Now().Add(-time.Hour) },
	}
	stale, err := expired.GenerateToken("player-1")
	require.NoError(t, err)

	anonymous, err := auth.GenerateToken("")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "player-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":        "not-a-token",
		"foreign secret": foreign,
		"expired":        stale,
		"no subject":     anonymous,
		"unsigned":       none,
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := auth.ParseToken(token)

			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewAuthService_EmptySecret(t *testing.T) {
	_, err := NewAuthService("", time.Hour)

	require.ErrorIs(t, err, ErrEmptySecret)
}
