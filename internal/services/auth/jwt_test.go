package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService(JWTConfig{SecretKey: "secret"})

	token, err := svc.GenerateToken("music-bot")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "music-bot", claims.Client)
	assert.Equal(t, "music-bot", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidate_Rejections(t *testing.T) {
	svc := NewJWTService(JWTConfig{SecretKey: "secret"})

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "other"})
		token, err := other.GenerateToken("bot")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		token := sign(t, JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    defaultIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
			TokenType: tokenTypeAccess,
		})
		_, err := svc.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("Wrong token type", func(t *testing.T) {
		token := sign(t, JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    defaultIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			TokenType: "refresh",
		})
		_, err := svc.ValidateAccessToken(token)
		assert.ErrorContains(t, err, "expected access token")
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("Empty client", func(t *testing.T) {
		_, err := svc.GenerateToken("")
		assert.Error(t, err)
	})
}

func sign(t *testing.T, claims JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}
