package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigil-app/vigil/server/auth/key"
)

func TestPasswordHashing(t *testing.T) {
	passwordHash, err := HashPassword("fakePassword123")
	require.NoError(t, err)

	assert.NotEqual(t, "fakePassword123", passwordHash)
	assert.True(t, CheckPasswordHash("fakePassword123", passwordHash))
	assert.False(t, CheckPasswordHash("wrongPassword", passwordHash))
}

func TestJWTRoundTrip(t *testing.T) {
	keyPair := newTestKeyPair(t)

	claims := VigilTokenClaims{
		FirstName: "Ada",
		LastName:  "Lovelace",
		IsAdmin:   true,
		StandardClaims: jwt.StandardClaims{
			Subject:   "1",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}

	tokenString, err := EncodeJWT(claims, keyPair)
	require.NoError(t, err)

	decoded, err := DecodeJWT(tokenString, keyPair)
	require.NoError(t, err)

	assert.Equal(t, "Ada", decoded.FirstName)
	assert.Equal(t, "1", decoded.Subject)
	assert.True(t, decoded.IsAdmin)
}

func TestDecodeJWTRejectsBadTokens(t *testing.T) {
	keyPair := newTestKeyPair(t)

	t.Run("expired token", func(t *testing.T) {
		claims := VigilTokenClaims{
			StandardClaims: jwt.StandardClaims{
				Subject:   "1",
				ExpiresAt: time.Now().Add(-time.Hour).Unix(),
			},
		}

		tokenString, err := EncodeJWT(claims, keyPair)
		require.NoError(t, err)

		_, err = DecodeJWT(tokenString, keyPair)
		assert.Error(t, err)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		claims := VigilTokenClaims{
			StandardClaims: jwt.StandardClaims{
				Subject:   "1",
				ExpiresAt: time.Now().Add(time.Hour).Unix(),
			},
		}

		tokenString, err := EncodeJWT(claims, newTestKeyPair(t))
		require.NoError(t, err)

		_, err = DecodeJWT(tokenString, keyPair)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := DecodeJWT("not.a.jwt", keyPair)
		assert.Error(t, err)
	})
}

func newTestKeyPair(t *testing.T) *key.KeyPair {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return &key.KeyPair{
		Kid:        "test-key-id",
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
	}
}
