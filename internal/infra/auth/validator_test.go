package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/corpadmin-portal/internal/domain"
)

func signToken(t *testing.T, key *rsa.PrivateKey, expiresAt time.Time) string {
	t.Helper()
	claims := &domain.AdminClaims{
		AdminID: "admin-1",
		Role:    domain.RoleAuthorizer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-1",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestVerifyToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v := NewBaseValidator(&key.PublicKey)

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, key, time.Now().Add(time.Hour))

		claims, err := v.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", claims.AdminID)
		assert.Equal(t, domain.RoleAuthorizer, claims.Role)
	})

	t.Run("bearer prefix is stripped", func(t *testing.T) {
		token := signToken(t, key, time.Now().Add(time.Hour))

		claims, err := v.VerifyToken("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", claims.AdminID)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, key, time.Now().Add(-time.Minute))
		_, err := v.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		token := signToken(t, otherKey, time.Now().Add(time.Hour))
		_, err = v.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("hmac signature is rejected", func(t *testing.T) {
		// Попытка подделки: подпись симметричным алгоритмом вместо RS256
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"admin_id": "admin-1",
			"exp":      time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("guessed-secret"))
		require.NoError(t, err)

		_, err = v.VerifyToken(forged)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.VerifyToken("not-a-jwt")
		assert.Error(t, err)
	})
}
