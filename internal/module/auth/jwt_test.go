package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMerchant() *Merchant {
	return &Merchant{
		ID:    uuid.New(),
		Name:  "Acme Store",
		Email: "owner@acme.example",
	}
}

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{
		Secret:            "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "altopay",
	})
	merchant := testMerchant()

	token, expiresAt, err := manager.GenerateAccessToken(merchant)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, merchant.ID, claims.MerchantID)
	assert.Equal(t, merchant.Email, claims.Email)
	assert.Equal(t, "altopay", claims.Issuer)
	assert.Equal(t, merchant.ID.String(), claims.Subject)
}

func TestJWTManager_ValidateAccessToken(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{
		Secret:            "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "altopay",
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := manager.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := NewJWTManager(&JWTConfig{Secret: "other-secret", AccessTokenExpiry: time.Hour})
		token, _, err := other.GenerateAccessToken(testMerchant())
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		short := NewJWTManager(&JWTConfig{Secret: "test-secret", AccessTokenExpiry: -time.Minute})
		token, _, err := short.GenerateAccessToken(testMerchant())
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects unsigned token", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			MerchantID: uuid.New(),
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
