package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMerchantRepo struct {
	merchants map[uuid.UUID]*Merchant
}

func newFakeMerchantRepo() *fakeMerchantRepo {
	return &fakeMerchantRepo{merchants: make(map[uuid.UUID]*Merchant)}
}

func (r *fakeMerchantRepo) CreateMerchant(_ context.Context, m *Merchant) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

func (r *fakeMerchantRepo) GetMerchant(_ context.Context, id uuid.UUID) (*Merchant, error) {
	m, ok := r.merchants[id]
	if !ok {
		return nil, ErrMerchantNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMerchantRepo) GetMerchantByEmail(_ context.Context, email string) (*Merchant, error) {
	for _, m := range r.merchants {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrMerchantNotFound
}

func (r *fakeMerchantRepo) GetMerchantByAPIKeyHash(_ context.Context, keyHash string) (*Merchant, error) {
	for _, m := range r.merchants {
		if m.APIKeyHash == keyHash {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrMerchantNotFound
}

func (r *fakeMerchantRepo) UpdateMerchant(_ context.Context, m *Merchant) error {
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeMerchantRepo) {
	t.Helper()
	repo := newFakeMerchantRepo()
	jwt := NewJWTManager(&JWTConfig{
		Secret:            "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "altopay",
	})
	return NewService(repo, jwt, zap.NewNop()), repo
}

func seedMerchant(t *testing.T, repo *fakeMerchantRepo, password string, active bool) (*Merchant, string) {
	t.Helper()
	passwordHash, err := HashPassword(password)
	require.NoError(t, err)
	rawKey, keyHash, err := GenerateAPIKey()
	require.NoError(t, err)

	m := &Merchant{
		Name:         "Acme Store",
		Email:        "owner@acme.example",
		PasswordHash: passwordHash,
		APIKeyHash:   keyHash,
		APIKeyPrefix: KeyPrefix(rawKey),
		Active:       active,
	}
	require.NoError(t, repo.CreateMerchant(context.Background(), m))
	return m, rawKey
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues bearer token for valid credentials", func(t *testing.T) {
		svc, repo := newTestService(t)
		merchant, _ := seedMerchant(t, repo, "s3cret!", true)

		resp, err := svc.Login(ctx, merchant.Email, "s3cret!")
		require.NoError(t, err)

		assert.Equal(t, "Bearer", resp.TokenType)
		assert.NotEmpty(t, resp.AccessToken)
		assert.True(t, resp.ExpiresAt.After(time.Now()))

		claims, err := svc.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, merchant.ID, claims.MerchantID)
		assert.Equal(t, merchant.Email, claims.Email)
	})

	t.Run("records last login", func(t *testing.T) {
		svc, repo := newTestService(t)
		merchant, _ := seedMerchant(t, repo, "s3cret!", true)

		_, err := svc.Login(ctx, merchant.Email, "s3cret!")
		require.NoError(t, err)

		stored, err := repo.GetMerchant(ctx, merchant.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLoginAt)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		svc, repo := newTestService(t)
		merchant, _ := seedMerchant(t, repo, "s3cret!", true)

		_, err := svc.Login(ctx, merchant.Email, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Login(ctx, "nobody@acme.example", "s3cret!")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects inactive merchant", func(t *testing.T) {
		svc, repo := newTestService(t)
		merchant, _ := seedMerchant(t, repo, "s3cret!", false)

		_, err := svc.Login(ctx, merchant.Email, "s3cret!")
		assert.ErrorIs(t, err, ErrMerchantInactive)
	})
}

func TestExchangeAPIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("issues bearer token for valid key", func(t *testing.T) {
		svc, repo := newTestService(t)
		merchant, rawKey := seedMerchant(t, repo, "s3cret!", true)

		resp, err := svc.ExchangeAPIKey(ctx, rawKey)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, merchant.ID, claims.MerchantID)
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		svc, repo := newTestService(t)
		seedMerchant(t, repo, "s3cret!", true)

		_, err := svc.ExchangeAPIKey(ctx, "ak_live_doesnotexist")
		assert.ErrorIs(t, err, ErrInvalidAPIKey)
	})

	t.Run("rejects inactive merchant", func(t *testing.T) {
		svc, repo := newTestService(t)
		_, rawKey := seedMerchant(t, repo, "s3cret!", false)

		_, err := svc.ExchangeAPIKey(ctx, rawKey)
		assert.ErrorIs(t, err, ErrMerchantInactive)
	})
}

func TestGenerateAPIKey(t *testing.T) {
	rawKey, keyHash, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, len(rawKey) > len("ak_live_"))
	assert.Contains(t, rawKey, "ak_live_")
	assert.Equal(t, HashAPIKey(rawKey), keyHash)
	assert.Len(t, keyHash, 64)

	// Keys are unique.
	other, _, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, rawKey, other)
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "ak_live_3fa2", KeyPrefix("ak_live_3fa2bb91deadbeef"))
	assert.Equal(t, "ak_live_3fa2", KeyPrefix("ak_live_3fa2b"))
	assert.Equal(t, "short", KeyPrefix("short"))
}
