package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// TokenResponse is returned on successful authentication.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service implements merchant authentication.
type Service struct {
	repo   Repository
	jwt    *JWTManager
	logger *zap.Logger
}

// NewService creates a new auth service.
func NewService(repo Repository, jwt *JWTManager, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		jwt:    jwt,
		logger: logger,
	}
}

// Login authenticates a merchant with email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	merchant, err := s.repo.GetMerchantByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrMerchantNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := CheckPassword(merchant.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !merchant.IsActive() {
		return nil, ErrMerchantInactive
	}

	now := time.Now()
	merchant.LastLoginAt = &now
	if err := s.repo.UpdateMerchant(ctx, merchant); err != nil {
		s.logger.Warn("failed to record login time",
			zap.String("merchant_id", merchant.ID.String()),
			zap.Error(err),
		)
	}

	return s.issueToken(merchant)
}

// ExchangeAPIKey exchanges a merchant API key for an access token.
func (s *Service) ExchangeAPIKey(ctx context.Context, rawKey string) (*TokenResponse, error) {
	merchant, err := s.repo.GetMerchantByAPIKeyHash(ctx, HashAPIKey(rawKey))
	if err != nil {
		if errors.Is(err, ErrMerchantNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}

	if !merchant.IsActive() {
		return nil, ErrMerchantInactive
	}

	return s.issueToken(merchant)
}

func (s *Service) issueToken(merchant *Merchant) (*TokenResponse, error) {
	token, expiresAt, err := s.jwt.GenerateAccessToken(merchant)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// ValidateToken validates an access token and returns the claims.
func (s *Service) ValidateToken(token string) (*Claims, error) {
	return s.jwt.ValidateAccessToken(token)
}
