package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for merchant data access.
type Repository interface {
	CreateMerchant(ctx context.Context, merchant *Merchant) error
	GetMerchant(ctx context.Context, id uuid.UUID) (*Merchant, error)
	GetMerchantByEmail(ctx context.Context, email string) (*Merchant, error)
	GetMerchantByAPIKeyHash(ctx context.Context, keyHash string) (*Merchant, error)
	UpdateMerchant(ctx context.Context, merchant *Merchant) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new auth repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateMerchant(ctx context.Context, merchant *Merchant) error {
	if err := r.db.WithContext(ctx).Create(merchant).Error; err != nil {
		return fmt.Errorf("create merchant: %w", err)
	}
	return nil
}

func (r *repository) GetMerchant(ctx context.Context, id uuid.UUID) (*Merchant, error) {
	var merchant Merchant
	err := r.db.WithContext(ctx).First(&merchant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("get merchant: %w", err)
	}
	return &merchant, nil
}

func (r *repository) GetMerchantByEmail(ctx context.Context, email string) (*Merchant, error) {
	var merchant Merchant
	err := r.db.WithContext(ctx).First(&merchant, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("get merchant by email: %w", err)
	}
	return &merchant, nil
}

func (r *repository) GetMerchantByAPIKeyHash(ctx context.Context, keyHash string) (*Merchant, error) {
	var merchant Merchant
	err := r.db.WithContext(ctx).First(&merchant, "api_key_hash = ?", keyHash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("get merchant by api key: %w", err)
	}
	return &merchant, nil
}

func (r *repository) UpdateMerchant(ctx context.Context, merchant *Merchant) error {
	if err := r.db.WithContext(ctx).Save(merchant).Error; err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	return nil
}
