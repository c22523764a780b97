package paymentlink

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for payment link data access.
type Repository interface {
	CreateLink(ctx context.Context, link *PaymentLink) error
	GetLink(ctx context.Context, id uuid.UUID) (*PaymentLink, error)
	GetLinkBySlug(ctx context.Context, slug string) (*PaymentLink, error)
	ListLinks(ctx context.Context, merchantID uuid.UUID) ([]*PaymentLink, error)
	DeactivateLink(ctx context.Context, merchantID, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new payment link repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateLink(ctx context.Context, link *PaymentLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("create payment link: %w", err)
	}
	return nil
}

func (r *repository) GetLink(ctx context.Context, id uuid.UUID) (*PaymentLink, error) {
	var link PaymentLink
	err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("get payment link: %w", err)
	}
	return &link, nil
}

func (r *repository) GetLinkBySlug(ctx context.Context, slug string) (*PaymentLink, error) {
	var link PaymentLink
	err := r.db.WithContext(ctx).First(&link, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("get payment link by slug: %w", err)
	}
	return &link, nil
}

func (r *repository) ListLinks(ctx context.Context, merchantID uuid.UUID) ([]*PaymentLink, error) {
	var links []*PaymentLink
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("list payment links: %w", err)
	}
	return links, nil
}

func (r *repository) DeactivateLink(ctx context.Context, merchantID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&PaymentLink{}).
		Where("id = ? AND merchant_id = ? AND active", id, merchantID).
		Update("active", false)
	if res.Error != nil {
		return false, fmt.Errorf("deactivate payment link: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
