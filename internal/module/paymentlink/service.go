package paymentlink

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/altopay/gateway/internal/module/payment"
)

// Service defines the interface for payment link business logic.
type Service interface {
	CreateLink(ctx context.Context, merchantID uuid.UUID, req *CreateLinkRequest) (*LinkResponse, error)
	ListLinks(ctx context.Context, merchantID uuid.UUID) ([]*LinkResponse, error)
	DeactivateLink(ctx context.Context, merchantID, id uuid.UUID) error

	// GetPublicLink returns the payer-facing view of an active link.
	GetPublicLink(ctx context.Context, slug string) (*PublicLinkResponse, error)

	// PayLink creates a payment from the link's preset. The amount and the
	// receiving merchant come from the link, the payer only picks a method
	// and identifies themselves.
	PayLink(ctx context.Context, slug string, req *PayLinkRequest) (*payment.CreatePaymentResponse, error)
}

type service struct {
	repo     Repository
	payments payment.Service
	logger   *zap.Logger
}

// NewService creates a new payment link service.
func NewService(repo Repository, payments payment.Service, logger *zap.Logger) Service {
	return &service{repo: repo, payments: payments, logger: logger}
}

func (s *service) CreateLink(ctx context.Context, merchantID uuid.UUID, req *CreateLinkRequest) (*LinkResponse, error) {
	if req.Amount <= 0 {
		return nil, payment.ErrInvalidAmount
	}
	if len(req.PaymentMethods) == 0 {
		return nil, ErrNoMethods
	}
	for _, m := range req.PaymentMethods {
		if !payment.PaymentMethod(m).IsValid() {
			return nil, fmt.Errorf("%w: %s", payment.ErrInvalidPaymentMethod, m)
		}
	}

	slug, err := newSlug()
	if err != nil {
		return nil, fmt.Errorf("generate slug: %w", err)
	}

	link := &PaymentLink{
		MerchantID:     merchantID,
		Slug:           slug,
		Title:          req.Title,
		Description:    req.Description,
		Amount:         req.Amount,
		PaymentMethods: req.PaymentMethods,
		Active:         true,
		ExpiresAt:      req.ExpiresAt,
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("payment link created",
		zap.String("link_id", link.ID.String()),
		zap.String("slug", slug),
		zap.Int64("amount", req.Amount))
	return toLinkResponse(link), nil
}

func (s *service) ListLinks(ctx context.Context, merchantID uuid.UUID) ([]*LinkResponse, error) {
	links, err := s.repo.ListLinks(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	out := make([]*LinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, toLinkResponse(l))
	}
	return out, nil
}

func (s *service) DeactivateLink(ctx context.Context, merchantID, id uuid.UUID) error {
	ok, err := s.repo.DeactivateLink(ctx, merchantID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLinkNotFound
	}
	s.logger.Info("payment link deactivated", zap.String("link_id", id.String()))
	return nil
}

func (s *service) GetPublicLink(ctx context.Context, slug string) (*PublicLinkResponse, error) {
	link, err := s.usableLink(ctx, slug)
	if err != nil {
		return nil, err
	}
	return toPublicLinkResponse(link), nil
}

func (s *service) PayLink(ctx context.Context, slug string, req *PayLinkRequest) (*payment.CreatePaymentResponse, error) {
	link, err := s.usableLink(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !link.AllowsMethod(string(req.PaymentMethod)) {
		return nil, ErrMethodNotAllowed
	}

	return s.payments.CreatePayment(ctx, link.MerchantID, &payment.CreatePaymentRequest{
		Amount:        link.Amount,
		PaymentMethod: req.PaymentMethod,
		Customer:      req.Customer,
		Description:   link.Title,
		Card:          req.Card,
	})
}

func (s *service) usableLink(ctx context.Context, slug string) (*PaymentLink, error) {
	link, err := s.repo.GetLinkBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !link.Active {
		return nil, ErrLinkInactive
	}
	if link.IsExpired() {
		return nil, ErrLinkExpired
	}
	return link, nil
}

// newSlug generates a random URL-safe link slug.
func newSlug() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
