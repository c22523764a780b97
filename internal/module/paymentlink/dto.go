package paymentlink

import (
	"time"

	"github.com/google/uuid"

	"github.com/altopay/gateway/internal/module/payment"
)

// CreateLinkRequest is the payload for POST /links.
type CreateLinkRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description,omitempty"`
	Amount         int64      `json:"amount" binding:"required"`
	PaymentMethods []string   `json:"payment_methods" binding:"required"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// LinkResponse is the view of a payment link returned to its owner.
type LinkResponse struct {
	ID             uuid.UUID  `json:"id"`
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Amount         int64      `json:"amount"`
	PaymentMethods []string   `json:"payment_methods"`
	Active         bool       `json:"active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PublicLinkResponse is the view served to payers on GET /links/:slug.
// It omits ownership data.
type PublicLinkResponse struct {
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Amount         int64    `json:"amount"`
	PaymentMethods []string `json:"payment_methods"`
}

// PayLinkRequest is the payload for POST /links/:slug/pay. Amount comes from
// the link, never from the payer.
type PayLinkRequest struct {
	PaymentMethod payment.PaymentMethod `json:"payment_method" binding:"required"`
	Customer      payment.CustomerInput `json:"customer" binding:"required"`
	Card          *payment.CardInput    `json:"credit_card,omitempty"`
}

func toLinkResponse(l *PaymentLink) *LinkResponse {
	return &LinkResponse{
		ID:             l.ID,
		Slug:           l.Slug,
		Title:          l.Title,
		Description:    l.Description,
		Amount:         l.Amount,
		PaymentMethods: l.PaymentMethods,
		Active:         l.Active,
		ExpiresAt:      l.ExpiresAt,
		CreatedAt:      l.CreatedAt,
	}
}

func toPublicLinkResponse(l *PaymentLink) *PublicLinkResponse {
	return &PublicLinkResponse{
		Slug:           l.Slug,
		Title:          l.Title,
		Description:    l.Description,
		Amount:         l.Amount,
		PaymentMethods: l.PaymentMethods,
	}
}
