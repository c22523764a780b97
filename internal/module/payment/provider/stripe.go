package provider

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeProvider implements the Provider interface for Stripe.
type StripeProvider struct {
	apiKey        string
	webhookSecret string
}

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

// NewStripeProvider creates a new Stripe provider.
func NewStripeProvider(config *StripeConfig) *StripeProvider {
	stripe.Key = config.APIKey
	return &StripeProvider{
		apiKey:        config.APIKey,
		webhookSecret: config.WebhookSecret,
	}
}

// Name returns the provider name.
func (p *StripeProvider) Name() string {
	return "stripe"
}

// CreateCharge creates a PaymentIntent for the request.
func (p *StripeProvider) CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(string(stripe.CurrencyBRL)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"reference_id": req.ReferenceID,
		},
	}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.Customer.Email != "" {
		params.ReceiptEmail = stripe.String(req.Customer.Email)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &ChargeResult{
		ExternalID:   pi.ID,
		Status:       MapStripeIntentStatus(string(pi.Status)),
		ClientSecret: pi.ClientSecret,
	}, nil
}

// MapStripeIntentStatus normalizes a PaymentIntent status.
func MapStripeIntentStatus(status string) string {
	switch status {
	case "succeeded":
		return StatusPaid
	case "processing":
		return StatusProcessing
	case "canceled":
		return StatusCancelled
	case "payment_failed":
		return StatusFailed
	default:
		return StatusPending
	}
}

// VerifyWebhookSignature verifies a Stripe webhook signature.
// With no secret configured the payload is accepted unverified.
func (p *StripeProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	if p.webhookSecret == "" {
		return nil
	}
	// The event's api_version follows the Stripe account settings, not the
	// SDK pin, so a mismatch must not fail verification.
	_, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	return err
}
