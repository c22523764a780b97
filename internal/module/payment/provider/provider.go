package provider

import (
	"context"
	"time"
)

// Canonical charge statuses returned by adapters. Adapters normalize the
// provider's own status vocabulary into this set at creation time; the
// reconciliation machinery owns every later change.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusPaid       = "paid"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Customer identifies the payer of a charge.
type Customer struct {
	Name     string
	Email    string
	Document string // digits-only CPF or CNPJ
	Phone    string
}

// IsCompany returns true if the document is a CNPJ.
func (c Customer) IsCompany() bool {
	return len(c.Document) == 14
}

// Card holds credit/debit card data for card charges.
type Card struct {
	Number     string
	HolderName string
	ExpMonth   int
	ExpYear    int
	CVV        string
}

// ChargeRequest is a normalized request to create a charge with a provider.
type ChargeRequest struct {
	ReferenceID string // our transaction id, echoed back by the provider
	Amount      int64  // minor currency units
	Method      string // pix, credit_card, debit_card, boleto
	Customer    Customer
	Description string
	Card        *Card
}

// PixData carries the information the payer needs to complete a pix charge.
type PixData struct {
	QRCode    string     `json:"qr_code"`
	QRCodeURL string     `json:"qr_code_url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// BoletoData carries the information the payer needs to pay a boleto.
type BoletoData struct {
	Line    string     `json:"line"`
	Barcode string     `json:"barcode,omitempty"`
	PDFURL  string     `json:"pdf_url,omitempty"`
	DueAt   *time.Time `json:"due_at,omitempty"`
}

// ChargeResult is the normalized outcome of a charge creation.
type ChargeResult struct {
	ExternalID   string // provider-assigned id (order id or payment intent id)
	Status       string // canonical status, see constants above
	ClientSecret string // Stripe client secret for frontend confirmation
	Pix          *PixData
	Boleto       *BoletoData
}

// Provider defines the interface for payment providers.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// CreateCharge creates a charge with the provider and returns the
	// normalized result. A returned error means no charge was created
	// (or its state is unknown) and no ledger row must be written.
	CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)

	// VerifyWebhookSignature verifies an inbound webhook payload.
	// Implementations with no configured secret accept any payload.
	VerifyWebhookSignature(payload []byte, signature string) error
}
