package payment

import (
	"time"

	"github.com/google/uuid"
)

// CustomerInput carries the customer identity for a charge.
type CustomerInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Document string `json:"document" binding:"required"` // CPF or CNPJ, digits only
	Phone    string `json:"phone,omitempty"`
}

// CardInput carries raw card data for card charges.
type CardInput struct {
	Number       string `json:"number" binding:"required"`
	HolderName   string `json:"holder_name" binding:"required"`
	ExpiryMonth  int    `json:"expiry_month" binding:"required"`
	ExpiryYear   int    `json:"expiry_year" binding:"required"`
	SecurityCode string `json:"security_code" binding:"required"`
}

// CreatePaymentRequest is the payload for POST /payments.
type CreatePaymentRequest struct {
	Amount        int64         `json:"amount" binding:"required"`
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required"`
	Customer      CustomerInput `json:"customer" binding:"required"`
	Description   string        `json:"description,omitempty"`
	Card          *CardInput    `json:"credit_card,omitempty"`
}

// PixResponse carries the pix payment instructions returned to the caller.
type PixResponse struct {
	QRCode    string     `json:"qr_code"`
	QRCodeURL string     `json:"qr_code_url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// BoletoResponse carries the boleto payment instructions.
type BoletoResponse struct {
	Line    string     `json:"line"`
	PDFURL  string     `json:"pdf_url,omitempty"`
	Barcode string     `json:"barcode,omitempty"`
	DueAt   *time.Time `json:"due_at,omitempty"`
}

// CreatePaymentResponse is the payload returned for a created payment.
type CreatePaymentResponse struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	ExternalID    string            `json:"external_id"`
	Status        TransactionStatus `json:"status"`
	Amount        int64             `json:"amount"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Provider      Provider          `json:"provider"`
	Pix           *PixResponse      `json:"pix,omitempty"`
	Boleto        *BoletoResponse   `json:"boleto,omitempty"`
	ClientSecret  string            `json:"client_secret,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// TransactionResponse is the read-model view of a ledger row.
type TransactionResponse struct {
	ID            uuid.UUID         `json:"id"`
	ExternalID    string            `json:"external_id"`
	Provider      Provider          `json:"provider"`
	Amount        int64             `json:"amount"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Status        TransactionStatus `json:"status"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	Description   string            `json:"description,omitempty"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	RefundedAt    *time.Time        `json:"refunded_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ListTransactionsResponse wraps a paginated transaction listing.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// WebhookResult reports what a processed webhook did to the ledger.
type WebhookResult struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	OldStatus     TransactionStatus `json:"old_status"`
	NewStatus     TransactionStatus `json:"new_status"`
	Duplicate     bool              `json:"-"`
}

func toTransactionResponse(tx *Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            tx.ID,
		ExternalID:    tx.ExternalID,
		Provider:      tx.PaymentProvider,
		Amount:        tx.Amount,
		PaymentMethod: tx.PaymentMethod,
		Status:        tx.Status,
		CustomerName:  tx.CustomerName,
		CustomerEmail: tx.CustomerEmail,
		Description:   tx.Description,
		PaidAt:        tx.PaidAt,
		RefundedAt:    tx.RefundedAt,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
}
