package payment

import "errors"

// Module errors.
var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidDocument      = errors.New("document must be a CPF (11 digits) or CNPJ (14 digits)")
	ErrUnsupportedMethod    = errors.New("payment method not supported by provider")
	ErrWebhookEventExists   = errors.New("webhook event already processed")
	ErrProviderNotFound     = errors.New("payment provider not found")
)

// ProviderRejectedError is returned when the upstream provider refuses to
// create a charge. It carries the provider's own message so the caller sees
// the rejection reason unchanged.
type ProviderRejectedError struct {
	Provider Provider
	Message  string
}

func (e *ProviderRejectedError) Error() string {
	return e.Message
}
