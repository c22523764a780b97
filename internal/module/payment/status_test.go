package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionStatus_IsValid(t *testing.T) {
	valid := []TransactionStatus{
		StatusPending, StatusProcessing, StatusPaid, StatusFailed,
		StatusCancelled, StatusRefunded, StatusChargeback,
	}
	for _, s := range valid {
		t.Run(string(s), func(t *testing.T) {
			assert.True(t, s.IsValid())
		})
	}

	assert.False(t, TransactionStatus("").IsValid())
	assert.False(t, TransactionStatus("approved").IsValid())
}

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    TransactionStatus
		to      TransactionStatus
		allowed bool
	}{
		{"pending to processing", StatusPending, StatusProcessing, true},
		{"pending to paid", StatusPending, StatusPaid, true},
		{"pending to failed", StatusPending, StatusFailed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"processing to paid", StatusProcessing, StatusPaid, true},
		{"processing to failed", StatusProcessing, StatusFailed, true},
		{"processing to cancelled", StatusProcessing, StatusCancelled, true},
		{"processing to pending is backward", StatusProcessing, StatusPending, false},
		{"paid to pending is backward", StatusPaid, StatusPending, false},
		{"paid to processing is backward", StatusPaid, StatusProcessing, false},
		{"paid to failed is backward", StatusPaid, StatusFailed, false},
		{"failed to paid is illegal", StatusFailed, StatusPaid, false},
		{"cancelled to paid is illegal", StatusCancelled, StatusPaid, false},
		{"same status is a no-op", StatusPaid, StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransactionStatus_ReversalsFromAnyState(t *testing.T) {
	all := []TransactionStatus{
		StatusPending, StatusProcessing, StatusPaid, StatusFailed, StatusCancelled,
	}

	for _, from := range all {
		t.Run(string(from), func(t *testing.T) {
			assert.True(t, from.CanTransitionTo(StatusRefunded))
			assert.True(t, from.CanTransitionTo(StatusChargeback))
		})
	}

	// Reversals can even follow each other: a chargeback can land after a
	// refund was already recorded.
	assert.True(t, StatusRefunded.CanTransitionTo(StatusChargeback))
	assert.True(t, StatusChargeback.CanTransitionTo(StatusRefunded))
}

func TestTransactionStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
	assert.True(t, StatusChargeback.IsTerminal())
}

func TestProvider_SupportsMethod(t *testing.T) {
	tests := []struct {
		provider Provider
		method   PaymentMethod
		want     bool
	}{
		{ProviderPagarme, MethodPix, true},
		{ProviderPagarme, MethodBoleto, true},
		{ProviderPagarme, MethodCreditCard, true},
		{ProviderPagarme, MethodDebitCard, false},
		{ProviderStripe, MethodCreditCard, true},
		{ProviderStripe, MethodDebitCard, true},
		{ProviderStripe, MethodPix, false},
		{ProviderStripe, MethodBoleto, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider)+"/"+string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.provider.SupportsMethod(tt.method))
		})
	}
}
