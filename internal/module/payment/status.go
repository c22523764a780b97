package payment

// TransactionStatus represents the canonical status of a transaction.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusPaid       TransactionStatus = "paid"
	StatusFailed     TransactionStatus = "failed"
	StatusCancelled  TransactionStatus = "cancelled"
	StatusRefunded   TransactionStatus = "refunded"
	StatusChargeback TransactionStatus = "chargeback"
)

// IsValid reports whether s is a known status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusPaid, StatusFailed,
		StatusCancelled, StatusRefunded, StatusChargeback:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status is a terminal state.
// Terminal states only admit reversal transitions.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case StatusPaid, StatusFailed, StatusCancelled, StatusRefunded, StatusChargeback:
		return true
	default:
		return false
	}
}

// IsReversal returns true for statuses that model a reversal of funds.
// Refunds and chargebacks can arrive from the provider after any state, so
// these transitions are always legal.
func (s TransactionStatus) IsReversal() bool {
	return s == StatusRefunded || s == StatusChargeback
}

// CanTransitionTo returns true if the status can transition to the target.
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	if target == s {
		return false
	}
	if target.IsReversal() {
		return true
	}

	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusPaid ||
			target == StatusFailed || target == StatusCancelled
	case StatusProcessing:
		return target == StatusPaid || target == StatusFailed || target == StatusCancelled
	default:
		// paid reaches refunded/chargeback through the reversal rule above;
		// the remaining terminal states have no other outgoing edges
		return false
	}
}

// PaymentMethod represents a payment method type.
type PaymentMethod string

const (
	MethodPix        PaymentMethod = "pix"
	MethodCreditCard PaymentMethod = "credit_card"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodBoleto     PaymentMethod = "boleto"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodPix, MethodCreditCard, MethodDebitCard, MethodBoleto:
		return true
	default:
		return false
	}
}

// Provider represents a payment provider.
type Provider string

const (
	ProviderPagarme Provider = "pagarme"
	ProviderStripe  Provider = "stripe"
)

// SupportsMethod reports whether the provider can charge the given method.
func (p Provider) SupportsMethod(m PaymentMethod) bool {
	switch p {
	case ProviderPagarme:
		return m == MethodPix || m == MethodCreditCard || m == MethodBoleto
	case ProviderStripe:
		return m == MethodCreditCard || m == MethodDebitCard
	default:
		return false
	}
}
