package payment

// Transition is the outcome of mapping a provider event type onto the
// canonical status set. Known is false for event types the gateway does not
// handle; those leave the transaction unchanged.
type Transition struct {
	Status        TransactionStatus
	SetPaidAt     bool
	SetRefundedAt bool
	Known         bool
}

// unchanged is the explicit no-op transition for unhandled event types.
var unchanged = Transition{}

// MapPagarmeEvent maps a Pagar.me webhook event type to a canonical transition.
// Pagar.me emits paired order.* and charge.* events for the same state change;
// both map to the same status so whichever arrives first wins and the other
// becomes an idempotent no-op.
func MapPagarmeEvent(eventType string) Transition {
	switch eventType {
	case "charge.paid", "order.paid":
		return Transition{Status: StatusPaid, SetPaidAt: true, Known: true}
	case "charge.pending", "order.pending":
		return Transition{Status: StatusPending, Known: true}
	case "charge.failed", "order.payment_failed":
		return Transition{Status: StatusFailed, Known: true}
	case "charge.refunded", "order.refunded":
		return Transition{Status: StatusRefunded, SetRefundedAt: true, Known: true}
	default:
		return unchanged
	}
}

// MapStripeEvent maps a Stripe webhook event type to a canonical transition.
func MapStripeEvent(eventType string) Transition {
	switch eventType {
	case "payment_intent.succeeded":
		return Transition{Status: StatusPaid, SetPaidAt: true, Known: true}
	case "payment_intent.payment_failed":
		return Transition{Status: StatusFailed, Known: true}
	case "payment_intent.canceled":
		return Transition{Status: StatusCancelled, Known: true}
	case "charge.refunded":
		return Transition{Status: StatusRefunded, SetRefundedAt: true, Known: true}
	case "charge.dispute.created":
		return Transition{Status: StatusChargeback, Known: true}
	default:
		return unchanged
	}
}

// MapEvent maps an event type for the given provider.
func MapEvent(provider Provider, eventType string) Transition {
	switch provider {
	case ProviderPagarme:
		return MapPagarmeEvent(eventType)
	case ProviderStripe:
		return MapStripeEvent(eventType)
	default:
		return unchanged
	}
}
