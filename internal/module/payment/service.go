package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/altopay/gateway/internal/module/payment/provider"
	"github.com/altopay/gateway/internal/utils/metrics"
)

// Service defines the interface for payment business logic.
type Service interface {
	CreatePayment(ctx context.Context, merchantID uuid.UUID, req *CreatePaymentRequest) (*CreatePaymentResponse, error)
	GetTransaction(ctx context.Context, merchantID, id uuid.UUID) (*TransactionResponse, error)
	ListTransactions(ctx context.Context, merchantID uuid.UUID, limit, offset int) (*ListTransactionsResponse, error)

	// ApplyProviderEvent runs one webhook delivery through the
	// reconciliation pipeline: record it in the event ledger, map the event
	// type onto the status machine, and conditionally update the transaction.
	ApplyProviderEvent(ctx context.Context, prov Provider, eventID, eventType, objectID string, payload []byte) (*WebhookResult, error)

	ListActivityLogs(ctx context.Context, limit int) ([]*ActivityLog, error)
}

type service struct {
	repo     Repository
	registry *ProviderRegistry
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a new payment service.
func NewService(repo Repository, registry *ProviderRegistry, m *metrics.Metrics, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		registry: registry,
		metrics:  m,
		logger:   logger,
	}
}

// CreatePayment validates the request, routes it to a provider, creates the
// charge and records the resulting transaction in the ledger.
//
// The provider call happens before the ledger insert: a provider failure
// leaves no ledger row. If the insert itself fails after a successful charge
// the charge is not compensated; webhook deliveries for the missing row are
// turned away without being recorded, so the provider keeps retrying while
// an operator repairs the ledger.
func (s *service) CreatePayment(ctx context.Context, merchantID uuid.UUID, req *CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !req.PaymentMethod.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}
	doc := normalizeDocument(req.Customer.Document)
	if len(doc) != 11 && len(doc) != 14 {
		return nil, ErrInvalidDocument
	}

	provName, prov, err := s.registry.RouteMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if !provName.SupportsMethod(req.PaymentMethod) {
		return nil, ErrUnsupportedMethod
	}

	txID := uuid.New()
	chargeReq := &provider.ChargeRequest{
		ReferenceID: txID.String(),
		Amount:      req.Amount,
		Method:      string(req.PaymentMethod),
		Customer: provider.Customer{
			Name:     req.Customer.Name,
			Email:    req.Customer.Email,
			Document: doc,
			Phone:    req.Customer.Phone,
		},
		Description: req.Description,
	}
	if req.Card != nil {
		chargeReq.Card = &provider.Card{
			Number:     req.Card.Number,
			HolderName: req.Card.HolderName,
			ExpMonth:   req.Card.ExpiryMonth,
			ExpYear:    req.Card.ExpiryYear,
			CVV:        req.Card.SecurityCode,
		}
	}

	start := time.Now()
	result, err := prov.CreateCharge(ctx, chargeReq)
	if s.metrics != nil {
		s.metrics.ProviderRequestDuration.
			WithLabelValues(string(provName), "create_charge").
			Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.Error("provider charge failed",
			zap.String("provider", string(provName)),
			zap.String("method", string(req.PaymentMethod)),
			zap.Int64("amount", req.Amount),
			zap.Error(err))
		return nil, &ProviderRejectedError{Provider: provName, Message: err.Error()}
	}

	status := TransactionStatus(result.Status)
	if !status.IsValid() {
		status = StatusPending
	}

	tx := &Transaction{
		ID:              txID,
		MerchantID:      merchantID,
		ExternalID:      result.ExternalID,
		Amount:          req.Amount,
		PaymentMethod:   req.PaymentMethod,
		PaymentProvider: provName,
		Status:          status,
		CustomerName:    req.Customer.Name,
		CustomerEmail:   req.Customer.Email,
		CustomerDoc:     doc,
		CustomerPhone:   req.Customer.Phone,
		Description:     req.Description,
	}
	if status == StatusPaid {
		now := time.Now()
		tx.PaidAt = &now
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		// The charge exists at the provider but not in our ledger.
		s.logger.Error("ledger insert failed after successful charge",
			zap.String("provider", string(provName)),
			zap.String("external_id", result.ExternalID),
			zap.String("transaction_id", txID.String()),
			zap.Error(err))
		return nil, err
	}

	s.audit(ctx, "payment.created", "transaction", txID.String(), map[string]interface{}{
		"provider": provName,
		"method":   req.PaymentMethod,
		"amount":   req.Amount,
		"status":   status,
	})
	if s.metrics != nil {
		s.metrics.RecordPaymentCreated(string(provName), string(req.PaymentMethod), string(status), req.Amount)
	}

	s.logger.Info("payment created",
		zap.String("transaction_id", txID.String()),
		zap.String("provider", string(provName)),
		zap.String("method", string(req.PaymentMethod)),
		zap.String("status", string(status)),
		zap.Int64("amount", req.Amount))

	resp := &CreatePaymentResponse{
		TransactionID: txID,
		ExternalID:    result.ExternalID,
		Status:        status,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Provider:      provName,
		ClientSecret:  result.ClientSecret,
		CreatedAt:     tx.CreatedAt,
	}
	if result.Pix != nil {
		resp.Pix = &PixResponse{
			QRCode:    result.Pix.QRCode,
			QRCodeURL: result.Pix.QRCodeURL,
			ExpiresAt: result.Pix.ExpiresAt,
		}
	}
	if result.Boleto != nil {
		resp.Boleto = &BoletoResponse{
			Line:    result.Boleto.Line,
			Barcode: result.Boleto.Barcode,
			PDFURL:  result.Boleto.PDFURL,
			DueAt:   result.Boleto.DueAt,
		}
	}
	return resp, nil
}

func (s *service) GetTransaction(ctx context.Context, merchantID, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	// Merchants only see their own ledger.
	if tx.MerchantID != merchantID {
		return nil, ErrTransactionNotFound
	}
	return toTransactionResponse(tx), nil
}

func (s *service) ListTransactions(ctx context.Context, merchantID uuid.UUID, limit, offset int) (*ListTransactionsResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	txs, err := s.repo.ListTransactions(ctx, merchantID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]*TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return &ListTransactionsResponse{Transactions: out, Limit: limit, Offset: offset}, nil
}

// statusUpdateAttempts bounds the CAS retry loop when concurrent deliveries
// race on the same transaction.
const statusUpdateAttempts = 3

func (s *service) ApplyProviderEvent(ctx context.Context, prov Provider, eventID, eventType, objectID string, payload []byte) (*WebhookResult, error) {
	event := &WebhookEvent{
		Provider:  prov,
		EventID:   eventID,
		EventType: eventType,
		ObjectID:  objectID,
		Data:      string(payload),
	}
	if err := s.repo.CreateWebhookEvent(ctx, event); err != nil {
		if errors.Is(err, ErrWebhookEventExists) {
			if s.metrics != nil {
				s.metrics.WebhookDuplicatesTotal.WithLabelValues(string(prov)).Inc()
				s.metrics.RecordWebhookEvent(string(prov), eventType, "duplicate")
			}
			s.logger.Info("duplicate webhook delivery skipped",
				zap.String("provider", string(prov)),
				zap.String("event_id", eventID),
				zap.String("event_type", eventType))
			return nil, ErrWebhookEventExists
		}
		return nil, err
	}

	result, err := s.applyEvent(ctx, prov, eventType, objectID)

	if errors.Is(err, ErrTransactionNotFound) {
		// The ledger has no row for this object yet. Drop the event so the
		// provider's retry can apply once the row exists, instead of hitting
		// the dedup ledger and being acknowledged without effect.
		if delErr := s.repo.DeleteWebhookEvent(ctx, event.ID); delErr != nil {
			s.logger.Warn("failed to drop unmatched webhook event",
				zap.String("event_id", eventID), zap.Error(delErr))
		}
	} else if markErr := s.repo.MarkWebhookEventProcessed(ctx, event.ID, err); markErr != nil {
		s.logger.Warn("failed to mark webhook event processed",
			zap.String("event_id", eventID), zap.Error(markErr))
	}

	if s.metrics != nil {
		s.metrics.RecordWebhookEvent(string(prov), eventType, webhookResultLabel(result, err))
	}
	return result, err
}

func (s *service) applyEvent(ctx context.Context, prov Provider, eventType, objectID string) (*WebhookResult, error) {
	tx, err := s.repo.GetTransactionByExternalID(ctx, prov, objectID)
	if err != nil {
		return nil, err
	}

	trans := MapEvent(prov, eventType)
	if !trans.Known {
		s.logger.Info("unhandled webhook event type",
			zap.String("provider", string(prov)),
			zap.String("event_type", eventType),
			zap.String("transaction_id", tx.ID.String()))
		return &WebhookResult{TransactionID: tx.ID, OldStatus: tx.Status, NewStatus: tx.Status}, nil
	}

	current := tx.Status
	for attempt := 0; attempt < statusUpdateAttempts; attempt++ {
		if current == trans.Status || !current.CanTransitionTo(trans.Status) {
			// Same status or a backward edge: out-of-order or replayed
			// delivery, the ledger stays where it is.
			return &WebhookResult{TransactionID: tx.ID, OldStatus: current, NewStatus: current}, nil
		}

		var paidAt, refundedAt *time.Time
		now := time.Now()
		if trans.SetPaidAt {
			paidAt = &now
		}
		if trans.SetRefundedAt {
			refundedAt = &now
		}

		updated, err := s.repo.UpdateTransactionStatus(ctx, tx.ID, current, trans.Status, paidAt, refundedAt)
		if err != nil {
			return nil, err
		}
		if updated {
			s.audit(ctx, "transaction.status_changed", "transaction", tx.ID.String(), map[string]interface{}{
				"provider":   prov,
				"event_type": eventType,
				"from":       current,
				"to":         trans.Status,
			})
			if s.metrics != nil {
				s.metrics.RecordStatusTransition(string(prov), string(current), string(trans.Status))
			}
			s.logger.Info("transaction status updated",
				zap.String("transaction_id", tx.ID.String()),
				zap.String("provider", string(prov)),
				zap.String("event_type", eventType),
				zap.String("from", string(current)),
				zap.String("to", string(trans.Status)))
			return &WebhookResult{TransactionID: tx.ID, OldStatus: current, NewStatus: trans.Status}, nil
		}

		// Guard did not match: a concurrent delivery moved the row.
		// Re-read and re-evaluate against the fresh status.
		fresh, err := s.repo.GetTransaction(ctx, tx.ID)
		if err != nil {
			return nil, err
		}
		current = fresh.Status
	}

	return nil, fmt.Errorf("status update contention on transaction %s", tx.ID)
}

func (s *service) ListActivityLogs(ctx context.Context, limit int) ([]*ActivityLog, error) {
	return s.repo.ListActivityLogs(ctx, limit)
}

// audit appends an activity log entry. Audit failures are logged but never
// fail the operation being audited.
func (s *service) audit(ctx context.Context, action, resourceType, resourceID string, details map[string]interface{}) {
	data, err := json.Marshal(details)
	if err != nil {
		data = []byte("{}")
	}
	entry := &ActivityLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      string(data),
	}
	if err := s.repo.AppendActivityLog(ctx, entry); err != nil {
		s.logger.Warn("failed to append activity log",
			zap.String("action", action),
			zap.String("resource_id", resourceID),
			zap.Error(err))
	}
}

func webhookResultLabel(result *WebhookResult, err error) string {
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		return "not_found"
	case err != nil:
		return "error"
	case result != nil && result.OldStatus != result.NewStatus:
		return "applied"
	default:
		return "no_op"
	}
}

// normalizeDocument strips formatting characters from a CPF/CNPJ so that
// classification by length sees digits only.
func normalizeDocument(doc string) string {
	var b strings.Builder
	b.Grow(len(doc))
	for _, r := range doc {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}
