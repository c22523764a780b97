package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for payment data access.
type Repository interface {
	// Transaction operations
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetTransactionByExternalID(ctx context.Context, prov Provider, externalID string) (*Transaction, error)
	ListTransactions(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Transaction, error)

	// UpdateTransactionStatus performs the conditional status update that the
	// reconciliation machinery relies on: the row is changed only while its
	// status still equals from. Returns false when the guard did not match,
	// which means a concurrent delivery already moved the row.
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, from, to TransactionStatus, paidAt, refundedAt *time.Time) (bool, error)

	// Webhook event operations
	CreateWebhookEvent(ctx context.Context, event *WebhookEvent) error
	MarkWebhookEventProcessed(ctx context.Context, id uuid.UUID, processErr error) error
	DeleteWebhookEvent(ctx context.Context, id uuid.UUID) error

	// Activity log operations
	AppendActivityLog(ctx context.Context, entry *ActivityLog) error
	ListActivityLogs(ctx context.Context, limit int) ([]*ActivityLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new payment repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// --- Transaction Operations ---

func (r *repository) CreateTransaction(ctx context.Context, tx *Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *repository) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var tx Transaction
	err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &tx, nil
}

func (r *repository) GetTransactionByExternalID(ctx context.Context, prov Provider, externalID string) (*Transaction, error) {
	var tx Transaction
	err := r.db.WithContext(ctx).
		First(&tx, "payment_provider = ? AND external_id = ?", prov, externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction by external id: %w", err)
	}
	return &tx, nil
}

func (r *repository) ListTransactions(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var txs []*Transaction
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *repository) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, from, to TransactionStatus, paidAt, refundedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	// Timestamps are only ever set, never cleared, so a replayed event
	// cannot disturb the value written by the first application.
	if paidAt != nil {
		updates["paid_at"] = gorm.Expr("COALESCE(paid_at, ?)", *paidAt)
	}
	if refundedAt != nil {
		updates["refunded_at"] = gorm.Expr("COALESCE(refunded_at, ?)", *refundedAt)
	}

	res := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("update transaction status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// --- Webhook Event Operations ---

func (r *repository) CreateWebhookEvent(ctx context.Context, event *WebhookEvent) error {
	err := r.db.WithContext(ctx).Create(event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrWebhookEventExists
		}
		return fmt.Errorf("create webhook event: %w", err)
	}
	return nil
}

func (r *repository) MarkWebhookEventProcessed(ctx context.Context, id uuid.UUID, processErr error) error {
	updates := map[string]interface{}{
		"processed":    true,
		"processed_at": gorm.Expr("NOW()"),
	}
	if processErr != nil {
		errStr := processErr.Error()
		updates["error"] = errStr
	}
	err := r.db.WithContext(ctx).
		Model(&WebhookEvent{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	return nil
}

func (r *repository) DeleteWebhookEvent(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Delete(&WebhookEvent{}, "id = ?", id).Error
	if err != nil {
		return fmt.Errorf("delete webhook event: %w", err)
	}
	return nil
}

// --- Activity Log Operations ---

func (r *repository) AppendActivityLog(ctx context.Context, entry *ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}

func (r *repository) ListActivityLogs(ctx context.Context, limit int) ([]*ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var logs []*ActivityLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return logs, nil
}
