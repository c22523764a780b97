package payment

import (
	"time"

	"github.com/google/uuid"
)

// Transaction represents one payment attempt in the ledger.
// Rows are append-only: status is the only field mutated after creation,
// and only by the reconciliation path.
type Transaction struct {
	ID              uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MerchantID      uuid.UUID         `json:"merchant_id" gorm:"type:uuid;not null;index"`
	ExternalID      string            `json:"external_id" gorm:"uniqueIndex:idx_provider_external;not null"`
	Amount          int64             `json:"amount" gorm:"not null"` // minor currency units
	PaymentMethod   PaymentMethod     `json:"payment_method" gorm:"not null"`
	PaymentProvider Provider          `json:"payment_provider" gorm:"uniqueIndex:idx_provider_external;not null"`
	Status          TransactionStatus `json:"status" gorm:"not null;default:pending;index"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerDoc     string            `json:"customer_document" gorm:"column:customer_document"`
	CustomerPhone   string            `json:"customer_phone,omitempty"`
	Description     string            `json:"description,omitempty"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
	RefundedAt      *time.Time        `json:"refunded_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// TableName returns the database table name.
func (Transaction) TableName() string {
	return "transactions"
}

// IsPaid returns true if the transaction has been paid.
func (t *Transaction) IsPaid() bool {
	return t.Status == StatusPaid
}

// WebhookEvent represents a stored provider webhook event.
// The unique (provider, event_id) pair is the idempotency ledger: providers
// redeliver events, and an insert conflict means the event was seen before.
type WebhookEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Provider    Provider  `gorm:"uniqueIndex:idx_webhook_provider_event;not null"`
	EventID     string    `gorm:"uniqueIndex:idx_webhook_provider_event;not null"`
	EventType   string    `gorm:"not null"`
	ObjectID    string    `gorm:"index"` // charge/order/payment intent id the event refers to
	Data        string    `gorm:"type:jsonb"`
	Processed   bool      `gorm:"default:false"`
	ProcessedAt *time.Time
	Error       *string
	CreatedAt   time.Time
}

// TableName returns the database table name.
func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// ActivityLog is an append-only audit record.
type ActivityLog struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Action       string    `json:"action" gorm:"not null;index"`
	ResourceType string    `json:"resource_type" gorm:"not null"`
	ResourceID   string    `json:"resource_id" gorm:"index"`
	Details      string    `json:"details" gorm:"type:jsonb"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
