package paymentlink

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PaymentLink is a reusable, shareable payment preset. Anyone holding the
// slug can create a payment against it while it is active.
type PaymentLink struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MerchantID     uuid.UUID      `json:"merchant_id" gorm:"type:uuid;not null;index"`
	Slug           string         `json:"slug" gorm:"uniqueIndex;not null"`
	Title          string         `json:"title" gorm:"not null"`
	Description    string         `json:"description,omitempty"`
	Amount         int64          `json:"amount" gorm:"not null"` // minor currency units
	PaymentMethods pq.StringArray `json:"payment_methods" gorm:"type:text[]"`
	Active         bool           `json:"active" gorm:"default:true;index"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName returns the database table name.
func (PaymentLink) TableName() string {
	return "payment_links"
}

// IsExpired returns true if the link has an expiry in the past.
func (l *PaymentLink) IsExpired() bool {
	return l.ExpiresAt != nil && time.Now().After(*l.ExpiresAt)
}

// AllowsMethod returns true if the link accepts the given payment method.
func (l *PaymentLink) AllowsMethod(method string) bool {
	for _, m := range l.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
