package auth

import (
	"time"

	"github.com/google/uuid"
)

// Merchant represents an account that can create payments through the gateway.
type Merchant struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	APIKeyHash   string     `json:"-" gorm:"uniqueIndex;not null"` // SHA-256 hash
	APIKeyPrefix string     `json:"api_key_prefix,omitempty"`      // first few chars for display
	Active       bool       `json:"active" gorm:"default:true"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName returns the database table name.
func (Merchant) TableName() string {
	return "merchants"
}

// IsActive returns true if the merchant may authenticate.
func (m *Merchant) IsActive() bool {
	return m.Active
}
