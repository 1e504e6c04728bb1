package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentStatus represents the state of a single ledger entry
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusApproved  PaymentStatus = "APPROVED"
	PaymentStatusRejected  PaymentStatus = "REJECTED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// Payment is one entry of the append-only payment ledger. Each processed
// webhook delivery creates a new row; rows are never mutated afterwards,
// except for the retry flow which rotates the provider references of a
// still-pending row.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// UUID is the public reference handed to the provider as external_reference
	UUID string `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`

	SubscriptionID uint          `gorm:"index" json:"subscription_id"`
	Amount         float64       `gorm:"type:decimal(15,2)" json:"amount"`
	Status         PaymentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`

	ProviderPaymentID    string `gorm:"type:varchar(100);index" json:"provider_payment_id"`
	ProviderPreferenceID string `gorm:"type:varchar(100)" json:"provider_preference_id"`
	ProviderCheckoutURL  string `gorm:"type:text" json:"provider_checkout_url"`
	ProviderStatus       string `gorm:"type:varchar(50)" json:"provider_status"`

	PaymentMethod string     `gorm:"type:varchar(100)" json:"payment_method"`
	PaymentType   string     `gorm:"type:varchar(100)" json:"payment_type"`
	PaidAt        *time.Time `json:"paid_at"`

	// Relationships
	Subscription Subscription `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`
}

// BeforeCreate assigns the public reference if the caller didn't
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return nil
}
