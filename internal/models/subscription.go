package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionStatus represents the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusPending  SubscriptionStatus = "PENDING"
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
	SubscriptionStatusExpired  SubscriptionStatus = "EXPIRED"
)

// Subscription links a user to a plan. There is at most one subscription per
// user; webhook processing updates it in place rather than duplicating it.
type Subscription struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint               `gorm:"uniqueIndex" json:"user_id"`
	PlanID uint               `gorm:"index" json:"plan_id"`
	Status SubscriptionStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`

	// Provider references, raw provider vocabulary
	ProviderPaymentID string `gorm:"type:varchar(100);index" json:"provider_payment_id"`
	ProviderStatus    string `gorm:"type:varchar(50)" json:"provider_status"`

	// Billing period bounds. Invariant: CurrentPeriodEnd > CurrentPeriodStart.
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Plan     Plan      `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Payments []Payment `gorm:"foreignKey:SubscriptionID" json:"payments,omitempty"`
}
