package models

import (
	"time"

	"gorm.io/gorm"
)

// PlanInterval represents the billing cadence of a plan
type PlanInterval string

const (
	PlanIntervalMonthly PlanInterval = "MONTHLY"
	PlanIntervalYearly  PlanInterval = "YEARLY"
)

// Plan represents a subscription plan. Plans are immutable once created;
// subscriptions reference them read-only.
type Plan struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string       `gorm:"type:varchar(255)" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Price       float64      `gorm:"type:decimal(15,2)" json:"price"`
	Interval    PlanInterval `gorm:"type:varchar(20);default:'MONTHLY'" json:"interval"`

	// Relationships
	Subscriptions []Subscription `gorm:"foreignKey:PlanID" json:"subscriptions,omitempty"`
}
