package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityLog is an append-only audit trail of administrator actions
type ActivityLog struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID   uint                   `gorm:"index" json:"user_id"`
	Action   string                 `gorm:"type:varchar(100)" json:"action"`
	Entity   string                 `gorm:"type:varchar(100)" json:"entity"`
	EntityID string                 `gorm:"type:varchar(100)" json:"entity_id"`
	Details  map[string]interface{} `gorm:"serializer:json" json:"details"`
}
