package models

import (
	"time"

	"gorm.io/gorm"
)

// SystemLogLevel represents the severity of a system log entry
type SystemLogLevel string

const (
	SystemLogLevelInfo  SystemLogLevel = "INFO"
	SystemLogLevelWarn  SystemLogLevel = "WARN"
	SystemLogLevelError SystemLogLevel = "ERROR"
)

// SystemLog is a best-effort sink for unexpected failures
type SystemLog struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Level   SystemLogLevel         `gorm:"type:varchar(20)" json:"level"`
	Message string                 `gorm:"type:text" json:"message"`
	Details map[string]interface{} `gorm:"serializer:json" json:"details"`
	Stack   string                 `gorm:"type:text" json:"stack"`
}
