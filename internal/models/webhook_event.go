package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type PaymentGateway string

const (
	PaymentGatewayMercadoPago PaymentGateway = "mercadopago"
)

// WebhookEvent records every inbound payment notification as delivered,
// before any processing. Duplicated deliveries show up as duplicated rows.
type WebhookEvent struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	PaymentGateway    PaymentGateway  `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	EventType         string          `gorm:"type:varchar(50)" json:"event_type"`
	Action            string          `gorm:"type:varchar(100)" json:"action"`
	ProviderPaymentID string          `gorm:"type:varchar(100);index" json:"provider_payment_id"`
	Payload           json.RawMessage `gorm:"type:jsonb" json:"payload"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}
