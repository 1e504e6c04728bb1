package services

import (
	"billing_app_echo/internal/models"
)

// StatusMapping is the domain interpretation of a raw provider status
type StatusMapping struct {
	// SubscriptionStatus is only meaningful when SubscriptionChanged is true
	SubscriptionStatus  models.SubscriptionStatus
	SubscriptionChanged bool
	PaymentStatus       models.PaymentStatus
}

// MapProviderStatus translates a raw provider status string into the local
// subscription and payment statuses. The function is total: any string
// outside the known vocabulary falls through to the pending arm. Rejected,
// cancelled and refunded payments affect only the ledger entry and leave the
// subscription status untouched.
func MapProviderStatus(providerStatus string) StatusMapping {
	switch providerStatus {
	case "approved":
		return StatusMapping{
			SubscriptionStatus:  models.SubscriptionStatusActive,
			SubscriptionChanged: true,
			PaymentStatus:       models.PaymentStatusApproved,
		}
	case "rejected":
		return StatusMapping{PaymentStatus: models.PaymentStatusRejected}
	case "cancelled":
		return StatusMapping{PaymentStatus: models.PaymentStatusCancelled}
	case "refunded":
		return StatusMapping{PaymentStatus: models.PaymentStatusRefunded}
	default:
		return StatusMapping{
			SubscriptionStatus:  models.SubscriptionStatusPending,
			SubscriptionChanged: true,
			PaymentStatus:       models.PaymentStatusPending,
		}
	}
}
