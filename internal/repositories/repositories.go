package repositories

import (
	"context"

	"billing_app_echo/internal/models"
)

// SubscriptionRepository provides access to subscription rows. Lookups return
// (nil, nil) when no row exists.
type SubscriptionRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*models.Subscription, error)

	// Upsert inserts the subscription keyed by user_id, or, when a row for
	// that user already exists, updates only the named columns. The operation
	// is a single conditional insert-or-update statement so concurrent
	// deliveries for the same user resolve last-write-wins without
	// application-level locking.
	Upsert(ctx context.Context, sub *models.Subscription, updateColumns []string) error
}

// PaymentRepository provides access to the append-only payment ledger
type PaymentRepository interface {
	// FindByID loads a payment with its subscription, user and plan
	FindByID(ctx context.Context, id uint) (*models.Payment, error)

	Create(ctx context.Context, payment *models.Payment) error

	// RotateProviderRefs swaps the provider references of an existing row to
	// a freshly minted payment intent and resets the raw provider status to
	// "pending". The row's identity and its own status are untouched.
	RotateProviderRefs(ctx context.Context, id uint, providerPaymentID, preferenceID, checkoutURL string) error

	// LatestForSubscription returns the most recent ledger entry of a
	// subscription, or (nil, nil) when the ledger is empty
	LatestForSubscription(ctx context.Context, subscriptionID uint) (*models.Payment, error)

	CountForSubscription(ctx context.Context, subscriptionID uint) (int64, error)
}

type PlanRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Plan, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
}

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
}

type SystemLogRepository interface {
	Create(ctx context.Context, entry *models.SystemLog) error
}

type WebhookEventRepository interface {
	Create(ctx context.Context, event *models.WebhookEvent) error
}

// Stores bundles every repository so services take a single dependency
type Stores struct {
	Subscriptions SubscriptionRepository
	Payments      PaymentRepository
	Plans         PlanRepository
	Users         UserRepository
	ActivityLogs  ActivityLogRepository
	SystemLogs    SystemLogRepository
	WebhookEvents WebhookEventRepository
}
