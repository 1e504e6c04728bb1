package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"billing_app_echo/internal/config"
	"billing_app_echo/internal/models"
	"billing_app_echo/internal/repositories"
)

// WebhookNotification is the inbound provider notification body
type WebhookNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
	ExternalReference string `json:"external_reference,omitempty"`
}

// ProcessResult reports what a notification did to the ledger
type ProcessResult struct {
	// Processed is false when the notification type is not handled and was
	// acknowledged without side effects
	Processed    bool
	Subscription *models.Subscription
	Payment      *models.Payment
}

// PaymentService reconciles provider payment notifications into the local
// subscription and payment ledger
type PaymentService struct {
	cfg      *config.Config
	stores   *repositories.Stores
	provider PaymentProvider
	cache    *RedisCache
	mailer   Mailer
}

func NewPaymentService(cfg *config.Config, stores *repositories.Stores, provider PaymentProvider, cache *RedisCache, mailer Mailer) *PaymentService {
	return &PaymentService{
		cfg:      cfg,
		stores:   stores,
		provider: provider,
		cache:    cache,
		mailer:   mailer,
	}
}

// ProcessNotification drives one webhook delivery through detail fetch,
// status mapping and the ledger write. Deliveries are at-least-once and not
// deduplicated: the subscription upsert is idempotent per user, and every
// delivery appends a new ledger entry.
func (s *PaymentService) ProcessNotification(ctx context.Context, notif *WebhookNotification, raw json.RawMessage) (*ProcessResult, error) {
	if notif.Type != "payment" {
		return &ProcessResult{Processed: false}, nil
	}

	if notif.Data.ID == "" {
		return nil, NewValidationError("payment id not provided")
	}

	s.recordEvent(ctx, notif, raw)

	detail, err := s.provider.FetchPaymentDetail(ctx, notif.Data.ID)
	if err != nil {
		return nil, err
	}

	userID, planID, err := extractSubjectRefs(detail)
	if err != nil {
		return nil, err
	}

	plan, err := GetOrSet(s.cache, ctx, fmt.Sprintf("plan:%d", planID), time.Hour, func() (*models.Plan, error) {
		return s.stores.Plans.FindByID(ctx, planID)
	})
	if err != nil {
		return nil, NewUnknownError("failed to load plan", err)
	}
	if plan == nil {
		return nil, NewUnknownError(fmt.Sprintf("plan %d not found", planID), nil)
	}

	mapping := MapProviderStatus(detail.Status)

	// Read the previous status before the upsert so a transition into ACTIVE
	// can be detected. The read is advisory; the upsert itself stays atomic.
	prior, err := s.stores.Subscriptions.FindByUserID(ctx, userID)
	if err != nil {
		return nil, NewUnknownError("failed to load subscription", err)
	}

	now := time.Now()
	period := BillingPeriodFor(plan.Interval, now)

	insertStatus := models.SubscriptionStatusPending
	if mapping.SubscriptionChanged {
		insertStatus = mapping.SubscriptionStatus
	}

	sub := &models.Subscription{
		UserID:             userID,
		PlanID:             plan.ID,
		Status:             insertStatus,
		ProviderPaymentID:  detail.ID,
		ProviderStatus:     detail.Status,
		CurrentPeriodStart: period.Start,
		CurrentPeriodEnd:   period.End,
	}

	updateColumns := []string{"provider_payment_id", "provider_status", "updated_at"}
	if mapping.SubscriptionChanged {
		updateColumns = append(updateColumns, "status")
	}
	if mapping.SubscriptionChanged && mapping.SubscriptionStatus == models.SubscriptionStatusActive {
		updateColumns = append(updateColumns, "current_period_start", "current_period_end")
	}

	if err := s.stores.Subscriptions.Upsert(ctx, sub, updateColumns); err != nil {
		return nil, NewUnknownError("failed to upsert subscription", err)
	}

	// Re-read the canonical row; on a conflicting insert the returned struct
	// does not carry the existing row's identity
	current, err := s.stores.Subscriptions.FindByUserID(ctx, userID)
	if err != nil || current == nil {
		return nil, NewUnknownError("failed to reload subscription", err)
	}

	amount := detail.TransactionAmount
	if amount <= 0 {
		amount = plan.Price
	}

	payment := &models.Payment{
		SubscriptionID:    current.ID,
		Amount:            amount,
		Status:            mapping.PaymentStatus,
		ProviderPaymentID: detail.ID,
		ProviderStatus:    detail.Status,
		PaymentMethod:     orUnknown(detail.PaymentMethodID),
		PaymentType:       orUnknown(detail.PaymentTypeID),
	}
	if mapping.PaymentStatus == models.PaymentStatusApproved {
		payment.PaidAt = &now
	}

	if err := s.stores.Payments.Create(ctx, payment); err != nil {
		return nil, NewUnknownError("failed to append payment", err)
	}

	if current.Status == models.SubscriptionStatusActive && (prior == nil || prior.Status != models.SubscriptionStatusActive) {
		s.dispatchConfirmation(ctx, userID, plan, amount)
	}

	return &ProcessResult{Processed: true, Subscription: current, Payment: payment}, nil
}

// recordEvent stores the raw delivery for later inspection. Failures here
// never block processing.
func (s *PaymentService) recordEvent(ctx context.Context, notif *WebhookNotification, raw json.RawMessage) {
	event := &models.WebhookEvent{
		PaymentGateway:    models.PaymentGatewayMercadoPago,
		EventType:         notif.Type,
		Action:            notif.Action,
		ProviderPaymentID: notif.Data.ID,
		Payload:           raw,
	}
	if err := s.stores.WebhookEvents.Create(ctx, event); err != nil {
		log.Printf("Failed to record webhook event for payment %s: %v", notif.Data.ID, err)
	}
}

// dispatchConfirmation sends the activation email without blocking the
// ledger write. A failed send is logged and otherwise ignored.
func (s *PaymentService) dispatchConfirmation(ctx context.Context, userID uint, plan *models.Plan, amount float64) {
	user, err := s.stores.Users.FindByID(ctx, userID)
	if err != nil || user == nil || user.Email == "" {
		log.Printf("Skipping confirmation email for user %d: no reachable address (%v)", userID, err)
		return
	}

	name := user.Name
	if name == "" {
		name = "Customer"
	}

	go func() {
		if err := s.mailer.SendPaymentConfirmation(user.Email, name, plan.Name, amount); err != nil {
			log.Printf("Failed to send payment confirmation to %s: %v", user.Email, err)
		}
	}()
}

// extractSubjectRefs pulls the required user and plan references out of the
// payment metadata. Their absence is a non-retryable processing failure.
func extractSubjectRefs(detail *PaymentDetail) (uint, uint, error) {
	userRef := detail.MetadataString("user_id")
	planRef := detail.MetadataString("plan_id")
	if userRef == "" || planRef == "" {
		return 0, 0, NewUnknownError("payment metadata is missing user or plan reference", nil)
	}

	userID, err := strconv.ParseUint(userRef, 10, 32)
	if err != nil {
		return 0, 0, NewUnknownError(fmt.Sprintf("invalid user reference %q in payment metadata", userRef), err)
	}
	planID, err := strconv.ParseUint(planRef, 10, 32)
	if err != nil {
		return 0, 0, NewUnknownError(fmt.Sprintf("invalid plan reference %q in payment metadata", planRef), err)
	}
	return uint(userID), uint(planID), nil
}

func orUnknown(val string) string {
	if val == "" {
		return "unknown"
	}
	return val
}
