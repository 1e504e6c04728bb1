package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"runtime/debug"
	"strconv"
	"time"

	"billing_app_echo/internal/config"
	"billing_app_echo/internal/models"
	"billing_app_echo/internal/repositories"
)

// RetryResult is the outcome of a successful payment-link regeneration.
// Warnings carry secondary failures (audit writes) that must not replace the
// primary outcome.
type RetryResult struct {
	PaymentID         uint
	PaymentUUID       string
	ProviderPaymentID string
	PaymentLink       string
	Warnings          []string
}

// RetryService mints a new provider payment intent for a stalled pending
// payment and rotates the provider references on the existing ledger row
type RetryService struct {
	cfg      *config.Config
	stores   *repositories.Stores
	provider PaymentProvider
}

func NewRetryService(cfg *config.Config, stores *repositories.Stores, provider PaymentProvider) *RetryService {
	return &RetryService{cfg: cfg, stores: stores, provider: provider}
}

// RetryPaymentLink validates the preconditions in order, creates a new
// checkout preference and rotates the payment's provider references. The
// first failed precondition aborts before any provider call.
func (s *RetryService) RetryPaymentLink(ctx context.Context, paymentID uint, actor *models.User) (*RetryResult, error) {
	payment, err := s.stores.Payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, NewUnknownError("failed to load payment", err)
	}
	if payment == nil {
		return nil, NewNotFoundError("payment not found")
	}

	if payment.Status != models.PaymentStatusPending {
		return nil, NewInvalidStateError("only pending payments may be retried")
	}

	if !s.cfg.ProviderConfigured() {
		return nil, NewConfigurationError("payment provider is not configured")
	}

	user := payment.Subscription.User
	if user.Email == "" {
		return nil, NewValidationError("subscription owner has no email address")
	}

	if math.IsNaN(payment.Amount) || math.IsInf(payment.Amount, 0) || payment.Amount <= 0 {
		return nil, NewValidationError("payment amount must be a positive number")
	}

	plan := payment.Subscription.Plan
	expiresAt := time.Now().Add(30 * 24 * time.Hour)

	req := &PreferenceRequest{
		Items: []PreferenceItem{
			{
				ID:         strconv.FormatUint(uint64(plan.ID), 10),
				Title:      plan.Name,
				Quantity:   1,
				CurrencyID: "BRL",
				UnitPrice:  payment.Amount,
			},
		},
		PayerEmail: user.Email,
		PayerName:  user.Name,
		BackURLs: PreferenceBackURLs{
			Success: s.cfg.AppURL + "/dashboard/subscription?status=success",
			Failure: s.cfg.AppURL + "/dashboard/subscription?status=failure",
			Pending: s.cfg.AppURL + "/dashboard/subscription?status=pending",
		},
		AutoReturn:        "approved",
		ExternalReference: payment.UUID,
		NotificationURL:   s.cfg.AppURL + "/api/webhooks/mercadopago",
		ExpiresAt:         &expiresAt,
	}

	pref, err := s.provider.CreatePreference(ctx, req)
	if err != nil {
		s.logSystemError(ctx, "failed to create payment preference", err)
		return nil, err
	}

	oldProviderID := payment.ProviderPaymentID
	if err := s.stores.Payments.RotateProviderRefs(ctx, payment.ID, pref.ID, pref.ID, pref.InitPoint); err != nil {
		s.logSystemError(ctx, "failed to rotate payment provider references", err)
		return nil, NewUnknownError("failed to update payment with new provider references", err)
	}

	result := &RetryResult{
		PaymentID:         payment.ID,
		PaymentUUID:       payment.UUID,
		ProviderPaymentID: pref.ID,
		PaymentLink:       pref.InitPoint,
	}

	audit := &models.ActivityLog{
		UserID:   actor.ID,
		Action:   "retry_payment_link",
		Entity:   "payment",
		EntityID: strconv.FormatUint(uint64(payment.ID), 10),
		Details: map[string]interface{}{
			"old_provider_payment_id": oldProviderID,
			"new_provider_payment_id": pref.ID,
			"amount":                  fmt.Sprintf("%.2f", payment.Amount),
		},
	}
	if err := s.stores.ActivityLogs.Create(ctx, audit); err != nil {
		// Secondary failure: keep the primary outcome, surface as warning
		log.Printf("Failed to write activity log for payment %d: %v", payment.ID, err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("activity log write failed: %v", err))
	}

	return result, nil
}

// logSystemError writes a best-effort system log entry. If the write itself
// fails it is reported locally and never masks the original error.
func (s *RetryService) logSystemError(ctx context.Context, message string, cause error) {
	entry := &models.SystemLog{
		Level:   models.SystemLogLevelError,
		Message: message,
		Details: map[string]interface{}{"error": cause.Error()},
		Stack:   string(debug.Stack()),
	}
	if err := s.stores.SystemLogs.Create(ctx, entry); err != nil {
		log.Printf("Failed to write system log (%s): %v", message, err)
	}
}
