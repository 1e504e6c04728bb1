package handlers

import (
	"context"
	"sync"
	"time"

	"billing_app_echo/internal/config"
	"billing_app_echo/internal/models"
	"billing_app_echo/internal/repositories"
	"billing_app_echo/internal/services"
)

// Minimal in-memory stores for handler tests. Only the paths the handlers
// exercise are implemented.

type stubSubscriptionRepo struct {
	mu     sync.Mutex
	nextID uint
	byUser map[uint]*models.Subscription
}

func newStubSubscriptionRepo() *stubSubscriptionRepo {
	return &stubSubscriptionRepo{byUser: make(map[uint]*models.Subscription)}
}

func (r *stubSubscriptionRepo) FindByUserID(_ context.Context, userID uint) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.byUser[userID]
	if !ok {
		return nil, nil
	}
	clone := *sub
	return &clone, nil
}

func (r *stubSubscriptionRepo) Upsert(_ context.Context, sub *models.Subscription, updateColumns []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byUser[sub.UserID]
	if !ok {
		r.nextID++
		clone := *sub
		clone.ID = r.nextID
		r.byUser[sub.UserID] = &clone
		return nil
	}
	for _, col := range updateColumns {
		switch col {
		case "status":
			existing.Status = sub.Status
		case "provider_payment_id":
			existing.ProviderPaymentID = sub.ProviderPaymentID
		case "provider_status":
			existing.ProviderStatus = sub.ProviderStatus
		case "current_period_start":
			existing.CurrentPeriodStart = sub.CurrentPeriodStart
		case "current_period_end":
			existing.CurrentPeriodEnd = sub.CurrentPeriodEnd
		}
	}
	return nil
}

type stubPaymentRepo struct {
	mu       sync.Mutex
	nextID   uint
	payments []*models.Payment
}

func (r *stubPaymentRepo) FindByID(_ context.Context, id uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ID == id {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubPaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	payment.ID = r.nextID
	clone := *payment
	r.payments = append(r.payments, &clone)
	return nil
}

func (r *stubPaymentRepo) RotateProviderRefs(_ context.Context, id uint, providerPaymentID, preferenceID, checkoutURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ID == id {
			p.ProviderPaymentID = providerPaymentID
			p.ProviderPreferenceID = preferenceID
			p.ProviderCheckoutURL = checkoutURL
			p.ProviderStatus = "pending"
		}
	}
	return nil
}

func (r *stubPaymentRepo) LatestForSubscription(_ context.Context, subscriptionID uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.payments) - 1; i >= 0; i-- {
		if r.payments[i].SubscriptionID == subscriptionID {
			clone := *r.payments[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubPaymentRepo) CountForSubscription(_ context.Context, subscriptionID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.payments {
		if p.SubscriptionID == subscriptionID {
			count++
		}
	}
	return count, nil
}

func (r *stubPaymentRepo) seed(p models.Payment) *models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	}
	r.payments = append(r.payments, &p)
	return &p
}

type stubPlanRepo struct {
	plans map[uint]*models.Plan
}

func (r *stubPlanRepo) FindByID(_ context.Context, id uint) (*models.Plan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, nil
	}
	clone := *plan
	return &clone, nil
}

type stubUserRepo struct {
	users map[uint]*models.User
}

func (r *stubUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) FindByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	for _, user := range r.users {
		if user.FirebaseUID == uid {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

type stubActivityLogRepo struct{}

func (stubActivityLogRepo) Create(_ context.Context, _ *models.ActivityLog) error { return nil }

type stubSystemLogRepo struct{}

func (stubSystemLogRepo) Create(_ context.Context, _ *models.SystemLog) error { return nil }

type stubWebhookEventRepo struct {
	mu     sync.Mutex
	events []*models.WebhookEvent
}

func (r *stubWebhookEventRepo) Create(_ context.Context, event *models.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// stubProvider serves a canned payment detail or a canned error
type stubProvider struct {
	detail   *services.PaymentDetail
	fetchErr error
	pref     *services.PreferenceResponse
	prefErr  error
}

func (p *stubProvider) FetchPaymentDetail(_ context.Context, _ string) (*services.PaymentDetail, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	clone := *p.detail
	return &clone, nil
}

func (p *stubProvider) CreatePreference(_ context.Context, _ *services.PreferenceRequest) (*services.PreferenceResponse, error) {
	if p.prefErr != nil {
		return nil, p.prefErr
	}
	clone := *p.pref
	return &clone, nil
}

type stubMailer struct{}

func (stubMailer) SendPaymentConfirmation(_, _, _ string, _ float64) error { return nil }

func (stubMailer) SendSubscriptionExpiring(_, _ string, _ time.Time) error { return nil }

type handlerFixture struct {
	stores        *repositories.Stores
	subscriptions *stubSubscriptionRepo
	payments      *stubPaymentRepo
	plans         *stubPlanRepo
	users         *stubUserRepo
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		subscriptions: newStubSubscriptionRepo(),
		payments:      &stubPaymentRepo{},
		plans:         &stubPlanRepo{plans: make(map[uint]*models.Plan)},
		users:         &stubUserRepo{users: make(map[uint]*models.User)},
	}
	f.stores = &repositories.Stores{
		Subscriptions: f.subscriptions,
		Payments:      f.payments,
		Plans:         f.plans,
		Users:         f.users,
		ActivityLogs:  stubActivityLogRepo{},
		SystemLogs:    stubSystemLogRepo{},
		WebhookEvents: &stubWebhookEventRepo{},
	}
	return f
}

func handlerConfig() *config.Config {
	return &config.Config{
		AppURL:                 "https://billing.example.com",
		MercadoPagoAccessToken: "TEST-token",
		ProviderTimeout:        5 * time.Second,
	}
}
