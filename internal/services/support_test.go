package services

import (
	"context"
	"sync"
	"time"

	"billing_app_echo/internal/models"
	"billing_app_echo/internal/repositories"
)

// In-memory repositories backing the service tests. They honor the same
// contracts as the GORM implementations, including (nil, nil) lookups and
// the column-restricted subscription upsert.

type memSubscriptionRepo struct {
	mu     sync.Mutex
	nextID uint
	byUser map[uint]*models.Subscription
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{byUser: make(map[uint]*models.Subscription)}
}

func (r *memSubscriptionRepo) FindByUserID(_ context.Context, userID uint) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.byUser[userID]
	if !ok {
		return nil, nil
	}
	clone := *sub
	return &clone, nil
}

func (r *memSubscriptionRepo) Upsert(_ context.Context, sub *models.Subscription, updateColumns []string) error {
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

func (r *memSubscriptionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

type memPaymentRepo struct {
	mu       sync.Mutex
	nextID   uint
	payments []*models.Payment
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uint) (*models.Payment, error) {
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

func (r *memPaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	payment.ID = r.nextID
	if payment.UUID == "" {
		payment.UUID = time.Now().Format("20060102150405.000000000")
	}
	payment.CreatedAt = time.Now()
	clone := *payment
	r.payments = append(r.payments, &clone)
	return nil
}

func (r *memPaymentRepo) RotateProviderRefs(_ context.Context, id uint, providerPaymentID, preferenceID, checkoutURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ID == id {
			p.ProviderPaymentID = providerPaymentID
			p.ProviderPreferenceID = preferenceID
			p.ProviderCheckoutURL = checkoutURL
			p.ProviderStatus = "pending"
			return nil
		}
	}
	return nil
}

func (r *memPaymentRepo) LatestForSubscription(_ context.Context, subscriptionID uint) (*models.Payment, error) {
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

func (r *memPaymentRepo) CountForSubscription(_ context.Context, subscriptionID uint) (int64, error) {
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

func (r *memPaymentRepo) all() []*models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		clone := *p
		out = append(out, &clone)
	}
	return out
}

// seed inserts a fully populated payment for the retry tests
func (r *memPaymentRepo) seed(p models.Payment) *models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	} else if p.ID > r.nextID {
		r.nextID = p.ID
	}
	r.payments = append(r.payments, &p)
	return &p
}

type memPlanRepo struct {
	plans map[uint]*models.Plan
}

func (r *memPlanRepo) FindByID(_ context.Context, id uint) (*models.Plan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, nil
	}
	clone := *plan
	return &clone, nil
}

type memUserRepo struct {
	users map[uint]*models.User
}

func (r *memUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) FindByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	for _, user := range r.users {
		if user.FirebaseUID == uid {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

type memActivityLogRepo struct {
	mu      sync.Mutex
	failErr error
	entries []*models.ActivityLog
}

func (r *memActivityLogRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

type memSystemLogRepo struct {
	mu      sync.Mutex
	failErr error
	entries []*models.SystemLog
}

func (r *memSystemLogRepo) Create(_ context.Context, entry *models.SystemLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

type memWebhookEventRepo struct {
	mu     sync.Mutex
	events []*models.WebhookEvent
}

func (r *memWebhookEventRepo) Create(_ context.Context, event *models.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type memFixture struct {
	stores        *repositories.Stores
	subscriptions *memSubscriptionRepo
	payments      *memPaymentRepo
	plans         *memPlanRepo
	users         *memUserRepo
	activityLogs  *memActivityLogRepo
	systemLogs    *memSystemLogRepo
	webhookEvents *memWebhookEventRepo
}

func newMemFixture() *memFixture {
	f := &memFixture{
		subscriptions: newMemSubscriptionRepo(),
		payments:      &memPaymentRepo{},
		plans:         &memPlanRepo{plans: make(map[uint]*models.Plan)},
		users:         &memUserRepo{users: make(map[uint]*models.User)},
		activityLogs:  &memActivityLogRepo{},
		systemLogs:    &memSystemLogRepo{},
		webhookEvents: &memWebhookEventRepo{},
	}
	f.stores = &repositories.Stores{
		Subscriptions: f.subscriptions,
		Payments:      f.payments,
		Plans:         f.plans,
		Users:         f.users,
		ActivityLogs:  f.activityLogs,
		SystemLogs:    f.systemLogs,
		WebhookEvents: f.webhookEvents,
	}
	return f
}

// fakeProvider records calls and serves canned responses
type fakeProvider struct {
	mu          sync.Mutex
	detail      *PaymentDetail
	fetchErr    error
	pref        *PreferenceResponse
	prefErr     error
	fetchCalls  int
	createCalls int
	lastPrefReq *PreferenceRequest
}

func (p *fakeProvider) FetchPaymentDetail(_ context.Context, paymentID string) (*PaymentDetail, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetchCalls++
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	clone := *p.detail
	if clone.ID == "" {
		clone.ID = paymentID
	}
	return &clone, nil
}

func (p *fakeProvider) CreatePreference(_ context.Context, req *PreferenceRequest) (*PreferenceResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createCalls++
	p.lastPrefReq = req
	if p.prefErr != nil {
		return nil, p.prefErr
	}
	clone := *p.pref
	return &clone, nil
}

func (p *fakeProvider) calls() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchCalls, p.createCalls
}

type sentConfirmation struct {
	To       string
	Name     string
	PlanName string
	Amount   float64
}

// fakeMailer records sends; confirmations are dispatched from a goroutine so
// assertions poll via sent()
type fakeMailer struct {
	mu            sync.Mutex
	confirmations []sentConfirmation
	reminders     []string
}

func (m *fakeMailer) SendPaymentConfirmation(to, name, planName string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations = append(m.confirmations, sentConfirmation{To: to, Name: name, PlanName: planName, Amount: amount})
	return nil
}

func (m *fakeMailer) SendSubscriptionExpiring(to, _ string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append(m.reminders, to)
	return nil
}

func (m *fakeMailer) sent() []sentConfirmation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentConfirmation, len(m.confirmations))
	copy(out, m.confirmations)
	return out
}
