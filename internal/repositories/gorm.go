package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"billing_app_echo/internal/models"
)

// NewGormStores wires every repository to the given database handle
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		Subscriptions: &gormSubscriptionRepo{db: db},
		Payments:      &gormPaymentRepo{db: db},
		Plans:         &gormPlanRepo{db: db},
		Users:         &gormUserRepo{db: db},
		ActivityLogs:  &gormActivityLogRepo{db: db},
		SystemLogs:    &gormSystemLogRepo{db: db},
		WebhookEvents: &gormWebhookEventRepo{db: db},
	}
}

type gormSubscriptionRepo struct {
	db *gorm.DB
}

func (r *gormSubscriptionRepo) FindByUserID(ctx context.Context, userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subscription for user %d: %w", userID, err)
	}
	return &sub, nil
}

func (r *gormSubscriptionRepo) Upsert(ctx context.Context, sub *models.Subscription, updateColumns []string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(updateColumns),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription for user %d: %w", sub.UserID, err)
	}
	return nil
}

type gormPaymentRepo struct {
	db *gorm.DB
}

func (r *gormPaymentRepo) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Subscription").
		Preload("Subscription.User").
		Preload("Subscription.Plan").
		First(&payment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find payment %d: %w", id, err)
	}
	return &payment, nil
}

func (r *gormPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *gormPaymentRepo) RotateProviderRefs(ctx context.Context, id uint, providerPaymentID, preferenceID, checkoutURL string) error {
	err := r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"provider_payment_id":    providerPaymentID,
		"provider_preference_id": preferenceID,
		"provider_checkout_url":  checkoutURL,
		"provider_status":        "pending",
	}).Error
	if err != nil {
		return fmt.Errorf("failed to rotate provider refs for payment %d: %w", id, err)
	}
	return nil
}

func (r *gormPaymentRepo) LatestForSubscription(ctx context.Context, subscriptionID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at desc").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest payment for subscription %d: %w", subscriptionID, err)
	}
	return &payment, nil
}

func (r *gormPaymentRepo) CountForSubscription(ctx context.Context, subscriptionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("subscription_id = ?", subscriptionID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count payments for subscription %d: %w", subscriptionID, err)
	}
	return count, nil
}

type gormPlanRepo struct {
	db *gorm.DB
}

func (r *gormPlanRepo) FindByID(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find plan %d: %w", id, err)
	}
	return &plan, nil
}

type gormUserRepo struct {
	db *gorm.DB
}

func (r *gormUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user %d: %w", id, err)
	}
	return &user, nil
}

func (r *gormUserRepo) FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("firebase_uid = ?", uid).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by firebase uid: %w", err)
	}
	return &user, nil
}

type gormActivityLogRepo struct {
	db *gorm.DB
}

func (r *gormActivityLogRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

type gormSystemLogRepo struct {
	db *gorm.DB
}

func (r *gormSystemLogRepo) Create(ctx context.Context, entry *models.SystemLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create system log: %w", err)
	}
	return nil
}

type gormWebhookEventRepo struct {
	db *gorm.DB
}

func (r *gormWebhookEventRepo) Create(ctx context.Context, event *models.WebhookEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create webhook event: %w", err)
	}
	return nil
}
