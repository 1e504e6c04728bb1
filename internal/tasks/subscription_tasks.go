package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"billing_app_echo/internal/models"
)

const defaultReminderWindowDays = 3

// ExpiryReminderArgs defines the arguments for the expiry reminder task
type ExpiryReminderArgs struct {
	WindowDays int `json:"window_days"`
}

// ExpiryReminderTaskDef emails owners of active subscriptions whose current
// billing period ends within the reminder window
type ExpiryReminderTaskDef struct{}

// ExpiryReminderTask is the registered instance
var ExpiryReminderTask = &ExpiryReminderTaskDef{}

// TaskID returns the unique identifier for this task
func (t *ExpiryReminderTaskDef) TaskID() string {
	return "send_expiry_reminders"
}

// EnsureScheduled makes sure a daily recurring instance of this task exists
func (t *ExpiryReminderTaskDef) EnsureScheduled(db *gorm.DB) error {
	interval := "RRULE:FREQ=DAILY"
	task, err := BuildScheduledTask(t.TaskID(), ExpiryReminderArgs{WindowDays: defaultReminderWindowDays}, time.Now(), &interval, models.ScheduledTaskTypeRecurring, 3)
	if err != nil {
		return err
	}

	var existing models.ScheduledTask
	err = db.Where("task_name = ? AND status = ?", t.TaskID(), models.ScheduledTaskStatusActive).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to check existing reminder task: %w", err)
	}

	if err := db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to schedule reminder task: %w", err)
	}
	log.Printf("Scheduled recurring task %s", t.TaskID())
	return nil
}

// HandleExecution scans for expiring subscriptions and sends one reminder
// email per owner
func (t *ExpiryReminderTaskDef) HandleExecution(ctx context.Context, deps *Deps, args map[string]interface{}) (map[string]interface{}, error) {
	windowDays := defaultReminderWindowDays
	if v, ok := args["window_days"].(float64); ok && v > 0 {
		windowDays = int(v)
	}

	now := time.Now()
	cutoff := now.Add(time.Duration(windowDays) * 24 * time.Hour)

	var expiring []models.Subscription
	err := deps.DB.WithContext(ctx).
		Preload("User").
		Preload("Plan").
		Where("status = ? AND current_period_end > ? AND current_period_end <= ?", models.SubscriptionStatusActive, now, cutoff).
		Find(&expiring).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring subscriptions: %w", err)
	}

	sent := 0
	skipped := 0
	var failures []string

	for _, sub := range expiring {
		if sub.User.Email == "" {
			skipped++
			continue
		}

		name := sub.User.Name
		if name == "" {
			name = "Customer"
		}

		if err := deps.Mailer.SendSubscriptionExpiring(sub.User.Email, name, sub.CurrentPeriodEnd); err != nil {
			log.Printf("Failed to send expiry reminder to %s: %v", sub.User.Email, err)
			failures = append(failures, sub.User.Email)
			continue
		}
		sent++
	}

	result := map[string]interface{}{
		"total":   len(expiring),
		"sent":    sent,
		"skipped": skipped,
	}
	if len(failures) > 0 {
		result["failures"] = failures
	}
	return result, nil
}
