package services

import (
	"time"

	"billing_app_echo/internal/models"
)

// BillingPeriod holds the bounds of one billing cycle. End is always strictly
// after Start.
type BillingPeriod struct {
	Start time.Time
	End   time.Time
}

// BillingPeriodFor computes the billing period opening at the reference
// instant: one calendar month for monthly plans, one calendar year otherwise.
// Month arithmetic clamps to the last day of the target month, so a period
// started on Jan 31 ends on Feb 28 (or 29) instead of overflowing into March.
func BillingPeriodFor(interval models.PlanInterval, now time.Time) BillingPeriod {
	months := 12
	if interval == models.PlanIntervalMonthly {
		months = 1
	}
	return BillingPeriod{Start: now, End: addMonthsClamped(now, months)}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, hour, min, sec, t.Nanosecond(), t.Location())
	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the following month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
