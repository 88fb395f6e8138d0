// Package domain holds the persisted timesheet entry model and the duration
// and billing arithmetic shared by the timer stop path and manual entry
// creation.
package domain

import (
	"math"
	"time"
)

// TimesheetEntry is an immutable billable record of recorded time. The timer
// path never edits entries after creation; explicit update/delete operations
// exist as separate CRUD with their own authorization.
type TimesheetEntry struct {
	ID     string
	UserID string
	// CaseID and TaskID are optional; empty string means unset.
	CaseID    string
	TaskID    string
	StartTime time.Time
	EndTime   time.Time
	// DurationMinutes is the billed duration, rounded half-up from the raw
	// elapsed milliseconds.
	DurationMinutes int
	Billable        bool
	// HourlyRate is the billing rate; 0 means no rate and a zero amount.
	HourlyRate  float64
	TotalAmount float64
	Description string
	CreatedAt   time.Time
	CreatedBy   string
	UpdatedAt   time.Time
	UpdatedBy   string
}

// DurationMinutes converts an elapsed duration to billed minutes with
// standard half-up rounding, so 90s bills as 2 minutes and 89s as 1.
func DurationMinutes(elapsed time.Duration) int {
	return int(math.Round(float64(elapsed.Milliseconds()) / 60000))
}

// BillableAmount computes the monetary value of durationMinutes at
// hourlyRate. A zero rate yields a zero amount.
func BillableAmount(durationMinutes int, hourlyRate float64) float64 {
	if hourlyRate == 0 {
		return 0
	}
	return float64(durationMinutes) / 60 * hourlyRate
}
