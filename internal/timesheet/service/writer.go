// Package service converts stopped timer sessions and manual input into
// persisted timesheet entries, and owns the entry CRUD used by the reporting
// surface. All duration/amount math goes through the domain helpers so the
// timer path and manual entry share one formula.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	timerdomain "legal-case-platform/backend/internal/timer/domain"
	"legal-case-platform/backend/internal/timesheet/domain"
	"legal-case-platform/backend/internal/timesheet/repository"
)

// Sentinel errors; the handler maps them to envelope codes.
var (
	// ErrValidation marks rejected input (empty description, non-positive
	// duration, negative rate). Wrap with %w and a detail message.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when the referenced entry does not exist.
	ErrNotFound = errors.New("timesheet entry not found")
	// ErrPersistence wraps storage failures so callers can distinguish them
	// from business rejections.
	ErrPersistence = errors.New("persistence failure")
)

// Writer builds and persists timesheet entries.
type Writer struct {
	repo repository.Repository
	// defaultRate is applied to entries created from timer sessions, which
	// carry no rate of their own. Zero means unbilled-by-default.
	defaultRate float64
	nowF        func() time.Time
}

// NewWriter returns a Writer that persists through repo. defaultRate is the
// hourly rate applied to timer-sourced entries; 0 disables billing for them.
func NewWriter(repo repository.Repository, defaultRate float64) *Writer {
	return &Writer{repo: repo, defaultRate: defaultRate, nowF: time.Now}
}

// ManualEntryInput is the typed request for CreateManualEntry.
type ManualEntryInput struct {
	UserID      string
	CaseID      string
	TaskID      string
	StartTime   time.Time
	EndTime     time.Time
	Billable    bool
	HourlyRate  float64
	Description string
	CreatedBy   string
}

// UpdateEntryInput carries the mutable fields for UpdateEntry. Nil pointers
// leave the stored value unchanged; duration and amount are always recomputed
// from the effective start/end/rate.
type UpdateEntryInput struct {
	ID          string
	StartTime   *time.Time
	EndTime     *time.Time
	Billable    *bool
	HourlyRate  *float64
	Description *string
	UpdatedBy   string
}

// ConvertAndPersist turns a stopped timer session into a timesheet entry and
// persists it. The caller guarantees the session is finalized (Stopped, with
// TotalMS > 0). Storage failures surface as ErrPersistence.
func (w *Writer) ConvertAndPersist(ctx context.Context, session *timerdomain.TimerSession) (*domain.TimesheetEntry, error) {
	elapsed := time.Duration(session.TotalMS) * time.Millisecond
	minutes := domain.DurationMinutes(elapsed)
	now := w.nowF().UTC()
	entry := &domain.TimesheetEntry{
		ID:              uuid.New().String(),
		UserID:          session.UserID,
		CaseID:          session.CaseID,
		TaskID:          session.TaskID,
		StartTime:       session.StartTime,
		EndTime:         session.StartTime.Add(elapsed),
		DurationMinutes: minutes,
		Billable:        true,
		HourlyRate:      w.defaultRate,
		TotalAmount:     domain.BillableAmount(minutes, w.defaultRate),
		Description:     session.Description,
		CreatedAt:       now,
		CreatedBy:       session.UserID,
		UpdatedAt:       now,
		UpdatedBy:       session.UserID,
	}
	if err := w.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: create entry: %v", ErrPersistence, err)
	}
	return entry, nil
}

// CreateManualEntry validates in and persists a new entry with the same
// duration and amount formula as the timer path.
func (w *Writer) CreateManualEntry(ctx context.Context, in ManualEntryInput) (*domain.TimesheetEntry, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("%w: endTime must be after startTime", ErrValidation)
	}
	if in.HourlyRate < 0 {
		return nil, fmt.Errorf("%w: hourlyRate must not be negative", ErrValidation)
	}

	minutes := domain.DurationMinutes(in.EndTime.Sub(in.StartTime))
	now := w.nowF().UTC()
	entry := &domain.TimesheetEntry{
		ID:              uuid.New().String(),
		UserID:          in.UserID,
		CaseID:          in.CaseID,
		TaskID:          in.TaskID,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		DurationMinutes: minutes,
		Billable:        in.Billable,
		HourlyRate:      in.HourlyRate,
		TotalAmount:     domain.BillableAmount(minutes, in.HourlyRate),
		Description:     in.Description,
		CreatedAt:       now,
		CreatedBy:       in.CreatedBy,
		UpdatedAt:       now,
		UpdatedBy:       in.CreatedBy,
	}
	if err := w.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: create entry: %v", ErrPersistence, err)
	}
	return entry, nil
}

// GetEntry returns the entry for id, or ErrNotFound.
func (w *Writer) GetEntry(ctx context.Context, id string) (*domain.TimesheetEntry, error) {
	entry, err := w.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get entry: %v", ErrPersistence, err)
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

// UpdateEntry applies in to the stored entry, recomputing duration and total
// amount from the effective start, end, and rate.
func (w *Writer) UpdateEntry(ctx context.Context, in UpdateEntryInput) (*domain.TimesheetEntry, error) {
	entry, err := w.GetEntry(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.StartTime != nil {
		entry.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		entry.EndTime = *in.EndTime
	}
	if in.Billable != nil {
		entry.Billable = *in.Billable
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 {
			return nil, fmt.Errorf("%w: hourlyRate must not be negative", ErrValidation)
		}
		entry.HourlyRate = *in.HourlyRate
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, fmt.Errorf("%w: description is required", ErrValidation)
		}
		entry.Description = *in.Description
	}
	if !entry.EndTime.After(entry.StartTime) {
		return nil, fmt.Errorf("%w: endTime must be after startTime", ErrValidation)
	}

	entry.DurationMinutes = domain.DurationMinutes(entry.EndTime.Sub(entry.StartTime))
	entry.TotalAmount = domain.BillableAmount(entry.DurationMinutes, entry.HourlyRate)
	entry.UpdatedAt = w.nowF().UTC()
	entry.UpdatedBy = in.UpdatedBy

	if err := w.repo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: update entry: %v", ErrPersistence, err)
	}
	return entry, nil
}

// DeleteEntry removes the entry and returns its final value.
func (w *Writer) DeleteEntry(ctx context.Context, id string) (*domain.TimesheetEntry, error) {
	entry, err := w.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("%w: delete entry: %v", ErrPersistence, err)
	}
	return entry, nil
}
