package repository

import (
	"context"
	"time"

	"legal-case-platform/backend/internal/timesheet/domain"
)

// Repository defines persistence for timesheet entries. Implementations must
// make Create idempotent on the caller-assigned entry id so a retried timer
// stop cannot double-submit the same session.
type Repository interface {
	Create(ctx context.Context, e *domain.TimesheetEntry) error
	// GetByID returns the entry for id, or nil if not found. An error is
	// returned only for storage failures, not for missing rows.
	GetByID(ctx context.Context, id string) (*domain.TimesheetEntry, error)
	// ListByUserAndRange returns the user's entries with StartTime in
	// [from, to). Zero from/to leave that bound open.
	ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.TimesheetEntry, error)
	ListByCase(ctx context.Context, caseID string, from, to time.Time) ([]*domain.TimesheetEntry, error)
	ListByTask(ctx context.Context, taskID string, from, to time.Time) ([]*domain.TimesheetEntry, error)
	// ListByUsers returns entries for any of the given users, for team rollups.
	ListByUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]*domain.TimesheetEntry, error)
	Update(ctx context.Context, e *domain.TimesheetEntry) error
	Delete(ctx context.Context, id string) error
}
