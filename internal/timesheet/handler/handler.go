// Package handler exposes the timesheet entry operations behind the
// envelope contract. Update and delete are gated by the access evaluator;
// only the entry's creator or an admin may mutate it.
package handler

import (
	"context"
	"errors"
	"time"

	"legal-case-platform/backend/internal/access"
	"legal-case-platform/backend/internal/api"
	"legal-case-platform/backend/internal/audit"
	"legal-case-platform/backend/internal/identity"
	"legal-case-platform/backend/internal/platform/authctx"
	"legal-case-platform/backend/internal/timesheet/domain"
	"legal-case-platform/backend/internal/timesheet/service"
)

// CreateEntryRequest carries the input for CreateManualTimesheetEntry. The
// entry is recorded for the caller; CaseID and TaskID are optional.
type CreateEntryRequest struct {
	CaseID      string
	TaskID      string
	StartTime   time.Time
	EndTime     time.Time
	Billable    bool
	HourlyRate  float64
	Description string
}

// UpdateEntryRequest carries the mutable entry fields. Nil pointers leave
// the stored value unchanged.
type UpdateEntryRequest struct {
	EntryID     string
	StartTime   *time.Time
	EndTime     *time.Time
	Billable    *bool
	HourlyRate  *float64
	Description *string
}

// Handler serves the timesheet entry operation surface.
type Handler struct {
	entries *service.Writer
	authz   access.Evaluator
	auditor audit.Recorder
}

// New returns a timesheet Handler. auditor may be nil to disable audit
// events.
func New(entries *service.Writer, authz access.Evaluator, auditor audit.Recorder) *Handler {
	return &Handler{entries: entries, authz: authz, auditor: auditor}
}

// CreateManualTimesheetEntry records a manually entered timesheet entry for
// the caller.
func (h *Handler) CreateManualTimesheetEntry(ctx context.Context, req CreateEntryRequest) (env api.Envelope[domain.TimesheetEntry]) {
	defer api.Recover(&env)
	caller, ok := callerFrom(ctx)
	if !ok {
		return api.Fail[domain.TimesheetEntry](api.CodeUnauthenticated, "caller identity required")
	}
	entry, err := h.entries.CreateManualEntry(ctx, service.ManualEntryInput{
		UserID:      caller.UserID,
		CaseID:      req.CaseID,
		TaskID:      req.TaskID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Billable:    req.Billable,
		HourlyRate:  req.HourlyRate,
		Description: req.Description,
		CreatedBy:   caller.UserID,
	})
	if err != nil {
		return api.FailErr[domain.TimesheetEntry](err)
	}
	audit.RecordAsync(h.auditor, "CREATE_TIMESHEET_ENTRY", "TIMESHEET_ENTRY#"+entry.ID, caller.UserID, map[string]any{
		"entryId":  entry.ID,
		"caseId":   entry.CaseID,
		"duration": entry.DurationMinutes,
		"billable": entry.Billable,
	})
	return api.OK(*entry)
}

// UpdateTimesheetEntry mutates an existing entry. Duration and billable
// amount are recomputed from the effective fields.
func (h *Handler) UpdateTimesheetEntry(ctx context.Context, req UpdateEntryRequest) (env api.Envelope[domain.TimesheetEntry]) {
	defer api.Recover(&env)
	caller, failEnv := h.requireMutable(ctx, req.EntryID)
	if failEnv != nil {
		return *failEnv
	}
	entry, err := h.entries.UpdateEntry(ctx, service.UpdateEntryInput{
		ID:          req.EntryID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Billable:    req.Billable,
		HourlyRate:  req.HourlyRate,
		Description: req.Description,
		UpdatedBy:   caller.UserID,
	})
	if err != nil {
		return api.FailErr[domain.TimesheetEntry](err)
	}
	audit.RecordAsync(h.auditor, "UPDATE_TIMESHEET_ENTRY", "TIMESHEET_ENTRY#"+req.EntryID, caller.UserID, map[string]any{
		"entryId":  req.EntryID,
		"duration": entry.DurationMinutes,
		"amount":   entry.TotalAmount,
	})
	return api.OK(*entry)
}

// DeleteTimesheetEntry removes an entry and returns the deleted value.
func (h *Handler) DeleteTimesheetEntry(ctx context.Context, entryID string) (env api.Envelope[domain.TimesheetEntry]) {
	defer api.Recover(&env)
	caller, failEnv := h.requireMutable(ctx, entryID)
	if failEnv != nil {
		return *failEnv
	}
	entry, err := h.entries.DeleteEntry(ctx, entryID)
	if err != nil {
		return api.FailErr[domain.TimesheetEntry](err)
	}
	audit.RecordAsync(h.auditor, "DELETE_TIMESHEET_ENTRY", "TIMESHEET_ENTRY#"+entryID, caller.UserID, map[string]any{
		"entryId": entryID,
		"caseId":  entry.CaseID,
	})
	return api.OK(*entry)
}

// requireMutable resolves the caller and checks they may mutate the entry.
func (h *Handler) requireMutable(ctx context.Context, entryID string) (identity.Caller, *api.Envelope[domain.TimesheetEntry]) {
	var zero identity.Caller
	caller, ok := callerFrom(ctx)
	if !ok {
		env := api.Fail[domain.TimesheetEntry](api.CodeUnauthenticated, "caller identity required")
		return zero, &env
	}
	entry, err := h.entries.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			env := api.Fail[domain.TimesheetEntry](api.CodeNotFound, "timesheet entry not found")
			return zero, &env
		}
		env := api.FailErr[domain.TimesheetEntry](err)
		return zero, &env
	}
	allowed, err := h.authz.AllowEntryMutation(ctx, caller, entry.CreatedBy)
	if err != nil {
		env := api.FailErr[domain.TimesheetEntry](err)
		return zero, &env
	}
	if !allowed {
		env := api.Fail[domain.TimesheetEntry](api.CodeForbidden, "not allowed to modify this entry")
		return zero, &env
	}
	return caller, nil
}

func callerFrom(ctx context.Context) (identity.Caller, bool) {
	userID, ok := authctx.UserID(ctx)
	if !ok || userID == "" {
		return identity.Caller{}, false
	}
	role, _ := authctx.Role(ctx)
	return identity.Caller{UserID: userID, Role: role}, true
}
