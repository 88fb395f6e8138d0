// Package handler exposes the timer operations as envelope-returning calls.
// It resolves the caller from context, delegates to the timer service, and
// records best-effort audit events; it holds no timer logic of its own.
package handler

import (
	"context"
	"errors"

	"legal-case-platform/backend/internal/api"
	"legal-case-platform/backend/internal/audit"
	"legal-case-platform/backend/internal/platform/authctx"
	"legal-case-platform/backend/internal/timer/domain"
	timerservice "legal-case-platform/backend/internal/timer/service"
	tsdomain "legal-case-platform/backend/internal/timesheet/domain"
)

// StartTimerRequest carries the input for StartTimer. CaseID and TaskID are
// optional.
type StartTimerRequest struct {
	CaseID      string
	TaskID      string
	Description string
}

// StopTimerRequest carries the input for StopTimer. SaveEntry defaults to
// true at the transport edge; here it is explicit.
type StopTimerRequest struct {
	TimerID   string
	SaveEntry bool
}

// UpdateTimerRequest carries the input for UpdateTimer.
type UpdateTimerRequest struct {
	TimerID     string
	Description string
}

// StopTimerResult reports a stop, including the partial-success case where
// the timer stopped but the entry write failed (EntrySaveFailed true, Entry
// nil). Callers must not treat a nil Entry alone as "nothing to save".
type StopTimerResult struct {
	Timer           domain.TimerSession
	Entry           *tsdomain.TimesheetEntry
	EntrySaveFailed bool
}

// Handler serves the timer operation surface.
type Handler struct {
	timers  *timerservice.Service
	auditor audit.Recorder
}

// New returns a timer Handler. auditor may be nil to disable audit events.
func New(timers *timerservice.Service, auditor audit.Recorder) *Handler {
	return &Handler{timers: timers, auditor: auditor}
}

// StartTimer starts a new timer for the caller. Any previously active timer
// of the caller is displaced per the configured discard policy.
func (h *Handler) StartTimer(ctx context.Context, req StartTimerRequest) (env api.Envelope[domain.TimerSession]) {
	defer api.Recover(&env)
	caller, ok := authctx.UserID(ctx)
	if !ok || caller == "" {
		return api.Fail[domain.TimerSession](api.CodeUnauthenticated, "caller identity required")
	}
	session, err := h.timers.Start(ctx, caller, req.CaseID, req.TaskID, req.Description)
	if err != nil {
		return api.FailErr[domain.TimerSession](err)
	}
	audit.RecordAsync(h.auditor, "START_TIMER", "TIMER#"+session.ID, caller, map[string]any{
		"timerId":     session.ID,
		"caseId":      session.CaseID,
		"taskId":      session.TaskID,
		"description": session.Description,
	})
	return api.OK(session)
}

// PauseTimer pauses the caller's running timer.
func (h *Handler) PauseTimer(ctx context.Context, timerID string) (env api.Envelope[domain.TimerSession]) {
	defer api.Recover(&env)
	caller, failEnv := h.requireOwner(ctx, timerID)
	if failEnv != nil {
		return *failEnv
	}
	session, err := h.timers.Pause(ctx, timerID)
	if err != nil {
		return api.FailErr[domain.TimerSession](err)
	}
	audit.RecordAsync(h.auditor, "PAUSE_TIMER", "TIMER#"+timerID, caller, map[string]any{
		"timerId":            timerID,
		"currentSessionTime": session.CurrentSessionMS,
		"totalTime":          session.TotalMS,
	})
	return api.OK(session)
}

// ResumeTimer resumes the caller's paused timer.
func (h *Handler) ResumeTimer(ctx context.Context, timerID string) (env api.Envelope[domain.TimerSession]) {
	defer api.Recover(&env)
	caller, failEnv := h.requireOwner(ctx, timerID)
	if failEnv != nil {
		return *failEnv
	}
	session, err := h.timers.Resume(ctx, timerID)
	if err != nil {
		return api.FailErr[domain.TimerSession](err)
	}
	audit.RecordAsync(h.auditor, "RESUME_TIMER", "TIMER#"+timerID, caller, map[string]any{
		"timerId":         timerID,
		"totalPausedTime": session.TotalPausedMS,
	})
	return api.OK(session)
}

// StopTimer stops the caller's timer and, when requested, persists the
// timesheet entry. A failed entry write still stops the timer and is
// reported through EntrySaveFailed.
func (h *Handler) StopTimer(ctx context.Context, req StopTimerRequest) (env api.Envelope[StopTimerResult]) {
	defer api.Recover(&env)
	caller, failEnv := ownerFail[StopTimerResult](h, ctx, req.TimerID)
	if failEnv != nil {
		return *failEnv
	}
	res, err := h.timers.Stop(ctx, req.TimerID, req.SaveEntry)
	if err != nil {
		return api.FailErr[StopTimerResult](err)
	}
	audit.RecordAsync(h.auditor, "STOP_TIMER", "TIMER#"+req.TimerID, caller, map[string]any{
		"timerId":    req.TimerID,
		"totalTime":  res.Session.TotalMS,
		"savedEntry": res.Entry != nil,
	})
	return api.OK(StopTimerResult{
		Timer:           res.Session,
		Entry:           res.Entry,
		EntrySaveFailed: res.SaveErr != nil,
	})
}

// GetTimer returns the caller's timer with live elapsed time while running.
func (h *Handler) GetTimer(ctx context.Context, timerID string) (env api.Envelope[domain.TimerSession]) {
	defer api.Recover(&env)
	_, failEnv := h.requireOwner(ctx, timerID)
	if failEnv != nil {
		return *failEnv
	}
	session, err := h.timers.Get(ctx, timerID)
	if err != nil {
		return api.FailErr[domain.TimerSession](err)
	}
	return api.OK(session)
}

// GetActiveTimer returns the caller's active timer, or NOT_FOUND when none
// is running or paused.
func (h *Handler) GetActiveTimer(ctx context.Context) (env api.Envelope[domain.TimerSession]) {
	defer api.Recover(&env)
	caller, ok := authctx.UserID(ctx)
	if !ok || caller == "" {
		return api.Fail[domain.TimerSession](api.CodeUnauthenticated, "caller identity required")
	}
	session, found := h.timers.ActiveForUser(ctx, caller)
	if !found {
		return api.Fail[domain.TimerSession](api.CodeNotFound, "no active timer")
	}
	return api.OK(session)
}

// UpdateTimer changes the timer's description only.
func (h *Handler) UpdateTimer(ctx context.Context, req UpdateTimerRequest) (env api.Envelope[domain.TimerSession]) {
	defer api.Recover(&env)
	caller, failEnv := h.requireOwner(ctx, req.TimerID)
	if failEnv != nil {
		return *failEnv
	}
	session, err := h.timers.UpdateDescription(ctx, req.TimerID, req.Description)
	if err != nil {
		return api.FailErr[domain.TimerSession](err)
	}
	audit.RecordAsync(h.auditor, "UPDATE_TIMER", "TIMER#"+req.TimerID, caller, map[string]any{
		"timerId": req.TimerID,
	})
	return api.OK(session)
}

// requireOwner resolves the caller and verifies the timer belongs to them.
// A foreign timer id is reported as NOT_FOUND, not FORBIDDEN, so timer ids
// do not leak across users.
func (h *Handler) requireOwner(ctx context.Context, timerID string) (string, *api.Envelope[domain.TimerSession]) {
	return ownerFail[domain.TimerSession](h, ctx, timerID)
}

func ownerFail[T any](h *Handler, ctx context.Context, timerID string) (string, *api.Envelope[T]) {
	caller, ok := authctx.UserID(ctx)
	if !ok || caller == "" {
		env := api.Fail[T](api.CodeUnauthenticated, "caller identity required")
		return "", &env
	}
	session, err := h.timers.Get(ctx, timerID)
	if err != nil {
		if errors.Is(err, timerservice.ErrNotFound) {
			env := api.Fail[T](api.CodeNotFound, "timer not found")
			return "", &env
		}
		env := api.FailErr[T](err)
		return "", &env
	}
	if session.UserID != caller {
		env := api.Fail[T](api.CodeNotFound, "timer not found")
		return "", &env
	}
	return caller, nil
}
