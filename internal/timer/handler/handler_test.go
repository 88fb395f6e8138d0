package handler

import (
	"context"
	"sync"
	"testing"

	"legal-case-platform/backend/internal/api"
	"legal-case-platform/backend/internal/platform/authctx"
	timerdomain "legal-case-platform/backend/internal/timer/domain"
	"legal-case-platform/backend/internal/timer/registry"
	timerservice "legal-case-platform/backend/internal/timer/service"
	tsdomain "legal-case-platform/backend/internal/timesheet/domain"
)

// nopWriter satisfies the entry writer without persistence.
type nopWriter struct{}

func (nopWriter) ConvertAndPersist(ctx context.Context, session *timerdomain.TimerSession) (*tsdomain.TimesheetEntry, error) {
	return &tsdomain.TimesheetEntry{ID: "entry-1", UserID: session.UserID}, nil
}

// recordingAuditor captures audit events.
type recordingAuditor struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordingAuditor) RecordEvent(ctx context.Context, action, resource, userID string, details map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func newTestHandler() (*Handler, *recordingAuditor) {
	auditor := &recordingAuditor{}
	svc := timerservice.New(registry.New(), nopWriter{}, nil)
	return New(svc, auditor), auditor
}

func callerCtx(userID string) context.Context {
	return authctx.WithCaller(context.Background(), userID, "lawyer")
}

func TestStartTimer(t *testing.T) {
	h, _ := newTestHandler()

	env := h.StartTimer(callerCtx("u1"), StartTimerRequest{CaseID: "case-1", Description: "Research"})
	if !env.Success {
		t.Fatalf("StartTimer failed: %+v", env.Error)
	}
	if env.Payload.UserID != "u1" {
		t.Errorf("UserID = %q, want %q", env.Payload.UserID, "u1")
	}
	if env.Payload.Status != timerdomain.StatusRunning {
		t.Errorf("Status = %q, want %q", env.Payload.Status, timerdomain.StatusRunning)
	}
}

func TestStartTimer_Unauthenticated(t *testing.T) {
	h, _ := newTestHandler()

	env := h.StartTimer(context.Background(), StartTimerRequest{})
	if env.Success {
		t.Fatal("StartTimer without caller should fail")
	}
	if env.Error.Code != api.CodeUnauthenticated {
		t.Errorf("Code = %q, want %q", env.Error.Code, api.CodeUnauthenticated)
	}
}

func TestPauseTimer_InvalidStateCode(t *testing.T) {
	h, _ := newTestHandler()
	ctx := callerCtx("u1")

	started := h.StartTimer(ctx, StartTimerRequest{})
	if !started.Success {
		t.Fatalf("StartTimer failed: %+v", started.Error)
	}
	id := started.Payload.ID

	if env := h.PauseTimer(ctx, id); !env.Success {
		t.Fatalf("PauseTimer failed: %+v", env.Error)
	}
	env := h.PauseTimer(ctx, id)
	if env.Success {
		t.Fatal("second PauseTimer should fail")
	}
	if env.Error.Code != api.CodeInvalidState {
		t.Errorf("Code = %q, want %q", env.Error.Code, api.CodeInvalidState)
	}
}

func TestTimerOps_ForeignTimerIsNotFound(t *testing.T) {
	h, _ := newTestHandler()

	started := h.StartTimer(callerCtx("u1"), StartTimerRequest{})
	id := started.Payload.ID

	// Another user cannot see or mutate u1's timer; the id must not leak.
	otherCtx := callerCtx("u2")
	if env := h.GetTimer(otherCtx, id); env.Success || env.Error.Code != api.CodeNotFound {
		t.Errorf("GetTimer as other user = %+v, want NOT_FOUND", env.Error)
	}
	if env := h.PauseTimer(otherCtx, id); env.Success || env.Error.Code != api.CodeNotFound {
		t.Errorf("PauseTimer as other user = %+v, want NOT_FOUND", env.Error)
	}
	if env := h.StopTimer(otherCtx, StopTimerRequest{TimerID: id, SaveEntry: true}); env.Success || env.Error.Code != api.CodeNotFound {
		t.Errorf("StopTimer as other user = %+v, want NOT_FOUND", env.Error)
	}
	// The owner's timer must be untouched.
	if env := h.GetTimer(callerCtx("u1"), id); !env.Success {
		t.Errorf("owner GetTimer failed: %+v", env.Error)
	}
}

func TestStopTimer(t *testing.T) {
	h, _ := newTestHandler()
	ctx := callerCtx("u1")

	started := h.StartTimer(ctx, StartTimerRequest{})
	env := h.StopTimer(ctx, StopTimerRequest{TimerID: started.Payload.ID, SaveEntry: false})
	if !env.Success {
		t.Fatalf("StopTimer failed: %+v", env.Error)
	}
	if env.Payload.Timer.Status != timerdomain.StatusStopped {
		t.Errorf("Status = %q, want %q", env.Payload.Timer.Status, timerdomain.StatusStopped)
	}
	if env.Payload.Entry != nil {
		t.Errorf("Entry = %+v, want nil for saveEntry=false", env.Payload.Entry)
	}
	if env.Payload.EntrySaveFailed {
		t.Error("EntrySaveFailed = true, want false")
	}
}

func TestGetActiveTimer(t *testing.T) {
	h, _ := newTestHandler()
	ctx := callerCtx("u1")

	env := h.GetActiveTimer(ctx)
	if env.Success {
		t.Fatal("GetActiveTimer with no timer should fail")
	}
	if env.Error.Code != api.CodeNotFound {
		t.Errorf("Code = %q, want %q", env.Error.Code, api.CodeNotFound)
	}

	started := h.StartTimer(ctx, StartTimerRequest{})
	env = h.GetActiveTimer(ctx)
	if !env.Success {
		t.Fatalf("GetActiveTimer failed: %+v", env.Error)
	}
	if env.Payload.ID != started.Payload.ID {
		t.Errorf("ID = %q, want %q", env.Payload.ID, started.Payload.ID)
	}
}

func TestUpdateTimer(t *testing.T) {
	h, _ := newTestHandler()
	ctx := callerCtx("u1")

	started := h.StartTimer(ctx, StartTimerRequest{Description: "Old"})
	env := h.UpdateTimer(ctx, UpdateTimerRequest{TimerID: started.Payload.ID, Description: "New"})
	if !env.Success {
		t.Fatalf("UpdateTimer failed: %+v", env.Error)
	}
	if env.Payload.Description != "New" {
		t.Errorf("Description = %q, want %q", env.Payload.Description, "New")
	}
}
