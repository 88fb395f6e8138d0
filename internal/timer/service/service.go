// Package service implements the timer state machine over the in-memory
// registry: Start, Pause, Resume, Stop, Get, and description updates. All
// transitions for one user serialize through the registry's per-user lock;
// the only blocking work, the entry write on Stop, runs after that lock is
// released.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"legal-case-platform/backend/internal/timer/domain"
	"legal-case-platform/backend/internal/timer/registry"
	tsdomain "legal-case-platform/backend/internal/timesheet/domain"
)

// Sentinel errors; the handler maps them to envelope codes.
var (
	// ErrNotFound is returned when no live session has the given timer id.
	ErrNotFound = errors.New("timer not found")
	// ErrInvalidState is returned for transitions the current status does not
	// allow (pausing a non-running timer, resuming a non-paused one).
	ErrInvalidState = errors.New("invalid timer state")
)

// defaultDescription is used when Start is called with an empty description.
const defaultDescription = "Work session"

// EntryWriter persists a finalized session as a timesheet entry. Implemented
// by the timesheet service; failures must surface as its persistence error.
type EntryWriter interface {
	ConvertAndPersist(ctx context.Context, session *domain.TimerSession) (*tsdomain.TimesheetEntry, error)
}

// StopResult reports the outcome of Stop. The timer is always stopped and
// removed from the registry; Entry is nil when no entry was requested, the
// session had no recorded time, or the write failed. A failed write is
// reported through SaveErr so callers see the partial success instead of a
// silently dropped stop.
type StopResult struct {
	Session domain.TimerSession
	Entry   *tsdomain.TimesheetEntry
	SaveErr error
}

// Service runs timer state transitions against the registry.
type Service struct {
	reg     *registry.Registry
	writer  EntryWriter
	discard DiscardPolicy
	nowF    func() time.Time
}

// New returns a timer Service. writer persists entries on Stop; discard
// decides the fate of an unsaved session displaced by Start (nil means
// DiscardUnsaved).
func New(reg *registry.Registry, writer EntryWriter, discard DiscardPolicy) *Service {
	if discard == nil {
		discard = DiscardUnsaved{}
	}
	return &Service{reg: reg, writer: writer, discard: discard, nowF: time.Now}
}

// Start creates a running session for the user. Any existing active session
// for the same user is removed from the registry first and handed to the
// discard policy; the most recent start always wins.
func (s *Service) Start(ctx context.Context, userID, caseID, taskID, description string) (domain.TimerSession, error) {
	if description == "" {
		description = defaultDescription
	}
	now := s.nowF()
	session := domain.TimerSession{
		ID:          uuid.New().String(),
		UserID:      userID,
		CaseID:      caseID,
		TaskID:      taskID,
		Status:      domain.StatusRunning,
		StartTime:   now,
		Description: description,
		CreatedAt:   now,
		LastUpdated: now,
	}

	discarded := s.reg.Start(session)
	if discarded != nil {
		finalize(discarded, now)
		s.discard.HandleDiscarded(ctx, discarded)
	}
	return session, nil
}

// Pause suspends a running timer, folding the elapsed stretch into the
// session total.
func (s *Service) Pause(ctx context.Context, timerID string) (domain.TimerSession, error) {
	now := s.nowF()
	updated, found, err := s.reg.Update(timerID, func(t *domain.TimerSession) error {
		if t.Status != domain.StatusRunning {
			return fmt.Errorf("%w: cannot pause %s timer", ErrInvalidState, t.Status)
		}
		fold(t, now)
		t.Status = domain.StatusPaused
		t.PausedAt = now
		t.LastUpdated = now
		return nil
	})
	if !found {
		return domain.TimerSession{}, ErrNotFound
	}
	return updated, err
}

// Resume restarts a paused timer. StartTime is rebased to now minus the
// accumulated session time so live elapsed math stays a single subtraction.
func (s *Service) Resume(ctx context.Context, timerID string) (domain.TimerSession, error) {
	now := s.nowF()
	updated, found, err := s.reg.Update(timerID, func(t *domain.TimerSession) error {
		if t.Status != domain.StatusPaused {
			return fmt.Errorf("%w: cannot resume %s timer", ErrInvalidState, t.Status)
		}
		t.TotalPausedMS += now.Sub(t.PausedAt).Milliseconds()
		t.StartTime = now.Add(-time.Duration(t.CurrentSessionMS) * time.Millisecond)
		t.PausedAt = time.Time{}
		t.Status = domain.StatusRunning
		t.LastUpdated = now
		return nil
	})
	if !found {
		return domain.TimerSession{}, ErrNotFound
	}
	return updated, err
}

// Stop finalizes the timer, removes it from the registry, and, when
// saveEntry is true and time was recorded, persists a timesheet entry. The
// registry drops the session before the write begins so a slow write never
// blocks the user's next timer, and a write failure is reported as a partial
// success in StopResult.SaveErr.
func (s *Service) Stop(ctx context.Context, timerID string, saveEntry bool) (StopResult, error) {
	now := s.nowF()
	final, found, err := s.reg.Remove(timerID, func(t *domain.TimerSession) error {
		finalize(t, now)
		return nil
	})
	if !found {
		return StopResult{}, ErrNotFound
	}
	if err != nil {
		return StopResult{}, err
	}

	res := StopResult{Session: final}
	if saveEntry && final.TotalMS > 0 && s.writer != nil {
		entry, werr := s.writer.ConvertAndPersist(ctx, &final)
		if werr != nil {
			res.SaveErr = werr
		} else {
			res.Entry = entry
		}
	}
	return res, nil
}

// Get returns the session for display. For a running timer the current
// session time is recomputed against now on the returned copy only; the
// stored accumulators are not touched.
func (s *Service) Get(ctx context.Context, timerID string) (domain.TimerSession, error) {
	t, ok := s.reg.Get(timerID)
	if !ok {
		return domain.TimerSession{}, ErrNotFound
	}
	if t.Status == domain.StatusRunning {
		now := s.nowF()
		t.CurrentSessionMS = now.Sub(t.StartTime).Milliseconds()
		t.LastUpdated = now
	}
	return t, nil
}

// ActiveForUser returns the user's active session, if any, for the timer
// widget. Same dirty-read behavior as Get.
func (s *Service) ActiveForUser(ctx context.Context, userID string) (domain.TimerSession, bool) {
	t, ok := s.reg.ActiveForUser(userID)
	if !ok {
		return domain.TimerSession{}, false
	}
	if t.Status == domain.StatusRunning {
		t.CurrentSessionMS = s.nowF().Sub(t.StartTime).Milliseconds()
	}
	return t, true
}

// UpdateDescription changes only the session description.
func (s *Service) UpdateDescription(ctx context.Context, timerID, description string) (domain.TimerSession, error) {
	now := s.nowF()
	updated, found, err := s.reg.Update(timerID, func(t *domain.TimerSession) error {
		t.Description = description
		t.LastUpdated = now
		return nil
	})
	if !found {
		return domain.TimerSession{}, ErrNotFound
	}
	return updated, err
}

// fold moves the newly elapsed part of the running stretch into TotalMS and
// refreshes CurrentSessionMS. Because Resume rebases StartTime, the stretch
// now-StartTime is cumulative across pause cycles; only the delta since the
// last fold is added, keeping TotalMS exact with no double counting.
func fold(t *domain.TimerSession, now time.Time) {
	stretch := now.Sub(t.StartTime).Milliseconds()
	t.TotalMS += stretch - t.CurrentSessionMS
	t.CurrentSessionMS = stretch
}

// finalize folds any in-flight running time and marks the session stopped.
func finalize(t *domain.TimerSession, now time.Time) {
	if t.Status == domain.StatusRunning {
		fold(t, now)
	}
	t.Status = domain.StatusStopped
	t.LastUpdated = now
}
