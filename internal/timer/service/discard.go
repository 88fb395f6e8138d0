package service

import (
	"context"
	"log"

	"legal-case-platform/backend/internal/timer/domain"
)

// DiscardPolicy decides what happens to an active session displaced by a new
// Start for the same user. The session has already been finalized and removed
// from the registry when HandleDiscarded runs; the policy must never fail the
// Start that triggered it.
type DiscardPolicy interface {
	HandleDiscarded(ctx context.Context, session *domain.TimerSession)
}

// DiscardUnsaved drops the displaced session without writing a timesheet
// entry: a fresh start always wins and unsaved elapsed time is lost. This is
// the default, matching the product's existing behavior.
type DiscardUnsaved struct{}

// HandleDiscarded logs the dropped session so the lost time is at least traceable.
func (DiscardUnsaved) HandleDiscarded(_ context.Context, session *domain.TimerSession) {
	log.Printf("timer: discarded unsaved session %s for user %s (%dms recorded)",
		session.ID, session.UserID, session.TotalMS)
}

// SaveBeforeDiscard persists the displaced session as a timesheet entry when
// it recorded any time, so starting a new timer never loses work. Selected
// via TIMER_DISCARD_POLICY=save.
type SaveBeforeDiscard struct {
	Writer EntryWriter
}

// HandleDiscarded writes the entry best-effort; a failed write is logged and
// does not affect the new timer.
func (p SaveBeforeDiscard) HandleDiscarded(ctx context.Context, session *domain.TimerSession) {
	if p.Writer == nil || session.TotalMS <= 0 {
		return
	}
	if _, err := p.Writer.ConvertAndPersist(ctx, session); err != nil {
		log.Printf("timer: failed to save discarded session %s: %v", session.ID, err)
	}
}
