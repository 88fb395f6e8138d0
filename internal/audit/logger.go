package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"legal-case-platform/backend/internal/audit/domain"
	auditrepo "legal-case-platform/backend/internal/audit/repository"
)

// recordTimeout bounds a single async audit write so fire-and-forget calls
// cannot pile up behind a stuck store.
const recordTimeout = 5 * time.Second

// Recorder writes a single audit event with explicit action/resource.
// RecordEvent is best-effort: failures are logged and never affect the caller.
type Recorder interface {
	RecordEvent(ctx context.Context, action, resource, userID string, details map[string]any)
}

// Logger implements Recorder using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns a Recorder that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// RecordEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) RecordEvent(ctx context.Context, action, resource, userID string, details map[string]any) {
	if l.repo == nil {
		return
	}
	var detailsJSON string
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			log.Printf("audit: failed to encode details for %s/%s: %v", action, resource, err)
		} else {
			detailsJSON = string(b)
		}
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Details:   detailsJSON,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}

// RecordAsync runs RecordEvent in a goroutine with a short timeout so request
// handlers are never blocked by the audit store. rec may be nil; RecordAsync
// returns immediately without starting a goroutine.
//
// The goroutine uses context.Background() with recordTimeout so request
// cancellation does not abort an in-flight write.
func RecordAsync(rec Recorder, action, resource, userID string, details map[string]any) {
	if rec == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		rec.RecordEvent(ctx, action, resource, userID, details)
	}()
}
