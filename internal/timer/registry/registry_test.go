package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"legal-case-platform/backend/internal/timer/domain"
)

func newSession(id, userID string) domain.TimerSession {
	now := time.Now().UTC()
	return domain.TimerSession{
		ID:          id,
		UserID:      userID,
		Status:      domain.StatusRunning,
		StartTime:   now,
		Description: "Work session",
		CreatedAt:   now,
		LastUpdated: now,
	}
}

func TestStart_FirstTimer(t *testing.T) {
	r := New()
	discarded := r.Start(newSession("t1", "u1"))
	if discarded != nil {
		t.Errorf("discarded = %+v, want nil", discarded)
	}
	got, ok := r.Get("t1")
	if !ok {
		t.Fatal("Get(t1) not found")
	}
	if got.UserID != "u1" {
		t.Errorf("UserID = %q, want %q", got.UserID, "u1")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestStart_DisplacesPrevious(t *testing.T) {
	r := New()
	r.Start(newSession("t1", "u1"))
	discarded := r.Start(newSession("t2", "u1"))

	if discarded == nil {
		t.Fatal("second Start should return the displaced session")
	}
	if discarded.ID != "t1" {
		t.Errorf("discarded.ID = %q, want %q", discarded.ID, "t1")
	}
	// Displaced session is returned as it was; the caller finalizes it.
	if discarded.Status != domain.StatusRunning {
		t.Errorf("discarded.Status = %q, want %q", discarded.Status, domain.StatusRunning)
	}
	if _, ok := r.Get("t1"); ok {
		t.Error("t1 should no longer be resolvable by timer id")
	}
	active, ok := r.ActiveForUser("u1")
	if !ok || active.ID != "t2" {
		t.Errorf("ActiveForUser = %+v, %v; want t2", active, ok)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestStart_SeparateUsers(t *testing.T) {
	r := New()
	r.Start(newSession("t1", "u1"))
	discarded := r.Start(newSession("t2", "u2"))
	if discarded != nil {
		t.Errorf("other user's start should not displace, got %+v", discarded)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}

func TestUpdate_MutatesCopy(t *testing.T) {
	r := New()
	r.Start(newSession("t1", "u1"))

	updated, found, err := r.Update("t1", func(s *domain.TimerSession) error {
		s.Description = "changed"
		return nil
	})
	if !found || err != nil {
		t.Fatalf("Update: found=%v err=%v", found, err)
	}
	if updated.Description != "changed" {
		t.Errorf("Description = %q, want %q", updated.Description, "changed")
	}
	got, _ := r.Get("t1")
	if got.Description != "changed" {
		t.Errorf("stored Description = %q, want %q", got.Description, "changed")
	}
}

func TestUpdate_ErrorLeavesSessionUnchanged(t *testing.T) {
	r := New()
	r.Start(newSession("t1", "u1"))

	_, found, err := r.Update("t1", func(s *domain.TimerSession) error {
		s.Description = "changed"
		return fmt.Errorf("boom")
	})
	if !found {
		t.Fatal("Update should find t1")
	}
	if err == nil {
		t.Fatal("Update should propagate fn error")
	}
	got, _ := r.Get("t1")
	if got.Description != "Work session" {
		t.Errorf("Description = %q, want unchanged", got.Description)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	r := New()
	_, found, err := r.Update("missing", func(*domain.TimerSession) error { return nil })
	if found {
		t.Error("found = true, want false")
	}
	if err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestRemove(t *testing.T) {
	r := New()
	r.Start(newSession("t1", "u1"))

	final, found, err := r.Remove("t1", func(s *domain.TimerSession) error {
		s.Status = domain.StatusStopped
		return nil
	})
	if !found || err != nil {
		t.Fatalf("Remove: found=%v err=%v", found, err)
	}
	if final.Status != domain.StatusStopped {
		t.Errorf("final.Status = %q, want %q", final.Status, domain.StatusStopped)
	}
	if _, ok := r.Get("t1"); ok {
		t.Error("t1 should be gone after Remove")
	}
	if _, ok := r.ActiveForUser("u1"); ok {
		t.Error("u1 should have no active session after Remove")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestRemove_NotFound(t *testing.T) {
	r := New()
	_, found, _ := r.Remove("missing", func(*domain.TimerSession) error { return nil })
	if found {
		t.Error("found = true, want false")
	}
}

func TestConcurrentStarts_OnePerUser(t *testing.T) {
	r := New()
	const users = 8
	const startsPerUser = 25

	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		userID := fmt.Sprintf("u%d", u)
		for i := 0; i < startsPerUser; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				r.Start(newSession(id, userID))
			}(fmt.Sprintf("%s-t%d", userID, i))
		}
	}
	wg.Wait()

	if r.Len() != users {
		t.Errorf("Len = %d, want %d (one active timer per user)", r.Len(), users)
	}
	for u := 0; u < users; u++ {
		userID := fmt.Sprintf("u%d", u)
		active, ok := r.ActiveForUser(userID)
		if !ok {
			t.Errorf("user %s has no active session", userID)
			continue
		}
		// The winner must be resolvable through its timer id too.
		if got, ok := r.Get(active.ID); !ok || got.UserID != userID {
			t.Errorf("Get(%s) = %+v, %v; want session for %s", active.ID, got, ok, userID)
		}
	}
}

func TestConcurrentUpdates_NoLostWrites(t *testing.T) {
	r := New()
	r.Start(newSession("t1", "u1"))

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = r.Update("t1", func(s *domain.TimerSession) error {
				s.TotalMS++
				return nil
			})
		}()
	}
	wg.Wait()

	got, ok := r.Get("t1")
	if !ok {
		t.Fatal("t1 missing after updates")
	}
	if got.TotalMS != workers {
		t.Errorf("TotalMS = %d, want %d", got.TotalMS, workers)
	}
}
