// Package registry holds live timer sessions in process memory and enforces
// the one-active-timer-per-user invariant. It is the single writer for
// sessions: callers pass mutation closures that run under the owning user's
// lock and operate on a private copy, so no session value is ever aliased
// outside the registry.
//
// The registry is valid for a single long-lived process. Horizontally scaled
// deployments need an externalized, conditionally-written registry instead;
// the persistence port's idempotent entry creation keeps that path open.
package registry

import (
	"sync"

	"legal-case-platform/backend/internal/timer/domain"
)

// slot owns one user's active session. slot.mu serializes all mutations for
// that user; different users never contend.
type slot struct {
	mu      sync.Mutex
	session *domain.TimerSession // nil when the user has no active timer
}

// Registry maps users to their single active timer session.
type Registry struct {
	mu    sync.Mutex // guards users and byTimer, never held during a mutation closure
	users map[string]*slot
	// byTimer maps timer id to user id so operations keyed by timer id can
	// find the owning slot.
	byTimer map[string]string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		users:   make(map[string]*slot),
		byTimer: make(map[string]string),
	}
}

func (r *Registry) userSlot(userID string) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.users[userID]
	if !ok {
		s = &slot{}
		r.users[userID] = s
	}
	return s
}

func (r *Registry) slotForTimer(timerID string) (*slot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.byTimer[timerID]
	if !ok {
		return nil, false
	}
	s, ok := r.users[userID]
	return s, ok
}

// Start installs session as the user's active timer and returns the previous
// active session, if any, as a value copy. The caller decides what happens to
// the displaced session (see the timer service's discard policy).
func (r *Registry) Start(session domain.TimerSession) (discarded *domain.TimerSession) {
	s := r.userSlot(session.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		old := *s.session
		discarded = &old
		r.mu.Lock()
		delete(r.byTimer, s.session.ID)
		r.mu.Unlock()
	}

	stored := session
	s.session = &stored
	r.mu.Lock()
	r.byTimer[session.ID] = session.UserID
	r.mu.Unlock()
	return discarded
}

// Get returns a value copy of the session with the given timer id.
func (r *Registry) Get(timerID string) (domain.TimerSession, bool) {
	s, ok := r.slotForTimer(timerID)
	if !ok {
		return domain.TimerSession{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.ID != timerID {
		return domain.TimerSession{}, false
	}
	return *s.session, true
}

// ActiveForUser returns a value copy of the user's active session, if any.
func (r *Registry) ActiveForUser(userID string) (domain.TimerSession, bool) {
	r.mu.Lock()
	s, ok := r.users[userID]
	r.mu.Unlock()
	if !ok {
		return domain.TimerSession{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return domain.TimerSession{}, false
	}
	return *s.session, true
}

// Update runs fn on a copy of the session under the owning user's lock and,
// if fn succeeds, installs the copy as the new session value. The updated
// value is returned. If fn returns an error the stored session is unchanged.
func (r *Registry) Update(timerID string, fn func(*domain.TimerSession) error) (domain.TimerSession, bool, error) {
	s, ok := r.slotForTimer(timerID)
	if !ok {
		return domain.TimerSession{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.ID != timerID {
		return domain.TimerSession{}, false, nil
	}
	updated := *s.session
	if err := fn(&updated); err != nil {
		return domain.TimerSession{}, true, err
	}
	s.session = &updated
	return updated, true, nil
}

// Remove runs fn on a copy of the session under the owning user's lock and,
// if fn succeeds, removes the session from the registry and returns the final
// value. The lock is released before Remove returns, so any follow-up I/O
// (persisting the timesheet entry) happens with the user slot already free.
func (r *Registry) Remove(timerID string, fn func(*domain.TimerSession) error) (domain.TimerSession, bool, error) {
	s, ok := r.slotForTimer(timerID)
	if !ok {
		return domain.TimerSession{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.ID != timerID {
		return domain.TimerSession{}, false, nil
	}
	final := *s.session
	if err := fn(&final); err != nil {
		return domain.TimerSession{}, true, err
	}
	s.session = nil
	r.mu.Lock()
	delete(r.byTimer, timerID)
	r.mu.Unlock()
	return final, true, nil
}

// Len reports the number of users with an active session.
func (r *Registry) Len() int {
	r.mu.Lock()
	slots := make([]*slot, 0, len(r.users))
	for _, s := range r.users {
		slots = append(slots, s)
	}
	r.mu.Unlock()

	n := 0
	for _, s := range slots {
		s.mu.Lock()
		if s.session != nil {
			n++
		}
		s.mu.Unlock()
	}
	return n
}
