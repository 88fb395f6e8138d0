// Package domain holds the live timer session model. Sessions exist only in
// the in-process registry; once stopped they leave the registry and survive
// solely as the timesheet entry written on stop.
package domain

import "time"

// Status is the timer lifecycle state.
type Status string

const (
	// StatusRunning means the timer is accumulating time.
	StatusRunning Status = "RUNNING"
	// StatusPaused means the timer is suspended; paused time is excluded from TotalTime.
	StatusPaused Status = "PAUSED"
	// StatusStopped is terminal; the session is no longer tracked in the registry.
	StatusStopped Status = "STOPPED"
)

// TimerSession is a live work-tracking period for one user.
//
// For each user at most one session with status RUNNING or PAUSED exists at a
// time; the registry enforces this. All duration accumulators are in
// milliseconds, matching the persisted entry math.
type TimerSession struct {
	ID     string
	UserID string
	// CaseID and TaskID are optional; empty string means unset.
	CaseID string
	TaskID string
	Status Status
	// StartTime is the wall-clock start of the current running stretch. On
	// resume it is rebased so that now-StartTime equals the elapsed session
	// time, which keeps live display math a single subtraction.
	StartTime time.Time
	// PausedAt is set only while Status is PAUSED.
	PausedAt time.Time
	// TotalPausedMS accumulates time spent paused, for reporting only.
	TotalPausedMS int64
	// CurrentSessionMS is the elapsed time of the running stretch at the last
	// transition (or recomputed on read while running).
	CurrentSessionMS int64
	// TotalMS accumulates worked time across pause cycles. Monotonically
	// non-decreasing while the session is alive.
	TotalMS     int64
	Description string
	CreatedAt   time.Time
	LastUpdated time.Time
}

// Active reports whether the session still occupies the user's timer slot.
func (s *TimerSession) Active() bool {
	return s.Status == StatusRunning || s.Status == StatusPaused
}

// Elapsed returns the worked duration as of now, including the in-flight
// running stretch. While running, StartTime is rebased on resume so a single
// subtraction covers all completed stretches. It does not mutate the session.
func (s *TimerSession) Elapsed(now time.Time) time.Duration {
	if s.Status == StatusRunning {
		return now.Sub(s.StartTime)
	}
	return time.Duration(s.TotalMS) * time.Millisecond
}
