// Package service computes timesheet rollups for dashboards and reports. All
// aggregation is pure over a fetched entry snapshot: it never reads the live
// timer registry, so report generation cannot stall active timers and is safe
// to run concurrently with timer operations.
//
// Hours are summed from raw entry minutes and rounded to two decimal places
// once, at the final step, so rounding error never compounds across many
// small entries.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	tsdomain "legal-case-platform/backend/internal/timesheet/domain"
	"legal-case-platform/backend/internal/timesheet/repository"
	tsservice "legal-case-platform/backend/internal/timesheet/service"
)

// UserStats is the per-user rollup for the dashboard.
type UserStats struct {
	TotalHours   float64
	TotalMinutes int
	TotalSeconds int
	// DailyHours covers entries starting on or after today 00:00;
	// WeeklyHours on or after the most recent Sunday 00:00; MonthlyHours on
	// or after the first of the current month.
	DailyHours   float64
	WeeklyHours  float64
	MonthlyHours float64
	PerCaseHours map[string]float64
	PerTaskHours map[string]float64
	// AverageSessionLength is TotalHours / TotalSessions, 0 with no entries.
	AverageSessionLength float64
	TotalSessions        int
	BillableAmount       float64
}

// CaseStats is the per-case rollup.
type CaseStats struct {
	TotalHours           float64
	TotalEntries         int
	AverageSessionLength float64
	PerUserHours         map[string]float64
	PerTaskHours         map[string]float64
	// PerDayHours is keyed by ISO date (2006-01-02).
	PerDayHours map[string]float64
}

// Performer is one row of the team leaderboard.
type Performer struct {
	UserID string
	Hours  float64
}

// TeamStats is the aggregate rollup over a set of users.
type TeamStats struct {
	TotalHours   float64
	TotalEntries int
	// TeamAverage is TotalHours divided by the number of requested users
	// (not the number with entries); 0 for an empty user list.
	TeamAverage float64
	// TopPerformers holds at most five users ordered by hours descending,
	// ties broken by ascending user id for determinism.
	TopPerformers []Performer
}

// Aggregator fetches persisted entries and computes rollups.
type Aggregator struct {
	repo repository.Repository
	nowF func() time.Time
}

// NewAggregator returns an Aggregator reading through repo.
func NewAggregator(repo repository.Repository) *Aggregator {
	return &Aggregator{repo: repo, nowF: time.Now}
}

// UserStats computes the rollup for one user. Zero from/to leave that bound open.
func (a *Aggregator) UserStats(ctx context.Context, userID string, from, to time.Time) (*UserStats, error) {
	entries, err := a.repo.ListByUserAndRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", tsservice.ErrPersistence, err)
	}
	stats := ComputeUserStats(entries, a.nowF())
	return &stats, nil
}

// CaseStats computes the rollup for one case.
func (a *Aggregator) CaseStats(ctx context.Context, caseID string, from, to time.Time) (*CaseStats, error) {
	entries, err := a.repo.ListByCase(ctx, caseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", tsservice.ErrPersistence, err)
	}
	stats := ComputeCaseStats(entries)
	return &stats, nil
}

// TeamStats computes the aggregate rollup for the given users.
func (a *Aggregator) TeamStats(ctx context.Context, userIDs []string, from, to time.Time) (*TeamStats, error) {
	var entries []*tsdomain.TimesheetEntry
	if len(userIDs) > 0 {
		var err error
		entries, err = a.repo.ListByUsers(ctx, userIDs, from, to)
		if err != nil {
			return nil, fmt.Errorf("%w: list entries: %v", tsservice.ErrPersistence, err)
		}
	}
	stats := ComputeTeamStats(entries, userIDs)
	return &stats, nil
}

// ComputeUserStats aggregates the snapshot. now anchors the day, week, and
// month boundaries.
func ComputeUserStats(entries []*tsdomain.TimesheetEntry, now time.Time) UserStats {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday())) // most recent Sunday
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var total, daily, weekly, monthly, amount float64
	perCase := map[string]float64{}
	perTask := map[string]float64{}
	for _, e := range entries {
		h := entryHours(e)
		total += h
		amount += e.TotalAmount
		if !e.StartTime.Before(dayStart) {
			daily += h
		}
		if !e.StartTime.Before(weekStart) {
			weekly += h
		}
		if !e.StartTime.Before(monthStart) {
			monthly += h
		}
		if e.CaseID != "" {
			perCase[e.CaseID] += h
		}
		if e.TaskID != "" {
			perTask[e.TaskID] += h
		}
	}

	avg := 0.0
	if len(entries) > 0 {
		avg = total / float64(len(entries))
	}
	return UserStats{
		TotalHours:           round2(total),
		TotalMinutes:         int(math.Round(total * 60)),
		TotalSeconds:         int(math.Round(total * 3600)),
		DailyHours:           round2(daily),
		WeeklyHours:          round2(weekly),
		MonthlyHours:         round2(monthly),
		PerCaseHours:         roundMap(perCase),
		PerTaskHours:         roundMap(perTask),
		AverageSessionLength: round2(avg),
		TotalSessions:        len(entries),
		BillableAmount:       round2(amount),
	}
}

// ComputeCaseStats aggregates the snapshot for a single case.
func ComputeCaseStats(entries []*tsdomain.TimesheetEntry) CaseStats {
	var total float64
	perUser := map[string]float64{}
	perTask := map[string]float64{}
	perDay := map[string]float64{}
	for _, e := range entries {
		h := entryHours(e)
		total += h
		perUser[e.UserID] += h
		if e.TaskID != "" {
			perTask[e.TaskID] += h
		}
		perDay[e.StartTime.Format("2006-01-02")] += h
	}

	avg := 0.0
	if len(entries) > 0 {
		avg = total / float64(len(entries))
	}
	return CaseStats{
		TotalHours:           round2(total),
		TotalEntries:         len(entries),
		AverageSessionLength: round2(avg),
		PerUserHours:         roundMap(perUser),
		PerTaskHours:         roundMap(perTask),
		PerDayHours:          roundMap(perDay),
	}
}

// ComputeTeamStats aggregates the snapshot across userIDs.
func ComputeTeamStats(entries []*tsdomain.TimesheetEntry, userIDs []string) TeamStats {
	var total float64
	perUser := map[string]float64{}
	for _, e := range entries {
		h := entryHours(e)
		total += h
		perUser[e.UserID] += h
	}

	performers := make([]Performer, 0, len(perUser))
	for userID, h := range perUser {
		performers = append(performers, Performer{UserID: userID, Hours: h})
	}
	sort.Slice(performers, func(i, j int) bool {
		if performers[i].Hours != performers[j].Hours {
			return performers[i].Hours > performers[j].Hours
		}
		return performers[i].UserID < performers[j].UserID
	})
	if len(performers) > 5 {
		performers = performers[:5]
	}
	for i := range performers {
		performers[i].Hours = round2(performers[i].Hours)
	}

	avg := 0.0
	if len(userIDs) > 0 {
		avg = total / float64(len(userIDs))
	}
	return TeamStats{
		TotalHours:    round2(total),
		TotalEntries:  len(entries),
		TeamAverage:   round2(avg),
		TopPerformers: performers,
	}
}

func entryHours(e *tsdomain.TimesheetEntry) float64 {
	return float64(e.DurationMinutes) / 60
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundMap(m map[string]float64) map[string]float64 {
	for k, v := range m {
		m[k] = round2(v)
	}
	return m
}
