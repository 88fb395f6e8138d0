package service

import (
	"context"
	"errors"
	"testing"
	"time"

	tsdomain "legal-case-platform/backend/internal/timesheet/domain"
	tsservice "legal-case-platform/backend/internal/timesheet/service"
)

// now is a Monday so the weekly window (since Sunday) covers exactly one prior day.
var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func entry(userID, caseID, taskID string, start time.Time, minutes int, amount float64) *tsdomain.TimesheetEntry {
	return &tsdomain.TimesheetEntry{
		ID:              userID + "-" + start.Format("150405"),
		UserID:          userID,
		CaseID:          caseID,
		TaskID:          taskID,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes: minutes,
		TotalAmount:     amount,
		Description:     "work",
	}
}

func fixtureEntries() []*tsdomain.TimesheetEntry {
	return []*tsdomain.TimesheetEntry{
		// Today: 1.5h on case A.
		entry("u1", "case-a", "task-1", testNow.Add(-3*time.Hour), 90, 300),
		// Yesterday (Sunday, inside week and month): 2.5h on case A.
		entry("u1", "case-a", "task-2", testNow.AddDate(0, 0, -1), 150, 150),
		// 10 days ago (outside week and month): 1h on case B.
		entry("u1", "case-b", "task-1", testNow.AddDate(0, 0, -10), 60, 150),
	}
}

func TestComputeUserStats(t *testing.T) {
	stats := ComputeUserStats(fixtureEntries(), testNow)

	if stats.TotalHours != 5.0 {
		t.Errorf("TotalHours = %v, want 5.0", stats.TotalHours)
	}
	if stats.TotalMinutes != 300 {
		t.Errorf("TotalMinutes = %d, want 300", stats.TotalMinutes)
	}
	if stats.TotalSeconds != 18000 {
		t.Errorf("TotalSeconds = %d, want 18000", stats.TotalSeconds)
	}
	if stats.DailyHours != 1.5 {
		t.Errorf("DailyHours = %v, want 1.5", stats.DailyHours)
	}
	if stats.WeeklyHours != 4.0 {
		t.Errorf("WeeklyHours = %v, want 4.0 (today + Sunday)", stats.WeeklyHours)
	}
	if stats.MonthlyHours != 4.0 {
		t.Errorf("MonthlyHours = %v, want 4.0", stats.MonthlyHours)
	}
	if got := stats.PerCaseHours["case-a"]; got != 4.0 {
		t.Errorf("PerCaseHours[case-a] = %v, want 4.0", got)
	}
	if got := stats.PerCaseHours["case-b"]; got != 1.0 {
		t.Errorf("PerCaseHours[case-b] = %v, want 1.0", got)
	}
	if got := stats.PerTaskHours["task-1"]; got != 2.5 {
		t.Errorf("PerTaskHours[task-1] = %v, want 2.5", got)
	}
	if stats.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", stats.TotalSessions)
	}
	// 5h over 3 sessions rounds to 1.67.
	if stats.AverageSessionLength != 1.67 {
		t.Errorf("AverageSessionLength = %v, want 1.67", stats.AverageSessionLength)
	}
	if stats.BillableAmount != 600 {
		t.Errorf("BillableAmount = %v, want 600", stats.BillableAmount)
	}
}

func TestComputeUserStats_Empty(t *testing.T) {
	stats := ComputeUserStats(nil, testNow)

	if stats.TotalHours != 0 {
		t.Errorf("TotalHours = %v, want 0", stats.TotalHours)
	}
	if stats.AverageSessionLength != 0 {
		t.Errorf("AverageSessionLength = %v, want 0 (no division by zero)", stats.AverageSessionLength)
	}
	if stats.TotalSessions != 0 {
		t.Errorf("TotalSessions = %d, want 0", stats.TotalSessions)
	}
	if len(stats.PerCaseHours) != 0 {
		t.Errorf("PerCaseHours = %v, want empty", stats.PerCaseHours)
	}
}

func TestComputeUserStats_RoundsOnceAtTheEnd(t *testing.T) {
	// 100 entries of 1 minute each. Per-entry rounding to 2 decimals would
	// accumulate 100 * 0.02 = 2.0; the correct total is 100/60 rounded once.
	var entries []*tsdomain.TimesheetEntry
	for i := 0; i < 100; i++ {
		entries = append(entries, entry("u1", "case-a", "", testNow.Add(-time.Duration(i+1)*time.Minute), 1, 0))
	}
	stats := ComputeUserStats(entries, testNow)
	if stats.TotalHours != 1.67 {
		t.Errorf("TotalHours = %v, want 1.67", stats.TotalHours)
	}
}

func TestComputeCaseStats(t *testing.T) {
	day1 := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC)
	entries := []*tsdomain.TimesheetEntry{
		entry("u1", "case-a", "task-1", day1, 120, 0),
		entry("u2", "case-a", "task-1", day1.Add(2*time.Hour), 60, 0),
		entry("u1", "case-a", "", day2, 30, 0),
	}

	stats := ComputeCaseStats(entries)
	if stats.TotalHours != 3.5 {
		t.Errorf("TotalHours = %v, want 3.5", stats.TotalHours)
	}
	if stats.TotalEntries != 3 {
		t.Errorf("TotalEntries = %d, want 3", stats.TotalEntries)
	}
	if got := stats.PerUserHours["u1"]; got != 2.5 {
		t.Errorf("PerUserHours[u1] = %v, want 2.5", got)
	}
	if got := stats.PerDayHours["2026-02-25"]; got != 3.0 {
		t.Errorf("PerDayHours[2026-02-25] = %v, want 3.0", got)
	}
	if got := stats.PerDayHours["2026-02-26"]; got != 0.5 {
		t.Errorf("PerDayHours[2026-02-26] = %v, want 0.5", got)
	}
	if got := stats.PerTaskHours["task-1"]; got != 3.0 {
		t.Errorf("PerTaskHours[task-1] = %v, want 3.0", got)
	}
}

func TestComputeTeamStats(t *testing.T) {
	start := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	entries := []*tsdomain.TimesheetEntry{
		entry("u1", "case-a", "", start, 180, 0),
		entry("u2", "case-a", "", start, 120, 0),
		entry("u3", "case-a", "", start, 60, 0),
	}
	userIDs := []string{"u1", "u2", "u3", "u4"}

	stats := ComputeTeamStats(entries, userIDs)
	if stats.TotalHours != 6.0 {
		t.Errorf("TotalHours = %v, want 6.0", stats.TotalHours)
	}
	if stats.TotalEntries != 3 {
		t.Errorf("TotalEntries = %d, want 3", stats.TotalEntries)
	}
	// Averaged over all four requested users, including u4 with no entries.
	if stats.TeamAverage != 1.5 {
		t.Errorf("TeamAverage = %v, want 1.5", stats.TeamAverage)
	}
	if len(stats.TopPerformers) != 3 {
		t.Fatalf("TopPerformers len = %d, want 3", len(stats.TopPerformers))
	}
	if stats.TopPerformers[0].UserID != "u1" || stats.TopPerformers[0].Hours != 3.0 {
		t.Errorf("TopPerformers[0] = %+v, want u1/3.0", stats.TopPerformers[0])
	}
	if stats.TopPerformers[2].UserID != "u3" {
		t.Errorf("TopPerformers[2] = %+v, want u3", stats.TopPerformers[2])
	}
}

func TestComputeTeamStats_TopFiveWithDeterministicTies(t *testing.T) {
	start := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	var entries []*tsdomain.TimesheetEntry
	var userIDs []string
	// Seven users with identical hours; the top five must be the five
	// smallest ids.
	for _, u := range []string{"u7", "u3", "u5", "u1", "u6", "u2", "u4"} {
		entries = append(entries, entry(u, "case-a", "", start, 60, 0))
		userIDs = append(userIDs, u)
	}

	stats := ComputeTeamStats(entries, userIDs)
	if len(stats.TopPerformers) != 5 {
		t.Fatalf("TopPerformers len = %d, want 5", len(stats.TopPerformers))
	}
	want := []string{"u1", "u2", "u3", "u4", "u5"}
	for i, p := range stats.TopPerformers {
		if p.UserID != want[i] {
			t.Errorf("TopPerformers[%d].UserID = %q, want %q", i, p.UserID, want[i])
		}
	}
}

func TestComputeTeamStats_EmptyUserList(t *testing.T) {
	stats := ComputeTeamStats(nil, nil)
	if stats.TeamAverage != 0 {
		t.Errorf("TeamAverage = %v, want 0 (no division by zero)", stats.TeamAverage)
	}
	if stats.TotalHours != 0 || stats.TotalEntries != 0 {
		t.Errorf("stats = %+v, want zero values", stats)
	}
}

// failRepo returns an error from every list method.
type failRepo struct{ err error }

func (f *failRepo) Create(ctx context.Context, e *tsdomain.TimesheetEntry) error { return f.err }
func (f *failRepo) GetByID(ctx context.Context, id string) (*tsdomain.TimesheetEntry, error) {
	return nil, f.err
}
func (f *failRepo) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]*tsdomain.TimesheetEntry, error) {
	return nil, f.err
}
func (f *failRepo) ListByCase(ctx context.Context, caseID string, from, to time.Time) ([]*tsdomain.TimesheetEntry, error) {
	return nil, f.err
}
func (f *failRepo) ListByTask(ctx context.Context, taskID string, from, to time.Time) ([]*tsdomain.TimesheetEntry, error) {
	return nil, f.err
}
func (f *failRepo) ListByUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]*tsdomain.TimesheetEntry, error) {
	return nil, f.err
}
func (f *failRepo) Update(ctx context.Context, e *tsdomain.TimesheetEntry) error { return f.err }
func (f *failRepo) Delete(ctx context.Context, id string) error                  { return f.err }

func TestAggregator_WrapsRepositoryErrors(t *testing.T) {
	a := NewAggregator(&failRepo{err: errors.New("timeout")})
	ctx := context.Background()

	if _, err := a.UserStats(ctx, "u1", time.Time{}, time.Time{}); !errors.Is(err, tsservice.ErrPersistence) {
		t.Errorf("UserStats err = %v, want ErrPersistence", err)
	}
	if _, err := a.CaseStats(ctx, "case-a", time.Time{}, time.Time{}); !errors.Is(err, tsservice.ErrPersistence) {
		t.Errorf("CaseStats err = %v, want ErrPersistence", err)
	}
	if _, err := a.TeamStats(ctx, []string{"u1"}, time.Time{}, time.Time{}); !errors.Is(err, tsservice.ErrPersistence) {
		t.Errorf("TeamStats err = %v, want ErrPersistence", err)
	}
}
