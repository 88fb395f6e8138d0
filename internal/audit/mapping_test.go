package audit

import (
	"testing"
)

func TestParseFullMethod_StartTimer(t *testing.T) {
	fullMethod := "/legal.timer.v1.TimerService/StartTimer"
	ar := ParseFullMethod(fullMethod)

	if ar.Action != "START_TIMER" {
		t.Errorf("action = %q, want %q", ar.Action, "START_TIMER")
	}
	if ar.Resource != "TIMER" {
		t.Errorf("resource = %q, want %q", ar.Resource, "TIMER")
	}
}

func TestParseFullMethod_CreateTimesheetEntry(t *testing.T) {
	fullMethod := "/legal.timesheet.v1.TimesheetService/CreateTimesheetEntry"
	ar := ParseFullMethod(fullMethod)

	if ar.Action != "CREATE_TIMESHEET_ENTRY" {
		t.Errorf("action = %q, want %q", ar.Action, "CREATE_TIMESHEET_ENTRY")
	}
	if ar.Resource != "TIMESHEET" {
		t.Errorf("resource = %q, want %q", ar.Resource, "TIMESHEET")
	}
}

func TestParseFullMethod_GetTeamStats(t *testing.T) {
	fullMethod := "/legal.stats.v1.StatsService/GetTeamStats"
	ar := ParseFullMethod(fullMethod)

	if ar.Action != "GET_TEAM_STATS" {
		t.Errorf("action = %q, want %q", ar.Action, "GET_TEAM_STATS")
	}
	if ar.Resource != "STATS" {
		t.Errorf("resource = %q, want %q", ar.Resource, "STATS")
	}
}

func TestParseFullMethod_NoSlash(t *testing.T) {
	ar := ParseFullMethod("not-a-method")

	if ar.Action != "UNKNOWN" {
		t.Errorf("action = %q, want %q", ar.Action, "UNKNOWN")
	}
	if ar.Resource != "UNKNOWN" {
		t.Errorf("resource = %q, want %q", ar.Resource, "UNKNOWN")
	}
}

func TestParseFullMethod_NoPackage(t *testing.T) {
	ar := ParseFullMethod("/TimerService/PauseTimer")

	if ar.Action != "PAUSE_TIMER" {
		t.Errorf("action = %q, want %q", ar.Action, "PAUSE_TIMER")
	}
	if ar.Resource != "UNKNOWN" {
		t.Errorf("resource = %q, want %q", ar.Resource, "UNKNOWN")
	}
}

func TestParseFullMethod_ServiceOnlySuffix(t *testing.T) {
	ar := ParseFullMethod("/legal.v1.Service/Check")

	if ar.Resource != "UNKNOWN" {
		t.Errorf("resource = %q, want %q", ar.Resource, "UNKNOWN")
	}
	if ar.Action != "CHECK" {
		t.Errorf("action = %q, want %q", ar.Action, "CHECK")
	}
}
