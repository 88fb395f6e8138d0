// Package handler exposes the statistics operations behind the envelope
// contract. Per-user stats are open to the subject themselves; viewing
// another user's stats or team rollups requires team-stats access.
package handler

import (
	"context"
	"time"

	"legal-case-platform/backend/internal/access"
	"legal-case-platform/backend/internal/api"
	"legal-case-platform/backend/internal/audit"
	"legal-case-platform/backend/internal/identity"
	"legal-case-platform/backend/internal/platform/authctx"
	"legal-case-platform/backend/internal/stats/service"
)

// UserStatsRequest scopes a per-user rollup. UserID empty means the caller;
// zero From/To leave that bound open.
type UserStatsRequest struct {
	UserID string
	From   time.Time
	To     time.Time
}

// CaseStatsRequest scopes a per-case rollup.
type CaseStatsRequest struct {
	CaseID string
	From   time.Time
	To     time.Time
}

// TeamStatsRequest scopes a team rollup over the given member ids.
type TeamStatsRequest struct {
	UserIDs []string
	From    time.Time
	To      time.Time
}

// Handler serves the statistics operation surface.
type Handler struct {
	stats   *service.Aggregator
	authz   access.Evaluator
	auditor audit.Recorder
}

// New returns a stats Handler. auditor may be nil to disable audit events.
func New(stats *service.Aggregator, authz access.Evaluator, auditor audit.Recorder) *Handler {
	return &Handler{stats: stats, authz: authz, auditor: auditor}
}

// GetUserStats returns the rollup for one user. Callers may always view
// their own stats; another user's stats require team-stats access.
func (h *Handler) GetUserStats(ctx context.Context, req UserStatsRequest) (env api.Envelope[service.UserStats]) {
	defer api.Recover(&env)
	caller, ok := callerFrom(ctx)
	if !ok {
		return api.Fail[service.UserStats](api.CodeUnauthenticated, "caller identity required")
	}
	subject := req.UserID
	if subject == "" {
		subject = caller.UserID
	}
	if subject != caller.UserID {
		allowed, err := h.authz.AllowTeamStats(ctx, caller)
		if err != nil {
			return api.FailErr[service.UserStats](err)
		}
		if !allowed {
			return api.Fail[service.UserStats](api.CodeForbidden, "not allowed to view other users' statistics")
		}
	}
	stats, err := h.stats.UserStats(ctx, subject, req.From, req.To)
	if err != nil {
		return api.FailErr[service.UserStats](err)
	}
	audit.RecordAsync(h.auditor, "GET_TIMESHEET_STATS", "USER#"+subject, caller.UserID, map[string]any{
		"scope":   "user",
		"subject": subject,
	})
	return api.OK(*stats)
}

// GetCaseStats returns the rollup for one case.
func (h *Handler) GetCaseStats(ctx context.Context, req CaseStatsRequest) (env api.Envelope[service.CaseStats]) {
	defer api.Recover(&env)
	caller, ok := callerFrom(ctx)
	if !ok {
		return api.Fail[service.CaseStats](api.CodeUnauthenticated, "caller identity required")
	}
	if req.CaseID == "" {
		return api.Fail[service.CaseStats](api.CodeValidation, "caseId is required")
	}
	stats, err := h.stats.CaseStats(ctx, req.CaseID, req.From, req.To)
	if err != nil {
		return api.FailErr[service.CaseStats](err)
	}
	audit.RecordAsync(h.auditor, "GET_TIMESHEET_STATS", "CASE#"+req.CaseID, caller.UserID, map[string]any{
		"scope":  "case",
		"caseId": req.CaseID,
	})
	return api.OK(*stats)
}

// GetTeamStats returns the rollup across the given team members. Requires
// team-stats access.
func (h *Handler) GetTeamStats(ctx context.Context, req TeamStatsRequest) (env api.Envelope[service.TeamStats]) {
	defer api.Recover(&env)
	caller, ok := callerFrom(ctx)
	if !ok {
		return api.Fail[service.TeamStats](api.CodeUnauthenticated, "caller identity required")
	}
	allowed, err := h.authz.AllowTeamStats(ctx, caller)
	if err != nil {
		return api.FailErr[service.TeamStats](err)
	}
	if !allowed {
		return api.Fail[service.TeamStats](api.CodeForbidden, "not allowed to view team statistics")
	}
	if len(req.UserIDs) == 0 {
		return api.Fail[service.TeamStats](api.CodeValidation, "userIds must not be empty")
	}
	stats, err := h.stats.TeamStats(ctx, req.UserIDs, req.From, req.To)
	if err != nil {
		return api.FailErr[service.TeamStats](err)
	}
	audit.RecordAsync(h.auditor, "GET_TIMESHEET_STATS", "TEAM", caller.UserID, map[string]any{
		"scope":   "team",
		"members": len(req.UserIDs),
	})
	return api.OK(*stats)
}

func callerFrom(ctx context.Context) (identity.Caller, bool) {
	userID, ok := authctx.UserID(ctx)
	if !ok || userID == "" {
		return identity.Caller{}, false
	}
	role, _ := authctx.Role(ctx)
	return identity.Caller{UserID: userID, Role: role}, true
}
