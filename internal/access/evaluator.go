// Package access decides who may run the privileged timesheet operations:
// viewing team-wide statistics and mutating entries they did not create.
package access

import (
	"context"

	"legal-case-platform/backend/internal/identity"
)

// Evaluator answers access questions for the timesheet surface.
type Evaluator interface {
	// AllowTeamStats reports whether caller may view team-wide statistics.
	AllowTeamStats(ctx context.Context, caller identity.Caller) (bool, error)
	// AllowEntryMutation reports whether caller may update or delete the
	// entry created by createdBy.
	AllowEntryMutation(ctx context.Context, caller identity.Caller, createdBy string) (bool, error)
}
