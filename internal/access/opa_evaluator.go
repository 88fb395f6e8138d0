package access

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"legal-case-platform/backend/internal/identity"
)

// Default Rego policy: admins see everything; everyone else may only mutate
// entries they created. Mirrors the platform's role model (admin, lawyer,
// paralegal).
const defaultRegoPolicy = `package legalcase.timesheet

default allow_team_stats = false

allow_team_stats if {
	input.user.role == "admin"
}

default allow_entry_mutation = false

allow_entry_mutation if {
	input.user.id == input.entry.created_by
}

allow_entry_mutation if {
	input.user.role == "admin"
}
`

// OPAEvaluator evaluates timesheet access policy using OPA Rego. The policy
// is compiled once at construction.
type OPAEvaluator struct {
	compiler *ast.Compiler
}

// NewOPAEvaluator returns an evaluator over the built-in policy.
func NewOPAEvaluator() (*OPAEvaluator, error) {
	modules := map[string]string{"timesheet.rego": defaultRegoPolicy}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return nil, fmt.Errorf("compile access policy: %w", err)
	}
	return &OPAEvaluator{compiler: compiler}, nil
}

// AllowTeamStats reports whether caller may view team-wide statistics.
func (e *OPAEvaluator) AllowTeamStats(ctx context.Context, caller identity.Caller) (bool, error) {
	return e.evalBool(ctx, "data.legalcase.timesheet.allow_team_stats", map[string]interface{}{
		"user": callerInput(caller),
	})
}

// AllowEntryMutation reports whether caller may update or delete the entry
// created by createdBy.
func (e *OPAEvaluator) AllowEntryMutation(ctx context.Context, caller identity.Caller, createdBy string) (bool, error) {
	return e.evalBool(ctx, "data.legalcase.timesheet.allow_entry_mutation", map[string]interface{}{
		"user": callerInput(caller),
		"entry": map[string]interface{}{
			"created_by": createdBy,
		},
	})
}

// HealthCheck verifies that the in-process Rego engine can evaluate the
// compiled policy. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	_, err := e.AllowTeamStats(ctx, identity.Caller{UserID: "", Role: ""})
	return err
}

func (e *OPAEvaluator) evalBool(ctx context.Context, query string, input map[string]interface{}) (bool, error) {
	q := rego.New(
		rego.Query(query),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval access policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("access policy query %q returned no result", query)
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("access policy query %q returned non-boolean", query)
	}
	return allowed, nil
}

func callerInput(caller identity.Caller) map[string]interface{} {
	return map[string]interface{}{
		"id":   caller.UserID,
		"role": caller.Role,
	}
}
