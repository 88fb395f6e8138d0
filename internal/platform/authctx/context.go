// Package authctx carries the authenticated caller through request context.
// The transport edge resolves the caller (via identity.Verifier) and sets it;
// handlers read it.
package authctx

import "context"

type contextKey struct{ name string }

var (
	userIDKey = contextKey{"user_id"}
	roleKey   = contextKey{"role"}
)

// WithCaller returns a context with user_id and role set.
// Handlers read these via UserID and Role.
func WithCaller(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, roleKey, role)
	return ctx
}

// UserID returns the user_id from context and true if set; otherwise "", false.
func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// Role returns the role from context and true if set; otherwise "", false.
func Role(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(roleKey).(string)
	return v, ok
}
