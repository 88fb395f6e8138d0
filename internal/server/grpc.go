// Package server builds the gRPC server: interceptor chain, OpenTelemetry
// instrumentation, the standard health service used by probes, and the
// hand-written service descriptors that bind the timer, timesheet and stats
// handlers over a JSON codec.
package server

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"legal-case-platform/backend/internal/audit"
	"legal-case-platform/backend/internal/identity"
	"legal-case-platform/backend/internal/server/interceptors"
	statshandler "legal-case-platform/backend/internal/stats/handler"
	timerhandler "legal-case-platform/backend/internal/timer/handler"
	tshandler "legal-case-platform/backend/internal/timesheet/handler"
)

// PolicyChecker reports whether the access policy engine is usable.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the handler set and optional dependencies for the gRPC server.
// A nil handler leaves its service unregistered.
type Deps struct {
	// Timer serves the timer operations.
	Timer *timerhandler.Handler
	// Timesheet serves the timesheet entry operations.
	Timesheet *tshandler.Handler
	// Stats serves the statistics operations.
	Stats *statshandler.Handler
	// Verifier validates Bearer tokens and sets the caller in context. If nil, no
	// auth interceptor is installed.
	Verifier *identity.Verifier
	// Auditor records an audit event per authenticated RPC. If nil, RPCs are not audited.
	Auditor audit.Recorder
	// DB is pinged by the health check for readiness. If nil, the ping is skipped.
	DB *sql.DB
	// Policy is checked by the health check for readiness. If nil, the check is skipped.
	Policy PolicyChecker
}

// publicMethods are callable without a Bearer token.
var publicMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/Watch": true,
}

// New builds the gRPC server with the otelgrpc stats handler, the auth and
// audit interceptors, the health service, and the envelope services for the
// non-nil handlers in deps.
func New(deps Deps) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	}
	var unary []grpc.UnaryServerInterceptor
	if deps.Verifier != nil {
		unary = append(unary, interceptors.AuthUnary(deps.Verifier, publicMethods))
	}
	if deps.Auditor != nil {
		unary = append(unary, interceptors.AuditUnary(deps.Auditor, publicMethods))
	}
	if len(unary) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(unary...))
	}

	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, &healthServer{db: deps.DB, policy: deps.Policy})
	if deps.Timer != nil {
		s.RegisterService(&timerServiceDesc, deps.Timer)
	}
	if deps.Timesheet != nil {
		s.RegisterService(&timesheetServiceDesc, deps.Timesheet)
	}
	if deps.Stats != nil {
		s.RegisterService(&statsServiceDesc, deps.Stats)
	}
	return s
}

// healthServer implements grpc.health.v1.Health. Check reports NOT_SERVING
// when the database or policy engine is unreachable; it never returns an
// error for a failed dependency so probes can distinguish "down" from
// "unreachable".
type healthServer struct {
	healthpb.UnimplementedHealthServer
	db     *sql.DB
	policy PolicyChecker
}

func (h *healthServer) Check(ctx context.Context, _ *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
		}
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
