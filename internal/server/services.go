package server

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"legal-case-platform/backend/internal/api"
	statshandler "legal-case-platform/backend/internal/stats/handler"
	statsservice "legal-case-platform/backend/internal/stats/service"
	timerdomain "legal-case-platform/backend/internal/timer/domain"
	timerhandler "legal-case-platform/backend/internal/timer/handler"
	tsdomain "legal-case-platform/backend/internal/timesheet/domain"
	tshandler "legal-case-platform/backend/internal/timesheet/handler"
)

// jsonCodec serves the envelope services to clients that dial with the
// application/grpc+json content subtype. The health service keeps the default
// proto codec; nothing here touches it.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return "json" }

func init() { encoding.RegisterCodec(jsonCodec{}) }

// TimerIDRequest identifies an existing timer for the id-only operations.
type TimerIDRequest struct {
	TimerID string
}

// EntryIDRequest identifies an existing timesheet entry.
type EntryIDRequest struct {
	EntryID string
}

// ActiveTimerRequest is the empty input of GetActiveTimer; the timer is
// resolved from the caller identity.
type ActiveTimerRequest struct{}

// TimerServiceServer is the server API of legal.timer.v1.TimerService.
type TimerServiceServer interface {
	StartTimer(ctx context.Context, req timerhandler.StartTimerRequest) api.Envelope[timerdomain.TimerSession]
	PauseTimer(ctx context.Context, timerID string) api.Envelope[timerdomain.TimerSession]
	ResumeTimer(ctx context.Context, timerID string) api.Envelope[timerdomain.TimerSession]
	StopTimer(ctx context.Context, req timerhandler.StopTimerRequest) api.Envelope[timerhandler.StopTimerResult]
	GetTimer(ctx context.Context, timerID string) api.Envelope[timerdomain.TimerSession]
	GetActiveTimer(ctx context.Context) api.Envelope[timerdomain.TimerSession]
	UpdateTimer(ctx context.Context, req timerhandler.UpdateTimerRequest) api.Envelope[timerdomain.TimerSession]
}

// TimesheetServiceServer is the server API of legal.timesheet.v1.TimesheetService.
type TimesheetServiceServer interface {
	CreateManualTimesheetEntry(ctx context.Context, req tshandler.CreateEntryRequest) api.Envelope[tsdomain.TimesheetEntry]
	UpdateTimesheetEntry(ctx context.Context, req tshandler.UpdateEntryRequest) api.Envelope[tsdomain.TimesheetEntry]
	DeleteTimesheetEntry(ctx context.Context, entryID string) api.Envelope[tsdomain.TimesheetEntry]
}

// StatsServiceServer is the server API of legal.stats.v1.StatsService.
type StatsServiceServer interface {
	GetUserStats(ctx context.Context, req statshandler.UserStatsRequest) api.Envelope[statsservice.UserStats]
	GetCaseStats(ctx context.Context, req statshandler.CaseStatsRequest) api.Envelope[statsservice.CaseStats]
	GetTeamStats(ctx context.Context, req statshandler.TeamStatsRequest) api.Envelope[statsservice.TeamStats]
}

var (
	_ TimerServiceServer     = (*timerhandler.Handler)(nil)
	_ TimesheetServiceServer = (*tshandler.Handler)(nil)
	_ StatsServiceServer     = (*statshandler.Handler)(nil)
)

// unary adapts an envelope-returning call into a grpc.MethodDesc handler. The
// interceptor chain sees the decoded request and the full method name, same
// as it would with generated bindings.
func unary[Req any, Resp any](fullMethod string, call func(srv any, ctx context.Context, req *Req) Resp) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in), nil
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(*Req)), nil
		})
	}
}

var timerServiceDesc = grpc.ServiceDesc{
	ServiceName: "legal.timer.v1.TimerService",
	HandlerType: (*TimerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "StartTimer",
			Handler: unary("/legal.timer.v1.TimerService/StartTimer",
				func(srv any, ctx context.Context, req *timerhandler.StartTimerRequest) api.Envelope[timerdomain.TimerSession] {
					return srv.(TimerServiceServer).StartTimer(ctx, *req)
				}),
		},
		{
			MethodName: "PauseTimer",
			Handler: unary("/legal.timer.v1.TimerService/PauseTimer",
				func(srv any, ctx context.Context, req *TimerIDRequest) api.Envelope[timerdomain.TimerSession] {
					return srv.(TimerServiceServer).PauseTimer(ctx, req.TimerID)
				}),
		},
		{
			MethodName: "ResumeTimer",
			Handler: unary("/legal.timer.v1.TimerService/ResumeTimer",
				func(srv any, ctx context.Context, req *TimerIDRequest) api.Envelope[timerdomain.TimerSession] {
					return srv.(TimerServiceServer).ResumeTimer(ctx, req.TimerID)
				}),
		},
		{
			MethodName: "StopTimer",
			Handler: unary("/legal.timer.v1.TimerService/StopTimer",
				func(srv any, ctx context.Context, req *timerhandler.StopTimerRequest) api.Envelope[timerhandler.StopTimerResult] {
					return srv.(TimerServiceServer).StopTimer(ctx, *req)
				}),
		},
		{
			MethodName: "GetTimer",
			Handler: unary("/legal.timer.v1.TimerService/GetTimer",
				func(srv any, ctx context.Context, req *TimerIDRequest) api.Envelope[timerdomain.TimerSession] {
					return srv.(TimerServiceServer).GetTimer(ctx, req.TimerID)
				}),
		},
		{
			MethodName: "GetActiveTimer",
			Handler: unary("/legal.timer.v1.TimerService/GetActiveTimer",
				func(srv any, ctx context.Context, _ *ActiveTimerRequest) api.Envelope[timerdomain.TimerSession] {
					return srv.(TimerServiceServer).GetActiveTimer(ctx)
				}),
		},
		{
			MethodName: "UpdateTimer",
			Handler: unary("/legal.timer.v1.TimerService/UpdateTimer",
				func(srv any, ctx context.Context, req *timerhandler.UpdateTimerRequest) api.Envelope[timerdomain.TimerSession] {
					return srv.(TimerServiceServer).UpdateTimer(ctx, *req)
				}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

var timesheetServiceDesc = grpc.ServiceDesc{
	ServiceName: "legal.timesheet.v1.TimesheetService",
	HandlerType: (*TimesheetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateTimesheetEntry",
			Handler: unary("/legal.timesheet.v1.TimesheetService/CreateTimesheetEntry",
				func(srv any, ctx context.Context, req *tshandler.CreateEntryRequest) api.Envelope[tsdomain.TimesheetEntry] {
					return srv.(TimesheetServiceServer).CreateManualTimesheetEntry(ctx, *req)
				}),
		},
		{
			MethodName: "UpdateTimesheetEntry",
			Handler: unary("/legal.timesheet.v1.TimesheetService/UpdateTimesheetEntry",
				func(srv any, ctx context.Context, req *tshandler.UpdateEntryRequest) api.Envelope[tsdomain.TimesheetEntry] {
					return srv.(TimesheetServiceServer).UpdateTimesheetEntry(ctx, *req)
				}),
		},
		{
			MethodName: "DeleteTimesheetEntry",
			Handler: unary("/legal.timesheet.v1.TimesheetService/DeleteTimesheetEntry",
				func(srv any, ctx context.Context, req *EntryIDRequest) api.Envelope[tsdomain.TimesheetEntry] {
					return srv.(TimesheetServiceServer).DeleteTimesheetEntry(ctx, req.EntryID)
				}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

var statsServiceDesc = grpc.ServiceDesc{
	ServiceName: "legal.stats.v1.StatsService",
	HandlerType: (*StatsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetUserStats",
			Handler: unary("/legal.stats.v1.StatsService/GetUserStats",
				func(srv any, ctx context.Context, req *statshandler.UserStatsRequest) api.Envelope[statsservice.UserStats] {
					return srv.(StatsServiceServer).GetUserStats(ctx, *req)
				}),
		},
		{
			MethodName: "GetCaseStats",
			Handler: unary("/legal.stats.v1.StatsService/GetCaseStats",
				func(srv any, ctx context.Context, req *statshandler.CaseStatsRequest) api.Envelope[statsservice.CaseStats] {
					return srv.(StatsServiceServer).GetCaseStats(ctx, *req)
				}),
		},
		{
			MethodName: "GetTeamStats",
			Handler: unary("/legal.stats.v1.StatsService/GetTeamStats",
				func(srv any, ctx context.Context, req *statshandler.TeamStatsRequest) api.Envelope[statsservice.TeamStats] {
					return srv.(StatsServiceServer).GetTeamStats(ctx, *req)
				}),
		},
	},
	Streams: []grpc.StreamDesc{},
}
