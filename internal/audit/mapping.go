package audit

import "strings"

// ActionResource holds the action and resource derived from a gRPC full method name.
type ActionResource struct {
	Action   string
	Resource string
}

// ParseFullMethod returns action and resource for a gRPC full method
// (e.g. /legal.timer.v1.TimerService/StartTimer). Action is the method name in
// upper snake case (StartTimer -> START_TIMER); Resource is derived from the
// service name (TimerService -> TIMER). Both fall back to "UNKNOWN" when the
// method does not follow the /package.Service/Method shape.
func ParseFullMethod(fullMethod string) ActionResource {
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return ActionResource{Action: "UNKNOWN", Resource: "UNKNOWN"}
	}
	method := fullMethod[slash+1:]
	beforeSlash := fullMethod[:slash]
	dot := strings.LastIndex(beforeSlash, ".")
	if dot < 0 {
		return ActionResource{Action: upperSnake(method), Resource: "UNKNOWN"}
	}
	serviceName := beforeSlash[dot+1:]
	return ActionResource{Action: upperSnake(method), Resource: serviceToResource(serviceName)}
}

func serviceToResource(serviceName string) string {
	// TimerService -> TIMER, TimesheetService -> TIMESHEET
	s := strings.TrimSuffix(serviceName, "Service")
	if s == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(upperSnake(s))
}

// upperSnake converts CamelCase to UPPER_SNAKE: StartTimer -> START_TIMER.
func upperSnake(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' && i > 0 {
			prev := s[i-1]
			if prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9' {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
