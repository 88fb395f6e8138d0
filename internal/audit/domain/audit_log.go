package domain

import "time"

// AuditLog represents one recorded audit event for a timer or timesheet
// operation. Details holds operation-specific fields as a JSON object.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	Details   string
	CreatedAt time.Time
}
