package domain

import "time"

// AuditEvent is one persisted audit record. Fields are already redacted.
type AuditEvent struct {
	ID         string
	Event      string
	Fields     map[string]string
	OccurredAt time.Time
}
