package primary

import (
	"context"
	"time"
)

// LogService defines the primary port for reading the task audit trail.
type LogService interface {
	// ListTaskEvents lists the events of one task, oldest first.
	ListTaskEvents(ctx context.Context, taskID string) ([]*TaskEvent, error)
}

// TaskEvent represents one audit entry at the port boundary.
type TaskEvent struct {
	ID        int64
	TaskID    string
	ActorID   string
	Action    string
	FieldName string
	OldValue  string
	NewValue  string
	CreatedAt time.Time
}
