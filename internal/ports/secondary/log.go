package secondary

import (
	"context"
	"time"
)

// TaskEventWriter records the audit trail of task changes.
// Implementations take the actor from context.
type TaskEventWriter interface {
	// LogCreate records that a task was created.
	LogCreate(ctx context.Context, taskID string) error

	// LogUpdate records one changed field.
	LogUpdate(ctx context.Context, taskID, fieldName, oldValue, newValue string) error

	// LogArchive records that a task was archived.
	LogArchive(ctx context.Context, taskID string) error
}

// TaskEventRepository defines the secondary port for task event persistence.
type TaskEventRepository interface {
	// Create persists a new event.
	Create(ctx context.Context, event *TaskEventRecord) error

	// ListByTask retrieves the events of one task, oldest first.
	ListByTask(ctx context.Context, taskID string) ([]*TaskEventRecord, error)
}

// TaskEventRecord represents one audit entry.
type TaskEventRecord struct {
	ID        int64
	TaskID    string
	ActorID   string
	Action    string // create, update, archive
	FieldName string
	OldValue  string
	NewValue  string
	CreatedAt time.Time
}
