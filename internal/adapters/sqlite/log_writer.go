package sqlite

import (
	"context"

	"github.com/example/nextaction/internal/ctxutil"
	"github.com/example/nextaction/internal/ports/secondary"
)

// LogWriterAdapter implements secondary.TaskEventWriter using TaskEventRepository.
type LogWriterAdapter struct {
	eventRepo secondary.TaskEventRepository
	clock     secondary.Clock
}

// NewLogWriterAdapter creates a new LogWriterAdapter.
func NewLogWriterAdapter(eventRepo secondary.TaskEventRepository, clock secondary.Clock) *LogWriterAdapter {
	return &LogWriterAdapter{
		eventRepo: eventRepo,
		clock:     clock,
	}
}

// LogCreate logs the creation of a task.
func (w *LogWriterAdapter) LogCreate(ctx context.Context, taskID string) error {
	return w.writeLog(ctx, taskID, "create", "", "", "")
}

// LogUpdate logs an update of one task field.
func (w *LogWriterAdapter) LogUpdate(ctx context.Context, taskID, fieldName, oldValue, newValue string) error {
	return w.writeLog(ctx, taskID, "update", fieldName, oldValue, newValue)
}

// LogArchive logs that a task was archived.
func (w *LogWriterAdapter) LogArchive(ctx context.Context, taskID string) error {
	return w.writeLog(ctx, taskID, "archive", "", "", "")
}

// writeLog writes a log entry with common logic.
func (w *LogWriterAdapter) writeLog(ctx context.Context, taskID, action, fieldName, oldValue, newValue string) error {
	record := &secondary.TaskEventRecord{
		TaskID:    taskID,
		ActorID:   ctxutil.ActorFromContext(ctx),
		Action:    action,
		FieldName: fieldName,
		OldValue:  oldValue,
		NewValue:  newValue,
		CreatedAt: w.clock.Now(),
	}
	return w.eventRepo.Create(ctx, record)
}

// Ensure LogWriterAdapter implements the interface
var _ secondary.TaskEventWriter = (*LogWriterAdapter)(nil)
