package app

import (
	"context"
	"fmt"

	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/ports/secondary"
)

// LogServiceImpl implements the LogService interface.
type LogServiceImpl struct {
	eventRepo secondary.TaskEventRepository
	taskRepo  secondary.TaskRepository
}

// NewLogService creates a new LogService with injected dependencies.
func NewLogService(eventRepo secondary.TaskEventRepository, taskRepo secondary.TaskRepository) *LogServiceImpl {
	return &LogServiceImpl{
		eventRepo: eventRepo,
		taskRepo:  taskRepo,
	}
}

// ListTaskEvents retrieves the audit trail of one task.
func (s *LogServiceImpl) ListTaskEvents(ctx context.Context, taskID string) ([]*primary.TaskEvent, error) {
	if taskID == "" {
		return nil, coretask.ErrMissingTaskID
	}
	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		return nil, err
	}

	records, err := s.eventRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task events: %w", err)
	}

	events := make([]*primary.TaskEvent, len(records))
	for i, r := range records {
		events[i] = s.recordToEvent(r)
	}
	return events, nil
}

// Helper methods

func (s *LogServiceImpl) recordToEvent(r *secondary.TaskEventRecord) *primary.TaskEvent {
	return &primary.TaskEvent{
		ID:        r.ID,
		TaskID:    r.TaskID,
		ActorID:   r.ActorID,
		Action:    r.Action,
		FieldName: r.FieldName,
		OldValue:  r.OldValue,
		NewValue:  r.NewValue,
		CreatedAt: r.CreatedAt,
	}
}
