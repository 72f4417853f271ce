package app

import (
	"context"
	"errors"
	"testing"

	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/ports/secondary"
)

// mockTaskEventRepository implements secondary.TaskEventRepository for testing.
type mockTaskEventRepository struct {
	events  []*secondary.TaskEventRecord
	listErr error
}

func (m *mockTaskEventRepository) Create(ctx context.Context, event *secondary.TaskEventRecord) error {
	event.ID = int64(len(m.events) + 1)
	m.events = append(m.events, event)
	return nil
}

func (m *mockTaskEventRepository) ListByTask(ctx context.Context, taskID string) ([]*secondary.TaskEventRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.TaskEventRecord
	for _, e := range m.events {
		if e.TaskID == taskID {
			result = append(result, e)
		}
	}
	return result, nil
}

func TestListTaskEvents(t *testing.T) {
	tasks := newMockTaskRepository()
	tasks.seed(&secondary.TaskRecord{ID: "TASK-001", Name: "Audited"})
	events := &mockTaskEventRepository{}
	ctx := context.Background()
	events.Create(ctx, &secondary.TaskEventRecord{TaskID: "TASK-001", ActorID: "sam", Action: "create", CreatedAt: summerNow})
	events.Create(ctx, &secondary.TaskEventRecord{TaskID: "TASK-002", Action: "create", CreatedAt: summerNow})
	events.Create(ctx, &secondary.TaskEventRecord{TaskID: "TASK-001", Action: "update", FieldName: "name", OldValue: "a", NewValue: "b", CreatedAt: summerNow})

	service := NewLogService(events, tasks)

	got, err := service.ListTaskEvents(ctx, "TASK-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Action != "create" || got[0].ActorID != "sam" {
		t.Errorf("unexpected first event %+v", got[0])
	}
	if got[1].FieldName != "name" || got[1].OldValue != "a" || got[1].NewValue != "b" {
		t.Errorf("unexpected second event %+v", got[1])
	}

	if _, err := service.ListTaskEvents(ctx, "TASK-404"); !errors.Is(err, coretask.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := service.ListTaskEvents(ctx, ""); !errors.Is(err, coretask.ErrMissingTaskID) {
		t.Errorf("expected ErrMissingTaskID, got %v", err)
	}
}
