package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/nextaction/internal/ports/secondary"
)

// TaskEventRepository implements secondary.TaskEventRepository with SQLite.
type TaskEventRepository struct {
	db *sql.DB
}

// NewTaskEventRepository creates a new SQLite task event repository.
func NewTaskEventRepository(db *sql.DB) *TaskEventRepository {
	return &TaskEventRepository{db: db}
}

// Create persists a new task event.
func (r *TaskEventRepository) Create(ctx context.Context, event *secondary.TaskEventRecord) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO task_events (task_id, actor_id, action, field_name, old_value, new_value, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.TaskID,
		nullString(event.ActorID),
		event.Action,
		nullString(event.FieldName),
		nullString(event.OldValue),
		nullString(event.NewValue),
		formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create task event: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		event.ID = id
	}
	return nil
}

// ListByTask retrieves the events of one task, oldest first.
func (r *TaskEventRepository) ListByTask(ctx context.Context, taskID string) ([]*secondary.TaskEventRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, task_id, actor_id, action, field_name, old_value, new_value, created_at
		 FROM task_events WHERE task_id = ? ORDER BY id`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list task events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.TaskEventRecord
	for rows.Next() {
		var (
			actorID   sql.NullString
			fieldName sql.NullString
			oldValue  sql.NullString
			newValue  sql.NullString
			createdAt string
		)
		event := &secondary.TaskEventRecord{}
		if err := rows.Scan(&event.ID, &event.TaskID, &actorID, &event.Action, &fieldName, &oldValue, &newValue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan task event: %w", err)
		}
		event.ActorID = actorID.String
		event.FieldName = fieldName.String
		event.OldValue = oldValue.String
		event.NewValue = newValue.String
		if event.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Ensure TaskEventRepository implements the interface
var _ secondary.TaskEventRepository = (*TaskEventRepository)(nil)
