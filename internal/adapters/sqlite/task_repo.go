package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"

	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with SQLite.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// scanTask scans a task row into a TaskRecord.
func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TaskRecord, error) {
	var (
		desc        sql.NullString
		clientID    sql.NullString
		priorityID  sql.NullString
		dueDate     sql.NullString
		startDate   sql.NullString
		completedAt sql.NullString
		recurrence  sql.NullString
		energyLevel sql.NullString
		createdAt   string
		updatedAt   string
	)

	record := &secondary.TaskRecord{}
	err := scanner.Scan(
		&record.ID, &record.Name, &desc, &record.Status, &record.ContextID, &record.ProjectID,
		&clientID, &priorityID, &dueDate, &startDate, &completedAt, &recurrence,
		&record.TimeEstimate, &energyLevel, &record.Archived, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Description = desc.String
	record.ClientID = clientID.String
	record.PriorityID = priorityID.String
	record.RecurrenceExpression = recurrence.String
	record.EnergyLevel = energyLevel.String

	if record.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, err
	}
	if record.StartDate, err = parseNullTime(startDate); err != nil {
		return nil, err
	}
	if record.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if record.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return record, nil
}

const taskSelectCols = "id, name, description, status, context_id, project_id, client_id, priority_id, due_date, start_date, completed_at, recurrence_expression, time_estimate, energy_level, archived, created_at, updated_at"

// Create persists a new task, assigning the next sequence ID when the record
// has none. Call it inside a transaction to make ID assignment atomic.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) (string, error) {
	id := task.ID
	if id == "" {
		next, err := r.GetNextID(ctx)
		if err != nil {
			return "", err
		}
		id = next
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO tasks ("+taskSelectCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, task.Name, nullString(task.Description), task.Status, task.ContextID, task.ProjectID,
		nullString(task.ClientID), nullString(task.PriorityID),
		nullTime(task.DueDate), nullTime(task.StartDate), nullTime(task.CompletedAt),
		nullString(task.RecurrenceExpression), task.TimeEstimate, nullString(task.EnergyLevel),
		task.Archived, formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create task: %w", err)
	}

	task.ID = id
	return id, nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE id = ?",
		id,
	)

	record, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", coretask.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return record, nil
}

// List retrieves tasks matching the given filters, soonest due first.
func (r *TaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	query := "SELECT " + taskSelectCols + " FROM tasks WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.ExcludeStatus != "" {
		query += " AND status != ?"
		args = append(args, filters.ExcludeStatus)
	}

	if filters.PriorityID != "" {
		query += " AND priority_id = ?"
		args = append(args, filters.PriorityID)
	}

	if filters.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, filters.ProjectID)
	}

	if filters.ContextID != "" {
		query += " AND context_id = ?"
		args = append(args, filters.ContextID)
	}

	if filters.DueBefore != nil {
		query += " AND due_date IS NOT NULL AND due_date <= ?"
		args = append(args, formatTime(*filters.DueBefore))
	}

	if !filters.IncludeArchived {
		query += " AND archived = 0"
	}

	query += " ORDER BY due_date IS NULL, due_date, id"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, record)
	}

	return tasks, rows.Err()
}

// UpdateFields writes the columns present in update and returns the number
// of rows changed. Only the columns named here can ever be written.
func (r *TaskRepository) UpdateFields(ctx context.Context, id string, update secondary.TaskFieldUpdate) (int64, error) {
	var sets []string
	var args []any

	setString := func(col string, opt mo.Option[string], nullable bool) {
		v, ok := opt.Get()
		if !ok {
			return
		}
		sets = append(sets, col+" = ?")
		if nullable {
			args = append(args, nullString(v))
		} else {
			args = append(args, v)
		}
	}
	setTime := func(col string, opt mo.Option[*time.Time]) {
		if v, ok := opt.Get(); ok {
			sets = append(sets, col+" = ?")
			args = append(args, nullTime(v))
		}
	}

	setString("name", update.Name, false)
	setString("description", update.Description, true)
	setString("status", update.Status, false)
	setString("context_id", update.ContextID, false)
	setString("project_id", update.ProjectID, false)
	setString("client_id", update.ClientID, true)
	setString("priority_id", update.PriorityID, true)
	setTime("due_date", update.DueDate)
	setTime("start_date", update.StartDate)
	setTime("completed_at", update.CompletedAt)
	setString("recurrence_expression", update.RecurrenceExpression, true)
	if v, ok := update.TimeEstimate.Get(); ok {
		sets = append(sets, "time_estimate = ?")
		args = append(args, v)
	}
	setString("energy_level", update.EnergyLevel, true)

	updatedAt := update.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(updatedAt), id)

	where := "id = ?"
	if v, ok := update.ExpectStatus.Get(); ok {
		where += " AND status = ?"
		args = append(args, v)
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE "+where,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update task: %w", err)
	}

	return result.RowsAffected()
}

// Archive soft-deletes a task. Returns false when it was already archived.
func (r *TaskRepository) Archive(ctx context.Context, id string, at time.Time) (bool, error) {
	q := conn(ctx, r.db)
	result, err := q.ExecContext(ctx,
		"UPDATE tasks SET archived = 1, updated_at = ? WHERE id = ? AND archived = 0",
		formatTime(at), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to archive task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return true, nil
	}

	var count int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE id = ?", id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check task: %w", err)
	}
	if count == 0 {
		return false, fmt.Errorf("%w: %s", coretask.ErrTaskNotFound, id)
	}
	return false, nil
}

// GetNextID returns the next available task ID.
func (r *TaskRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM tasks",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next task ID: %w", err)
	}

	return coretask.GenerateTaskID(maxID), nil
}

// CountByContext counts every task that references a context.
func (r *TaskRepository) CountByContext(ctx context.Context, contextID string) (int, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE context_id = ?", contextID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// Ensure TaskRepository implements the interface
var _ secondary.TaskRepository = (*TaskRepository)(nil)
