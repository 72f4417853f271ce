package primary

import (
	"context"
	"time"

	"github.com/samber/mo"
)

// TaskService defines the primary port for the task lifecycle.
type TaskService interface {
	// CreateTask creates a new task, deriving or validating its due date
	// against the recurrence expression when one is given.
	CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResponse, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// ListTasks lists tasks with optional filters.
	ListTasks(ctx context.Context, filters TaskFilters) ([]*Task, error)

	// UpdateTask applies a partial update. Setting status to Completed on a
	// recurring task spawns its successor.
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (*UpdateTaskResponse, error)

	// CompleteTask marks a task as completed and spawns the successor of a
	// recurring task. The response carries the pre-completion record.
	CompleteTask(ctx context.Context, req CompleteTaskRequest) (*CompleteTaskResponse, error)

	// ArchiveTask soft-deletes a task. Returns false if it was already archived.
	ArchiveTask(ctx context.Context, req ArchiveTaskRequest) (bool, error)

	// NextOccurrences previews upcoming occurrences of a recurring task after
	// its due date.
	NextOccurrences(ctx context.Context, req NextOccurrencesRequest) ([]time.Time, error)

	// PreviewRecurrence evaluates an expression without touching any task.
	PreviewRecurrence(ctx context.Context, req PreviewRecurrenceRequest) (*PreviewRecurrenceResponse, error)
}

// CreateTaskRequest contains parameters for creating a task.
type CreateTaskRequest struct {
	Name                 string
	Description          string
	Status               string // Optional, defaults to Next Action
	ContextID            string
	ProjectID            string // Optional, defaults to the Miscellaneous project
	ClientID             string // Optional
	PriorityID           string // Optional
	DueDate              *time.Time
	StartDate            *time.Time
	RecurrenceExpression string
	TimeEstimate         int    // minutes
	EnergyLevel          string // low, medium, high
	Timezone             string // IANA name; empty means the configured default
}

// CreateTaskResponse contains the result of creating a task.
type CreateTaskResponse struct {
	TaskID string
	Task   *Task
}

// UpdateTaskRequest contains the allow-listed fields an update may change.
// An absent option leaves the field alone. For the optional fields an empty
// string or nil pointer clears the stored value.
type UpdateTaskRequest struct {
	TaskID   string
	Timezone string

	Name                 mo.Option[string]
	Description          mo.Option[string]
	Status               mo.Option[string]
	ContextID            mo.Option[string]
	ProjectID            mo.Option[string]
	ClientID             mo.Option[string]
	PriorityID           mo.Option[string]
	DueDate              mo.Option[*time.Time]
	StartDate            mo.Option[*time.Time]
	RecurrenceExpression mo.Option[string]
	TimeEstimate         mo.Option[int]
	EnergyLevel          mo.Option[string]
}

// UpdateTaskResponse contains the updated task and, when the update
// completed a recurring task, the spawned successor.
type UpdateTaskResponse struct {
	Task      *Task
	Successor *Task
}

// CompleteTaskRequest contains parameters for completing a task.
type CompleteTaskRequest struct {
	TaskID   string
	Timezone string
}

// CompleteTaskResponse contains the task as it was before completion and the
// successor, if one was spawned.
type CompleteTaskResponse struct {
	Task      *Task
	Successor *Task
}

// ArchiveTaskRequest contains parameters for archiving a task.
type ArchiveTaskRequest struct {
	TaskID string
	Force  bool // allow archiving a completed task
}

// NextOccurrencesRequest contains parameters for previewing a task's schedule.
type NextOccurrencesRequest struct {
	TaskID   string
	Timezone string
	Count    int
}

// PreviewRecurrenceRequest contains parameters for evaluating an expression.
type PreviewRecurrenceRequest struct {
	Expression string
	Timezone   string
	Count      int
	From       *time.Time // Optional, defaults to now
}

// PreviewRecurrenceResponse lists occurrences in the requested timezone.
type PreviewRecurrenceResponse struct {
	Expression  string // normalized
	Timezone    string
	RRules      []string
	Occurrences []time.Time
}

// Task represents a task entity at the port boundary. Dates are UTC.
type Task struct {
	ID                   string
	Name                 string
	Description          string
	Status               string
	ContextID            string
	ProjectID            string
	ClientID             string
	PriorityID           string
	DueDate              *time.Time
	StartDate            *time.Time
	CompletedAt          *time.Time
	RecurrenceExpression string
	TimeEstimate         int
	EnergyLevel          string
	Archived             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsRecurring reports whether the task carries a recurrence expression.
func (t *Task) IsRecurring() bool {
	return t.RecurrenceExpression != ""
}

// TaskFilters contains filter options for listing tasks.
type TaskFilters struct {
	Status          string
	PriorityID      string
	ProjectID       string
	ContextID       string
	DueBefore       *time.Time // due on or before
	OverdueOnly     bool
	IncludeArchived bool
}
