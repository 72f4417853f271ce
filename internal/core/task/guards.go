// Package task contains the pure business logic for the task lifecycle.
// Guards are pure functions that evaluate preconditions without side effects.
package task

import (
	"fmt"
	"time"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Err     error // sentinel wrapped by Error when not allowed
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Err != nil {
		return fmt.Errorf("%w: %s", r.Err, r.Reason)
	}
	return fmt.Errorf("%s", r.Reason)
}

func deny(err error, format string, args ...any) GuardResult {
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// CreateTaskContext provides context for task creation guards.
type CreateTaskContext struct {
	Name        string
	ContextID   string
	Status      Status // empty means the default status
	EnergyLevel string
	StartDate   *time.Time
	DueDate     *time.Time
}

// UpdateTaskContext provides context for task update guards.
type UpdateTaskContext struct {
	TaskID        string
	CurrentStatus Status
	NewStatus     *Status // nil when the update leaves status alone
	EnergyLevel   *string
	StartDate     *time.Time // effective value after the update
	DueDate       *time.Time // effective value after the update
}

// CompleteTaskContext provides context for task completion guards.
type CompleteTaskContext struct {
	TaskID string
	Status Status
}

// ArchiveTaskContext provides context for task archive guards.
type ArchiveTaskContext struct {
	TaskID string
	Status Status
	Force  bool
}

// CanCreateTask evaluates whether a task can be created.
// Rules:
// - Name is required
// - Context is required
// - Status, if given, must be known
// - Start date must not be after due date
func CanCreateTask(ctx CreateTaskContext) GuardResult {
	if ctx.Name == "" {
		return deny(ErrValidation, "task name is required")
	}
	if ctx.ContextID == "" {
		return deny(ErrValidation, "task context is required")
	}
	if ctx.Status != "" && !ctx.Status.Valid() {
		return deny(ErrValidation, "unknown status %q", ctx.Status)
	}
	if !ValidEnergyLevel(ctx.EnergyLevel) {
		return deny(ErrValidation, "energy level must be low, medium or high (got %q)", ctx.EnergyLevel)
	}
	return CheckDateRange(ctx.StartDate, ctx.DueDate)
}

// CanUpdateTask evaluates whether an update may be applied.
// Rules:
// - A completed task only accepts a status change away from Completed
// - Status, if given, must be known
// - Start date must not be after due date
func CanUpdateTask(ctx UpdateTaskContext) GuardResult {
	if ctx.CurrentStatus == StatusCompleted {
		if ctx.NewStatus == nil || *ctx.NewStatus == StatusCompleted {
			return deny(ErrCompletedTaskImmutable,
				"task %s is completed; change its status to reopen it before editing", ctx.TaskID)
		}
	}
	if ctx.NewStatus != nil && !ctx.NewStatus.Valid() {
		return deny(ErrValidation, "unknown status %q", *ctx.NewStatus)
	}
	if ctx.EnergyLevel != nil && !ValidEnergyLevel(*ctx.EnergyLevel) {
		return deny(ErrValidation, "energy level must be low, medium or high (got %q)", *ctx.EnergyLevel)
	}
	return CheckDateRange(ctx.StartDate, ctx.DueDate)
}

// CanCompleteTask evaluates whether a task can be completed.
// Rules:
// - Task must not already be completed
func CanCompleteTask(ctx CompleteTaskContext) GuardResult {
	if ctx.Status == StatusCompleted {
		return deny(ErrAlreadyCompleted, "task %s is already completed", ctx.TaskID)
	}
	return GuardResult{Allowed: true}
}

// CanArchiveTask evaluates whether a task can be archived.
// Rules:
// - Completed tasks are kept as history unless forced
func CanArchiveTask(ctx ArchiveTaskContext) GuardResult {
	if ctx.Status == StatusCompleted && !ctx.Force {
		return deny(ErrValidation, "task %s is completed; use --force to archive it", ctx.TaskID)
	}
	return GuardResult{Allowed: true}
}

// CheckDateRange rejects a start date after the due date. Either may be nil.
func CheckDateRange(start, due *time.Time) GuardResult {
	if start != nil && due != nil && start.After(*due) {
		return deny(ErrInvalidDateRange, "start date %s is after due date %s",
			start.UTC().Format(time.RFC3339), due.UTC().Format(time.RFC3339))
	}
	return GuardResult{Allowed: true}
}
