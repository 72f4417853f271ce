package task

import (
	"errors"

	"github.com/example/nextaction/internal/core/recurrence"
)

// Errors returned by the task lifecycle. Callers match them with errors.Is;
// the wrapping message carries the detail.
var (
	ErrValidation                  = errors.New("validation failed")
	ErrInvalidTimezone             = errors.New("invalid timezone")
	ErrInvalidRecurrenceExpression = recurrence.ErrInvalidExpression
	ErrMisalignedDueDate           = errors.New("due date is not an occurrence of the recurrence")
	ErrInvalidDateRange            = errors.New("invalid date range")
	ErrTaskNotFound                = errors.New("task not found")
	ErrMissingTaskID               = errors.New("missing task id")
	ErrCompletedTaskImmutable      = errors.New("completed task is immutable")
	ErrAlreadyCompleted            = errors.New("task already completed")
	ErrConcurrentUpdate            = errors.New("task was changed by another request")

	ErrPriorityNotFound = errors.New("priority not found")
)
