package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/example/nextaction/internal/core/project"
	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/core/taskcontext"
)

// apiError is the error body of every failed request.
type apiError struct {
	status  int
	Code    string         `json:"code" example:"invalid_recurrence_expression"`
	Message string         `json:"message" example:"invalid recurrence expression: every 0 days"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Message }

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// errorMapping is checked in order; the first sentinel that matches wins.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{coretask.ErrInvalidRecurrenceExpression, http.StatusUnprocessableEntity, "invalid_recurrence_expression"},
	{coretask.ErrMisalignedDueDate, http.StatusUnprocessableEntity, "misaligned_due_date"},
	{coretask.ErrInvalidDateRange, http.StatusUnprocessableEntity, "invalid_date_range"},
	{coretask.ErrInvalidTimezone, http.StatusBadRequest, "invalid_timezone"},
	{coretask.ErrMissingTaskID, http.StatusBadRequest, "missing_task_id"},
	{coretask.ErrValidation, http.StatusBadRequest, "validation_failed"},
	{project.ErrInvalidProject, http.StatusBadRequest, "validation_failed"},
	{project.ErrInvalidClient, http.StatusBadRequest, "validation_failed"},
	{taskcontext.ErrInvalidContext, http.StatusBadRequest, "validation_failed"},
	{coretask.ErrTaskNotFound, http.StatusNotFound, "not_found"},
	{coretask.ErrPriorityNotFound, http.StatusNotFound, "not_found"},
	{project.ErrProjectNotFound, http.StatusNotFound, "not_found"},
	{project.ErrClientNotFound, http.StatusNotFound, "not_found"},
	{taskcontext.ErrContextNotFound, http.StatusNotFound, "not_found"},
	{coretask.ErrCompletedTaskImmutable, http.StatusConflict, "completed_task_immutable"},
	{coretask.ErrAlreadyCompleted, http.StatusConflict, "already_completed"},
	{coretask.ErrConcurrentUpdate, http.StatusConflict, "conflict"},
	{project.ErrClientInUse, http.StatusConflict, "client_in_use"},
	{taskcontext.ErrContextInUse, http.StatusConflict, "context_in_use"},
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var se huma.StatusError
	if errors.As(err, &se) {
		return se
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return newAPIError(m.status, m.code, err.Error(), nil)
		}
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}
