// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting, but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/example/nextaction/internal/ports/primary"
)

// DisplayLayout is how instants are printed, always in the display timezone.
const DisplayLayout = "Mon 2006-01-02 15:04 MST"

var (
	overdueColor   = color.New(color.FgRed)
	recurringColor = color.New(color.FgCyan)
	completedColor = color.New(color.FgGreen)
)

// TaskAdapter is a thin adapter that translates CLI operations to TaskService calls.
// It depends only on the service interfaces, enabling easy testing with mocks.
type TaskAdapter struct {
	tasks    primary.TaskService
	events   primary.LogService
	location *time.Location
	out      io.Writer
	now      func() time.Time
}

// NewTaskAdapter creates a new TaskAdapter printing instants in loc.
func NewTaskAdapter(tasks primary.TaskService, events primary.LogService, loc *time.Location, out io.Writer) *TaskAdapter {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskAdapter{
		tasks:    tasks,
		events:   events,
		location: loc,
		out:      out,
		now:      time.Now,
	}
}

// Create creates a new task.
func (a *TaskAdapter) Create(ctx context.Context, req primary.CreateTaskRequest) error {
	resp, err := a.tasks.CreateTask(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created task %s: %s\n", resp.TaskID, resp.Task.Name)
	if resp.Task.DueDate != nil {
		fmt.Fprintf(a.out, "  Due: %s\n", a.format(resp.Task.DueDate))
	}
	if resp.Task.IsRecurring() {
		fmt.Fprintf(a.out, "  Repeats: %s\n", recurringColor.Sprint(resp.Task.RecurrenceExpression))
	}
	return nil
}

// List lists tasks matching filters as a table.
func (a *TaskAdapter) List(ctx context.Context, filters primary.TaskFilters) error {
	tasks, err := a.tasks.ListTasks(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks found")
		return nil
	}

	now := a.now()
	tw := table.NewWriter()
	tw.SetOutputMirror(a.out)
	tw.AppendHeader(table.Row{"ID", "Name", "Status", "Context", "Due", "Repeats"})
	for _, t := range tasks {
		due := a.format(t.DueDate)
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != "Completed" {
			due = overdueColor.Sprint(due)
		}
		status := t.Status
		if status == "Completed" {
			status = completedColor.Sprint(status)
		}
		tw.AppendRow(table.Row{t.ID, t.Name, status, t.ContextID, due, recurringColor.Sprint(t.RecurrenceExpression)})
	}
	tw.Render()
	return nil
}

// Show displays details for a single task.
func (a *TaskAdapter) Show(ctx context.Context, taskID string) (*primary.Task, error) {
	t, err := a.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	fmt.Fprintf(a.out, "\nTask: %s\n", t.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", t.Name)
	fmt.Fprintf(a.out, "Status:  %s\n", t.Status)
	fmt.Fprintf(a.out, "Context: %s\n", t.ContextID)
	if t.ProjectID != "" {
		fmt.Fprintf(a.out, "Project: %s\n", t.ProjectID)
	}
	if t.PriorityID != "" {
		fmt.Fprintf(a.out, "Priority: %s\n", t.PriorityID)
	}
	if t.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", t.Description)
	}
	if t.StartDate != nil {
		fmt.Fprintf(a.out, "Start:   %s\n", a.format(t.StartDate))
	}
	if t.DueDate != nil {
		fmt.Fprintf(a.out, "Due:     %s\n", a.format(t.DueDate))
	}
	if t.IsRecurring() {
		fmt.Fprintf(a.out, "Repeats: %s\n", recurringColor.Sprint(t.RecurrenceExpression))
	}
	if t.CompletedAt != nil {
		fmt.Fprintf(a.out, "Completed: %s\n", a.format(t.CompletedAt))
	}
	if t.Archived {
		fmt.Fprintln(a.out, "Archived: yes")
	}
	fmt.Fprintln(a.out)

	return t, nil
}

// Update applies a partial update.
func (a *TaskAdapter) Update(ctx context.Context, req primary.UpdateTaskRequest) error {
	resp, err := a.tasks.UpdateTask(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Updated task %s\n", resp.Task.ID)
	a.printSuccessor(resp.Successor)
	return nil
}

// Complete marks a task as completed.
func (a *TaskAdapter) Complete(ctx context.Context, taskID, timezone string) error {
	resp, err := a.tasks.CompleteTask(ctx, primary.CompleteTaskRequest{TaskID: taskID, Timezone: timezone})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Completed task %s: %s\n", resp.Task.ID, resp.Task.Name)
	a.printSuccessor(resp.Successor)
	return nil
}

// Archive archives a task.
func (a *TaskAdapter) Archive(ctx context.Context, taskID string, force bool) error {
	changed, err := a.tasks.ArchiveTask(ctx, primary.ArchiveTaskRequest{TaskID: taskID, Force: force})
	if err != nil {
		return err
	}

	if !changed {
		fmt.Fprintf(a.out, "Task %s was already archived\n", taskID)
		return nil
	}
	fmt.Fprintf(a.out, "✓ Archived task %s\n", taskID)
	return nil
}

// Next prints the upcoming occurrences of a recurring task.
func (a *TaskAdapter) Next(ctx context.Context, taskID, timezone string, count int) error {
	occurrences, err := a.tasks.NextOccurrences(ctx, primary.NextOccurrencesRequest{
		TaskID:   taskID,
		Timezone: timezone,
		Count:    count,
	})
	if err != nil {
		return err
	}

	if len(occurrences) == 0 {
		fmt.Fprintf(a.out, "Task %s has no further occurrences\n", taskID)
		return nil
	}
	for i, o := range occurrences {
		fmt.Fprintf(a.out, "%2d. %s\n", i+1, a.format(&o))
	}
	return nil
}

// Check evaluates an expression without touching any task.
func (a *TaskAdapter) Check(ctx context.Context, req primary.PreviewRecurrenceRequest) error {
	resp, err := a.tasks.PreviewRecurrence(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Expression: %s\n", recurringColor.Sprint(resp.Expression))
	fmt.Fprintf(a.out, "Timezone:   %s\n", resp.Timezone)
	for _, rule := range resp.RRules {
		fmt.Fprintf(a.out, "RRULE:      %s\n", rule)
	}
	if len(resp.Occurrences) == 0 {
		fmt.Fprintln(a.out, "No occurrences")
		return nil
	}
	for i, o := range resp.Occurrences {
		// already in the requested timezone
		fmt.Fprintf(a.out, "%2d. %s\n", i+1, o.Format(DisplayLayout))
	}
	return nil
}

// History prints the audit trail of a task.
func (a *TaskAdapter) History(ctx context.Context, taskID string) error {
	events, err := a.events.ListTaskEvents(ctx, taskID)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Fprintf(a.out, "No history for %s\n", taskID)
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(a.out)
	tw.AppendHeader(table.Row{"When", "Actor", "Action", "Field", "Old", "New"})
	for _, e := range events {
		when := e.CreatedAt
		tw.AppendRow(table.Row{a.format(&when), e.ActorID, e.Action, e.FieldName, e.OldValue, e.NewValue})
	}
	tw.Render()
	return nil
}

func (a *TaskAdapter) printSuccessor(s *primary.Task) {
	if s == nil {
		return
	}
	fmt.Fprintf(a.out, "%s Next occurrence %s due %s\n", recurringColor.Sprint("↻"), s.ID, a.format(s.DueDate))
}

func (a *TaskAdapter) format(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.In(a.location).Format(DisplayLayout)
}
