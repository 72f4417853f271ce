// Package ical exports open tasks as an iCalendar feed of VTODO components.
package ical

import (
	"context"
	"fmt"
	"io"
	"time"

	goical "github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/example/nextaction/internal/core/recurrence"
	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/ports/primary"
)

// ProductID identifies the exporter in the PRODID property.
const ProductID = "-//nextaction//Task Export//EN"

// PropRecurrenceExpression carries the original recurrence expression next
// to the RRULE lines derived from it.
const PropRecurrenceExpression = "X-NEXTACTION-RECURRENCE"

// uidNamespace keeps exported UIDs stable for a task across exports.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:nextaction:task"))

// Exporter builds VTODO calendars from open tasks.
type Exporter struct {
	tasks    primary.TaskService
	contexts primary.ContextService
	engine   *recurrence.Engine
	location *time.Location
}

// NewExporter creates an Exporter. Dates are written in loc; nil means UTC.
func NewExporter(tasks primary.TaskService, contexts primary.ContextService, engine *recurrence.Engine, loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{
		tasks:    tasks,
		contexts: contexts,
		engine:   engine,
		location: loc,
	}
}

// Calendar returns a calendar holding one VTODO per open, non-archived task
// with a due date.
func (e *Exporter) Calendar(ctx context.Context) (*goical.Calendar, error) {
	tasks, err := e.tasks.ListTasks(ctx, primary.TaskFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	contexts, err := e.contexts.ListContexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}
	names := make(map[string]string, len(contexts))
	for _, c := range contexts {
		names[c.ID] = c.Name
	}

	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, ProductID)

	for _, t := range tasks {
		if t.DueDate == nil || t.Status == string(coretask.StatusCompleted) || t.Archived {
			continue
		}
		cal.Children = append(cal.Children, e.todo(t, names[t.ContextID]))
	}
	return cal, nil
}

// Export writes the calendar to w and returns the number of VTODOs written.
func (e *Exporter) Export(ctx context.Context, w io.Writer) (int, error) {
	cal, err := e.Calendar(ctx)
	if err != nil {
		return 0, err
	}
	if err := goical.NewEncoder(w).Encode(cal); err != nil {
		return 0, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return len(cal.Children), nil
}

func (e *Exporter) todo(t *primary.Task, contextName string) *goical.Component {
	todo := goical.NewComponent(goical.CompToDo)
	todo.Props.SetText(goical.PropUID, TaskUID(t.ID))
	todo.Props.SetDateTime(goical.PropDateTimeStamp, t.UpdatedAt.UTC())
	todo.Props.SetText(goical.PropSummary, t.Name)
	if t.Description != "" {
		todo.Props.SetText(goical.PropDescription, t.Description)
	}
	todo.Props.SetDateTime(goical.PropDue, t.DueDate.In(e.location))
	if t.StartDate != nil {
		todo.Props.SetDateTime(goical.PropDateTimeStart, t.StartDate.In(e.location))
	}
	todo.Props.SetText(goical.PropStatus, "NEEDS-ACTION")
	if contextName != "" {
		todo.Props.SetText(goical.PropCategories, contextName)
	}

	if t.RecurrenceExpression != "" {
		todo.Props.SetText(PropRecurrenceExpression, t.RecurrenceExpression)
		// RRULE may appear once per component; schedules that need more than
		// one rule keep only the expression property.
		if schedule, err := e.engine.Parse(t.RecurrenceExpression); err == nil {
			if rule, ok := schedule.SingleRRule(); ok {
				prop := goical.NewProp(goical.PropRecurrenceRule)
				prop.Value = rule
				todo.Props.Add(prop)
			}
		}
	}
	return todo
}

// TaskUID returns the iCalendar UID of a task.
func TaskUID(taskID string) string {
	return uuid.NewSHA1(uidNamespace, []byte(taskID)).String()
}
