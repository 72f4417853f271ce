package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"

	coreproject "github.com/example/nextaction/internal/core/project"
	"github.com/example/nextaction/internal/core/recurrence"
	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/core/taskcontext"
	"github.com/example/nextaction/internal/core/zone"
	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/ports/secondary"
)

// DefaultOccurrenceCount is used when a preview request does not ask for a count.
const DefaultOccurrenceCount = 5

// TaskServiceImpl implements the TaskService interface. It owns the task
// lifecycle: due date alignment against recurrence, the completion state
// machine and successor spawning.
type TaskServiceImpl struct {
	taskRepo       secondary.TaskRepository
	contextRepo    secondary.ContextRepository
	projectService primary.ProjectService
	eventWriter    secondary.TaskEventWriter
	transactor     secondary.Transactor
	clock          secondary.Clock
	engine         *recurrence.Engine
	timezone       string
	logger         *slog.Logger
}

// NewTaskService creates a new TaskService with injected dependencies.
// defaultTimezone is used by requests that carry no timezone.
func NewTaskService(
	taskRepo secondary.TaskRepository,
	contextRepo secondary.ContextRepository,
	projectService primary.ProjectService,
	eventWriter secondary.TaskEventWriter,
	transactor secondary.Transactor,
	clock secondary.Clock,
	engine *recurrence.Engine,
	defaultTimezone string,
	logger *slog.Logger,
) *TaskServiceImpl {
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		taskRepo:       taskRepo,
		contextRepo:    contextRepo,
		projectService: projectService,
		eventWriter:    eventWriter,
		transactor:     transactor,
		clock:          clock,
		engine:         engine,
		timezone:       defaultTimezone,
		logger:         logger.With("component", "tasks"),
	}
}

// CreateTask creates a new task.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, req primary.CreateTaskRequest) (*primary.CreateTaskResponse, error) {
	status := coretask.StatusNextAction
	if req.Status != "" {
		parsed, err := coretask.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	guard := coretask.CanCreateTask(coretask.CreateTaskContext{
		Name:        strings.TrimSpace(req.Name),
		ContextID:   req.ContextID,
		Status:      status,
		EnergyLevel: req.EnergyLevel,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	now := s.now()
	dueDate := utcPtr(req.DueDate)
	expression := strings.TrimSpace(req.RecurrenceExpression)
	if expression != "" {
		aligned, err := s.alignDueDate(expression, req.Timezone, dueDate, now)
		if err != nil {
			return nil, err
		}
		dueDate = aligned
	}
	startDate := utcPtr(req.StartDate)
	if err := coretask.CheckDateRange(startDate, dueDate).Error(); err != nil {
		return nil, err
	}

	record := &secondary.TaskRecord{
		Name:                 strings.TrimSpace(req.Name),
		Description:          req.Description,
		Status:               string(status),
		ContextID:            req.ContextID,
		ProjectID:            req.ProjectID,
		ClientID:             req.ClientID,
		PriorityID:           req.PriorityID,
		DueDate:              dueDate,
		StartDate:            startDate,
		RecurrenceExpression: expression,
		TimeEstimate:         req.TimeEstimate,
		EnergyLevel:          req.EnergyLevel,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if status == coretask.StatusCompleted {
		record.CompletedAt = &now
	}

	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkContext(ctx, record.ContextID); err != nil {
			return err
		}
		project, err := s.resolveProject(ctx, record.ProjectID)
		if err != nil {
			return err
		}
		record.ProjectID = project.ID
		if record.ClientID == "" {
			record.ClientID = project.ClientID
		}

		id, err := s.taskRepo.Create(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		record.ID = id
		return s.eventWriter.LogCreate(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	return &primary.CreateTaskResponse{
		TaskID: record.ID,
		Task:   recordToTask(record),
	}, nil
}

// GetTask retrieves a task by ID.
func (s *TaskServiceImpl) GetTask(ctx context.Context, taskID string) (*primary.Task, error) {
	record, err := s.getRecord(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return recordToTask(record), nil
}

// ListTasks lists tasks with optional filters.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, filters primary.TaskFilters) ([]*primary.Task, error) {
	repoFilters := secondary.TaskFilters{
		PriorityID:      filters.PriorityID,
		ProjectID:       filters.ProjectID,
		ContextID:       filters.ContextID,
		DueBefore:       utcPtr(filters.DueBefore),
		IncludeArchived: filters.IncludeArchived,
	}
	if filters.Status != "" {
		status, err := coretask.ParseStatus(filters.Status)
		if err != nil {
			return nil, err
		}
		repoFilters.Status = string(status)
	}
	if filters.OverdueOnly {
		now := s.now()
		if repoFilters.DueBefore == nil || repoFilters.DueBefore.After(now) {
			repoFilters.DueBefore = &now
		}
		repoFilters.ExcludeStatus = string(coretask.StatusCompleted)
	}

	records, err := s.taskRepo.List(ctx, repoFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*primary.Task, len(records))
	for i, r := range records {
		tasks[i] = recordToTask(r)
	}
	return tasks, nil
}

// UpdateTask applies a partial update.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, req primary.UpdateTaskRequest) (*primary.UpdateTaskResponse, error) {
	current, err := s.getRecord(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	currentStatus := coretask.Status(current.Status)

	var newStatus *coretask.Status
	if v, ok := req.Status.Get(); ok {
		parsed, err := coretask.ParseStatus(v)
		if err != nil {
			return nil, err
		}
		newStatus = &parsed
	}
	var energy *string
	if v, ok := req.EnergyLevel.Get(); ok {
		energy = &v
	}

	guard := coretask.CanUpdateTask(coretask.UpdateTaskContext{
		TaskID:        current.ID,
		CurrentStatus: currentStatus,
		NewStatus:     newStatus,
		EnergyLevel:   energy,
	})
	if !guard.Allowed {
		s.logger.Warn("update rejected", "task", current.ID, "reason", guard.Reason)
		return nil, guard.Error()
	}
	if v, ok := req.Name.Get(); ok && strings.TrimSpace(v) == "" {
		return nil, fmt.Errorf("%w: task name cannot be empty", coretask.ErrValidation)
	}
	if v, ok := req.ContextID.Get(); ok && v == "" {
		return nil, fmt.Errorf("%w: task context is required", coretask.ErrValidation)
	}

	now := s.now()
	update := secondary.TaskFieldUpdate{
		Name:                 trimOption(req.Name),
		Description:          req.Description,
		ContextID:            req.ContextID,
		ProjectID:            req.ProjectID,
		ClientID:             req.ClientID,
		PriorityID:           req.PriorityID,
		DueDate:              utcOption(req.DueDate),
		StartDate:            utcOption(req.StartDate),
		RecurrenceExpression: trimOption(req.RecurrenceExpression),
		TimeEstimate:         req.TimeEstimate,
		EnergyLevel:          req.EnergyLevel,
		UpdatedAt:            now,
	}
	if newStatus != nil {
		update.Status = mo.Some(string(*newStatus))
	}

	expression := update.RecurrenceExpression.OrElse(current.RecurrenceExpression)
	dueDate := update.DueDate.OrElse(current.DueDate)
	recurrenceChanged := update.RecurrenceExpression.IsPresent() && expression != current.RecurrenceExpression
	dueChanged := update.DueDate.IsPresent() && !sameInstant(dueDate, current.DueDate)
	if expression != "" && (recurrenceChanged || dueChanged) {
		aligned, err := s.alignDueDate(expression, req.Timezone, dueDate, now)
		if err != nil {
			return nil, err
		}
		dueDate = aligned
		update.DueDate = mo.Some(aligned)
	}
	startDate := update.StartDate.OrElse(current.StartDate)
	if err := coretask.CheckDateRange(startDate, dueDate).Error(); err != nil {
		return nil, err
	}

	var successorDue *time.Time
	if newStatus != nil {
		switch {
		case *newStatus == coretask.StatusCompleted && currentStatus != coretask.StatusCompleted:
			update.CompletedAt = mo.Some(&now)
			if current.RecurrenceExpression != "" {
				successorDue, err = s.nextDueDate(current, req.Timezone, now)
				if err != nil {
					return nil, err
				}
			}
		case *newStatus != coretask.StatusCompleted && currentStatus == coretask.StatusCompleted:
			update.CompletedAt = mo.Some[*time.Time](nil)
		}
	}

	var successor *secondary.TaskRecord
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		if v, ok := update.ContextID.Get(); ok {
			if err := s.checkContext(ctx, v); err != nil {
				return err
			}
		}
		if v, ok := update.ProjectID.Get(); ok {
			project, err := s.resolveProject(ctx, v)
			if err != nil {
				return err
			}
			update.ProjectID = mo.Some(project.ID)
		}

		if err := s.applyUpdate(ctx, current, update); err != nil {
			return err
		}
		if successorDue != nil {
			successor = newSuccessor(mergeFields(current, update), current.RecurrenceExpression, *successorDue, now)
			return s.spawn(ctx, current.ID, successor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.GetByID(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	return &primary.UpdateTaskResponse{
		Task:      recordToTask(updated),
		Successor: recordToTask(successor),
	}, nil
}

// CompleteTask marks a task as completed.
func (s *TaskServiceImpl) CompleteTask(ctx context.Context, req primary.CompleteTaskRequest) (*primary.CompleteTaskResponse, error) {
	current, err := s.getRecord(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	guard := coretask.CanCompleteTask(coretask.CompleteTaskContext{
		TaskID: current.ID,
		Status: coretask.Status(current.Status),
	})
	if !guard.Allowed {
		s.logger.Warn("completion rejected", "task", current.ID, "reason", guard.Reason)
		return nil, guard.Error()
	}

	now := s.now()
	var successorDue *time.Time
	if current.RecurrenceExpression != "" {
		successorDue, err = s.nextDueDate(current, req.Timezone, now)
		if err != nil {
			return nil, err
		}
	}

	update := secondary.TaskFieldUpdate{
		Status:      mo.Some(string(coretask.StatusCompleted)),
		CompletedAt: mo.Some(&now),
		UpdatedAt:   now,
	}

	var successor *secondary.TaskRecord
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.applyUpdate(ctx, current, update); err != nil {
			return err
		}
		if successorDue != nil {
			successor = newSuccessor(current, current.RecurrenceExpression, *successorDue, now)
			return s.spawn(ctx, current.ID, successor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &primary.CompleteTaskResponse{
		Task:      recordToTask(current),
		Successor: recordToTask(successor),
	}, nil
}

// ArchiveTask soft-deletes a task.
func (s *TaskServiceImpl) ArchiveTask(ctx context.Context, req primary.ArchiveTaskRequest) (bool, error) {
	current, err := s.getRecord(ctx, req.TaskID)
	if err != nil {
		return false, err
	}

	guard := coretask.CanArchiveTask(coretask.ArchiveTaskContext{
		TaskID: current.ID,
		Status: coretask.Status(current.Status),
		Force:  req.Force,
	})
	if err := guard.Error(); err != nil {
		return false, err
	}

	var changed bool
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		changed, err = s.taskRepo.Archive(ctx, current.ID, s.now())
		if err != nil {
			return fmt.Errorf("failed to archive task: %w", err)
		}
		if !changed {
			return nil
		}
		return s.eventWriter.LogArchive(ctx, current.ID)
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// NextOccurrences previews upcoming occurrences of a recurring task. The
// search starts strictly after the due date, or now if there is none.
func (s *TaskServiceImpl) NextOccurrences(ctx context.Context, req primary.NextOccurrencesRequest) ([]time.Time, error) {
	current, err := s.getRecord(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	if current.RecurrenceExpression == "" {
		return nil, fmt.Errorf("%w: task %s is not recurring", coretask.ErrValidation, current.ID)
	}

	loc, _, err := s.location(req.Timezone)
	if err != nil {
		return nil, err
	}
	schedule, err := s.engine.Parse(current.RecurrenceExpression)
	if err != nil {
		return nil, err
	}

	anchor := s.now()
	if current.DueDate != nil {
		anchor = *current.DueDate
	}
	local := s.engine.NextAfter(schedule, countOrDefault(req.Count), zone.ToLocal(anchor, loc))

	out := make([]time.Time, len(local))
	for i, t := range local {
		out[i] = zone.ToUTC(t)
	}
	return out, nil
}

// PreviewRecurrence evaluates an expression from the given instant, inclusive.
// Occurrences are returned in the requested timezone.
func (s *TaskServiceImpl) PreviewRecurrence(ctx context.Context, req primary.PreviewRecurrenceRequest) (*primary.PreviewRecurrenceResponse, error) {
	loc, name, err := s.location(req.Timezone)
	if err != nil {
		return nil, err
	}
	schedule, err := s.engine.Parse(req.Expression)
	if err != nil {
		return nil, err
	}

	from := s.now()
	if req.From != nil {
		from = *req.From
	}
	return &primary.PreviewRecurrenceResponse{
		Expression:  schedule.Expression(),
		Timezone:    name,
		RRules:      schedule.RRule(),
		Occurrences: s.engine.Next(schedule, countOrDefault(req.Count), zone.ToLocal(from, loc)),
	}, nil
}

// Helper methods

func (s *TaskServiceImpl) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Second)
}

func (s *TaskServiceImpl) getRecord(ctx context.Context, taskID string) (*secondary.TaskRecord, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, coretask.ErrMissingTaskID
	}
	return s.taskRepo.GetByID(ctx, taskID)
}

// location resolves a request timezone, falling back to the default.
func (s *TaskServiceImpl) location(name string) (*time.Location, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.timezone
	}
	loc, err := zone.Load(name)
	if err != nil {
		return nil, name, fmt.Errorf("%w: %q", coretask.ErrInvalidTimezone, name)
	}
	return loc, name, nil
}

// alignDueDate returns the due date a recurring task is stored with. A given
// due date must be an occurrence of the expression; a missing one becomes the
// first occurrence at or after now.
func (s *TaskServiceImpl) alignDueDate(expression, timezone string, dueDate *time.Time, now time.Time) (*time.Time, error) {
	loc, _, err := s.location(timezone)
	if err != nil {
		return nil, err
	}
	schedule, err := s.engine.Parse(expression)
	if err != nil {
		return nil, err
	}

	if dueDate == nil {
		next := s.engine.Next(schedule, 1, zone.ToLocal(now, loc))
		if len(next) == 0 {
			return nil, fmt.Errorf("%w: %q has no upcoming occurrence", coretask.ErrInvalidRecurrenceExpression, schedule.Expression())
		}
		derived := zone.ToUTC(next[0])
		s.logger.Debug("derived due date",
			"expression", schedule.Expression(),
			"timezone", loc.String(),
			"due", derived)
		return &derived, nil
	}

	if !s.engine.IsOccurrence(schedule, zone.ToLocal(*dueDate, loc)) {
		return nil, fmt.Errorf("%w: %s is not an occurrence of %q in %s",
			coretask.ErrMisalignedDueDate, dueDate.UTC().Format(time.RFC3339), schedule.Expression(), loc)
	}
	aligned := zone.ToUTC(zone.TruncateMinute(*dueDate))
	return &aligned, nil
}

// nextDueDate computes the successor due date of a recurring task: the first
// occurrence strictly after its current due date. Nil means the schedule is
// exhausted and the chain ends.
func (s *TaskServiceImpl) nextDueDate(current *secondary.TaskRecord, timezone string, now time.Time) (*time.Time, error) {
	loc, _, err := s.location(timezone)
	if err != nil {
		return nil, err
	}
	schedule, err := s.engine.Parse(current.RecurrenceExpression)
	if err != nil {
		return nil, err
	}

	anchor := now
	if current.DueDate != nil {
		anchor = *current.DueDate
	}
	next := s.engine.NextAfter(schedule, 1, zone.ToLocal(anchor, loc))
	if len(next) == 0 {
		s.logger.Info("recurrence exhausted, no successor", "task", current.ID, "expression", current.RecurrenceExpression)
		return nil, nil
	}
	due := zone.ToUTC(next[0])
	return &due, nil
}

func (s *TaskServiceImpl) checkContext(ctx context.Context, contextID string) error {
	if _, err := s.contextRepo.GetByID(ctx, contextID); err != nil {
		if errors.Is(err, taskcontext.ErrContextNotFound) {
			return fmt.Errorf("%w: context %s not found", coretask.ErrValidation, contextID)
		}
		return fmt.Errorf("failed to load context: %w", err)
	}
	return nil
}

// resolveProject returns the named project, or the default project when
// projectID is empty.
func (s *TaskServiceImpl) resolveProject(ctx context.Context, projectID string) (*primary.Project, error) {
	if projectID == "" {
		project, err := s.projectService.GetOrCreateDefaultProject(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default project: %w", err)
		}
		return project, nil
	}
	project, err := s.projectService.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, coreproject.ErrProjectNotFound) {
			return nil, fmt.Errorf("%w: project %s not found", coretask.ErrValidation, projectID)
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return project, nil
}

// applyUpdate writes the update and records one event per changed field.
// applyUpdate writes update only if the task still has the status it was
// read with, so two requests racing on one task cannot both complete it.
func (s *TaskServiceImpl) applyUpdate(ctx context.Context, current *secondary.TaskRecord, update secondary.TaskFieldUpdate) error {
	update.ExpectStatus = mo.Some(current.Status)
	n, err := s.taskRepo.UpdateFields(ctx, current.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if n == 0 {
		return s.staleUpdateError(ctx, current, update)
	}
	for _, c := range fieldChanges(current, update) {
		if err := s.eventWriter.LogUpdate(ctx, current.ID, c.field, c.oldValue, c.newValue); err != nil {
			return err
		}
	}
	return nil
}

// staleUpdateError explains why a conditional update matched no row.
func (s *TaskServiceImpl) staleUpdateError(ctx context.Context, current *secondary.TaskRecord, update secondary.TaskFieldUpdate) error {
	fresh, err := s.taskRepo.GetByID(ctx, current.ID)
	if err != nil {
		return err
	}
	completing := update.Status.OrEmpty() == string(coretask.StatusCompleted)
	switch {
	case fresh.Status == string(coretask.StatusCompleted) && completing:
		return fmt.Errorf("%w: %s", coretask.ErrAlreadyCompleted, current.ID)
	case fresh.Status == string(coretask.StatusCompleted):
		return fmt.Errorf("%w: %s", coretask.ErrCompletedTaskImmutable, current.ID)
	default:
		s.logger.Warn("update lost a race", "task", current.ID, "read", current.Status, "stored", fresh.Status)
		return fmt.Errorf("%w: %s is now %s", coretask.ErrConcurrentUpdate, current.ID, fresh.Status)
	}
}

func (s *TaskServiceImpl) spawn(ctx context.Context, parentID string, successor *secondary.TaskRecord) error {
	id, err := s.taskRepo.Create(ctx, successor)
	if err != nil {
		return fmt.Errorf("failed to create successor of %s: %w", parentID, err)
	}
	successor.ID = id
	s.logger.Debug("successor spawned", "task", parentID, "successor", id, "due", successor.DueDate)
	return s.eventWriter.LogCreate(ctx, id)
}

// newSuccessor copies the descriptive fields of a completed recurring task
// onto a fresh Next Action due at the following occurrence.
func newSuccessor(base *secondary.TaskRecord, expression string, due, now time.Time) *secondary.TaskRecord {
	start := due
	return &secondary.TaskRecord{
		Name:                 base.Name,
		Description:          base.Description,
		Status:               string(coretask.StatusNextAction),
		ContextID:            base.ContextID,
		ProjectID:            base.ProjectID,
		ClientID:             base.ClientID,
		PriorityID:           base.PriorityID,
		DueDate:              &due,
		StartDate:            &start,
		RecurrenceExpression: expression,
		TimeEstimate:         base.TimeEstimate,
		EnergyLevel:          base.EnergyLevel,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// mergeFields returns a copy of r with the present fields of u applied.
func mergeFields(r *secondary.TaskRecord, u secondary.TaskFieldUpdate) *secondary.TaskRecord {
	out := *r
	out.Name = u.Name.OrElse(out.Name)
	out.Description = u.Description.OrElse(out.Description)
	out.Status = u.Status.OrElse(out.Status)
	out.ContextID = u.ContextID.OrElse(out.ContextID)
	out.ProjectID = u.ProjectID.OrElse(out.ProjectID)
	out.ClientID = u.ClientID.OrElse(out.ClientID)
	out.PriorityID = u.PriorityID.OrElse(out.PriorityID)
	out.DueDate = u.DueDate.OrElse(out.DueDate)
	out.StartDate = u.StartDate.OrElse(out.StartDate)
	out.CompletedAt = u.CompletedAt.OrElse(out.CompletedAt)
	out.RecurrenceExpression = u.RecurrenceExpression.OrElse(out.RecurrenceExpression)
	out.TimeEstimate = u.TimeEstimate.OrElse(out.TimeEstimate)
	out.EnergyLevel = u.EnergyLevel.OrElse(out.EnergyLevel)
	return &out
}

type fieldChange struct {
	field    string
	oldValue string
	newValue string
}

// fieldChanges lists the fields u actually changes, named by column.
func fieldChanges(r *secondary.TaskRecord, u secondary.TaskFieldUpdate) []fieldChange {
	var changes []fieldChange
	add := func(field, oldValue string, o mo.Option[string]) {
		if v, ok := o.Get(); ok && v != oldValue {
			changes = append(changes, fieldChange{field, oldValue, v})
		}
	}
	addTime := func(field string, oldValue *time.Time, o mo.Option[*time.Time]) {
		if v, ok := o.Get(); ok && !sameInstant(v, oldValue) {
			changes = append(changes, fieldChange{field, formatTime(oldValue), formatTime(v)})
		}
	}

	add("name", r.Name, u.Name)
	add("description", r.Description, u.Description)
	add("status", r.Status, u.Status)
	add("context_id", r.ContextID, u.ContextID)
	add("project_id", r.ProjectID, u.ProjectID)
	add("client_id", r.ClientID, u.ClientID)
	add("priority_id", r.PriorityID, u.PriorityID)
	addTime("due_date", r.DueDate, u.DueDate)
	addTime("start_date", r.StartDate, u.StartDate)
	addTime("completed_at", r.CompletedAt, u.CompletedAt)
	add("recurrence_expression", r.RecurrenceExpression, u.RecurrenceExpression)
	if v, ok := u.TimeEstimate.Get(); ok && v != r.TimeEstimate {
		changes = append(changes, fieldChange{"time_estimate", strconv.Itoa(r.TimeEstimate), strconv.Itoa(v)})
	}
	add("energy_level", r.EnergyLevel, u.EnergyLevel)
	return changes
}

func recordToTask(r *secondary.TaskRecord) *primary.Task {
	if r == nil {
		return nil
	}
	return &primary.Task{
		ID:                   r.ID,
		Name:                 r.Name,
		Description:          r.Description,
		Status:               r.Status,
		ContextID:            r.ContextID,
		ProjectID:            r.ProjectID,
		ClientID:             r.ClientID,
		PriorityID:           r.PriorityID,
		DueDate:              r.DueDate,
		StartDate:            r.StartDate,
		CompletedAt:          r.CompletedAt,
		RecurrenceExpression: r.RecurrenceExpression,
		TimeEstimate:         r.TimeEstimate,
		EnergyLevel:          r.EnergyLevel,
		Archived:             r.Archived,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func countOrDefault(n int) int {
	if n <= 0 {
		return DefaultOccurrenceCount
	}
	return n
}

// utcPtr normalizes a caller-supplied instant to UTC at storage precision.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC().Truncate(time.Second)
	return &u
}

func utcOption(o mo.Option[*time.Time]) mo.Option[*time.Time] {
	if v, ok := o.Get(); ok {
		return mo.Some(utcPtr(v))
	}
	return o
}

func trimOption(o mo.Option[string]) mo.Option[string] {
	if v, ok := o.Get(); ok {
		return mo.Some(strings.TrimSpace(v))
	}
	return o
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
