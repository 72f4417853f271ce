// Package server exposes the task ledger as a JSON HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/samber/mo"

	"github.com/example/nextaction/internal/ctxutil"
	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/version"
)

// ActorHeader names the caller recorded in the task audit trail.
const ActorHeader = "X-Actor"

// CalendarExporter writes open tasks as an iCalendar feed.
type CalendarExporter interface {
	Export(ctx context.Context, w io.Writer) (int, error)
}

// Config for the HTTP API handler.
type Config struct {
	Tasks      primary.TaskService
	Projects   primary.ProjectService
	Clients    primary.ClientService
	Contexts   primary.ContextService
	Priorities primary.PriorityService
	Events     primary.LogService
	Calendar   CalendarExporter

	// DefaultActor is used when a request carries no X-Actor header.
	DefaultActor string
	Logger       *slog.Logger
}

// New returns an HTTP handler exposing the nextaction API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Tasks == nil {
		return nil, fmt.Errorf("task service is required")
	}
	if cfg.DefaultActor == "" {
		cfg.DefaultActor = "api"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// schema violations are the caller's input, not a domain rejection
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			messages := make([]string, 0, len(errs))
			for _, e := range errs {
				messages = append(messages, e.Error())
			}
			details = map[string]any{"errors": messages}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(actorMiddleware(cfg.DefaultActor))
	router.Use(logMiddleware(logger))

	hcfg := huma.DefaultConfig("nextaction API", version.Short())
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)

	registerHealth(api)
	registerTasks(api, cfg.Tasks)
	if cfg.Events != nil {
		registerTaskEvents(api, cfg.Events)
	}
	if cfg.Calendar != nil {
		registerCalendar(api, cfg.Calendar)
	}
	registerRecurrence(api, cfg.Tasks)
	if cfg.Contexts != nil {
		registerContexts(api, cfg.Contexts)
	}
	if cfg.Projects != nil {
		registerProjects(api, cfg.Projects)
	}
	if cfg.Clients != nil {
		registerClients(api, cfg.Clients)
	}
	if cfg.Priorities != nil {
		registerPriorities(api, cfg.Priorities)
	}

	return router, nil
}

func actorMiddleware(defaultActor string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := strings.TrimSpace(r.Header.Get(ActorHeader))
			if actor == "" {
				actor = defaultActor
			}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithActorID(r.Context(), actor)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok", "version": version.Short()}}, nil
	})
}

func registerTasks(api huma.API, tasks primary.TaskService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		resp, err := tasks.CreateTask(ctx, primary.CreateTaskRequest{
			Name:                 input.Body.Name,
			Description:          input.Body.Description,
			Status:               input.Body.Status,
			ContextID:            input.Body.ContextID,
			ProjectID:            input.Body.ProjectID,
			ClientID:             input.Body.ClientID,
			PriorityID:           input.Body.PriorityID,
			DueDate:              input.Body.DueDate,
			StartDate:            input.Body.StartDate,
			RecurrenceExpression: input.Body.RecurrenceExpression,
			TimeEstimate:         input.Body.TimeEstimate,
			EnergyLevel:          input.Body.EnergyLevel,
			Timezone:             input.Body.Timezone,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(resp.Task)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Status          string `query:"status"`
		PriorityID      string `query:"priorityId"`
		ProjectID       string `query:"projectId"`
		ContextID       string `query:"contextId"`
		DueBefore       string `query:"dueBefore" doc:"RFC 3339 instant; tasks due on or before it"`
		Overdue         bool   `query:"overdue"`
		IncludeArchived bool   `query:"includeArchived"`
	}) (*struct {
		Body []TaskResponse `json:"body"`
	}, error) {
		dueBefore, err := parseTimeParam("dueBefore", input.DueBefore)
		if err != nil {
			return nil, err
		}
		list, err := tasks.ListTasks(ctx, primary.TaskFilters{
			Status:          input.Status,
			PriorityID:      input.PriorityID,
			ProjectID:       input.ProjectID,
			ContextID:       input.ContextID,
			DueBefore:       dueBefore,
			OverdueOnly:     input.Overdue,
			IncludeArchived: input.IncludeArchived,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []TaskResponse `json:"body"`
		}{Body: mapTasks(list)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		t, err := tasks.GetTask(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Update task",
		Description: "Absent keys are left alone; null clears an optional field. Completing a recurring task spawns its successor.",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		ID      string            `path:"id"`
		Body    UpdateTaskRequest `json:"body"`
		RawBody []byte
	}) (*struct {
		Body TaskTransitionResponse `json:"body"`
	}, error) {
		req, err := updateRequest(input.ID, input.Body, input.RawBody)
		if err != nil {
			return nil, err
		}
		resp, err := tasks.UpdateTask(ctx, req)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskTransitionResponse `json:"body"`
		}{Body: transitionResponse(resp.Task, resp.Successor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/complete",
		Summary:     "Complete task",
		Description: "Returns the task as it was before completion and the successor of a recurring task.",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID       string `path:"id"`
		Timezone string `query:"timezone"`
	}) (*struct {
		Body TaskTransitionResponse `json:"body"`
	}, error) {
		resp, err := tasks.CompleteTask(ctx, primary.CompleteTaskRequest{
			TaskID:   input.ID,
			Timezone: input.Timezone,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskTransitionResponse `json:"body"`
		}{Body: transitionResponse(resp.Task, resp.Successor)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "archive-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/archive",
		Summary:     "Archive task",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID    string `path:"id"`
		Force bool   `query:"force" doc:"allow archiving a completed task"`
	}) (*struct {
		Body ArchiveResponse `json:"body"`
	}, error) {
		changed, err := tasks.ArchiveTask(ctx, primary.ArchiveTaskRequest{TaskID: input.ID, Force: input.Force})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ArchiveResponse `json:"body"`
		}{Body: ArchiveResponse{Archived: changed}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "task-occurrences",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}/occurrences",
		Summary:     "Preview upcoming occurrences of a recurring task",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID       string `path:"id"`
		Count    int    `query:"count" default:"5" minimum:"1" maximum:"1000"`
		Timezone string `query:"timezone"`
	}) (*struct {
		Body OccurrencesResponse `json:"body"`
	}, error) {
		occurrences, err := tasks.NextOccurrences(ctx, primary.NextOccurrencesRequest{
			TaskID:   input.ID,
			Count:    input.Count,
			Timezone: input.Timezone,
		})
		if err != nil {
			return nil, handleError(err)
		}
		if occurrences == nil {
			occurrences = []time.Time{}
		}
		return &struct {
			Body OccurrencesResponse `json:"body"`
		}{Body: OccurrencesResponse{TaskID: input.ID, Occurrences: occurrences}}, nil
	})
}

func registerTaskEvents(api huma.API, events primary.LogService) {
	huma.Register(api, huma.Operation{
		OperationID: "task-events",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}/events",
		Summary:     "List the audit trail of a task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body []TaskEventResponse `json:"body"`
	}, error) {
		list, err := events.ListTaskEvents(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]TaskEventResponse, 0, len(list))
		for _, e := range list {
			out = append(out, TaskEventResponse{
				ID:        e.ID,
				ActorID:   e.ActorID,
				Action:    e.Action,
				FieldName: e.FieldName,
				OldValue:  e.OldValue,
				NewValue:  e.NewValue,
				CreatedAt: e.CreatedAt,
			})
		}
		return &struct {
			Body []TaskEventResponse `json:"body"`
		}{Body: out}, nil
	})
}

func registerCalendar(api huma.API, exporter CalendarExporter) {
	huma.Register(api, huma.Operation{
		OperationID: "export-ical",
		Method:      http.MethodGet,
		Path:        "/tasks.ics",
		Summary:     "Export open tasks as iCalendar VTODOs",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}, error) {
		var buf bytes.Buffer
		if _, err := exporter.Export(ctx, &buf); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			ContentType string `header:"Content-Type"`
			Body        []byte
		}{ContentType: "text/calendar; charset=utf-8", Body: buf.Bytes()}, nil
	})
}

func registerRecurrence(api huma.API, tasks primary.TaskService) {
	huma.Register(api, huma.Operation{
		OperationID: "preview-recurrence",
		Method:      http.MethodPost,
		Path:        "/recurrence/preview",
		Summary:     "Evaluate a recurrence expression",
		Errors:      []int{http.StatusBadRequest, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body PreviewRecurrenceRequest `json:"body"`
	}) (*struct {
		Body PreviewRecurrenceResponse `json:"body"`
	}, error) {
		resp, err := tasks.PreviewRecurrence(ctx, primary.PreviewRecurrenceRequest{
			Expression: input.Body.Expression,
			Timezone:   input.Body.Timezone,
			Count:      input.Body.Count,
			From:       input.Body.From,
		})
		if err != nil {
			return nil, handleError(err)
		}
		body := PreviewRecurrenceResponse{
			Expression:  resp.Expression,
			Timezone:    resp.Timezone,
			RRules:      resp.RRules,
			Occurrences: resp.Occurrences,
		}
		if body.RRules == nil {
			body.RRules = []string{}
		}
		if body.Occurrences == nil {
			body.Occurrences = []time.Time{}
		}
		return &struct {
			Body PreviewRecurrenceResponse `json:"body"`
		}{Body: body}, nil
	})
}

func registerContexts(api huma.API, contexts primary.ContextService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-contexts",
		Method:      http.MethodGet,
		Path:        "/contexts",
		Summary:     "List contexts",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []ContextResponse `json:"body"`
	}, error) {
		list, err := contexts.ListContexts(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]ContextResponse, 0, len(list))
		for _, c := range list {
			out = append(out, ContextResponse{ID: c.ID, Name: c.Name})
		}
		return &struct {
			Body []ContextResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-context",
		Method:        http.MethodPost,
		Path:          "/contexts",
		Summary:       "Create context",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateContextRequest `json:"body"`
	}) (*struct {
		Body ContextResponse `json:"body"`
	}, error) {
		c, err := contexts.CreateContext(ctx, input.Body.Name)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ContextResponse `json:"body"`
		}{Body: ContextResponse{ID: c.ID, Name: c.Name}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-context",
		Method:        http.MethodDelete,
		Path:          "/contexts/{id}",
		Summary:       "Delete context",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := contexts.DeleteContext(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerProjects(api huma.API, projects primary.ProjectService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects",
	}, func(ctx context.Context, input *struct {
		ClientID string `query:"clientId"`
	}) (*struct {
		Body []ProjectResponse `json:"body"`
	}, error) {
		list, err := projects.ListProjects(ctx, input.ClientID)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]ProjectResponse, 0, len(list))
		for _, p := range list {
			out = append(out, projectResponse(p))
		}
		return &struct {
			Body []ProjectResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-project",
		Method:        http.MethodPost,
		Path:          "/projects",
		Summary:       "Create project",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body CreateProjectRequest `json:"body"`
	}) (*struct {
		Body ProjectResponse `json:"body"`
	}, error) {
		p, err := projects.CreateProject(ctx, primary.CreateProjectRequest{
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Status:      input.Body.Status,
			ClientID:    input.Body.ClientID,
			StartDate:   input.Body.StartDate,
			DueDate:     input.Body.DueDate,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ProjectResponse `json:"body"`
		}{Body: projectResponse(p)}, nil
	})
}

func registerClients(api huma.API, clients primary.ClientService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-clients",
		Method:      http.MethodGet,
		Path:        "/clients",
		Summary:     "List clients",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []ClientResponse `json:"body"`
	}, error) {
		list, err := clients.ListClients(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]ClientResponse, 0, len(list))
		for _, c := range list {
			out = append(out, clientResponse(c))
		}
		return &struct {
			Body []ClientResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-client",
		Method:        http.MethodPost,
		Path:          "/clients",
		Summary:       "Create client",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateClientRequest `json:"body"`
	}) (*struct {
		Body ClientResponse `json:"body"`
	}, error) {
		c, err := clients.CreateClient(ctx, primary.CreateClientRequest{
			Name:  input.Body.Name,
			Email: input.Body.Email,
			Notes: input.Body.Notes,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ClientResponse `json:"body"`
		}{Body: clientResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "archive-client",
		Method:      http.MethodPost,
		Path:        "/clients/{id}/archive",
		Summary:     "Archive client",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body ArchiveResponse `json:"body"`
	}, error) {
		changed, err := clients.ArchiveClient(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ArchiveResponse `json:"body"`
		}{Body: ArchiveResponse{Archived: changed}}, nil
	})
}

func registerPriorities(api huma.API, priorities primary.PriorityService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-priorities",
		Method:      http.MethodGet,
		Path:        "/priorities",
		Summary:     "List priorities",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []PriorityResponse `json:"body"`
	}, error) {
		list, err := priorities.ListPriorities(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]PriorityResponse, 0, len(list))
		for _, p := range list {
			out = append(out, PriorityResponse{ID: p.ID, Name: p.Name, Rank: p.Rank})
		}
		return &struct {
			Body []PriorityResponse `json:"body"`
		}{Body: out}, nil
	})
}

// updateRequest converts a PATCH body into the typed partial update. Keys
// present in raw with a null value clear the field.
func updateRequest(id string, body UpdateTaskRequest, raw []byte) (primary.UpdateTaskRequest, error) {
	req := primary.UpdateTaskRequest{TaskID: id}
	var present map[string]json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &present); err != nil {
			return req, newAPIError(http.StatusBadRequest, "bad_request", "body must be a JSON object", nil)
		}
	}
	has := func(key string) bool {
		_, ok := present[key]
		return ok
	}

	if body.Timezone != nil {
		req.Timezone = *body.Timezone
	}
	req.Name = stringOption(has("name"), body.Name)
	req.Description = stringOption(has("description"), body.Description)
	req.Status = stringOption(has("status"), body.Status)
	req.ContextID = stringOption(has("contextId"), body.ContextID)
	req.ProjectID = stringOption(has("projectId"), body.ProjectID)
	req.ClientID = stringOption(has("clientId"), body.ClientID)
	req.PriorityID = stringOption(has("priorityId"), body.PriorityID)
	req.RecurrenceExpression = stringOption(has("recurrenceExpression"), body.RecurrenceExpression)
	req.EnergyLevel = stringOption(has("energyLevel"), body.EnergyLevel)
	if has("timeEstimate") {
		estimate := 0
		if body.TimeEstimate != nil {
			estimate = *body.TimeEstimate
		}
		req.TimeEstimate = mo.Some(estimate)
	}

	var err error
	if req.DueDate, err = timeOption("dueDate", has("dueDate"), body.DueDate); err != nil {
		return req, err
	}
	if req.StartDate, err = timeOption("startDate", has("startDate"), body.StartDate); err != nil {
		return req, err
	}
	return req, nil
}

func stringOption(present bool, value *string) mo.Option[string] {
	if !present {
		return mo.None[string]()
	}
	if value == nil {
		return mo.Some("")
	}
	return mo.Some(*value)
}

func timeOption(field string, present bool, value *string) (mo.Option[*time.Time], error) {
	if !present {
		return mo.None[*time.Time](), nil
	}
	if value == nil || *value == "" {
		return mo.Some[*time.Time](nil), nil
	}
	t, err := parseTimeParam(field, *value)
	if err != nil {
		return mo.None[*time.Time](), err
	}
	return mo.Some(t), nil
}

func parseTimeParam(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, newAPIError(http.StatusBadRequest, "bad_request", fmt.Sprintf("%s must be an RFC 3339 timestamp", field), map[string]any{"field": field, "value": value})
	}
	return &t, nil
}
