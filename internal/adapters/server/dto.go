package server

import (
	"time"

	"github.com/example/nextaction/internal/ports/primary"
)

// Request payloads

type CreateTaskRequest struct {
	Name                 string     `json:"name,omitempty"`
	Description          string     `json:"description,omitempty"`
	Status               string     `json:"status,omitempty"`
	ContextID            string     `json:"contextId,omitempty"`
	ProjectID            string     `json:"projectId,omitempty"`
	ClientID             string     `json:"clientId,omitempty"`
	PriorityID           string     `json:"priorityId,omitempty"`
	DueDate              *time.Time `json:"dueDate,omitempty"`
	StartDate            *time.Time `json:"startDate,omitempty"`
	RecurrenceExpression string     `json:"recurrenceExpression,omitempty" example:"at 8:00 am on monday"`
	TimeEstimate         int        `json:"timeEstimate,omitempty" minimum:"0"`
	EnergyLevel          string     `json:"energyLevel,omitempty" example:"low"`
	Timezone             string     `json:"timezone,omitempty" example:"America/Denver"`
}

// UpdateTaskRequest fields are nullable: null clears an optional field and
// an absent key leaves it alone. Dates are RFC 3339 strings.
type UpdateTaskRequest struct {
	Name                 *string `json:"name,omitempty" nullable:"true"`
	Description          *string `json:"description,omitempty" nullable:"true"`
	Status               *string `json:"status,omitempty" nullable:"true"`
	ContextID            *string `json:"contextId,omitempty" nullable:"true"`
	ProjectID            *string `json:"projectId,omitempty" nullable:"true"`
	ClientID             *string `json:"clientId,omitempty" nullable:"true"`
	PriorityID           *string `json:"priorityId,omitempty" nullable:"true"`
	DueDate              *string `json:"dueDate,omitempty" nullable:"true"`
	StartDate            *string `json:"startDate,omitempty" nullable:"true"`
	RecurrenceExpression *string `json:"recurrenceExpression,omitempty" nullable:"true"`
	TimeEstimate         *int    `json:"timeEstimate,omitempty" nullable:"true"`
	EnergyLevel          *string `json:"energyLevel,omitempty" nullable:"true"`
	Timezone             *string `json:"timezone,omitempty" nullable:"true"`
}

type PreviewRecurrenceRequest struct {
	Expression string     `json:"expression" example:"every weekday at 9am"`
	Timezone   string     `json:"timezone,omitempty" example:"Europe/Berlin"`
	Count      int        `json:"count,omitempty" minimum:"0" maximum:"1000"`
	From       *time.Time `json:"from,omitempty"`
}

type CreateContextRequest struct {
	Name string `json:"name" example:"@garden"`
}

type CreateProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	ClientID    string     `json:"clientId,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type CreateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Response payloads

type TaskResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	Status               string     `json:"status"`
	ContextID            string     `json:"contextId"`
	ProjectID            string     `json:"projectId,omitempty"`
	ClientID             string     `json:"clientId,omitempty"`
	PriorityID           string     `json:"priorityId,omitempty"`
	DueDate              *time.Time `json:"dueDate,omitempty"`
	StartDate            *time.Time `json:"startDate,omitempty"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	RecurrenceExpression string     `json:"recurrenceExpression,omitempty"`
	TimeEstimate         int        `json:"timeEstimate,omitempty"`
	EnergyLevel          string     `json:"energyLevel,omitempty"`
	Archived             bool       `json:"archived"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type TaskTransitionResponse struct {
	Task      TaskResponse  `json:"task"`
	Successor *TaskResponse `json:"successor,omitempty"`
}

type ArchiveResponse struct {
	Archived bool `json:"archived"`
}

type OccurrencesResponse struct {
	TaskID      string      `json:"taskId"`
	Occurrences []time.Time `json:"occurrences"`
}

type PreviewRecurrenceResponse struct {
	Expression  string      `json:"expression"`
	Timezone    string      `json:"timezone"`
	RRules      []string    `json:"rrules"`
	Occurrences []time.Time `json:"occurrences"`
}

type TaskEventResponse struct {
	ID        int64     `json:"id"`
	ActorID   string    `json:"actorId,omitempty"`
	Action    string    `json:"action"`
	FieldName string    `json:"fieldName,omitempty"`
	OldValue  string    `json:"oldValue,omitempty"`
	NewValue  string    `json:"newValue,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ContextResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProjectResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	ClientID    string     `json:"clientId"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	IsDefault   bool       `json:"isDefault"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type PriorityResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

func taskResponse(t *primary.Task) TaskResponse {
	return TaskResponse{
		ID:                   t.ID,
		Name:                 t.Name,
		Description:          t.Description,
		Status:               t.Status,
		ContextID:            t.ContextID,
		ProjectID:            t.ProjectID,
		ClientID:             t.ClientID,
		PriorityID:           t.PriorityID,
		DueDate:              t.DueDate,
		StartDate:            t.StartDate,
		CompletedAt:          t.CompletedAt,
		RecurrenceExpression: t.RecurrenceExpression,
		TimeEstimate:         t.TimeEstimate,
		EnergyLevel:          t.EnergyLevel,
		Archived:             t.Archived,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

func mapTasks(tasks []*primary.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse(t))
	}
	return out
}

func transitionResponse(task, successor *primary.Task) TaskTransitionResponse {
	resp := TaskTransitionResponse{Task: taskResponse(task)}
	if successor != nil {
		s := taskResponse(successor)
		resp.Successor = &s
	}
	return resp
}

func projectResponse(p *primary.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		ClientID:    p.ClientID,
		StartDate:   p.StartDate,
		DueDate:     p.DueDate,
		IsDefault:   p.IsDefault,
		CreatedAt:   p.CreatedAt,
	}
}

func clientResponse(c *primary.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}
