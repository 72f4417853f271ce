// Package project contains the pure business logic for projects and the
// clients that own them.
package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/nextaction/internal/core/task"
)

// Default entities created on first use.
const (
	DefaultClientName         = "Default Client"
	DefaultProjectName        = "Miscellaneous"
	DefaultProjectDescription = "Default project for unclassified tasks"
)

// Project statuses.
const (
	StatusActive    = "Active"
	StatusOnHold    = "On Hold"
	StatusCompleted = "Completed"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrInvalidProject  = errors.New("invalid project")
	ErrInvalidClient   = errors.New("invalid client")
	ErrClientInUse     = errors.New("client has active projects")
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Err     error
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

// CreateProjectContext provides context for project creation guards.
type CreateProjectContext struct {
	Name         string
	Status       string
	ClientID     string
	ClientExists bool
	StartDate    *time.Time
	DueDate      *time.Time
}

// ArchiveClientContext provides context for client archive guards.
type ArchiveClientContext struct {
	ClientID       string
	IsDefault      bool
	ActiveProjects int
}

// CanCreateProject evaluates whether a project can be created.
// Rules:
// - Name is required
// - Status must be known
// - Client must exist
// - Start date must not be after due date
func CanCreateProject(ctx CreateProjectContext) GuardResult {
	if ctx.Name == "" {
		return GuardResult{Reason: "project name is required", Err: ErrInvalidProject}
	}
	switch ctx.Status {
	case StatusActive, StatusOnHold, StatusCompleted:
	default:
		return GuardResult{Reason: fmt.Sprintf("unknown project status %q", ctx.Status), Err: ErrInvalidProject}
	}
	if !ctx.ClientExists {
		return GuardResult{Reason: fmt.Sprintf("client %s not found", ctx.ClientID), Err: ErrClientNotFound}
	}
	if ctx.StartDate != nil && ctx.DueDate != nil && ctx.StartDate.After(*ctx.DueDate) {
		return GuardResult{Reason: "start date cannot be after due date", Err: task.ErrInvalidDateRange}
	}
	return GuardResult{Allowed: true}
}

// CanCreateClient evaluates whether a client can be created.
// Rules:
// - Name is required
func CanCreateClient(name string) GuardResult {
	if name == "" {
		return GuardResult{Reason: "client name is required", Err: ErrInvalidClient}
	}
	return GuardResult{Allowed: true}
}

// CanArchiveClient evaluates whether a client can be archived.
// Rules:
// - The default client is never archived
// - Client must have no non-archived projects
func CanArchiveClient(ctx ArchiveClientContext) GuardResult {
	if ctx.IsDefault {
		return GuardResult{Reason: "the default client cannot be archived", Err: ErrInvalidClient}
	}
	if ctx.ActiveProjects > 0 {
		return GuardResult{
			Reason: fmt.Sprintf("cannot archive a client with active projects (%s has %d)", ctx.ClientID, ctx.ActiveProjects),
			Err:    ErrClientInUse,
		}
	}
	return GuardResult{Allowed: true}
}
