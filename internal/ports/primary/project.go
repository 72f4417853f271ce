package primary

import (
	"context"
	"time"
)

// ProjectService defines the primary port for project operations.
type ProjectService interface {
	// CreateProject creates a new project.
	CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error)

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, projectID string) (*Project, error)

	// ListProjects lists non-archived projects, optionally for one client.
	ListProjects(ctx context.Context, clientID string) ([]*Project, error)

	// GetOrCreateDefaultProject returns the Miscellaneous project, creating
	// it and its Default Client on first use.
	GetOrCreateDefaultProject(ctx context.Context) (*Project, error)
}

// CreateProjectRequest contains parameters for creating a project.
type CreateProjectRequest struct {
	Name        string
	Description string
	Status      string // Optional, defaults to Active
	ClientID    string // Optional, defaults to the Default Client
	StartDate   *time.Time
	DueDate     *time.Time
}

// Project represents a project entity at the port boundary.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      string
	ClientID    string
	StartDate   *time.Time
	DueDate     *time.Time
	IsDefault   bool
	Archived    bool
	CreatedAt   time.Time
}
