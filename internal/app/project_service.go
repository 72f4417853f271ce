package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	coreproject "github.com/example/nextaction/internal/core/project"
	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/ports/secondary"
)

// ProjectServiceImpl implements the ProjectService interface.
type ProjectServiceImpl struct {
	projectRepo secondary.ProjectRepository
	clientRepo  secondary.ClientRepository
	transactor  secondary.Transactor
	clock       secondary.Clock
}

// NewProjectService creates a new ProjectService with injected dependencies.
func NewProjectService(
	projectRepo secondary.ProjectRepository,
	clientRepo secondary.ClientRepository,
	transactor secondary.Transactor,
	clock secondary.Clock,
) *ProjectServiceImpl {
	return &ProjectServiceImpl{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		transactor:  transactor,
		clock:       clock,
	}
}

// CreateProject creates a new project. Without a client it is filed under
// the default client.
func (s *ProjectServiceImpl) CreateProject(ctx context.Context, req primary.CreateProjectRequest) (*primary.Project, error) {
	status := req.Status
	if status == "" {
		status = coreproject.StatusActive
	}
	guardCtx := coreproject.CreateProjectContext{
		Name:         strings.TrimSpace(req.Name),
		Status:       status,
		ClientID:     req.ClientID,
		ClientExists: true,
		StartDate:    req.StartDate,
		DueDate:      req.DueDate,
	}
	if err := coreproject.CanCreateProject(guardCtx).Error(); err != nil {
		return nil, err
	}

	var record *secondary.ProjectRecord
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		clientID := req.ClientID
		if clientID == "" {
			client, err := s.clientRepo.GetOrCreateDefault(ctx)
			if err != nil {
				return fmt.Errorf("failed to resolve default client: %w", err)
			}
			clientID = client.ID
		} else if _, err := s.clientRepo.GetByID(ctx, clientID); err != nil {
			if errors.Is(err, coreproject.ErrClientNotFound) {
				guardCtx.ClientExists = false
				return coreproject.CanCreateProject(guardCtx).Error()
			}
			return fmt.Errorf("failed to load client: %w", err)
		}

		nextID, err := s.projectRepo.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate project ID: %w", err)
		}
		record = &secondary.ProjectRecord{
			ID:          nextID,
			Name:        guardCtx.Name,
			Description: req.Description,
			Status:      status,
			ClientID:    clientID,
			StartDate:   utcPtr(req.StartDate),
			DueDate:     utcPtr(req.DueDate),
			CreatedAt:   s.clock.Now().UTC().Truncate(time.Second),
		}
		if err := s.projectRepo.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recordToProject(record), nil
}

// GetProject retrieves a project by ID.
func (s *ProjectServiceImpl) GetProject(ctx context.Context, projectID string) (*primary.Project, error) {
	record, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return recordToProject(record), nil
}

// ListProjects lists non-archived projects, optionally for one client.
func (s *ProjectServiceImpl) ListProjects(ctx context.Context, clientID string) ([]*primary.Project, error) {
	records, err := s.projectRepo.List(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	projects := make([]*primary.Project, len(records))
	for i, r := range records {
		projects[i] = recordToProject(r)
	}
	return projects, nil
}

// GetOrCreateDefaultProject returns the Miscellaneous project of the
// Default Client, creating both on first use.
func (s *ProjectServiceImpl) GetOrCreateDefaultProject(ctx context.Context) (*primary.Project, error) {
	var record *secondary.ProjectRecord
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		client, err := s.clientRepo.GetOrCreateDefault(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve default client: %w", err)
		}
		record, err = s.projectRepo.GetOrCreateDefault(ctx, client.ID)
		if err != nil {
			return fmt.Errorf("failed to resolve default project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recordToProject(record), nil
}

func recordToProject(r *secondary.ProjectRecord) *primary.Project {
	return &primary.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		ClientID:    r.ClientID,
		StartDate:   r.StartDate,
		DueDate:     r.DueDate,
		IsDefault:   r.IsDefault,
		Archived:    r.Archived,
		CreatedAt:   r.CreatedAt,
	}
}
