package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	coreproject "github.com/example/nextaction/internal/core/project"
	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/ports/secondary"
)

// ClientServiceImpl implements the ClientService interface.
type ClientServiceImpl struct {
	clientRepo  secondary.ClientRepository
	projectRepo secondary.ProjectRepository
	transactor  secondary.Transactor
	clock       secondary.Clock
}

// NewClientService creates a new ClientService with injected dependencies.
func NewClientService(
	clientRepo secondary.ClientRepository,
	projectRepo secondary.ProjectRepository,
	transactor secondary.Transactor,
	clock secondary.Clock,
) *ClientServiceImpl {
	return &ClientServiceImpl{
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		transactor:  transactor,
		clock:       clock,
	}
}

// CreateClient creates a new client.
func (s *ClientServiceImpl) CreateClient(ctx context.Context, req primary.CreateClientRequest) (*primary.Client, error) {
	name := strings.TrimSpace(req.Name)
	if err := coreproject.CanCreateClient(name).Error(); err != nil {
		return nil, err
	}

	nextID, err := s.clientRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client ID: %w", err)
	}
	record := &secondary.ClientRecord{
		ID:        nextID,
		Name:      name,
		Email:     req.Email,
		Notes:     req.Notes,
		CreatedAt: s.clock.Now().UTC().Truncate(time.Second),
	}
	if err := s.clientRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return recordToClient(record), nil
}

// ListClients lists non-archived clients.
func (s *ClientServiceImpl) ListClients(ctx context.Context) ([]*primary.Client, error) {
	records, err := s.clientRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	clients := make([]*primary.Client, len(records))
	for i, r := range records {
		clients[i] = recordToClient(r)
	}
	return clients, nil
}

// ArchiveClient archives a client that owns no active projects.
func (s *ClientServiceImpl) ArchiveClient(ctx context.Context, clientID string) (bool, error) {
	var changed bool
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		client, err := s.clientRepo.GetByID(ctx, clientID)
		if err != nil {
			return err
		}
		active, err := s.projectRepo.CountActiveByClient(ctx, client.ID)
		if err != nil {
			return fmt.Errorf("failed to count projects: %w", err)
		}

		guard := coreproject.CanArchiveClient(coreproject.ArchiveClientContext{
			ClientID:       client.ID,
			IsDefault:      client.IsDefault,
			ActiveProjects: active,
		})
		if err := guard.Error(); err != nil {
			return err
		}

		changed, err = s.clientRepo.Archive(ctx, client.ID)
		if err != nil {
			return fmt.Errorf("failed to archive client: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func recordToClient(r *secondary.ClientRecord) *primary.Client {
	return &primary.Client{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Notes:     r.Notes,
		Archived:  r.Archived,
		CreatedAt: r.CreatedAt,
	}
}
