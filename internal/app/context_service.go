package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/nextaction/internal/core/taskcontext"
	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/ports/secondary"
)

// ContextServiceImpl implements the ContextService interface.
type ContextServiceImpl struct {
	contextRepo secondary.ContextRepository
	taskRepo    secondary.TaskRepository
	transactor  secondary.Transactor
}

// NewContextService creates a new ContextService with injected dependencies.
func NewContextService(
	contextRepo secondary.ContextRepository,
	taskRepo secondary.TaskRepository,
	transactor secondary.Transactor,
) *ContextServiceImpl {
	return &ContextServiceImpl{
		contextRepo: contextRepo,
		taskRepo:    taskRepo,
		transactor:  transactor,
	}
}

// CreateContext creates a context. "calls" is stored as "@calls".
func (s *ContextServiceImpl) CreateContext(ctx context.Context, name string) (*primary.TaskContext, error) {
	name = taskcontext.NormalizeName(name)

	var record *secondary.ContextRecord
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.contextRepo.GetByName(ctx, name)
		taken := err == nil
		if err != nil && !errors.Is(err, taskcontext.ErrContextNotFound) {
			return fmt.Errorf("failed to look up context: %w", err)
		}
		if err := taskcontext.CanCreateContext(name, taken); err != nil {
			return err
		}

		nextID, err := s.contextRepo.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate context ID: %w", err)
		}
		record = &secondary.ContextRecord{ID: nextID, Name: name}
		if err := s.contextRepo.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create context: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &primary.TaskContext{ID: record.ID, Name: record.Name}, nil
}

// ListContexts lists all contexts.
func (s *ContextServiceImpl) ListContexts(ctx context.Context) ([]*primary.TaskContext, error) {
	records, err := s.contextRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}
	contexts := make([]*primary.TaskContext, len(records))
	for i, r := range records {
		contexts[i] = &primary.TaskContext{ID: r.ID, Name: r.Name}
	}
	return contexts, nil
}

// DeleteContext deletes a context no task references.
func (s *ContextServiceImpl) DeleteContext(ctx context.Context, contextID string) error {
	return s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.contextRepo.GetByID(ctx, contextID)
		if err != nil {
			return err
		}
		count, err := s.taskRepo.CountByContext(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}
		if err := taskcontext.CanDeleteContext(record.ID, count); err != nil {
			return err
		}
		return s.contextRepo.Delete(ctx, record.ID)
	})
}
