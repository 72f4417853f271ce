package app

import (
	"context"
	"fmt"
	"strings"

	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/ports/secondary"
)

// PriorityServiceImpl implements the PriorityService interface.
type PriorityServiceImpl struct {
	priorityRepo secondary.PriorityRepository
	transactor   secondary.Transactor
}

// NewPriorityService creates a new PriorityService with injected dependencies.
func NewPriorityService(priorityRepo secondary.PriorityRepository, transactor secondary.Transactor) *PriorityServiceImpl {
	return &PriorityServiceImpl{
		priorityRepo: priorityRepo,
		transactor:   transactor,
	}
}

// ListPriorities lists priorities by rank.
func (s *PriorityServiceImpl) ListPriorities(ctx context.Context) ([]*primary.Priority, error) {
	records, err := s.priorityRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list priorities: %w", err)
	}
	priorities := make([]*primary.Priority, len(records))
	for i, r := range records {
		priorities[i] = &primary.Priority{ID: r.ID, Name: r.Name, Rank: r.Rank}
	}
	return priorities, nil
}

// CreatePriority adds a priority ranked after the existing ones.
func (s *PriorityServiceImpl) CreatePriority(ctx context.Context, name string) (*primary.Priority, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: priority name is required", coretask.ErrValidation)
	}

	var record *secondary.PriorityRecord
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.priorityRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list priorities: %w", err)
		}
		rank := 0
		for _, p := range existing {
			if strings.EqualFold(p.Name, name) {
				return fmt.Errorf("%w: priority %s already exists", coretask.ErrValidation, p.Name)
			}
			if p.Rank > rank {
				rank = p.Rank
			}
		}

		nextID, err := s.priorityRepo.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate priority ID: %w", err)
		}
		record = &secondary.PriorityRecord{ID: nextID, Name: name, Rank: rank + 1}
		if err := s.priorityRepo.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create priority: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &primary.Priority{ID: record.ID, Name: record.Name, Rank: record.Rank}, nil
}
