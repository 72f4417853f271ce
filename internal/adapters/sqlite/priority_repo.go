package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/ports/secondary"
)

// PriorityRepository implements secondary.PriorityRepository with SQLite.
type PriorityRepository struct {
	db *sql.DB
}

// NewPriorityRepository creates a new SQLite priority repository.
func NewPriorityRepository(db *sql.DB) *PriorityRepository {
	return &PriorityRepository{db: db}
}

// Create persists a new priority.
func (r *PriorityRepository) Create(ctx context.Context, record *secondary.PriorityRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO priorities (id, name, rank) VALUES (?, ?, ?)",
		record.ID, record.Name, record.Rank,
	)
	if err != nil {
		return fmt.Errorf("failed to create priority: %w", err)
	}
	return nil
}

// GetByID retrieves a priority by its ID.
func (r *PriorityRepository) GetByID(ctx context.Context, id string) (*secondary.PriorityRecord, error) {
	record := &secondary.PriorityRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, name, rank FROM priorities WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Name, &record.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", coretask.ErrPriorityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get priority: %w", err)
	}
	return record, nil
}

// List retrieves priorities ordered by rank.
func (r *PriorityRepository) List(ctx context.Context) ([]*secondary.PriorityRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, "SELECT id, name, rank FROM priorities ORDER BY rank, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list priorities: %w", err)
	}
	defer rows.Close()

	var priorities []*secondary.PriorityRecord
	for rows.Next() {
		record := &secondary.PriorityRecord{}
		if err := rows.Scan(&record.ID, &record.Name, &record.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan priority: %w", err)
		}
		priorities = append(priorities, record)
	}
	return priorities, rows.Err()
}

// GetNextID returns the next available priority ID.
func (r *PriorityRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM priorities",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next priority ID: %w", err)
	}
	return fmt.Sprintf("PRI-%03d", maxID+1), nil
}

// Ensure PriorityRepository implements the interface
var _ secondary.PriorityRepository = (*PriorityRepository)(nil)
