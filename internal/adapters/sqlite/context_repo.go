package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/nextaction/internal/core/taskcontext"
	"github.com/example/nextaction/internal/ports/secondary"
)

// ContextRepository implements secondary.ContextRepository with SQLite.
type ContextRepository struct {
	db *sql.DB
}

// NewContextRepository creates a new SQLite context repository.
func NewContextRepository(db *sql.DB) *ContextRepository {
	return &ContextRepository{db: db}
}

// Create persists a new context.
func (r *ContextRepository) Create(ctx context.Context, record *secondary.ContextRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO contexts (id, name) VALUES (?, ?)",
		record.ID, record.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to create context: %w", err)
	}
	return nil
}

// GetByID retrieves a context by its ID.
func (r *ContextRepository) GetByID(ctx context.Context, id string) (*secondary.ContextRecord, error) {
	return r.getOne(ctx, "id", id)
}

// GetByName retrieves a context by name.
func (r *ContextRepository) GetByName(ctx context.Context, name string) (*secondary.ContextRecord, error) {
	return r.getOne(ctx, "name", name)
}

func (r *ContextRepository) getOne(ctx context.Context, col, value string) (*secondary.ContextRecord, error) {
	record := &secondary.ContextRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, name FROM contexts WHERE "+col+" = ?",
		value,
	).Scan(&record.ID, &record.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", taskcontext.ErrContextNotFound, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get context: %w", err)
	}
	return record, nil
}

// List retrieves all contexts ordered by name.
func (r *ContextRepository) List(ctx context.Context) ([]*secondary.ContextRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, "SELECT id, name FROM contexts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}
	defer rows.Close()

	var contexts []*secondary.ContextRecord
	for rows.Next() {
		record := &secondary.ContextRecord{}
		if err := rows.Scan(&record.ID, &record.Name); err != nil {
			return nil, fmt.Errorf("failed to scan context: %w", err)
		}
		contexts = append(contexts, record)
	}
	return contexts, rows.Err()
}

// Delete removes a context.
func (r *ContextRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM contexts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete context: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", taskcontext.ErrContextNotFound, id)
	}
	return nil
}

// GetNextID returns the next available context ID.
func (r *ContextRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM contexts",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next context ID: %w", err)
	}
	return fmt.Sprintf("CTX-%03d", maxID+1), nil
}

// Ensure ContextRepository implements the interface
var _ secondary.ContextRepository = (*ContextRepository)(nil)
