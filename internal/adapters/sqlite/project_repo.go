package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/nextaction/internal/core/project"
	"github.com/example/nextaction/internal/ports/secondary"
)

// ProjectRepository implements secondary.ProjectRepository with SQLite.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new SQLite project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(scanner interface {
	Scan(dest ...any) error
}) (*secondary.ProjectRecord, error) {
	var (
		desc      sql.NullString
		startDate sql.NullString
		dueDate   sql.NullString
		createdAt string
	)

	record := &secondary.ProjectRecord{}
	err := scanner.Scan(
		&record.ID, &record.ClientID, &record.Name, &desc, &record.Status,
		&startDate, &dueDate, &record.IsDefault, &record.Archived, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.Description = desc.String
	if record.StartDate, err = parseNullTime(startDate); err != nil {
		return nil, err
	}
	if record.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, err
	}
	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return record, nil
}

const projectSelectCols = "id, client_id, name, description, status, start_date, due_date, is_default, archived, created_at"

// Create persists a new project.
func (r *ProjectRepository) Create(ctx context.Context, p *secondary.ProjectRecord) error {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO projects ("+projectSelectCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.ClientID, p.Name, nullString(p.Description), p.Status,
		nullTime(p.StartDate), nullTime(p.DueDate), p.IsDefault, p.Archived, formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by its ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+projectSelectCols+" FROM projects WHERE id = ?",
		id,
	)

	record, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return record, nil
}

// List retrieves non-archived projects, optionally for one client.
func (r *ProjectRepository) List(ctx context.Context, clientID string) ([]*secondary.ProjectRecord, error) {
	query := "SELECT " + projectSelectCols + " FROM projects WHERE archived = 0"
	args := []any{}

	if clientID != "" {
		query += " AND client_id = ?"
		args = append(args, clientID)
	}
	query += " ORDER BY name"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*secondary.ProjectRecord
	for rows.Next() {
		record, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, record)
	}
	return projects, rows.Err()
}

// GetNextID returns the next available project ID.
func (r *ProjectRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM projects",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next project ID: %w", err)
	}
	return fmt.Sprintf("PROJ-%03d", maxID+1), nil
}

// GetOrCreateDefault returns the default project of clientID. The partial
// unique index on (client_id) WHERE is_default = 1 makes the insert a no-op
// for every caller but the first, and all of them read back the same row.
func (r *ProjectRepository) GetOrCreateDefault(ctx context.Context, clientID string) (*secondary.ProjectRecord, error) {
	q := conn(ctx, r.db)

	if record, err := r.getDefault(ctx, q, clientID); err == nil {
		return record, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get default project: %w", err)
	}

	id, err := r.GetNextID(ctx)
	if err != nil {
		return nil, err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO projects (id, client_id, name, description, status, is_default, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?)
		 ON CONFLICT DO NOTHING`,
		id, clientID, project.DefaultProjectName, project.DefaultProjectDescription,
		project.StatusActive, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create default project: %w", err)
	}

	record, err := r.getDefault(ctx, q, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get default project: %w", err)
	}
	return record, nil
}

func (r *ProjectRepository) getDefault(ctx context.Context, q querier, clientID string) (*secondary.ProjectRecord, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+projectSelectCols+" FROM projects WHERE client_id = ? AND is_default = 1",
		clientID,
	)
	return scanProject(row)
}

// CountActiveByClient counts a client's non-archived projects.
func (r *ProjectRepository) CountActiveByClient(ctx context.Context, clientID string) (int, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE client_id = ? AND archived = 0",
		clientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// Ensure ProjectRepository implements the interface
var _ secondary.ProjectRepository = (*ProjectRepository)(nil)
