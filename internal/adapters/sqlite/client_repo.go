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

// ClientRepository implements secondary.ClientRepository with SQLite.
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new SQLite client repository.
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func scanClient(scanner interface {
	Scan(dest ...any) error
}) (*secondary.ClientRecord, error) {
	var (
		email     sql.NullString
		notes     sql.NullString
		createdAt string
	)

	record := &secondary.ClientRecord{}
	err := scanner.Scan(&record.ID, &record.Name, &email, &notes, &record.IsDefault, &record.Archived, &createdAt)
	if err != nil {
		return nil, err
	}

	record.Email = email.String
	record.Notes = notes.String
	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return record, nil
}

const clientSelectCols = "id, name, email, notes, is_default, archived, created_at"

// Create persists a new client.
func (r *ClientRepository) Create(ctx context.Context, client *secondary.ClientRecord) error {
	createdAt := client.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO clients ("+clientSelectCols+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		client.ID, client.Name, nullString(client.Email), nullString(client.Notes),
		client.IsDefault, client.Archived, formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetByID retrieves a client by its ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*secondary.ClientRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+clientSelectCols+" FROM clients WHERE id = ?",
		id,
	)

	record, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", project.ErrClientNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return record, nil
}

// List retrieves clients ordered by name.
func (r *ClientRepository) List(ctx context.Context, includeArchived bool) ([]*secondary.ClientRecord, error) {
	query := "SELECT " + clientSelectCols + " FROM clients"
	if !includeArchived {
		query += " WHERE archived = 0"
	}
	query += " ORDER BY name"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*secondary.ClientRecord
	for rows.Next() {
		record, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, record)
	}
	return clients, rows.Err()
}

// Archive sets the archived flag. Returns false when already archived.
func (r *ClientRepository) Archive(ctx context.Context, id string) (bool, error) {
	q := conn(ctx, r.db)
	result, err := q.ExecContext(ctx, "UPDATE clients SET archived = 1 WHERE id = ? AND archived = 0", id)
	if err != nil {
		return false, fmt.Errorf("failed to archive client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return true, nil
	}

	var count int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients WHERE id = ?", id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check client: %w", err)
	}
	if count == 0 {
		return false, fmt.Errorf("%w: %s", project.ErrClientNotFound, id)
	}
	return false, nil
}

// GetNextID returns the next available client ID.
func (r *ClientRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 8) AS INTEGER)), 0) FROM clients",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next client ID: %w", err)
	}
	return fmt.Sprintf("CLIENT-%03d", maxID+1), nil
}

// GetOrCreateDefault returns the default client, inserting it on first use.
func (r *ClientRepository) GetOrCreateDefault(ctx context.Context) (*secondary.ClientRecord, error) {
	q := conn(ctx, r.db)
	const query = "SELECT " + clientSelectCols + " FROM clients WHERE is_default = 1"

	if record, err := scanClient(q.QueryRowContext(ctx, query)); err == nil {
		return record, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get default client: %w", err)
	}

	id, err := r.GetNextID(ctx)
	if err != nil {
		return nil, err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO clients (id, name, is_default, created_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT DO NOTHING`,
		id, project.DefaultClientName, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create default client: %w", err)
	}

	record, err := scanClient(q.QueryRowContext(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get default client: %w", err)
	}
	return record, nil
}

// Ensure ClientRepository implements the interface
var _ secondary.ClientRepository = (*ClientRepository)(nil)
