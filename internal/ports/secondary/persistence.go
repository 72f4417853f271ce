// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"

	"github.com/samber/mo"
)

// TaskRepository defines the secondary port for task persistence.
type TaskRepository interface {
	// Create persists a new task. An empty ID is assigned from the sequence;
	// the stored ID is returned.
	Create(ctx context.Context, task *TaskRecord) (string, error)

	// GetByID retrieves a task by its ID.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)

	// List retrieves tasks matching the given filters.
	List(ctx context.Context, filters TaskFilters) ([]*TaskRecord, error)

	// UpdateFields applies a partial update and returns the rows changed.
	UpdateFields(ctx context.Context, id string, update TaskFieldUpdate) (int64, error)

	// Archive sets the archived flag. Returns false if already archived.
	Archive(ctx context.Context, id string, at time.Time) (bool, error)

	// GetNextID returns the next available task ID.
	GetNextID(ctx context.Context) (string, error)

	// CountByContext counts every task filed under a context, archived and
	// completed ones included.
	CountByContext(ctx context.Context, contextID string) (int, error)
}

// TaskRecord represents a task as stored in persistence. Instants are UTC.
// Empty strings and nil pointers are stored as NULL.
type TaskRecord struct {
	ID                   string
	Name                 string
	Description          string
	Status               string
	ContextID            string
	ProjectID            string
	ClientID             string
	PriorityID           string
	DueDate              *time.Time
	StartDate            *time.Time
	CompletedAt          *time.Time
	RecurrenceExpression string
	TimeEstimate         int
	EnergyLevel          string
	Archived             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TaskFieldUpdate is the closed set of columns an update may write. Absent
// options are left untouched.
type TaskFieldUpdate struct {
	Name                 mo.Option[string]
	Description          mo.Option[string]
	Status               mo.Option[string]
	ContextID            mo.Option[string]
	ProjectID            mo.Option[string]
	ClientID             mo.Option[string]
	PriorityID           mo.Option[string]
	DueDate              mo.Option[*time.Time]
	StartDate            mo.Option[*time.Time]
	CompletedAt          mo.Option[*time.Time]
	RecurrenceExpression mo.Option[string]
	TimeEstimate         mo.Option[int]
	EnergyLevel          mo.Option[string]
	UpdatedAt            time.Time

	// ExpectStatus makes the update conditional: no row changes unless the
	// stored status still equals it.
	ExpectStatus mo.Option[string]
}

// TaskFilters contains filter options for querying tasks.
type TaskFilters struct {
	Status          string
	ExcludeStatus   string
	PriorityID      string
	ProjectID       string
	ContextID       string
	DueBefore       *time.Time // due on or before
	IncludeArchived bool
}

// ProjectRepository defines the secondary port for project persistence.
type ProjectRepository interface {
	// Create persists a new project.
	Create(ctx context.Context, project *ProjectRecord) error

	// GetByID retrieves a project by its ID.
	GetByID(ctx context.Context, id string) (*ProjectRecord, error)

	// List retrieves non-archived projects, optionally for one client.
	List(ctx context.Context, clientID string) ([]*ProjectRecord, error)

	// GetNextID returns the next available project ID.
	GetNextID(ctx context.Context) (string, error)

	// GetOrCreateDefault returns the default project of clientID, inserting
	// it if absent. Concurrent callers observe the same row.
	GetOrCreateDefault(ctx context.Context, clientID string) (*ProjectRecord, error)

	// CountActiveByClient counts a client's non-archived projects.
	CountActiveByClient(ctx context.Context, clientID string) (int, error)
}

// ProjectRecord represents a project as stored in persistence.
type ProjectRecord struct {
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

// ClientRepository defines the secondary port for client persistence.
type ClientRepository interface {
	// Create persists a new client.
	Create(ctx context.Context, client *ClientRecord) error

	// GetByID retrieves a client by its ID.
	GetByID(ctx context.Context, id string) (*ClientRecord, error)

	// List retrieves clients, archived ones only when asked.
	List(ctx context.Context, includeArchived bool) ([]*ClientRecord, error)

	// Archive sets the archived flag. Returns false if already archived.
	Archive(ctx context.Context, id string) (bool, error)

	// GetNextID returns the next available client ID.
	GetNextID(ctx context.Context) (string, error)

	// GetOrCreateDefault returns the default client, inserting it if absent.
	GetOrCreateDefault(ctx context.Context) (*ClientRecord, error)
}

// ClientRecord represents a client as stored in persistence.
type ClientRecord struct {
	ID        string
	Name      string
	Email     string
	Notes     string
	IsDefault bool
	Archived  bool
	CreatedAt time.Time
}

// ContextRepository defines the secondary port for GTD context persistence.
type ContextRepository interface {
	// Create persists a new context.
	Create(ctx context.Context, record *ContextRecord) error

	// GetByID retrieves a context by its ID.
	GetByID(ctx context.Context, id string) (*ContextRecord, error)

	// GetByName retrieves a context by its unique name.
	GetByName(ctx context.Context, name string) (*ContextRecord, error)

	// List retrieves all contexts ordered by name.
	List(ctx context.Context) ([]*ContextRecord, error)

	// Delete removes a context.
	Delete(ctx context.Context, id string) error

	// GetNextID returns the next available context ID.
	GetNextID(ctx context.Context) (string, error)
}

// ContextRecord represents a context as stored in persistence.
type ContextRecord struct {
	ID   string
	Name string
}

// PriorityRepository defines the secondary port for priority persistence.
type PriorityRepository interface {
	// Create persists a new priority.
	Create(ctx context.Context, record *PriorityRecord) error

	// GetByID retrieves a priority by its ID.
	GetByID(ctx context.Context, id string) (*PriorityRecord, error)

	// List retrieves priorities ordered by rank.
	List(ctx context.Context) ([]*PriorityRecord, error)

	// GetNextID returns the next available priority ID.
	GetNextID(ctx context.Context) (string, error)
}

// PriorityRecord represents a priority as stored in persistence.
type PriorityRecord struct {
	ID   string
	Name string
	Rank int
}

// Transactor runs a function inside one database transaction. Repositories
// called with the context passed to fn take part in the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}
