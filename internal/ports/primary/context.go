package primary

import "context"

// ContextService defines the primary port for GTD contexts.
type ContextService interface {
	// CreateContext creates a context. Names are unique.
	CreateContext(ctx context.Context, name string) (*TaskContext, error)

	// ListContexts lists all contexts.
	ListContexts(ctx context.Context) ([]*TaskContext, error)

	// DeleteContext deletes a context no open task uses.
	DeleteContext(ctx context.Context, contextID string) error
}

// TaskContext represents a context at the port boundary.
type TaskContext struct {
	ID   string
	Name string
}
