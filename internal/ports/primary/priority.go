package primary

import "context"

// PriorityService defines the primary port for priorities.
type PriorityService interface {
	// ListPriorities lists priorities by rank.
	ListPriorities(ctx context.Context) ([]*Priority, error)

	// CreatePriority adds a priority ranked after the existing ones.
	CreatePriority(ctx context.Context, name string) (*Priority, error)
}

// Priority represents a priority at the port boundary.
type Priority struct {
	ID   string
	Name string
	Rank int
}
