package primary

import (
	"context"
	"time"
)

// ClientService defines the primary port for client operations.
type ClientService interface {
	// CreateClient creates a new client.
	CreateClient(ctx context.Context, req CreateClientRequest) (*Client, error)

	// ListClients lists non-archived clients.
	ListClients(ctx context.Context) ([]*Client, error)

	// ArchiveClient archives a client with no active projects. Returns false
	// if the client was already archived.
	ArchiveClient(ctx context.Context, clientID string) (bool, error)
}

// CreateClientRequest contains parameters for creating a client.
type CreateClientRequest struct {
	Name  string
	Email string
	Notes string
}

// Client represents a client entity at the port boundary.
type Client struct {
	ID        string
	Name      string
	Email     string
	Notes     string
	Archived  bool
	CreatedAt time.Time
}
