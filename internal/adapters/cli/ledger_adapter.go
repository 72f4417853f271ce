package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/example/nextaction/internal/ports/primary"
)

// LedgerAdapter translates CLI operations on the reference lists (contexts,
// projects, clients and priorities) to their services.
type LedgerAdapter struct {
	contexts   primary.ContextService
	projects   primary.ProjectService
	clients    primary.ClientService
	priorities primary.PriorityService
	out        io.Writer
}

// NewLedgerAdapter creates a new LedgerAdapter.
func NewLedgerAdapter(
	contexts primary.ContextService,
	projects primary.ProjectService,
	clients primary.ClientService,
	priorities primary.PriorityService,
	out io.Writer,
) *LedgerAdapter {
	return &LedgerAdapter{
		contexts:   contexts,
		projects:   projects,
		clients:    clients,
		priorities: priorities,
		out:        out,
	}
}

func (a *LedgerAdapter) render(header table.Row, rows []table.Row) {
	tw := table.NewWriter()
	tw.SetOutputMirror(a.out)
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	tw.Render()
}

// ListContexts prints every context.
func (a *LedgerAdapter) ListContexts(ctx context.Context) error {
	contexts, err := a.contexts.ListContexts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list contexts: %w", err)
	}
	if len(contexts) == 0 {
		fmt.Fprintln(a.out, "No contexts found")
		return nil
	}
	rows := make([]table.Row, 0, len(contexts))
	for _, c := range contexts {
		rows = append(rows, table.Row{c.ID, c.Name})
	}
	a.render(table.Row{"ID", "Name"}, rows)
	return nil
}

// CreateContext creates a context.
func (a *LedgerAdapter) CreateContext(ctx context.Context, name string) error {
	c, err := a.contexts.CreateContext(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created context %s: %s\n", c.ID, c.Name)
	return nil
}

// DeleteContext deletes a context.
func (a *LedgerAdapter) DeleteContext(ctx context.Context, contextID string) error {
	if err := a.contexts.DeleteContext(ctx, contextID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted context %s\n", contextID)
	return nil
}

// ListProjects prints non-archived projects, optionally for one client.
func (a *LedgerAdapter) ListProjects(ctx context.Context, clientID string) error {
	projects, err := a.projects.ListProjects(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No projects found")
		return nil
	}
	rows := make([]table.Row, 0, len(projects))
	for _, p := range projects {
		name := p.Name
		if p.IsDefault {
			name += " (default)"
		}
		rows = append(rows, table.Row{p.ID, name, p.Status, p.ClientID})
	}
	a.render(table.Row{"ID", "Name", "Status", "Client"}, rows)
	return nil
}

// CreateProject creates a project.
func (a *LedgerAdapter) CreateProject(ctx context.Context, req primary.CreateProjectRequest) error {
	p, err := a.projects.CreateProject(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created project %s: %s (client %s)\n", p.ID, p.Name, p.ClientID)
	return nil
}

// ListClients prints non-archived clients.
func (a *LedgerAdapter) ListClients(ctx context.Context) error {
	clients, err := a.clients.ListClients(ctx)
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}
	if len(clients) == 0 {
		fmt.Fprintln(a.out, "No clients found")
		return nil
	}
	rows := make([]table.Row, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, table.Row{c.ID, c.Name, c.Email})
	}
	a.render(table.Row{"ID", "Name", "Email"}, rows)
	return nil
}

// CreateClient creates a client.
func (a *LedgerAdapter) CreateClient(ctx context.Context, req primary.CreateClientRequest) error {
	c, err := a.clients.CreateClient(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created client %s: %s\n", c.ID, c.Name)
	return nil
}

// ArchiveClient archives a client.
func (a *LedgerAdapter) ArchiveClient(ctx context.Context, clientID string) error {
	changed, err := a.clients.ArchiveClient(ctx, clientID)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintf(a.out, "Client %s was already archived\n", clientID)
		return nil
	}
	fmt.Fprintf(a.out, "✓ Archived client %s\n", clientID)
	return nil
}

// ListPriorities prints priorities by rank.
func (a *LedgerAdapter) ListPriorities(ctx context.Context) error {
	priorities, err := a.priorities.ListPriorities(ctx)
	if err != nil {
		return fmt.Errorf("failed to list priorities: %w", err)
	}
	rows := make([]table.Row, 0, len(priorities))
	for _, p := range priorities {
		rows = append(rows, table.Row{p.ID, p.Name, p.Rank})
	}
	a.render(table.Row{"ID", "Name", "Rank"}, rows)
	return nil
}

// CreatePriority adds a priority after the existing ones.
func (a *LedgerAdapter) CreatePriority(ctx context.Context, name string) error {
	p, err := a.priorities.CreatePriority(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created priority %s: %s (rank %d)\n", p.ID, p.Name, p.Rank)
	return nil
}
