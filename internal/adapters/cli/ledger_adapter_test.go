package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/nextaction/internal/ports/primary"
)

type mockContextService struct {
	contexts  []*primary.TaskContext
	deleteErr error
	deleted   string
}

func (m *mockContextService) CreateContext(ctx context.Context, name string) (*primary.TaskContext, error) {
	c := &primary.TaskContext{ID: "CTX-006", Name: name}
	m.contexts = append(m.contexts, c)
	return c, nil
}

func (m *mockContextService) ListContexts(ctx context.Context) ([]*primary.TaskContext, error) {
	return m.contexts, nil
}

func (m *mockContextService) DeleteContext(ctx context.Context, contextID string) error {
	m.deleted = contextID
	return m.deleteErr
}

type mockProjectService struct {
	projects []*primary.Project
	lastReq  primary.CreateProjectRequest
}

func (m *mockProjectService) CreateProject(ctx context.Context, req primary.CreateProjectRequest) (*primary.Project, error) {
	m.lastReq = req
	return &primary.Project{ID: "PROJ-002", Name: req.Name, ClientID: req.ClientID}, nil
}

func (m *mockProjectService) GetProject(ctx context.Context, projectID string) (*primary.Project, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockProjectService) ListProjects(ctx context.Context, clientID string) ([]*primary.Project, error) {
	return m.projects, nil
}

func (m *mockProjectService) GetOrCreateDefaultProject(ctx context.Context) (*primary.Project, error) {
	return nil, errors.New("not implemented in adapter")
}

type mockClientService struct {
	archived bool
}

func (m *mockClientService) CreateClient(ctx context.Context, req primary.CreateClientRequest) (*primary.Client, error) {
	return &primary.Client{ID: "CLIENT-002", Name: req.Name}, nil
}

func (m *mockClientService) ListClients(ctx context.Context) ([]*primary.Client, error) {
	return []*primary.Client{{ID: "CLIENT-001", Name: "Default Client"}}, nil
}

func (m *mockClientService) ArchiveClient(ctx context.Context, clientID string) (bool, error) {
	return m.archived, nil
}

type mockPriorityService struct{}

func (m *mockPriorityService) ListPriorities(ctx context.Context) ([]*primary.Priority, error) {
	return []*primary.Priority{
		{ID: "PRI-001", Name: "High", Rank: 1},
		{ID: "PRI-002", Name: "Medium", Rank: 2},
	}, nil
}

func (m *mockPriorityService) CreatePriority(ctx context.Context, name string) (*primary.Priority, error) {
	return &primary.Priority{ID: "PRI-004", Name: name, Rank: 4}, nil
}

func newTestLedgerAdapter() (*LedgerAdapter, *mockContextService, *mockProjectService, *mockClientService, *bytes.Buffer) {
	contexts := &mockContextService{contexts: []*primary.TaskContext{{ID: "CTX-001", Name: "@calls"}}}
	projects := &mockProjectService{projects: []*primary.Project{
		{ID: "PROJ-001", Name: "Miscellaneous", Status: "Active", ClientID: "CLIENT-001", IsDefault: true},
	}}
	clients := &mockClientService{archived: true}
	var buf bytes.Buffer
	return NewLedgerAdapter(contexts, projects, clients, &mockPriorityService{}, &buf), contexts, projects, clients, &buf
}

func TestLedgerAdapter_Contexts(t *testing.T) {
	adapter, contexts, _, _, out := newTestLedgerAdapter()
	ctx := context.Background()

	if err := adapter.CreateContext(ctx, "@garden"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := adapter.ListContexts(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := out.String()
	if !strings.Contains(output, "✓ Created context CTX-006: @garden") {
		t.Errorf("missing confirmation in %q", output)
	}
	if !strings.Contains(output, "@calls") || !strings.Contains(output, "CTX-006") {
		t.Errorf("expected both contexts listed, got %q", output)
	}

	contexts.deleteErr = errors.New("context is in use: CTX-001 has 3 tasks")
	if err := adapter.DeleteContext(ctx, "CTX-001"); err == nil {
		t.Error("expected delete error to propagate")
	}
	if contexts.deleted != "CTX-001" {
		t.Errorf("expected CTX-001 deleted, got %q", contexts.deleted)
	}
}

func TestLedgerAdapter_Projects(t *testing.T) {
	adapter, _, projects, _, out := newTestLedgerAdapter()
	ctx := context.Background()

	if err := adapter.ListProjects(ctx, ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out.String(), "Miscellaneous (default)") {
		t.Errorf("expected default project marker, got %q", out.String())
	}

	if err := adapter.CreateProject(ctx, primary.CreateProjectRequest{Name: "Launch", ClientID: "CLIENT-002"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if projects.lastReq.ClientID != "CLIENT-002" {
		t.Errorf("expected client passed through, got %q", projects.lastReq.ClientID)
	}
}

func TestLedgerAdapter_ArchiveClient(t *testing.T) {
	adapter, _, _, clients, out := newTestLedgerAdapter()
	ctx := context.Background()

	if err := adapter.ArchiveClient(ctx, "CLIENT-002"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	clients.archived = false
	if err := adapter.ArchiveClient(ctx, "CLIENT-002"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "✓ Archived client CLIENT-002") {
		t.Errorf("missing archive confirmation in %q", output)
	}
	if !strings.Contains(output, "Client CLIENT-002 was already archived") {
		t.Errorf("missing no-op message in %q", output)
	}
}

func TestLedgerAdapter_Priorities(t *testing.T) {
	adapter, _, _, _, out := newTestLedgerAdapter()

	if err := adapter.ListPriorities(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out.String(), "High") || !strings.Contains(out.String(), "Medium") {
		t.Errorf("expected priorities listed, got %q", out.String())
	}
}
