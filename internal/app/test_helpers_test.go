package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	coreproject "github.com/example/nextaction/internal/core/project"
	"github.com/example/nextaction/internal/core/recurrence"
	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/core/taskcontext"
	"github.com/example/nextaction/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockTaskRepository implements secondary.TaskRepository for testing.
// Records are copied in and out so callers never alias stored state.
type mockTaskRepository struct {
	tasks     map[string]*secondary.TaskRecord
	nextNum   int
	calls     int
	createErr error
	getErr    error
	updateErr error
	listErr   error
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{
		tasks: make(map[string]*secondary.TaskRecord),
	}
}

func (m *mockTaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) (string, error) {
	m.calls++
	if m.createErr != nil {
		return "", m.createErr
	}
	if task.ID == "" {
		id, _ := m.GetNextID(ctx)
		task.ID = id
	}
	stored := *task
	m.tasks[task.ID] = &stored
	if n := coretask.ParseTaskNumber(task.ID); n > m.nextNum {
		m.nextNum = n
	}
	return task.ID, nil
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	m.calls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	if task, ok := m.tasks[id]; ok {
		out := *task
		return &out, nil
	}
	return nil, fmt.Errorf("%w: %s", coretask.ErrTaskNotFound, id)
}

func (m *mockTaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.TaskRecord
	for _, t := range m.tasks {
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		if filters.ExcludeStatus != "" && t.Status == filters.ExcludeStatus {
			continue
		}
		if filters.ContextID != "" && t.ContextID != filters.ContextID {
			continue
		}
		if filters.ProjectID != "" && t.ProjectID != filters.ProjectID {
			continue
		}
		if filters.PriorityID != "" && t.PriorityID != filters.PriorityID {
			continue
		}
		if filters.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*filters.DueBefore)) {
			continue
		}
		if !filters.IncludeArchived && t.Archived {
			continue
		}
		out := *t
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockTaskRepository) UpdateFields(ctx context.Context, id string, u secondary.TaskFieldUpdate) (int64, error) {
	m.calls++
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return 0, nil
	}
	if v, ok := u.ExpectStatus.Get(); ok && task.Status != v {
		return 0, nil
	}
	if v, ok := u.Name.Get(); ok {
		task.Name = v
	}
	if v, ok := u.Description.Get(); ok {
		task.Description = v
	}
	if v, ok := u.Status.Get(); ok {
		task.Status = v
	}
	if v, ok := u.ContextID.Get(); ok {
		task.ContextID = v
	}
	if v, ok := u.ProjectID.Get(); ok {
		task.ProjectID = v
	}
	if v, ok := u.ClientID.Get(); ok {
		task.ClientID = v
	}
	if v, ok := u.PriorityID.Get(); ok {
		task.PriorityID = v
	}
	if v, ok := u.DueDate.Get(); ok {
		task.DueDate = v
	}
	if v, ok := u.StartDate.Get(); ok {
		task.StartDate = v
	}
	if v, ok := u.CompletedAt.Get(); ok {
		task.CompletedAt = v
	}
	if v, ok := u.RecurrenceExpression.Get(); ok {
		task.RecurrenceExpression = v
	}
	if v, ok := u.TimeEstimate.Get(); ok {
		task.TimeEstimate = v
	}
	if v, ok := u.EnergyLevel.Get(); ok {
		task.EnergyLevel = v
	}
	task.UpdatedAt = u.UpdatedAt
	return 1, nil
}

func (m *mockTaskRepository) Archive(ctx context.Context, id string, at time.Time) (bool, error) {
	m.calls++
	task, ok := m.tasks[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", coretask.ErrTaskNotFound, id)
	}
	if task.Archived {
		return false, nil
	}
	task.Archived = true
	task.UpdatedAt = at
	return true, nil
}

func (m *mockTaskRepository) GetNextID(ctx context.Context) (string, error) {
	m.nextNum++
	return coretask.GenerateTaskID(m.nextNum - 1), nil
}

func (m *mockTaskRepository) CountByContext(ctx context.Context, contextID string) (int, error) {
	count := 0
	for _, t := range m.tasks {
		if t.ContextID == contextID {
			count++
		}
	}
	return count, nil
}

func (m *mockTaskRepository) snapshot() map[string]secondary.TaskRecord {
	out := make(map[string]secondary.TaskRecord, len(m.tasks))
	for id, t := range m.tasks {
		out[id] = *t
	}
	return out
}

func (m *mockTaskRepository) restore(snapshot map[string]secondary.TaskRecord) {
	m.tasks = make(map[string]*secondary.TaskRecord, len(snapshot))
	for id, t := range snapshot {
		t := t
		m.tasks[id] = &t
	}
}

// seed stores a task as-is.
func (m *mockTaskRepository) seed(task *secondary.TaskRecord) {
	stored := *task
	m.tasks[task.ID] = &stored
	if n := coretask.ParseTaskNumber(task.ID); n > m.nextNum {
		m.nextNum = n
	}
}

// mockContextRepository implements secondary.ContextRepository for testing.
type mockContextRepository struct {
	contexts  map[string]*secondary.ContextRecord
	calls     int
	createErr error
}

func newMockContextRepository(names ...string) *mockContextRepository {
	m := &mockContextRepository{contexts: make(map[string]*secondary.ContextRecord)}
	for i, name := range names {
		id := fmt.Sprintf("CTX-%03d", i+1)
		m.contexts[id] = &secondary.ContextRecord{ID: id, Name: name}
	}
	return m
}

func (m *mockContextRepository) Create(ctx context.Context, record *secondary.ContextRecord) error {
	m.calls++
	if m.createErr != nil {
		return m.createErr
	}
	stored := *record
	m.contexts[record.ID] = &stored
	return nil
}

func (m *mockContextRepository) GetByID(ctx context.Context, id string) (*secondary.ContextRecord, error) {
	m.calls++
	if c, ok := m.contexts[id]; ok {
		out := *c
		return &out, nil
	}
	return nil, fmt.Errorf("%w: %s", taskcontext.ErrContextNotFound, id)
}

func (m *mockContextRepository) GetByName(ctx context.Context, name string) (*secondary.ContextRecord, error) {
	m.calls++
	for _, c := range m.contexts {
		if c.Name == name {
			out := *c
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", taskcontext.ErrContextNotFound, name)
}

func (m *mockContextRepository) List(ctx context.Context) ([]*secondary.ContextRecord, error) {
	m.calls++
	var result []*secondary.ContextRecord
	for _, c := range m.contexts {
		out := *c
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockContextRepository) Delete(ctx context.Context, id string) error {
	m.calls++
	if _, ok := m.contexts[id]; !ok {
		return fmt.Errorf("%w: %s", taskcontext.ErrContextNotFound, id)
	}
	delete(m.contexts, id)
	return nil
}

func (m *mockContextRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("CTX-%03d", len(m.contexts)+1), nil
}

// mockProjectRepository implements secondary.ProjectRepository for testing.
type mockProjectRepository struct {
	projects  map[string]*secondary.ProjectRecord
	calls     int
	createErr error
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{projects: make(map[string]*secondary.ProjectRecord)}
}

func (m *mockProjectRepository) Create(ctx context.Context, project *secondary.ProjectRecord) error {
	m.calls++
	if m.createErr != nil {
		return m.createErr
	}
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	m.calls++
	if p, ok := m.projects[id]; ok {
		out := *p
		return &out, nil
	}
	return nil, fmt.Errorf("%w: %s", coreproject.ErrProjectNotFound, id)
}

func (m *mockProjectRepository) List(ctx context.Context, clientID string) ([]*secondary.ProjectRecord, error) {
	m.calls++
	var result []*secondary.ProjectRecord
	for _, p := range m.projects {
		if p.Archived || (clientID != "" && p.ClientID != clientID) {
			continue
		}
		out := *p
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockProjectRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("PROJ-%03d", len(m.projects)+1), nil
}

func (m *mockProjectRepository) GetOrCreateDefault(ctx context.Context, clientID string) (*secondary.ProjectRecord, error) {
	m.calls++
	for _, p := range m.projects {
		if p.IsDefault && p.ClientID == clientID {
			out := *p
			return &out, nil
		}
	}
	id, _ := m.GetNextID(ctx)
	p := &secondary.ProjectRecord{
		ID:          id,
		Name:        coreproject.DefaultProjectName,
		Description: coreproject.DefaultProjectDescription,
		Status:      coreproject.StatusActive,
		ClientID:    clientID,
		IsDefault:   true,
	}
	m.projects[id] = p
	out := *p
	return &out, nil
}

func (m *mockProjectRepository) CountActiveByClient(ctx context.Context, clientID string) (int, error) {
	count := 0
	for _, p := range m.projects {
		if p.ClientID == clientID && !p.Archived {
			count++
		}
	}
	return count, nil
}

// mockClientRepository implements secondary.ClientRepository for testing.
type mockClientRepository struct {
	clients   map[string]*secondary.ClientRecord
	calls     int
	createErr error
}

func newMockClientRepository() *mockClientRepository {
	return &mockClientRepository{clients: make(map[string]*secondary.ClientRecord)}
}

func (m *mockClientRepository) Create(ctx context.Context, client *secondary.ClientRecord) error {
	m.calls++
	if m.createErr != nil {
		return m.createErr
	}
	stored := *client
	m.clients[client.ID] = &stored
	return nil
}

func (m *mockClientRepository) GetByID(ctx context.Context, id string) (*secondary.ClientRecord, error) {
	m.calls++
	if c, ok := m.clients[id]; ok {
		out := *c
		return &out, nil
	}
	return nil, fmt.Errorf("%w: %s", coreproject.ErrClientNotFound, id)
}

func (m *mockClientRepository) List(ctx context.Context, includeArchived bool) ([]*secondary.ClientRecord, error) {
	m.calls++
	var result []*secondary.ClientRecord
	for _, c := range m.clients {
		if c.Archived && !includeArchived {
			continue
		}
		out := *c
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockClientRepository) Archive(ctx context.Context, id string) (bool, error) {
	m.calls++
	c, ok := m.clients[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", coreproject.ErrClientNotFound, id)
	}
	if c.Archived {
		return false, nil
	}
	c.Archived = true
	return true, nil
}

func (m *mockClientRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("CLIENT-%03d", len(m.clients)+1), nil
}

func (m *mockClientRepository) GetOrCreateDefault(ctx context.Context) (*secondary.ClientRecord, error) {
	m.calls++
	for _, c := range m.clients {
		if c.IsDefault {
			out := *c
			return &out, nil
		}
	}
	id, _ := m.GetNextID(ctx)
	c := &secondary.ClientRecord{ID: id, Name: coreproject.DefaultClientName, IsDefault: true}
	m.clients[id] = c
	out := *c
	return &out, nil
}

// mockPriorityRepository implements secondary.PriorityRepository for testing.
type mockPriorityRepository struct {
	priorities map[string]*secondary.PriorityRecord
}

func newMockPriorityRepository(names ...string) *mockPriorityRepository {
	m := &mockPriorityRepository{priorities: make(map[string]*secondary.PriorityRecord)}
	for i, name := range names {
		id := fmt.Sprintf("PRI-%03d", i+1)
		m.priorities[id] = &secondary.PriorityRecord{ID: id, Name: name, Rank: i + 1}
	}
	return m
}

func (m *mockPriorityRepository) Create(ctx context.Context, record *secondary.PriorityRecord) error {
	stored := *record
	m.priorities[record.ID] = &stored
	return nil
}

func (m *mockPriorityRepository) GetByID(ctx context.Context, id string) (*secondary.PriorityRecord, error) {
	if p, ok := m.priorities[id]; ok {
		out := *p
		return &out, nil
	}
	return nil, fmt.Errorf("%w: %s", coretask.ErrPriorityNotFound, id)
}

func (m *mockPriorityRepository) List(ctx context.Context) ([]*secondary.PriorityRecord, error) {
	var result []*secondary.PriorityRecord
	for _, p := range m.priorities {
		out := *p
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Rank < result[j].Rank })
	return result, nil
}

func (m *mockPriorityRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("PRI-%03d", len(m.priorities)+1), nil
}

// mockEventWriter implements secondary.TaskEventWriter for testing.
type mockEventWriter struct {
	events []secondary.TaskEventRecord
	err    error
}

func (m *mockEventWriter) LogCreate(ctx context.Context, taskID string) error {
	return m.add(secondary.TaskEventRecord{TaskID: taskID, Action: "create"})
}

func (m *mockEventWriter) LogUpdate(ctx context.Context, taskID, fieldName, oldValue, newValue string) error {
	return m.add(secondary.TaskEventRecord{
		TaskID:    taskID,
		Action:    "update",
		FieldName: fieldName,
		OldValue:  oldValue,
		NewValue:  newValue,
	})
}

func (m *mockEventWriter) LogArchive(ctx context.Context, taskID string) error {
	return m.add(secondary.TaskEventRecord{TaskID: taskID, Action: "archive"})
}

func (m *mockEventWriter) add(e secondary.TaskEventRecord) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockEventWriter) actions(taskID string) []string {
	var out []string
	for _, e := range m.events {
		if e.TaskID != taskID {
			continue
		}
		if e.FieldName != "" {
			out = append(out, e.Action+":"+e.FieldName)
		} else {
			out = append(out, e.Action)
		}
	}
	return out
}

// mockTransactor runs fn directly and restores the task and event mocks
// when it fails, standing in for a rolled back transaction.
type mockTransactor struct {
	calls  int
	tasks  *mockTaskRepository
	events *mockEventWriter
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	var snapshot map[string]secondary.TaskRecord
	if m.tasks != nil {
		snapshot = m.tasks.snapshot()
	}
	var eventCount int
	if m.events != nil {
		eventCount = len(m.events.events)
	}

	if err := fn(ctx); err != nil {
		if m.tasks != nil {
			m.tasks.restore(snapshot)
		}
		if m.events != nil {
			m.events.events = m.events.events[:eventCount]
		}
		return err
	}
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// ============================================================================
// Fixtures
// ============================================================================

// taskFixture wires a TaskServiceImpl to mocks. Context CTX-001 (@calls)
// exists; no client or project does until the default is requested.
type taskFixture struct {
	service  *TaskServiceImpl
	tasks    *mockTaskRepository
	contexts *mockContextRepository
	projects *mockProjectRepository
	clients  *mockClientRepository
	events   *mockEventWriter
	tx       *mockTransactor
	clock    *fixedClock
}

func newTaskFixture(t *testing.T, now time.Time) *taskFixture {
	t.Helper()

	f := &taskFixture{
		tasks:    newMockTaskRepository(),
		contexts: newMockContextRepository("@calls"),
		projects: newMockProjectRepository(),
		clients:  newMockClientRepository(),
		events:   &mockEventWriter{},
		clock:    &fixedClock{now: now},
	}
	f.tx = &mockTransactor{tasks: f.tasks, events: f.events}

	projectService := NewProjectService(f.projects, f.clients, f.tx, f.clock)
	engine := recurrence.NewEngineWithConfig(recurrence.EngineConfig{
		Horizon: 5 * 366 * 24 * time.Hour,
	})
	f.service = NewTaskService(
		f.tasks,
		f.contexts,
		projectService,
		f.events,
		f.tx,
		f.clock,
		engine,
		"UTC",
		nil,
	)
	return f
}

// persistenceCalls totals calls made on every repository mock.
func (f *taskFixture) persistenceCalls() int {
	return f.tasks.calls + f.contexts.calls + f.projects.calls + f.clients.calls + f.tx.calls
}

func (f *taskFixture) seedTask(t *testing.T, record *secondary.TaskRecord) {
	t.Helper()
	if record.ContextID == "" {
		record.ContextID = "CTX-001"
	}
	if record.Status == "" {
		record.Status = string(coretask.StatusNextAction)
	}
	f.tasks.seed(record)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad time %q: %v", value, err)
	}
	return parsed
}

func joined(values []string) string {
	return strings.Join(values, ",")
}
