package v1_test

import (
	"context"
	"encoding/json"

	"github.com/lindestad/gantt/internal/api/ws"
	"github.com/lindestad/gantt/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	projects domain.ProjectRepository
	tasks    domain.TaskRepository
}

func (m *mockDataStore) Projects() domain.ProjectRepository { return m.projects }
func (m *mockDataStore) Tasks() domain.TaskRepository       { return m.tasks }

// ---------------------------------------------------------------------------
// Mock ProjectRepository
// ---------------------------------------------------------------------------

type mockProjectRepo struct {
	createFunc        func(ctx context.Context, p *domain.Project) error
	getByIDFunc       func(ctx context.Context, id int64) (*domain.Project, error)
	listSummariesFunc func(ctx context.Context) ([]*domain.ProjectSummary, error)
	deleteFunc        func(ctx context.Context, id int64) error
}

func (m *mockProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return m.createFunc(ctx, p)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProjectRepo) ListSummaries(ctx context.Context) ([]*domain.ProjectSummary, error) {
	return m.listSummariesFunc(ctx)
}

func (m *mockProjectRepo) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc        func(ctx context.Context, t *domain.Task) error
	getByIDFunc       func(ctx context.Context, id int64) (*domain.Task, error)
	listByProjectFunc func(ctx context.Context, projectID int64) ([]*domain.Task, error)
	updateFunc        func(ctx context.Context, t *domain.Task) error
	replaceDepsFunc   func(ctx context.Context, taskID int64, deps []int64) error
	deleteFunc        func(ctx context.Context, id int64) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTaskRepo) ListByProject(ctx context.Context, projectID int64) ([]*domain.Task, error) {
	return m.listByProjectFunc(ctx, projectID)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTaskRepo) ReplaceDependencies(ctx context.Context, taskID int64, deps []int64) error {
	return m.replaceDepsFunc(ctx, taskID, deps)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock Broadcaster — records decoded events per project
// ---------------------------------------------------------------------------

type broadcastRecord struct {
	projectID int64
	event     map[string]any
}

type mockBroadcaster struct {
	records []broadcastRecord
}

func (m *mockBroadcaster) Broadcast(_ context.Context, projectID int64, e ws.Event) error {
	payload, err := e.Encode()
	if err != nil {
		return err
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return err
	}
	m.records = append(m.records, broadcastRecord{projectID: projectID, event: decoded})
	return nil
}
