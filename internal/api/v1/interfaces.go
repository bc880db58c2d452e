package v1

import (
	"context"

	"github.com/lindestad/gantt/internal/api/ws"
	"github.com/lindestad/gantt/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Projects() domain.ProjectRepository
	Tasks() domain.TaskRepository
}

// Broadcaster fans a mutation event out to a project's live subscribers.
// *ws.Hub satisfies this interface.
type Broadcaster interface {
	Broadcast(ctx context.Context, projectID int64, e ws.Event) error
}
