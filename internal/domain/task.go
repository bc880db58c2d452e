package domain

import (
	"context"
	"sort"
)

// Task is one bar on the chart. End before Start is accepted, not
// validated, and Progress is conventionally 0.0-1.0 but never clamped;
// both are the consuming client's concern.
type Task struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	Title        string    `json:"title"`
	Start        Timestamp `json:"start"`
	End          Timestamp `json:"end"`
	Progress     float64   `json:"progress"`
	Lane         int       `json:"lane"`
	Color        *string   `json:"color"`
	Dependencies []int64   `json:"dependencies"`
}

// NormalizeDependencies de-duplicates a predecessor list, silently drops a
// self-reference, and sorts ascending for stable output. The result is
// never nil so it serializes as [].
func NormalizeDependencies(taskID int64, deps []int64) []int64 {
	seen := make(map[int64]struct{}, len(deps))
	out := make([]int64, 0, len(deps))
	for _, id := range deps {
		if id == taskID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TaskRepository persists tasks and their dependency sets. Create and
// Update replace the dependency rows from t.Dependencies in the same
// transaction as the task row.
type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	ReplaceDependencies(ctx context.Context, taskID int64, deps []int64) error
	Delete(ctx context.Context, id int64) error
}
