package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Project groups tasks on one Gantt chart. Deleting a project deletes its
// tasks and their dependency rows.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

// ProjectSummary is the listing shape: Start is the earliest task start in
// the project, or the query time when the project has no tasks yet.
type ProjectSummary struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Start Timestamp `json:"start"`
}

// NewProject validates the name and returns an unsaved project. The ID is
// assigned by the store.
func NewProject(name string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("project: name is required")
	}
	return &Project{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	ListSummaries(ctx context.Context) ([]*ProjectSummary, error)
	Delete(ctx context.Context, id int64) error
}
