package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lindestad/gantt/internal/domain"
)

type CreateProjectInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"255" doc:"Project name, unique"`
	}
}

type CreateProjectOutput struct {
	Body *domain.ProjectSummary
}

type ListProjectsInput struct{}

type ListProjectsOutput struct {
	Body []*domain.ProjectSummary
}

type DeleteProjectInput struct {
	ID int64 `path:"id" doc:"Project ID"`
}

func RegisterProjectRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, _ *ListProjectsInput) (*ListProjectsOutput, error) {
		projects, err := store.Projects().ListSummaries(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list projects", err)
		}

		if projects == nil {
			projects = []*domain.ProjectSummary{}
		}
		return &ListProjectsOutput{Body: projects}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-project",
		Method:      http.MethodPost,
		Path:        "/projects",
		Summary:     "Create a new project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *CreateProjectInput) (*CreateProjectOutput, error) {
		p, err := domain.NewProject(input.Body.Name)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if createErr := store.Projects().Create(ctx, p); createErr != nil {
			if errors.Is(createErr, domain.ErrConflict) {
				return nil, huma.Error409Conflict("project name already in use")
			}
			return nil, huma.Error500InternalServerError("failed to create project", createErr)
		}

		// A fresh project has no tasks, so its chart starts now.
		return &CreateProjectOutput{Body: &domain.ProjectSummary{
			ID:    p.ID,
			Name:  p.Name,
			Start: domain.Timestamp{Time: time.Now().UTC()},
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-project",
		Method:      http.MethodDelete,
		Path:        "/projects/{id}",
		Summary:     "Delete a project and its tasks",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *DeleteProjectInput) (*struct{}, error) {
		if err := store.Projects().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete project", err)
		}

		return nil, nil
	})
}
