package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/lindestad/gantt/internal/api/ws"
	"github.com/lindestad/gantt/internal/domain"
)

type ListTasksInput struct {
	ProjectID int64 `path:"projectID" doc:"Project ID"`
}

type ListTasksOutput struct {
	Body []*domain.Task
}

type CreateTaskInput struct {
	ProjectID int64 `path:"projectID" doc:"Project ID"`
	Body      struct {
		Title        string  `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Start        string  `json:"start" doc:"Start timestamp, ISO-8601"`
		End          string  `json:"end" doc:"End timestamp, ISO-8601"`
		Progress     float64 `json:"progress,omitempty" doc:"Progress fraction, conventionally 0.0-1.0"`
		Lane         int     `json:"lane,omitempty" doc:"Vertical lane"`
		Color        *string `json:"color,omitempty" doc:"Display color"`
		Dependencies []int64 `json:"dependencies,omitempty" doc:"IDs of tasks this task depends on"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ProjectID int64 `path:"projectID" doc:"Project ID"`
	TaskID    int64 `path:"taskID" doc:"Task ID"`
	Body      struct {
		Title        string  `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Start        string  `json:"start" doc:"Start timestamp, ISO-8601"`
		End          string  `json:"end" doc:"End timestamp, ISO-8601"`
		Progress     float64 `json:"progress,omitempty" doc:"Progress fraction"`
		Lane         int     `json:"lane,omitempty" doc:"Vertical lane"`
		Color        *string `json:"color,omitempty" doc:"Display color"`
		Dependencies []int64 `json:"dependencies,omitempty" doc:"Full replacement dependency set"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type PatchTaskInput struct {
	ProjectID int64 `path:"projectID" doc:"Project ID"`
	TaskID    int64 `path:"taskID" doc:"Task ID"`
	Body      struct {
		Title        *string  `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Start        *string  `json:"start,omitempty" doc:"Start timestamp, ISO-8601"`
		End          *string  `json:"end,omitempty" doc:"End timestamp, ISO-8601"`
		Progress     *float64 `json:"progress,omitempty" doc:"Progress fraction"`
		Lane         *int     `json:"lane,omitempty" doc:"Vertical lane"`
		Color        *string  `json:"color,omitempty" doc:"Display color"`
		Dependencies []int64  `json:"dependencies,omitempty" doc:"Full replacement dependency set; prior set is discarded, never merged"`
	}
}

type PatchTaskOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ProjectID int64 `path:"projectID" doc:"Project ID"`
	TaskID    int64 `path:"taskID" doc:"Task ID"`
}

type DeleteTaskOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func RegisterTaskRoutes(api huma.API, store DataStore, hub Broadcaster) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/projects/{projectID}/tasks",
		Summary:     "List a project's tasks",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		tasks, err := store.Tasks().ListByProject(ctx, input.ProjectID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		if tasks == nil {
			tasks = []*domain.Task{}
		}
		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/projects/{projectID}/tasks",
		Summary:     "Create a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		start, err := domain.ParseTimestamp(input.Body.Start)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid start timestamp")
		}
		end, err := domain.ParseTimestamp(input.Body.End)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid end timestamp")
		}

		t := &domain.Task{
			ProjectID:    input.ProjectID,
			Title:        input.Body.Title,
			Start:        start,
			End:          end,
			Progress:     input.Body.Progress,
			Lane:         input.Body.Lane,
			Color:        input.Body.Color,
			Dependencies: input.Body.Dependencies,
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		broadcast(ctx, hub, input.ProjectID, ws.NewTaskCreated(t))

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/projects/{projectID}/tasks/{taskID}",
		Summary:     "Replace a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		start, err := domain.ParseTimestamp(input.Body.Start)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid start timestamp")
		}
		end, err := domain.ParseTimestamp(input.Body.End)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid end timestamp")
		}

		t, err := getProjectTask(ctx, store, input.ProjectID, input.TaskID)
		if err != nil {
			return nil, err
		}

		t.Title = input.Body.Title
		t.Start = start
		t.End = end
		t.Progress = input.Body.Progress
		t.Lane = input.Body.Lane
		t.Color = input.Body.Color
		t.Dependencies = input.Body.Dependencies

		if err := store.Tasks().Update(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		broadcast(ctx, hub, input.ProjectID, ws.NewTaskUpdated(t))

		return &UpdateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "patch-task",
		Method:      http.MethodPatch,
		Path:        "/projects/{projectID}/tasks/{taskID}",
		Summary:     "Partially update a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *PatchTaskInput) (*PatchTaskOutput, error) {
		t, err := getProjectTask(ctx, store, input.ProjectID, input.TaskID)
		if err != nil {
			return nil, err
		}

		// Dragging a dependency link is the most frequent edit, so a patch
		// that touches nothing else skips the row update.
		if depsOnlyPatch(input) {
			if err := store.Tasks().ReplaceDependencies(ctx, t.ID, input.Body.Dependencies); err != nil {
				return nil, huma.Error500InternalServerError("failed to update task", err)
			}
			t.Dependencies = domain.NormalizeDependencies(t.ID, input.Body.Dependencies)

			broadcast(ctx, hub, input.ProjectID, ws.NewTaskUpdated(t))

			return &PatchTaskOutput{Body: t}, nil
		}

		if input.Body.Title != nil {
			t.Title = *input.Body.Title
		}
		if input.Body.Start != nil {
			start, parseErr := domain.ParseTimestamp(*input.Body.Start)
			if parseErr != nil {
				return nil, huma.Error400BadRequest("invalid start timestamp")
			}
			t.Start = start
		}
		if input.Body.End != nil {
			end, parseErr := domain.ParseTimestamp(*input.Body.End)
			if parseErr != nil {
				return nil, huma.Error400BadRequest("invalid end timestamp")
			}
			t.End = end
		}
		if input.Body.Progress != nil {
			t.Progress = *input.Body.Progress
		}
		if input.Body.Lane != nil {
			t.Lane = *input.Body.Lane
		}
		if input.Body.Color != nil {
			t.Color = input.Body.Color
		}
		if input.Body.Dependencies != nil {
			t.Dependencies = input.Body.Dependencies
		}

		if err := store.Tasks().Update(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		broadcast(ctx, hub, input.ProjectID, ws.NewTaskUpdated(t))

		return &PatchTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/projects/{projectID}/tasks/{taskID}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*DeleteTaskOutput, error) {
		out := &DeleteTaskOutput{}
		out.Body.OK = true

		// Deleting an absent task is idempotent success with no broadcast.
		t, err := store.Tasks().GetByID(ctx, input.TaskID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return out, nil
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}
		if t.ProjectID != input.ProjectID {
			return out, nil
		}

		if err := store.Tasks().Delete(ctx, input.TaskID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return out, nil
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		broadcast(ctx, hub, input.ProjectID, ws.NewTaskDeleted(input.TaskID))

		return out, nil
	})
}

func depsOnlyPatch(input *PatchTaskInput) bool {
	return input.Body.Dependencies != nil &&
		input.Body.Title == nil &&
		input.Body.Start == nil &&
		input.Body.End == nil &&
		input.Body.Progress == nil &&
		input.Body.Lane == nil &&
		input.Body.Color == nil
}

// getProjectTask loads a task and verifies it belongs to the addressed
// project; a task under another project is reported as not found.
func getProjectTask(ctx context.Context, store DataStore, projectID, taskID int64) (*domain.Task, error) {
	t, err := store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("task not found")
		}
		return nil, huma.Error500InternalServerError("failed to get task", err)
	}
	if t.ProjectID != projectID {
		return nil, huma.Error404NotFound("task not found")
	}
	return t, nil
}

// broadcast runs after a committed mutation. Fan-out failures are local to
// individual subscribers and never surface to the requester.
func broadcast(ctx context.Context, hub Broadcaster, projectID int64, e ws.Event) {
	if err := hub.Broadcast(ctx, projectID, e); err != nil {
		log.Warn().Err(err).Int64("project_id", projectID).Msg("broadcast failed")
	}
}
