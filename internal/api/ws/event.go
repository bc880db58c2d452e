package ws

import (
	"encoding/json"
	"fmt"

	"github.com/lindestad/gantt/internal/domain"
)

type EventType string

const (
	EventHydrate     EventType = "hydrate"
	EventTaskCreated EventType = "task_created"
	EventTaskUpdated EventType = "task_updated"
	EventTaskDeleted EventType = "task_deleted"
)

// Event is one JSON message on a project's subscription channel.
type Event interface {
	Encode() ([]byte, error)
}

type hydrateEvent struct {
	Type  EventType      `json:"type"`
	Tasks []*domain.Task `json:"tasks"`
}

type taskEvent struct {
	Type EventType    `json:"type"`
	Task *domain.Task `json:"task"`
}

type deletedEvent struct {
	Type EventType   `json:"type"`
	Task deletedTask `json:"task"`
}

type deletedTask struct {
	ID int64 `json:"id"`
}

// NewHydrate builds the full-state snapshot event sent to a newly joined
// connection. Each task carries its resolved dependency id list.
func NewHydrate(tasks []*domain.Task) Event {
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return &hydrateEvent{Type: EventHydrate, Tasks: tasks}
}

func NewTaskCreated(t *domain.Task) Event {
	return &taskEvent{Type: EventTaskCreated, Task: t}
}

func NewTaskUpdated(t *domain.Task) Event {
	return &taskEvent{Type: EventTaskUpdated, Task: t}
}

// NewTaskDeleted carries only the deleted task's id.
func NewTaskDeleted(taskID int64) Event {
	return &deletedEvent{Type: EventTaskDeleted, Task: deletedTask{ID: taskID}}
}

func (e *hydrateEvent) Encode() ([]byte, error) { return encode(e) }
func (e *taskEvent) Encode() ([]byte, error)    { return encode(e) }
func (e *deletedEvent) Encode() ([]byte, error) { return encode(e) }

func encode(e any) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("ws: encode event: %w", err)
	}
	return payload, nil
}
