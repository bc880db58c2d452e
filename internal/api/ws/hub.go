package ws

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/lindestad/gantt/internal/domain"
)

// defaultBuffer is the per-subscriber event queue depth. A subscriber that
// falls this far behind is treated as disconnected.
const defaultBuffer = 16

// TaskSource provides the current task list for hydration. *postgres.Store
// Tasks() satisfies this interface.
type TaskSource interface {
	ListByProject(ctx context.Context, projectID int64) ([]*domain.Task, error)
}

// Hub manages per-project WebSocket rooms and fans mutation events out to
// their subscribers. One Hub is created at process scope and shared by the
// subscription endpoint and the mutation handlers.
type Hub struct {
	registry *Registry
	tasks    TaskSource
	buffer   int
}

// NewHub creates a hub with an empty room registry.
func NewHub(tasks TaskSource) *Hub {
	return &Hub{
		registry: NewRegistry(),
		tasks:    tasks,
		buffer:   defaultBuffer,
	}
}

// Broadcast queues one event for every subscriber currently in the
// project's room, best-effort. A subscriber whose queue is full is pruned
// and its transport closed; remaining subscribers are unaffected. The
// enqueue never blocks, so callers may invoke Broadcast synchronously
// after committing a mutation without delaying their own response.
// Broadcasting to an empty or absent room is a no-op.
func (h *Hub) Broadcast(ctx context.Context, projectID int64, e Event) error {
	payload, err := e.Encode()
	if err != nil {
		return err
	}

	for _, sub := range h.registry.Connections(projectID) {
		if sub.offer(payload) {
			continue
		}
		// A failed send is an implicit disconnect: no retry, no backoff.
		h.registry.Leave(projectID, sub)
		sub.closeSlow()
		log.Debug().
			Stringer("conn_id", sub.ID).
			Int64("project_id", projectID).
			Msg("websocket subscriber pruned")
	}

	return nil
}

// ServeProject handles WebSocket subscriptions for one project's live task
// events. The connection joins the project's room, receives a hydrate
// event with the current task list, then receives every mutation event
// broadcast to the room until it disconnects.
func (h *Hub) ServeProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	h.subscribe(r.Context(), projectID, conn)
}

func (h *Hub) subscribe(ctx context.Context, projectID int64, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := NewSubscriber(h.buffer, func() {
		_ = conn.Close(websocket.StatusPolicyViolation, "event queue overflow")
	})

	h.registry.Join(projectID, sub)
	defer h.registry.Leave(projectID, sub)

	// Inbound traffic is keep-alive only. Read and discard until the
	// transport errors, which ends the session.
	go func() {
		defer cancel()
		for {
			if _, _, readErr := conn.Read(ctx); readErr != nil {
				return
			}
		}
	}()

	// Join happens before the snapshot read, so no mutation committed after
	// this point can be missed. The cost is that an in-flight mutation may
	// appear both in the hydrate set and as its own event; consumers
	// deduplicate by task id.
	tasks, err := h.tasks.ListByProject(ctx, projectID)
	if err != nil {
		log.Error().Err(err).Int64("project_id", projectID).Msg("websocket hydrate")
		_ = conn.Close(websocket.StatusInternalError, "hydration failed")
		return
	}

	payload, err := NewHydrate(tasks).Encode()
	if err != nil {
		log.Error().Err(err).Int64("project_id", projectID).Msg("websocket hydrate encode")
		_ = conn.Close(websocket.StatusInternalError, "hydration failed")
		return
	}
	if err = conn.Write(ctx, websocket.MessageText, payload); err != nil {
		log.Debug().Err(err).Msg("websocket write")
		return
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg := <-sub.Events():
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
