package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Subscriber is one live connection's seat in a project room. Broadcasts
// are queued on a buffered channel that the connection's pump goroutine
// drains; the queue filling up is treated as a dead connection.
type Subscriber struct {
	ID        uuid.UUID
	events    chan []byte
	closeSlow func()
}

// NewSubscriber creates a subscriber with the given queue depth. closeSlow
// is invoked once when a delivery fails, to tear down the transport.
func NewSubscriber(buffer int, closeSlow func()) *Subscriber {
	return &Subscriber{
		ID:        uuid.New(),
		events:    make(chan []byte, buffer),
		closeSlow: closeSlow,
	}
}

// Events is the delivery queue, drained by the connection pump.
func (s *Subscriber) Events() <-chan []byte { return s.events }

// offer enqueues without blocking. False means the queue is full and the
// subscriber must be pruned.
func (s *Subscriber) offer(payload []byte) bool {
	select {
	case s.events <- payload:
		return true
	default:
		return false
	}
}

// Registry tracks the live subscribers of each project's room. Rooms are
// created lazily on first join and removed when their last subscriber
// leaves; an empty room and an absent room are indistinguishable.
type Registry struct {
	mu    sync.Mutex
	rooms map[int64]map[*Subscriber]struct{}
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[int64]map[*Subscriber]struct{})}
}

// Join adds the subscriber to the project's room. Re-adding a member is a
// no-op.
func (r *Registry) Join(projectID int64, sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[projectID]
	if !ok {
		room = make(map[*Subscriber]struct{})
		r.rooms[projectID] = room
	}
	room[sub] = struct{}{}
}

// Leave removes the subscriber if present. Calling it twice, or for a room
// that never existed, is a no-op.
func (r *Registry) Leave(projectID int64, sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[projectID]
	if !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(r.rooms, projectID)
	}
}

// Connections returns a point-in-time copy of the room's members, safe to
// iterate while joins and leaves continue concurrently.
func (r *Registry) Connections(projectID int64) []*Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[projectID]
	if len(room) == 0 {
		return nil
	}
	subs := make([]*Subscriber, 0, len(room))
	for sub := range room {
		subs = append(subs, sub)
	}
	return subs
}
