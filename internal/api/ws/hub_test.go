package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, sub *Subscriber) map[string]any {
	t.Helper()

	select {
	case payload := <-sub.Events():
		var m map[string]any
		require.NoError(t, json.Unmarshal(payload, &m))
		return m
	default:
		t.Fatal("expected a queued event")
		return nil
	}
}

func TestBroadcastEmptyRoom(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	assert.NoError(t, h.Broadcast(context.Background(), 1, NewTaskDeleted(9)))
}

func TestBroadcastFanOut(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	a := NewSubscriber(4, noopCloseSlow)
	b := NewSubscriber(4, noopCloseSlow)
	other := NewSubscriber(4, noopCloseSlow)
	h.registry.Join(1, a)
	h.registry.Join(1, b)
	h.registry.Join(2, other)

	require.NoError(t, h.Broadcast(context.Background(), 1, NewTaskDeleted(42)))

	for _, sub := range []*Subscriber{a, b} {
		got := receiveEvent(t, sub)
		assert.Equal(t, "task_deleted", got["type"])
	}

	// The other project's room receives nothing.
	assert.Empty(t, other.Events())
}

func TestBroadcastPrunesFailedSubscriber(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)

	var closed bool
	// Zero buffer with no reader: every delivery fails.
	failing := NewSubscriber(0, func() { closed = true })
	healthy := NewSubscriber(4, noopCloseSlow)
	h.registry.Join(1, failing)
	h.registry.Join(1, healthy)

	require.NoError(t, h.Broadcast(context.Background(), 1, NewTaskDeleted(7)))

	// The healthy subscriber still got the event.
	got := receiveEvent(t, healthy)
	assert.Equal(t, "task_deleted", got["type"])

	// The failed one was closed and removed from the room.
	assert.True(t, closed, "closeSlow must run on delivery failure")
	subs := h.registry.Connections(1)
	require.Len(t, subs, 1)
	assert.Same(t, healthy, subs[0])
}

func TestBroadcastPreservesOrder(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	sub := NewSubscriber(8, noopCloseSlow)
	h.registry.Join(1, sub)

	for _, id := range []int64{10, 11, 12} {
		require.NoError(t, h.Broadcast(context.Background(), 1, NewTaskDeleted(id)))
	}

	for _, want := range []float64{10, 11, 12} {
		got := receiveEvent(t, sub)
		task, ok := got["task"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, want, task["id"])
	}
}

func TestBroadcastFailureDoesNotResurrect(t *testing.T) {
	t.Parallel()

	h := NewHub(nil)
	failing := NewSubscriber(0, noopCloseSlow)
	h.registry.Join(1, failing)

	require.NoError(t, h.Broadcast(context.Background(), 1, NewTaskDeleted(1)))
	assert.Empty(t, h.registry.Connections(1))

	// Later broadcasts must not see the pruned subscriber again.
	require.NoError(t, h.Broadcast(context.Background(), 1, NewTaskDeleted(2)))
	assert.Empty(t, h.registry.Connections(1))
}

func noopCloseSlow() {}
