package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzihome/portal/internal/storage"
)

func TestQueue_EnqueuePersists(t *testing.T) {
	store := storage.NewMem()
	q, err := Open(store)
	require.NoError(t, err)

	_, err = q.Enqueue("updatePoints", map[string]any{"student": "ming", "delta": 5})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// A fresh Open over the same store sees the entry - queued writes
	// survive a restart.
	q2, err := Open(store)
	require.NoError(t, err)
	require.Equal(t, 1, q2.Len())

	e := q2.Entries()[0]
	assert.Equal(t, "updatePoints", e.Action)
	assert.NotEmpty(t, e.ID)
	assert.Positive(t, e.Timestamp)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(e.Payload, &payload))
	assert.Equal(t, "ming", payload["student"])
}

func TestQueue_DrainFIFO(t *testing.T) {
	store := storage.NewMem()
	q, err := Open(store)
	require.NoError(t, err)

	for _, action := range []string{"login", "savePracticeRecord", "updatePoints"} {
		_, err := q.Enqueue(action, map[string]string{"op": action})
		require.NoError(t, err)
	}

	var replayed []string
	n, err := q.Drain(context.Background(), func(_ context.Context, e Entry) error {
		replayed = append(replayed, e.Action)

		// Each entry must leave the persisted queue only after its own
		// success: the entry being sent is still the persisted head.
		fresh, openErr := Open(store)
		require.NoError(t, openErr)
		require.NotZero(t, fresh.Len())
		assert.Equal(t, e.ID, fresh.Entries()[0].ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"login", "savePracticeRecord", "updatePoints"}, replayed)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_DrainStopsOnFailure(t *testing.T) {
	store := storage.NewMem()
	q, err := Open(store)
	require.NoError(t, err)

	for _, action := range []string{"a", "b", "c"} {
		_, err := q.Enqueue(action, nil)
		require.NoError(t, err)
	}

	calls := 0
	n, err := q.Drain(context.Background(), func(_ context.Context, e Entry) error {
		calls++
		if e.Action == "b" {
			return errors.New("backend still down")
		}
		return nil
	})
	require.NoError(t, err, "stopping on a send failure is a normal drain outcome")
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, calls, "drain must stop at the first failure, not skip ahead")

	// a was replayed; b and c remain, in order
	remaining := q.Entries()
	require.Len(t, remaining, 2)
	assert.Equal(t, "b", remaining[0].Action)
	assert.Equal(t, "c", remaining[1].Action)
}

func TestQueue_DrainSerialized(t *testing.T) {
	store := storage.NewMem()
	q, err := Open(store)
	require.NoError(t, err)
	_, err = q.Enqueue("slow", nil)
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = q.Drain(context.Background(), func(context.Context, Entry) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	_, err = q.Drain(context.Background(), func(context.Context, Entry) error { return nil })
	assert.ErrorIs(t, err, ErrDrainInProgress)

	close(release)
	wg.Wait()
}

func TestQueue_Clear(t *testing.T) {
	store := storage.NewMem()
	q, err := Open(store)
	require.NoError(t, err)
	_, err = q.Enqueue("a", nil)
	require.NoError(t, err)

	require.NoError(t, q.Clear())
	assert.Equal(t, 0, q.Len())

	q2, err := Open(store)
	require.NoError(t, err)
	assert.Equal(t, 0, q2.Len(), "clear must persist")
}

func TestQueue_CorruptState(t *testing.T) {
	store := storage.NewMem()
	require.NoError(t, store.Set(storage.KeyPendingOps, "{nope"))

	_, err := Open(store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt pending queue")
}
