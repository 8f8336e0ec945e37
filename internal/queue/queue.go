// Package queue provides the durable offline mutation queue.
// Writes that fail for connectivity reasons are appended here and replayed
// in order once the backend is reachable again. The queue is persisted on
// every mutation so pending writes survive a restart.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hanzihome/portal/internal/storage"
)

// Entry is one pending mutation, replayed with its original payload
// unchanged. Entries are never reordered, merged, or deduplicated: two
// queued point adjustments both replay even when logically mergeable.
type Entry struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"` // epoch milliseconds
}

// SendFunc replays a single entry against the backend.
type SendFunc func(ctx context.Context, e Entry) error

// ErrDrainInProgress is returned when Drain is called while another drain
// is already running.
var ErrDrainInProgress = errors.New("queue drain already in progress")

// Queue is a persisted FIFO of pending mutations.
type Queue struct {
	store storage.Store

	mu       sync.Mutex
	entries  []Entry
	draining bool
}

// Open loads the queue persisted in store (empty if none).
func Open(store storage.Store) (*Queue, error) {
	q := &Queue{store: store}

	raw := store.Get(storage.KeyPendingOps)
	if raw == "" {
		return q, nil
	}
	if err := json.Unmarshal([]byte(raw), &q.entries); err != nil {
		return nil, fmt.Errorf("corrupt pending queue: %w", err)
	}
	return q, nil
}

// Enqueue appends a mutation and persists immediately.
func (q *Queue) Enqueue(action string, payload any) (Entry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal payload: %w", err)
	}

	e := Entry{
		ID:        uuid.NewString(),
		Action:    action,
		Payload:   raw,
		Timestamp: time.Now().UnixMilli(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, e)
	return e, q.persist()
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Entries returns a copy of the pending entries in replay order.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Clear drops every pending entry (logout/reconfiguration).
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
	return q.persist()
}

// Drain replays entries strictly FIFO. An entry is removed (and the queue
// persisted) only after its own send succeeds; the first failure stops the
// drain so order is preserved and a down backend isn't hammered. Only one
// drain runs at a time.
//
// Returns the number of entries replayed. The error is nil when the drain
// stopped on a connectivity failure - leaving work queued is the expected
// outcome, not a failure of the drain itself.
func (q *Queue) Drain(ctx context.Context, send SendFunc) (int, error) {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return 0, ErrDrainInProgress
	}
	q.draining = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
	}()

	replayed := 0
	for {
		if err := ctx.Err(); err != nil {
			return replayed, err
		}

		q.mu.Lock()
		if len(q.entries) == 0 {
			q.mu.Unlock()
			return replayed, nil
		}
		head := q.entries[0]
		q.mu.Unlock()

		if err := send(ctx, head); err != nil {
			return replayed, nil
		}

		q.mu.Lock()
		// Guard against a concurrent Clear between send and removal.
		if len(q.entries) > 0 && q.entries[0].ID == head.ID {
			q.entries = q.entries[1:]
			if err := q.persist(); err != nil {
				q.mu.Unlock()
				return replayed, err
			}
		}
		q.mu.Unlock()
		replayed++
	}
}

// persist writes the queue to storage. Caller must hold q.mu.
func (q *Queue) persist() error {
	entries := q.entries
	if entries == nil {
		entries = []Entry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}
	return q.store.Set(storage.KeyPendingOps, string(raw))
}
