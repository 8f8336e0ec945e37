// Package session wires the data-access stack together: persistent state,
// endpoint resolution, cache, offline queue, transport, and the two
// portal.Source implementations. It owns the side effects that cut across
// those pieces, like clearing the cache when the backend URL changes.
package session

import (
	"context"
	"log"

	"github.com/hanzihome/portal/internal/cache"
	"github.com/hanzihome/portal/internal/config"
	"github.com/hanzihome/portal/internal/endpoint"
	"github.com/hanzihome/portal/internal/portal"
	"github.com/hanzihome/portal/internal/portal/fixture"
	"github.com/hanzihome/portal/internal/portal/remote"
	"github.com/hanzihome/portal/internal/queue"
	"github.com/hanzihome/portal/internal/storage"
	"github.com/hanzihome/portal/internal/transport"
)

// Session is the top-level handle a UI holds for the lifetime of the
// process.
type Session struct {
	store    storage.Store
	resolver *endpoint.Resolver
	cache    *cache.Cache
	queue    *queue.Queue
	remote   *remote.Source

	// demo source is built lazily; most sessions never enter demo mode.
	fixture *fixture.Source
}

// New assembles a session from configuration and a state store.
func New(cfg *config.Config, store storage.Store, logger *log.Logger) (*Session, error) {
	q, err := queue.Open(store)
	if err != nil {
		return nil, err
	}

	tc := transport.New()
	tc.Timeout = cfg.TimeoutDuration()
	tc.MaxAttempts = cfg.MaxAttempts

	resolver := endpoint.New(store, cfg.BackendURL)
	c := cache.New()

	return &Session{
		store:    store,
		resolver: resolver,
		cache:    c,
		queue:    q,
		remote:   remote.New(resolver, tc, c, q, logger),
	}, nil
}

// Source returns the active data source: the fixture source in demo mode,
// the remote source otherwise.
func (s *Session) Source() portal.Source {
	if s.DemoMode() {
		if s.fixture == nil {
			s.fixture = fixture.New()
		}
		return s.fixture
	}
	return s.remote
}

// DemoMode reports whether demo mode is persisted as active.
func (s *Session) DemoMode() bool {
	return s.store.Get(storage.KeyDemoMode) == "true"
}

// SetDemoMode toggles demo mode. Enabling it clears the read cache so
// leaving demo mode later starts from fresh backend data, and drops the
// lazily built fixture state so each demo starts clean.
func (s *Session) SetDemoMode(on bool) error {
	if !on {
		s.fixture = nil
		return s.store.Delete(storage.KeyDemoMode)
	}
	s.cache.Clear()
	return s.store.Set(storage.KeyDemoMode, "true")
}

// BackendURL returns the active backend URL, "" when not configured.
func (s *Session) BackendURL() string {
	return s.resolver.URL()
}

// SetBackendURL normalizes and persists a new backend URL. Switching
// backends invalidates everything cached and leaves demo mode, since the
// user clearly wants live data.
func (s *Session) SetBackendURL(raw string) (string, error) {
	normalized, err := s.resolver.Save(raw)
	if err != nil {
		return "", err
	}
	s.cache.Clear()
	if err := s.SetDemoMode(false); err != nil {
		return "", err
	}
	return normalized, nil
}

// CheckConnection pings the backend; a successful ping replays any queued
// offline writes.
func (s *Session) CheckConnection(ctx context.Context) error {
	return s.remote.Ping(ctx)
}

// Pending reports how many offline writes await replay.
func (s *Session) Pending() int {
	return s.queue.Len()
}

// Drain replays queued offline writes immediately and reports how many
// were delivered.
func (s *Session) Drain(ctx context.Context) int {
	return s.remote.DrainQueue(ctx)
}

// Reset wipes all client-side state: backend URL, demo mode, cache, and
// the offline queue. Pending writes are dropped, so callers should surface
// the pending count before invoking this.
func (s *Session) Reset() error {
	if err := s.resolver.Clear(); err != nil {
		return err
	}
	if err := s.SetDemoMode(false); err != nil {
		return err
	}
	if err := s.queue.Clear(); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}
