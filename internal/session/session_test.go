package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzihome/portal/internal/config"
	"github.com/hanzihome/portal/internal/portal"
	"github.com/hanzihome/portal/internal/storage"
)

func newSession(t *testing.T, store storage.Store) *Session {
	t.Helper()
	s, err := New(config.New(), store, nil)
	require.NoError(t, err)
	return s
}

func TestSource_RemoteByDefault(t *testing.T) {
	s := newSession(t, storage.NewMem())
	assert.Equal(t, portal.ModeRemote, s.Source().Mode())
}

func TestDemoMode_TogglePersists(t *testing.T) {
	store := storage.NewMem()
	s := newSession(t, store)

	require.NoError(t, s.SetDemoMode(true))
	assert.Equal(t, portal.ModeFixture, s.Source().Mode())

	// A fresh session over the same store sees the flag.
	s2 := newSession(t, store)
	assert.True(t, s2.DemoMode())
	assert.Equal(t, portal.ModeFixture, s2.Source().Mode())

	require.NoError(t, s.SetDemoMode(false))
	assert.Equal(t, portal.ModeRemote, s.Source().Mode())
}

func TestDemoMode_FixtureStateResetsOnReenable(t *testing.T) {
	s := newSession(t, storage.NewMem())
	require.NoError(t, s.SetDemoMode(true))

	src := s.Source()
	res := src.CreateAssignment(t.Context(), portal.Assignment{Title: "extra"})
	require.True(t, res.Success)
	withExtra := len(src.Assignments(t.Context(), "x", false))

	require.NoError(t, s.SetDemoMode(false))
	require.NoError(t, s.SetDemoMode(true))
	fresh := len(s.Source().Assignments(t.Context(), "x", false))
	assert.Equal(t, withExtra-1, fresh)
}

func TestSetBackendURL_NormalizesAndLeavesDemoMode(t *testing.T) {
	s := newSession(t, storage.NewMem())
	require.NoError(t, s.SetDemoMode(true))

	got, err := s.SetBackendURL("https://host/macros/s/abc/edit?usp=sharing")
	require.NoError(t, err)
	assert.Equal(t, "https://host/macros/s/abc/exec", got)
	assert.Equal(t, got, s.BackendURL())
	assert.False(t, s.DemoMode())
	assert.Equal(t, portal.ModeRemote, s.Source().Mode())
}

func TestReset_WipesEverything(t *testing.T) {
	store := storage.NewMem()
	require.NoError(t, store.Set(storage.KeyPendingOps, `[{"id":"x","action":"login","payload":{},"timestamp":1}]`))
	s := newSession(t, store)
	require.Equal(t, 1, s.Pending())

	_, err := s.SetBackendURL("https://host/deploy/exec")
	require.NoError(t, err)
	require.NoError(t, s.SetDemoMode(true))

	require.NoError(t, s.Reset())
	assert.Empty(t, s.BackendURL())
	assert.False(t, s.DemoMode())
	assert.Equal(t, 0, s.Pending())
}
