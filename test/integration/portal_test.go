//go:build integration

package integration

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzihome/portal/internal/config"
	"github.com/hanzihome/portal/internal/portal"
	"github.com/hanzihome/portal/internal/portal/fixture"
	"github.com/hanzihome/portal/internal/session"
	"github.com/hanzihome/portal/internal/storage"
	"github.com/hanzihome/portal/internal/stubserver"
)

func startBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(stubserver.New(fixture.New(), nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func newSession(t *testing.T, store storage.Store) *session.Session {
	t.Helper()
	cfg := config.New()
	cfg.MaxAttempts = 1
	cfg.Timeout = "5s"
	s, err := session.New(cfg, store, nil)
	require.NoError(t, err)
	return s
}

// TestFullFlow drives a complete student session against a live wire
// backend: configure, log in, read, write, read again.
func TestFullFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend := startBackend(t)
	sess := newSession(t, storage.NewMem())

	_, err := sess.SetBackendURL(backend.URL)
	require.NoError(t, err)
	require.NoError(t, sess.CheckConnection(ctx))

	src := sess.Source()
	require.Equal(t, portal.ModeRemote, src.Mode())

	student, res := src.Login(ctx, "Mei", "1234")
	require.True(t, res.Success, res.Message)
	require.NotEmpty(t, student.ID)
	assert.False(t, student.Offline)

	// Seeded data is readable.
	assert.NotEmpty(t, src.Dictionary(ctx, false))
	assert.NotEmpty(t, src.StoreItems(ctx, false))

	// Create an assignment, then see it in a fresh read.
	before := len(src.Assignments(ctx, student.Name, false))
	res = src.CreateAssignment(ctx, portal.Assignment{
		Title:      "Integration lesson",
		Characters: []string{"水", "火"},
		LessonDate: time.Now().Format("2006-01-02"),
	})
	require.True(t, res.Success, res.Message)

	after := src.Assignments(ctx, student.Name, false)
	assert.Len(t, after, before+1, "write must invalidate the cached list")

	// Earn points, spend them in the shop.
	res = src.GivePoints(ctx, student.Name, 100)
	require.True(t, res.Success, res.Message)

	items := src.StoreItems(ctx, false)
	require.NotEmpty(t, items)
	res = src.PurchaseSticker(ctx, student.Name, items[0].ID)
	assert.True(t, res.Success, res.Message)
}

// TestOfflineQueueReplay exercises the offline path end to end: writes
// made against an unreachable backend are queued, then replayed against a
// live one.
func TestOfflineQueueReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store := storage.NewMem()
	sess := newSession(t, store)

	// Nothing listens here; connection refused counts as connectivity.
	_, err := sess.SetBackendURL("http://127.0.0.1:1/exec")
	require.NoError(t, err)

	src := sess.Source()
	student, res := src.Login(ctx, "Mei", "1234")
	require.True(t, res.Success)
	assert.True(t, res.Offline)
	assert.True(t, student.Offline)

	res = src.SavePracticeRecord(ctx, portal.PracticeRecord{
		Student: "Mei", Characters: []string{"水"}, Score: 95,
	})
	require.True(t, res.Success)
	assert.True(t, res.Offline)

	res = src.SubmitFeedback(ctx, "Mei", "works offline!")
	require.True(t, res.Success)
	assert.True(t, res.Offline)

	assert.Equal(t, 3, sess.Pending())

	// Point at a live backend; queued writes survive the URL change and a
	// successful connectivity check replays them in order.
	backend := startBackend(t)
	_, err = sess.SetBackendURL(backend.URL)
	require.NoError(t, err)
	assert.Equal(t, 3, sess.Pending())

	require.NoError(t, sess.CheckConnection(ctx))
	assert.Equal(t, 0, sess.Pending())

	// The replayed practice session is visible on the backend.
	history := sess.Source().History(ctx, "Mei", true)
	found := false
	for _, h := range history {
		if h.Activity == "practice" && len(h.Characters) == 1 && h.Characters[0] == "水" {
			found = true
		}
	}
	assert.True(t, found, "replayed practice record missing from history: %+v", history)
}

// TestDemoModeIsolation verifies demo mode never touches the network.
func TestDemoModeIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	sess := newSession(t, storage.NewMem())
	require.NoError(t, sess.SetDemoMode(true))

	src := sess.Source()
	require.Equal(t, portal.ModeFixture, src.Mode())

	// No backend URL is configured; everything still works.
	student, res := src.Login(ctx, "Demo Kid", "0000")
	require.True(t, res.Success)
	assert.NotEmpty(t, student.ID)
	assert.NotEmpty(t, src.Assignments(ctx, student.Name, false))
	assert.Equal(t, 0, sess.Pending())
}
