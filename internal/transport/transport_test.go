package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingServer captures request arrival times and bodies for assertions.
type recordingServer struct {
	mu      sync.Mutex
	hits    []time.Time
	handler http.HandlerFunc
	srv     *httptest.Server
}

func newRecordingServer(t *testing.T, handler http.HandlerFunc) *recordingServer {
	t.Helper()
	rs := &recordingServer{handler: handler}
	rs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.hits = append(rs.hits, time.Now())
		rs.mu.Unlock()
		rs.handler(w, r)
	}))
	t.Cleanup(rs.srv.Close)
	return rs
}

func (rs *recordingServer) hitTimes() []time.Time {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]time.Time, len(rs.hits))
	copy(out, rs.hits)
	return out
}

func fastClient() *Client {
	c := New()
	c.BaseBackoff = 20 * time.Millisecond
	return c
}

func TestGet_Success(t *testing.T) {
	var gotQuery map[string][]string
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status":"success","items":[{"id":"a-1"}]}`))
	})

	env, err := fastClient().Get(context.Background(), rs.srv.URL, "getAssignments", nil)
	require.NoError(t, err)
	assert.True(t, env.OK())

	assert.Equal(t, []string{"getAssignments"}, gotQuery["action"])
	assert.NotEmpty(t, gotQuery["t"], "reads must carry a cache-busting timestamp")

	var out struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	require.NoError(t, env.Decode(&out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "a-1", out.Items[0].ID)
}

func TestPost_WireFormat(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"status":"success"}`))
	})

	env, err := fastClient().Post(context.Background(), rs.srv.URL, "updatePoints", map[string]any{"student": "ming", "delta": 5})
	require.NoError(t, err)
	assert.True(t, env.OK())

	// text/plain avoids the CORS preflight the original deployment can't answer
	assert.Equal(t, "text/plain;charset=utf-8", gotContentType)
	assert.Equal(t, "updatePoints", gotBody["action"])
	payload, ok := gotBody["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ming", payload["student"])
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	calls := 0
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status":"success"}`))
	})

	c := fastClient()
	env, err := c.Get(context.Background(), rs.srv.URL, "getHistory", nil)
	require.NoError(t, err)
	assert.True(t, env.OK())
	assert.Equal(t, 3, calls, "two failures then one success is exactly three attempts")

	// Delays between attempts must double: base, then 2*base.
	hits := rs.hitTimes()
	require.Len(t, hits, 3)
	first := hits[1].Sub(hits[0])
	second := hits[2].Sub(hits[1])
	assert.GreaterOrEqual(t, first, c.BaseBackoff)
	assert.GreaterOrEqual(t, second, 2*c.BaseBackoff)
	assert.Greater(t, second, first, "backoff must strictly increase")
}

func TestRetry_BudgetExhausted(t *testing.T) {
	calls := 0
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	_, err := fastClient().Get(context.Background(), rs.srv.URL, "getHistory", nil)
	require.Error(t, err)
	assert.Equal(t, KindTransient, KindOf(err))
	assert.Equal(t, DefaultMaxAttempts, calls)
}

func TestFatal_NoRetry(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   Kind
	}{
		{"403 permission", http.StatusForbidden, KindPermission},
		{"401 permission", http.StatusUnauthorized, KindPermission},
		{"404 not found", http.StatusNotFound, KindNotFound},
		{"418 unexpected", http.StatusTeapot, KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
			})

			_, err := fastClient().Get(context.Background(), rs.srv.URL, "getCalendar", nil)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, 1, calls, "fatal failures must not be retried")
		})
	}
}

func TestParse_HTMLBodyIsPermission(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<!DOCTYPE html><html><head><title>Sign in</title></head></html>"))
	})

	_, err := fastClient().Get(context.Background(), rs.srv.URL, "getDictionary", nil)
	require.Error(t, err)
	assert.Equal(t, KindPermission, KindOf(err))
	assert.Contains(t, err.Error(), "accessible by anyone")
}

func TestParse_GarbageBody(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	_, err := fastClient().Get(context.Background(), rs.srv.URL, "getDictionary", nil)
	require.Error(t, err)
	assert.Equal(t, KindParse, KindOf(err))
}

func TestErrorEnvelope_PassesThrough(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"student not found"}`))
	})

	env, err := fastClient().Get(context.Background(), rs.srv.URL, "getHistory", nil)
	require.NoError(t, err, "a well-formed error envelope is not a transport failure")
	assert.False(t, env.OK())
	assert.Equal(t, "student not found", env.Message)
}

func TestOffline_FastFail(t *testing.T) {
	calls := 0
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	c := fastClient()
	c.Online = func() bool { return false }

	start := time.Now()
	_, err := c.Get(context.Background(), rs.srv.URL, "getAssignments", nil)
	require.Error(t, err)
	assert.Equal(t, KindOffline, KindOf(err))
	assert.Equal(t, 0, calls, "offline must not issue requests")
	assert.Less(t, time.Since(start), c.BaseBackoff, "offline must not burn backoff time")
}

func TestTimeout_Fatal(t *testing.T) {
	calls := 0
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"status":"success"}`))
	})

	c := fastClient()
	c.Timeout = 50 * time.Millisecond

	_, err := c.Get(context.Background(), rs.srv.URL, "getHistory", nil)
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, 1, calls, "a timed-out call is not retried")
}

func TestContextCancellation(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	ctx, cancel := context.WithCancel(context.Background())
	c := New()
	c.BaseBackoff = time.Second // long enough that cancel lands mid-backoff

	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, rs.srv.URL, "getHistory", nil)
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("call did not return after cancellation")
	}
}

func TestConnectionRefused_IsTransient(t *testing.T) {
	// Grab a port, then close it so nothing is listening.
	rs := httptest.NewServer(http.NotFoundHandler())
	deadURL := rs.URL
	rs.Close()

	c := fastClient()
	c.MaxAttempts = 1

	_, err := c.Get(context.Background(), deadURL, "ping", nil)
	require.Error(t, err)
	assert.Equal(t, KindTransient, KindOf(err))
	assert.True(t, IsConnectivity(err))
}

func TestIsConnectivity(t *testing.T) {
	assert.True(t, IsConnectivity(newError(KindOffline, nil)))
	assert.True(t, IsConnectivity(newError(KindTimeout, nil)))
	assert.True(t, IsConnectivity(newError(KindTransient, nil)))
	assert.False(t, IsConnectivity(newError(KindPermission, nil)))
	assert.False(t, IsConnectivity(newError(KindNotFound, nil)))
	assert.False(t, IsConnectivity(context.Canceled))
}
