package admin

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/poolserve/internal/metrics"
	"github.com/utkarsh5026/poolserve/pool"
)

func newTestServer(t *testing.T) (*Server, *pool.ThreadPool) {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	p, err := pool.Build(2, m.PoolOptions()...)
	require.NoError(t, err)
	m.WatchPool(p)

	return NewServer(p, reg, zerolog.Nop()), p
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, p := newTestServer(t)

	rec := get(t, s.Router(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	require.NoError(t, p.Close())

	rec = get(t, s.Router(), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStats(t *testing.T) {
	s, p := newTestServer(t)

	for range 3 {
		require.NoError(t, p.ExecuteFunc(func() {}))
	}
	require.NoError(t, p.Close())

	rec := get(t, s.Router(), "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var stats struct {
		Size       int    `json:"size"`
		Submitted  uint64 `json:"submitted"`
		Completed  uint64 `json:"completed"`
		Terminated int    `json:"terminated"`
		Workers    []struct {
			ID    int    `json:"id"`
			State string `json:"state"`
		} `json:"workers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))

	assert.Equal(t, 2, stats.Size)
	assert.EqualValues(t, 3, stats.Submitted)
	assert.EqualValues(t, 3, stats.Completed)
	assert.Equal(t, 2, stats.Terminated)
	require.Len(t, stats.Workers, 2)
	assert.Equal(t, "terminated", stats.Workers[0].State)
}

func TestMetrics(t *testing.T) {
	s, p := newTestServer(t)
	require.NoError(t, p.ExecuteFunc(func() {}))
	require.NoError(t, p.Close())

	rec := get(t, s.Router(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "poolserve_jobs_started_total 1")
	assert.Contains(t, body, "poolserve_workers 2")
	assert.Contains(t, body, "poolserve_queue_depth 0")
}

func TestUnknownRoute(t *testing.T) {
	s, p := newTestServer(t)
	defer p.Close()

	assert.Equal(t, http.StatusNotFound, get(t, s.Router(), "/nope").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, func() int {
		req := httptest.NewRequest(http.MethodPost, "/stats", nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		return rec.Code
	}())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, p := newTestServer(t)
	defer p.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("admin server did not stop")
	}
}
