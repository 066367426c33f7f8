package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/poolserve/pool"
)

func TestCollector_PoolHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	p, err := pool.Build(2, c.PoolOptions()...)
	require.NoError(t, err)
	c.WatchPool(p)

	for range 5 {
		require.NoError(t, p.ExecuteFunc(func() {}))
	}
	require.NoError(t, p.ExecuteFunc(func() { panic("metrics") }))
	require.NoError(t, p.Close())

	assert.Equal(t, 6.0, testutil.ToFloat64(c.JobsStarted))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.JobsFinished.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.JobsFinished.WithLabelValues("panic")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.BusyWorkers))
	assert.Equal(t, 1, testutil.CollectAndCount(c.JobDuration))

	expected := `
# HELP poolserve_queue_depth Number of jobs waiting for a worker.
# TYPE poolserve_queue_depth gauge
poolserve_queue_depth 0
# HELP poolserve_workers Number of workers in the pool.
# TYPE poolserve_workers gauge
poolserve_workers 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"poolserve_queue_depth", "poolserve_workers"))
}

func TestCollector_Responses(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveResponse("HTTP/1.1 200 OK")
	c.ObserveResponse("HTTP/1.1 200 OK")
	c.ObserveResponse("HTTP/1.1 404 NOT FOUND")
	c.ObserveAcceptError()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Responses.WithLabelValues("HTTP/1.1 200 OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Responses.WithLabelValues("HTTP/1.1 404 NOT FOUND")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.AcceptErrors))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
