package bench

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/poolserve/pool"
)

func TestRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizes = []int{1, 4}
	cfg.Jobs = 40
	cfg.Submitters = 3
	cfg.SleepFor = 2 * time.Millisecond

	var seen []int
	results, err := Run(context.Background(), cfg, func(r Result) { seen = append(seen, r.Size) })
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []int{1, 4}, seen)

	for _, r := range results {
		assert.Equal(t, 40, r.Jobs)
		assert.Positive(t, r.Throughput)
		assert.GreaterOrEqual(t, r.P99, r.P50)
		assert.GreaterOrEqual(t, r.P50, 2*time.Millisecond)
		assert.Zero(t, r.Panicked)
	}

	// Four sleeping workers finish well ahead of one.
	assert.Equal(t, 1, results[1].Rank)
	assert.Equal(t, 2, results[0].Rank)
}

func TestRun_CPUWork(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizes = []int{2}
	cfg.Jobs = 10
	cfg.Work = WorkCPU
	cfg.CPUIterations = 1000

	results, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Rank)
}

func TestRun_Validation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizes = nil
	_, err := Run(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrNoSizes)

	cfg = DefaultConfig()
	cfg.Jobs = 0
	_, err = Run(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "job count")

	cfg = DefaultConfig()
	cfg.Work = "disk"
	_, err = Run(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown workload")
}

func TestRun_InvalidPoolSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizes = []int{0}
	cfg.Jobs = 1

	_, err := Run(context.Background(), cfg, nil)
	assert.True(t, errors.Is(err, pool.ErrInvalidSize))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, DefaultConfig(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPercentiles(t *testing.T) {
	lat := make([]time.Duration, 100)
	for i := range lat {
		lat[i] = time.Duration(i+1) * time.Millisecond
	}

	p50, p95, p99 := percentiles(lat)
	assert.Equal(t, 51*time.Millisecond, p50)
	assert.Equal(t, 96*time.Millisecond, p95)
	assert.Equal(t, 100*time.Millisecond, p99)

	p50, p95, p99 = percentiles(nil)
	assert.Zero(t, p50+p95+p99)
}

func TestRender(t *testing.T) {
	results := []Result{
		{Size: 1, Jobs: 1000, Rank: 2, TotalTime: 2 * time.Second, Throughput: 500, P50: time.Millisecond},
		{Size: 4, Jobs: 1000, Rank: 1, TotalTime: time.Second, Throughput: 1000, P50: 500 * time.Microsecond},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, DefaultConfig(), results))

	out := buf.String()
	assert.Contains(t, out, "THROUGHPUT")
	assert.Contains(t, out, "LATENCY")
	assert.Contains(t, out, "1,000")
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "2.00x slower")
	assert.Contains(t, out, "500.0µs")
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNumber(in))
	}
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "0", FormatLatency(0))
	assert.Equal(t, "500ns", FormatLatency(500))
	assert.Equal(t, "1.5µs", FormatLatency(1500))
	assert.Equal(t, "2.50ms", FormatLatency(2500*time.Microsecond))
	assert.Equal(t, "1.50s", FormatLatency(1500*time.Millisecond))
}
