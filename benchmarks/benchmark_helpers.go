package benchmarks

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/utkarsh5026/poolserve/pool"
)

// poolConfig defines a benchmark configuration for one pool setup
type poolConfig struct {
	name string
	opts []pool.Option
}

// getPoolConfigs returns the pool setups compared by the feature benchmarks
func getPoolConfigs() []poolConfig {
	return []poolConfig{
		{name: "Baseline"},
		{
			name: "Hooks",
			opts: []pool.Option{
				pool.WithOnJobStart(func(int) {}),
				pool.WithOnJobEnd(func(int, time.Duration, error) {}),
			},
		},
		{
			name: "OSThreads",
			opts: []pool.Option{pool.WithOSThreads(false)},
		},
		{
			name: "RateLimitHigh",
			opts: []pool.Option{pool.WithRateLimit(1e9, 1_000_000)},
		},
	}
}

// runPoolBenchmark runs benchFunc once per configuration
func runPoolBenchmark(b *testing.B, configs []poolConfig, benchFunc func(b *testing.B, c poolConfig)) {
	for _, c := range configs {
		b.Run(c.name, func(b *testing.B) {
			benchFunc(b, c)
		})
	}
}

// runJobs builds a pool, submits jobCount copies of work and tears it down.
func runJobs(b *testing.B, workers, jobCount int, work func(), opts ...pool.Option) {
	b.Helper()

	p, err := pool.Build(workers, opts...)
	if err != nil {
		b.Fatal(err)
	}

	for range jobCount {
		if err := p.ExecuteFunc(work); err != nil {
			b.Fatal(err)
		}
	}

	if err := p.Close(); err != nil {
		b.Fatal(err)
	}
}

// reportThroughput reports jobs/sec and jobs/sec/worker for the elapsed run
func reportThroughput(b *testing.B, jobCount, workers int) {
	nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
	jobsPerSec := (float64(jobCount) / nsPerOp) * 1e9

	b.ReportMetric(jobsPerSec, "jobs/sec")
	b.ReportMetric(jobsPerSec/float64(workers), "jobs/sec/worker")
}

func cpuBoundWork(iterations int) func() {
	return func() {
		result := 0.0
		for i := range iterations {
			result += math.Sqrt(float64(i))
		}
		_ = result
	}
}

func ioBoundWork(delay time.Duration) func() {
	return func() {
		time.Sleep(delay)
	}
}

// percentile returns the nearest-rank percentile of latencies; p is in [0, 1].
func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	index := max(int(math.Round(p*float64(len(sorted)-1))), 0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
