// Package bench measures pool throughput and job latency across pool sizes.
package bench

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/poolserve/pool"
)

const (
	WorkSleep = "sleep"
	WorkCPU   = "cpu"
)

var ErrNoSizes = errors.New("bench: no pool sizes given")

// Config describes one benchmark run.
type Config struct {
	Sizes      []int
	Jobs       int
	Work       string
	Submitters int

	// SleepFor is how long each sleep job takes.
	SleepFor time.Duration

	// CPUIterations is the inner loop count of each cpu job.
	CPUIterations int

	// PoolOptions are passed to every pool the run builds.
	PoolOptions []pool.Option
}

// DefaultConfig is the run used by `poolserve bench` without flags.
func DefaultConfig() Config {
	return Config{
		Sizes:         []int{1, 2, 4, 8},
		Jobs:          1000,
		Work:          WorkSleep,
		Submitters:    1,
		SleepFor:      time.Millisecond,
		CPUIterations: 10_000,
	}
}

// Result holds the measurements for one pool size.
type Result struct {
	Size       int
	Jobs       int
	Rank       int
	TotalTime  time.Duration
	Throughput float64 // jobs per second
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
	Panicked   uint64
}

func (c Config) validate() error {
	if len(c.Sizes) == 0 {
		return ErrNoSizes
	}
	if c.Jobs <= 0 {
		return fmt.Errorf("bench: job count must be positive, got %d", c.Jobs)
	}
	switch c.Work {
	case WorkSleep, WorkCPU:
	default:
		return fmt.Errorf("bench: unknown workload %q", c.Work)
	}
	return nil
}

func (c Config) job() func() {
	switch c.Work {
	case WorkCPU:
		n := c.CPUIterations
		return func() { spin(n) }
	default:
		d := c.SleepFor
		return func() { time.Sleep(d) }
	}
}

// Run benchmarks each size in order. done, if set, is called after each size.
// Results are ranked by total time, fastest first.
func Run(ctx context.Context, cfg Config, done func(Result)) ([]Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(cfg.Sizes))
	for _, size := range cfg.Sizes {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		r, err := runSize(ctx, cfg, size)
		if err != nil {
			return results, fmt.Errorf("bench: pool size %d: %w", size, err)
		}
		results = append(results, r)
		if done != nil {
			done(r)
		}
	}

	rank(results)
	return results, nil
}

func runSize(ctx context.Context, cfg Config, size int) (Result, error) {
	p, err := pool.Build(size, cfg.PoolOptions...)
	if err != nil {
		return Result{}, err
	}

	work := cfg.job()
	latencies := make([]time.Duration, cfg.Jobs)
	submitters := max(cfg.Submitters, 1)
	perSubmitter := (cfg.Jobs + submitters - 1) / submitters

	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for s := range submitters {
		lo := s * perSubmitter
		hi := min(lo+perSubmitter, cfg.Jobs)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				submitted := time.Now()
				if err := p.ExecuteFunc(func() {
					work()
					latencies[i] = time.Since(submitted)
				}); err != nil {
					return err
				}
			}
			return nil
		})
	}

	submitErr := g.Wait()
	if err := p.Close(); err != nil {
		return Result{}, err
	}
	if submitErr != nil {
		return Result{}, submitErr
	}

	total := time.Since(start)
	slices.Sort(latencies)
	p50, p95, p99 := percentiles(latencies)

	return Result{
		Size:       size,
		Jobs:       cfg.Jobs,
		TotalTime:  total,
		Throughput: float64(cfg.Jobs) / total.Seconds(),
		P50:        p50,
		P95:        p95,
		P99:        p99,
		Panicked:   p.Stats().Panicked,
	}, nil
}

// rank assigns ranks by total time without reordering results.
func rank(results []Result) {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(results[a].TotalTime, results[b].TotalTime)
	})
	for r, i := range order {
		results[i].Rank = r + 1
	}
}

func percentiles(sorted []time.Duration) (p50, p95, p99 time.Duration) {
	if len(sorted) == 0 {
		return 0, 0, 0
	}

	at := func(pct int) time.Duration {
		idx := len(sorted) * pct / 100
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return sorted[idx]
	}
	return at(50), at(95), at(99)
}

var sink float64

func spin(n int) {
	result := 0.0
	for i := range n {
		result += math.Sin(float64(i)) * math.Cos(float64(i))
	}
	sink = result
}
