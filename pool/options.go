package pool

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Option is a functional option for configuring the pool.
type Option func(*poolConfig)

type poolConfig struct {
	logger      zerolog.Logger
	osThreads   bool
	pinCPU      bool
	rateLimiter *rate.Limiter
	onJobStart  func(workerID int)
	onJobEnd    func(workerID int, elapsed time.Duration, err error)
}

func defaultConfig() *poolConfig {
	return &poolConfig{logger: zerolog.Nop()}
}

// WithLogger sets the logger used for worker diagnostics.
// Worker lifecycle and per-job messages are logged at debug level with a
// worker_id field; recovered panics at error level.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *poolConfig) {
		cfg.logger = l
	}
}

// WithOSThreads locks every worker goroutine to its own OS thread for the
// lifetime of the worker. With pin set, each thread is also bound to one
// CPU (worker id modulo the CPU count) where the platform supports it.
func WithOSThreads(pin bool) Option {
	return func(cfg *poolConfig) {
		cfg.osThreads = true
		cfg.pinCPU = pin
	}
}

// WithRateLimit caps how fast the pool starts jobs, across all workers.
// jobsPerSecond is the sustained rate, burst the number of jobs that may
// start back to back. Non-positive values disable the limit.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 jobs/sec with burst of 5
func WithRateLimit(jobsPerSecond float64, burst int) Option {
	return func(cfg *poolConfig) {
		if jobsPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(jobsPerSecond), burst)
		}
	}
}

// WithOnJobStart registers a hook that runs on the worker right before
// each job. It must be safe for concurrent use.
func WithOnJobStart(fn func(workerID int)) Option {
	return func(cfg *poolConfig) {
		cfg.onJobStart = fn
	}
}

// WithOnJobEnd registers a hook that runs on the worker after each job.
// err is a *PanicError when the job panicked, nil otherwise.
// It must be safe for concurrent use.
func WithOnJobEnd(fn func(workerID int, elapsed time.Duration, err error)) Option {
	return func(cfg *poolConfig) {
		cfg.onJobEnd = fn
	}
}
