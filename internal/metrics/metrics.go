// Package metrics exposes pool and server activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utkarsh5026/poolserve/pool"
)

const namespace = "poolserve"

// StatsSource is anything that can report pool statistics.
type StatsSource interface {
	Stats() pool.Stats
}

// Collector holds the poolserve metrics registered on one registry.
type Collector struct {
	reg prometheus.Registerer

	// JobsStarted counts jobs a worker has begun running.
	JobsStarted prometheus.Counter

	// JobsFinished counts finished jobs by outcome (ok, panic).
	JobsFinished *prometheus.CounterVec

	// JobDuration measures how long jobs ran.
	JobDuration prometheus.Histogram

	// BusyWorkers is the number of workers currently running a job.
	BusyWorkers prometheus.Gauge

	// Responses counts server responses by status line.
	Responses *prometheus.CounterVec

	// AcceptErrors counts failed accepts on the server listener.
	AcceptErrors prometheus.Counter
}

// New registers the poolserve metrics on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		reg: reg,
		JobsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_started_total",
			Help:      "Total number of jobs a worker started running.",
		}),
		JobsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Total number of finished jobs by outcome.",
		}, []string{"outcome"}),
		JobDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of jobs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		BusyWorkers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers_busy",
			Help:      "Number of workers currently running a job.",
		}),
		Responses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Total number of responses written by status line.",
		}, []string{"status"}),
		AcceptErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accept_errors_total",
			Help:      "Total number of failed accepts.",
		}),
	}
}

// PoolOptions returns the hooks that feed the job metrics.
func (c *Collector) PoolOptions() []pool.Option {
	return []pool.Option{
		pool.WithOnJobStart(c.jobStarted),
		pool.WithOnJobEnd(c.jobEnded),
	}
}

func (c *Collector) jobStarted(int) {
	c.JobsStarted.Inc()
	c.BusyWorkers.Inc()
}

func (c *Collector) jobEnded(_ int, elapsed time.Duration, err error) {
	c.BusyWorkers.Dec()
	c.JobDuration.Observe(elapsed.Seconds())
	if err != nil {
		c.JobsFinished.WithLabelValues("panic").Inc()
		return
	}
	c.JobsFinished.WithLabelValues("ok").Inc()
}

// WatchPool registers gauges read from src on every scrape.
func (c *Collector) WatchPool(src StatsSource) {
	f := promauto.With(c.reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Number of jobs waiting for a worker.",
	}, func() float64 {
		return float64(src.Stats().Queued)
	})
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "workers",
		Help:      "Number of workers in the pool.",
	}, func() float64 {
		return float64(src.Stats().Size)
	})
}

// ObserveResponse counts one response with the given status line.
func (c *Collector) ObserveResponse(status string) {
	c.Responses.WithLabelValues(status).Inc()
}

// ObserveAcceptError counts one failed accept.
func (c *Collector) ObserveAcceptError() {
	c.AcceptErrors.Inc()
}
