// Package pool provides a fixed-size worker pool that runs submitted jobs
// concurrently.
//
// A ThreadPool owns a fixed set of workers and the sending side of one
// unbounded job queue. Every worker holds a receiving endpoint of that
// queue and loops "receive a job, run it, repeat" until the queue is closed
// and drained. The pool is never resized.
//
// # Basic Usage
//
//	p, err := pool.Build(4)
//	if err != nil {
//	    log.Fatal(err) // Invalid pool size provided
//	}
//	defer p.Close()
//
//	for i := range 10 {
//	    _ = p.ExecuteFunc(func() { fmt.Println("job", i) })
//	}
//
// Execute never blocks. Jobs have no inputs and no results; they report
// through their own side effects.
//
// # Teardown
//
// Shutdown closes the job queue first, so no new job can be submitted,
// then joins each worker in id order. Jobs already queued still run before
// their worker exits:
//
//	if err := p.Shutdown(5 * time.Second); errors.Is(err, pool.ErrShutdownTimeout) {
//	    // workers keep draining in the background
//	}
//
// # Panics
//
// A panicking job is recovered by its worker and converted to a
// *PanicError. The worker goes back to receiving jobs, so the pool never
// shrinks. Use WithOnJobEnd to observe the error.
//
// # Configuration Options
//
//   - WithLogger(l): zerolog logger for worker diagnostics (default: disabled)
//   - WithOSThreads(pin): lock each worker to its own OS thread, optionally pinned to a CPU
//   - WithRateLimit(perSec, burst): cap how fast workers start jobs
//   - WithOnJobStart(fn): called on the worker before each job
//   - WithOnJobEnd(fn): called on the worker after each job with its duration and panic error
package pool
