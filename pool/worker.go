package pool

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/poolserve/internal/cpu"
	"github.com/utkarsh5026/poolserve/internal/queue"
)

// WorkerState is the position of a worker in its loop.
//
//	Idle -> Executing  a job was received
//	Executing -> Idle  the job returned or panicked
//	Idle -> Terminated the queue reported closure
//
// There is no Executing -> Terminated transition: a worker always finishes
// the job it holds.
type WorkerState int32

const (
	Idle WorkerState = iota
	Executing
	Terminated
)

func (s WorkerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Executing:
		return "executing"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON output.
func (s WorkerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const panicStackSize = 4096

// worker is one long-lived goroutine pulling jobs off the shared queue.
type worker struct {
	id      int
	rx      *queue.Receiver[Job]
	done    chan struct{}
	state   atomic.Int32
	jobsRun atomic.Uint64
}

func newWorker(id int, rx *queue.Receiver[Job]) *worker {
	return &worker{
		id:   id,
		rx:   rx,
		done: make(chan struct{}),
	}
}

func (w *worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

// loop receives and runs jobs until the queue is closed and drained.
// done is closed after the worker reaches Terminated.
func (w *worker) loop(p *ThreadPool) {
	defer close(w.done)
	defer w.rx.Close()

	log := p.cfg.logger.With().Int("worker_id", w.id).Logger()

	if p.cfg.osThreads {
		release, err := cpu.LockWorker(w.id, p.cfg.pinCPU)
		if err != nil {
			log.Warn().Err(err).Msg("cpu pinning failed; running on a locked thread")
		}
		defer release()
	}

	log.Debug().Msg("worker started")

	for {
		job, ok := w.rx.Recv()
		if !ok {
			w.state.Store(int32(Terminated))
			log.Debug().Uint64("jobs_run", w.jobsRun.Load()).Msg("worker disconnected; shutting down")
			return
		}

		w.state.Store(int32(Executing))
		log.Debug().Msg("worker got a job; executing")
		p.runJob(w, job)
		w.jobsRun.Add(1)
		w.state.Store(int32(Idle))
	}
}

// runJob runs one job with the rate limit, hooks and panic recovery applied.
func (p *ThreadPool) runJob(w *worker, job Job) {
	if p.cfg.rateLimiter != nil {
		// Wait only fails for a cancelled context or a zero burst; neither applies.
		_ = p.cfg.rateLimiter.Wait(context.Background())
	}

	if p.cfg.onJobStart != nil {
		p.cfg.onJobStart(w.id)
	}

	start := time.Now()
	perr := runWithRecovery(w.id, job)
	elapsed := time.Since(start)

	p.completed.Add(1)

	var jobErr error
	if perr != nil {
		jobErr = perr
		p.panicked.Add(1)
		p.cfg.logger.Error().
			Int("worker_id", w.id).
			Err(perr).
			Bytes("stack", perr.Stack).
			Msg("job panicked; worker recovered")
	}

	if p.cfg.onJobEnd != nil {
		p.cfg.onJobEnd(w.id, elapsed, jobErr)
	}
}

// runWithRecovery runs job and converts a panic into a *PanicError.
func runWithRecovery(workerID int, job Job) (perr *PanicError) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, panicStackSize)
			n := runtime.Stack(buf, false)
			perr = &PanicError{WorkerID: workerID, Value: r, Stack: buf[:n]}
		}
	}()

	job.Run()
	return nil
}
