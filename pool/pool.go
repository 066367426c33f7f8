package pool

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/poolserve/internal/cpu"
	"github.com/utkarsh5026/poolserve/internal/queue"
)

// ThreadPool is a fixed-size set of workers sharing one job queue.
// It is safe for concurrent use.
type ThreadPool struct {
	cfg     *poolConfig
	workers []*worker

	tx *queue.Sender[Job]
	rx *queue.Receiver[Job] // kept for queue depth; closed once every worker has exited

	closed atomic.Bool
	joined chan struct{}

	submitted atomic.Uint64
	completed atomic.Uint64
	panicked  atomic.Uint64
}

// Build creates a pool of size workers, each of which starts receiving
// jobs immediately. A size of zero or less returns a *PoolCreationError
// of kind InvalidSize.
func Build(size int, opts ...Option) (*ThreadPool, error) {
	if size <= 0 {
		return nil, &PoolCreationError{Kind: InvalidSize, Size: size}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.osThreads && cfg.pinCPU && !cpu.PinSupported() {
		cfg.logger.Warn().Msg("cpu pinning is not supported on this platform; workers only lock their threads")
	}

	tx, rx := queue.New[Job]()
	p := &ThreadPool{
		cfg:     cfg,
		workers: make([]*worker, size),
		tx:      tx,
		rx:      rx,
		joined:  make(chan struct{}),
	}

	for id := range size {
		p.workers[id] = newWorker(id, rx.Clone())
	}
	for _, w := range p.workers {
		go w.loop(p)
	}

	cfg.logger.Debug().Int("size", size).Msg("thread pool started")
	return p, nil
}

// Execute queues job for the next free worker and returns immediately.
// It fails with ErrPoolClosed once Shutdown has been called.
func (p *ThreadPool) Execute(job Job) error {
	if job == nil {
		return ErrNilJob
	}
	if p.closed.Load() {
		return ErrPoolClosed
	}

	if err := p.tx.Send(job); err != nil {
		if errors.Is(err, queue.ErrChannelClosed) {
			return ErrPoolClosed
		}
		return err
	}

	p.submitted.Add(1)
	return nil
}

// ExecuteFunc is Execute for a plain function.
func (p *ThreadPool) ExecuteFunc(fn func()) error {
	if fn == nil {
		return ErrNilJob
	}
	return p.Execute(JobFunc(fn))
}

// Size returns the number of workers. It never changes.
func (p *ThreadPool) Size() int {
	return len(p.workers)
}

// Shutdown closes the job queue and then joins every worker in id order.
// Jobs queued before the call still run. With a positive timeout it gives
// up waiting after that long and returns ErrShutdownTimeout; the workers
// keep draining in the background. Calling Shutdown again returns
// ErrPoolClosed.
func (p *ThreadPool) Shutdown(timeout time.Duration) error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrPoolClosed
	}

	p.cfg.logger.Debug().Msg("shutting down all workers")
	p.tx.Close()

	go p.join()

	return waitUntil(p.joined, timeout)
}

// Close is Shutdown without a timeout.
func (p *ThreadPool) Close() error {
	return p.Shutdown(0)
}

// Done is closed once every worker has exited after Shutdown.
func (p *ThreadPool) Done() <-chan struct{} {
	return p.joined
}

func (p *ThreadPool) join() {
	defer close(p.joined)
	for _, w := range p.workers {
		<-w.done
		p.cfg.logger.Debug().Int("worker_id", w.id).Msg("shutting down worker")
	}
	p.rx.Close()
	p.cfg.logger.Debug().Msg("all workers stopped")
}
