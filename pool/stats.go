package pool

// WorkerStats is the snapshot of one worker.
type WorkerStats struct {
	ID      int         `json:"id"`
	State   WorkerState `json:"state"`
	JobsRun uint64      `json:"jobs_run"`
}

// Stats is a point-in-time view of the pool. Counters are read
// independently, so a snapshot taken under load may be slightly skewed.
type Stats struct {
	Size       int           `json:"size"`
	Submitted  uint64        `json:"submitted"`
	Completed  uint64        `json:"completed"`
	Panicked   uint64        `json:"panicked"`
	Queued     int           `json:"queued"`
	Idle       int           `json:"idle"`
	Busy       int           `json:"busy"`
	Terminated int           `json:"terminated"`
	Closed     bool          `json:"closed"`
	Workers    []WorkerStats `json:"workers"`
}

// Stats returns a snapshot of the pool counters and worker states.
func (p *ThreadPool) Stats() Stats {
	s := Stats{
		Size:      len(p.workers),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
		Queued:    p.rx.Len(),
		Closed:    p.closed.Load(),
		Workers:   make([]WorkerStats, 0, len(p.workers)),
	}

	for _, w := range p.workers {
		state := w.State()
		switch state {
		case Idle:
			s.Idle++
		case Executing:
			s.Busy++
		case Terminated:
			s.Terminated++
		}
		s.Workers = append(s.Workers, WorkerStats{
			ID:      w.id,
			State:   state,
			JobsRun: w.jobsRun.Load(),
		})
	}

	return s
}
