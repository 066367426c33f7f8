package pool_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/utkarsh5026/poolserve/pool"
)

// TestHooksBasic checks that every job produces one start and one end event
// on the same worker.
func TestHooksBasic(t *testing.T) {
	var mu sync.Mutex
	events := []string{}
	inFlight := map[int]bool{}

	p, err := pool.Build(2,
		pool.WithOnJobStart(func(id int) {
			mu.Lock()
			defer mu.Unlock()
			if inFlight[id] {
				t.Errorf("worker %d started a job while running another", id)
			}
			inFlight[id] = true
			events = append(events, fmt.Sprintf("start:%d", id))
		}),
		pool.WithOnJobEnd(func(id int, elapsed time.Duration, err error) {
			mu.Lock()
			defer mu.Unlock()
			if !inFlight[id] {
				t.Errorf("worker %d ended a job it never started", id)
			}
			inFlight[id] = false
			if err != nil {
				events = append(events, fmt.Sprintf("end:%d:error", id))
			} else {
				events = append(events, fmt.Sprintf("end:%d", id))
			}
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for range 3 {
		if err := p.ExecuteFunc(func() { time.Sleep(10 * time.Millisecond) }); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(events) != 6 { // 3 starts + 3 ends
		t.Errorf("expected 6 events, got %d: %v", len(events), events)
	}
}

// TestHooksWithPanic checks that a panicking job reaches the end hook as a
// *pool.PanicError and the next job still runs on the same worker.
func TestHooksWithPanic(t *testing.T) {
	var mu sync.Mutex
	var endErrs []error

	p, err := pool.Build(1,
		pool.WithOnJobEnd(func(id int, elapsed time.Duration, err error) {
			mu.Lock()
			endErrs = append(endErrs, err)
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	sentinel := errors.New("job failed")
	_ = p.ExecuteFunc(func() { panic(sentinel) })
	_ = p.ExecuteFunc(func() {})
	_ = p.Close()

	if len(endErrs) != 2 {
		t.Fatalf("expected 2 end events, got %d", len(endErrs))
	}

	var perr *pool.PanicError
	if !errors.As(endErrs[0], &perr) {
		t.Fatalf("expected *pool.PanicError, got %v", endErrs[0])
	}
	if !errors.Is(endErrs[0], sentinel) {
		t.Error("expected the panic error to wrap the panic value")
	}
	if perr.WorkerID != 0 {
		t.Errorf("expected worker 0, got %d", perr.WorkerID)
	}
	if endErrs[1] != nil {
		t.Errorf("expected nil error for the second job, got %v", endErrs[1])
	}
}

// TestHooksElapsed checks that the end hook reports the job's run time.
func TestHooksElapsed(t *testing.T) {
	var elapsed time.Duration
	p, err := pool.Build(1,
		pool.WithOnJobEnd(func(id int, d time.Duration, err error) {
			elapsed = d
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	_ = p.ExecuteFunc(func() { time.Sleep(20 * time.Millisecond) })
	_ = p.Close()

	if elapsed < 20*time.Millisecond {
		t.Errorf("expected elapsed >= 20ms, got %v", elapsed)
	}
}

// TestJobInterface checks that custom Job implementations run like JobFunc.
func TestJobInterface(t *testing.T) {
	p, err := pool.Build(3)
	if err != nil {
		t.Fatal(err)
	}

	jobs := make([]*recordingJob, 10)
	for i := range jobs {
		jobs[i] = &recordingJob{}
		if err := p.Execute(jobs[i]); err != nil {
			t.Fatal(err)
		}
	}
	_ = p.Close()

	for i, j := range jobs {
		if j.runs != 1 {
			t.Errorf("job %d ran %d times", i, j.runs)
		}
	}
}

type recordingJob struct {
	runs int
}

func (j *recordingJob) Run() { j.runs++ }
