package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize matches any *PoolCreationError of kind InvalidSize.
	ErrInvalidSize = errors.New("Invalid pool size provided")

	// ErrPoolClosed is returned by Execute and Shutdown once teardown has begun.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrShutdownTimeout is returned by Shutdown when the workers did not
	// finish within the given timeout.
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	// ErrNilJob is returned by Execute for a nil job.
	ErrNilJob = errors.New("nil job")
)

// CreationErrorKind classifies why Build failed.
type CreationErrorKind int

const (
	// InvalidSize means the requested worker count was zero or negative.
	InvalidSize CreationErrorKind = iota
)

func (k CreationErrorKind) String() string {
	switch k {
	case InvalidSize:
		return "InvalidSize"
	default:
		return fmt.Sprintf("CreationErrorKind(%d)", int(k))
	}
}

// PoolCreationError is returned by Build.
type PoolCreationError struct {
	Kind CreationErrorKind
	Size int
}

func (e *PoolCreationError) Error() string {
	switch e.Kind {
	case InvalidSize:
		return ErrInvalidSize.Error()
	default:
		return "pool creation failed"
	}
}

// Is lets errors.Is(err, ErrInvalidSize) match.
func (e *PoolCreationError) Is(target error) bool {
	return e.Kind == InvalidSize && target == ErrInvalidSize
}

// PanicError is the error a worker builds from a recovered job panic.
type PanicError struct {
	WorkerID int
	Value    any
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker %d: job panic: %v", e.WorkerID, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
