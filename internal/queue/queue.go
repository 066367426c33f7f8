package queue

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrChannelClosed is returned by Send when the sending endpoint has been
// closed or when no receiving endpoint is left to take the value.
var ErrChannelClosed = errors.New("queue: channel closed")

// core is the buffer shared by every endpoint of one queue.
type core[T any] struct {
	mu        sync.Mutex
	ready     *sync.Cond // signalled on push and when the last sender leaves
	buf       *ring[T]
	senders   int
	receivers int
}

// Sender is a sending endpoint. Any number of Senders may share a queue;
// the queue counts as closed once every Sender has been closed.
type Sender[T any] struct {
	c      *core[T]
	closed atomic.Bool
}

// Receiver is a receiving endpoint. Receivers compete for values: each
// value is handed to exactly one Recv call.
type Receiver[T any] struct {
	c      *core[T]
	closed atomic.Bool
}

// New creates an unbounded queue and returns its first sending and
// receiving endpoints.
func New[T any]() (*Sender[T], *Receiver[T]) {
	c := &core[T]{
		buf:       newRing[T](defaultRingCapacity),
		senders:   1,
		receivers: 1,
	}
	c.ready = sync.NewCond(&c.mu)
	return &Sender[T]{c: c}, &Receiver[T]{c: c}
}

// Send enqueues v. It never blocks on capacity.
func (s *Sender[T]) Send(v T) error {
	if s.closed.Load() {
		return ErrChannelClosed
	}

	c := s.c
	c.mu.Lock()
	// Close marks the endpoint before taking the lock, so a push that gets
	// here first is always drained by the receivers.
	if s.closed.Load() || c.receivers == 0 {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	c.buf.push(v)
	c.mu.Unlock()

	c.ready.Signal()
	return nil
}

// clone returns a new sending endpoint for the same queue.
// Cloning a closed endpoint returns nil.
func (s *Sender[T]) clone() *Sender[T] {
	if s.closed.Load() {
		return nil
	}
	s.c.mu.Lock()
	s.c.senders++
	s.c.mu.Unlock()
	return &Sender[T]{c: s.c}
}

// Close releases this sending endpoint. Buffered values stay in the queue.
// When the last sender closes, blocked receivers are woken so they can
// drain the buffer and then observe closure. Calling Close twice is a no-op.
func (s *Sender[T]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	c := s.c
	c.mu.Lock()
	c.senders--
	last := c.senders == 0
	c.mu.Unlock()

	if last {
		c.ready.Broadcast()
	}
}

// Recv blocks until a value is available or the queue is closed and empty.
// The boolean is false only in the latter case, which is terminal.
func (r *Receiver[T]) Recv() (T, bool) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.buf.len() == 0 && c.senders > 0 {
		c.ready.Wait()
	}
	return c.buf.pop()
}

// tryRecv takes a value if one is buffered, without blocking.
func (r *Receiver[T]) tryRecv() (T, bool) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.pop()
}

// Clone returns a new receiving endpoint for the same queue.
// Cloning a closed endpoint returns nil.
func (r *Receiver[T]) Clone() *Receiver[T] {
	if r.closed.Load() {
		return nil
	}
	r.c.mu.Lock()
	r.c.receivers++
	r.c.mu.Unlock()
	return &Receiver[T]{c: r.c}
}

// Close releases this receiving endpoint. Once every receiver is closed,
// Send fails with ErrChannelClosed. Calling Close twice is a no-op.
func (r *Receiver[T]) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.c.mu.Lock()
	r.c.receivers--
	r.c.mu.Unlock()
}

// Len returns the number of buffered values.
func (r *Receiver[T]) Len() int {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	return r.c.buf.len()
}

// sendersGone reports whether every sending endpoint has been closed.
func (r *Receiver[T]) sendersGone() bool {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	return r.c.senders == 0
}
