package queue

const defaultRingCapacity = 64

// ring is a growable FIFO ring buffer. It is not safe for concurrent use;
// the queue guards it with its mutex.
type ring[T any] struct {
	buf  []T
	mask int
	head int // next slot to pop
	size int
}

func newRing[T any](capacity int) *ring[T] {
	capacity = nextPowerOfTwo(max(capacity, defaultRingCapacity))
	return &ring[T]{
		buf:  make([]T, capacity),
		mask: capacity - 1,
	}
}

// push appends v, doubling the buffer when it is full. It never fails.
func (r *ring[T]) push(v T) {
	if r.size == len(r.buf) {
		r.grow()
	}
	r.buf[(r.head+r.size)&r.mask] = v
	r.size++
}

// pop removes the oldest value. The vacated slot is zeroed so the buffer
// does not keep a finished job reachable.
func (r *ring[T]) pop() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) & r.mask
	r.size--
	return v, true
}

func (r *ring[T]) len() int {
	return r.size
}

// grow doubles the capacity, copying live values so the oldest lands at 0.
func (r *ring[T]) grow() {
	newCap := len(r.buf) << 1
	next := make([]T, newCap)
	for i := range r.size {
		next[i] = r.buf[(r.head+i)&r.mask]
	}
	r.buf = next
	r.mask = newCap - 1
	r.head = 0
}

// nextPowerOfTwo returns the next power of 2 >= n
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	if n&(n-1) == 0 {
		return n
	}

	power := 1
	for power < n {
		power *= 2
	}
	return power
}
