// Package algorithms holds the delay policies used when the server retries
// a failed accept.
package algorithms

import "time"

const (
	maxAttempts = 63 // Prevent overflow in backoff calculation

	// AcceptInitialDelay and AcceptMaxDelay bound the accept retry schedule.
	AcceptInitialDelay = 5 * time.Millisecond
	AcceptMaxDelay     = 1 * time.Second
)

// BackoffStrategy defines how retry delays are calculated.
type BackoffStrategy interface {
	// NextDelay calculates the delay before the next retry attempt.
	// attemptNumber is 0-indexed (0 = first retry after initial failure).
	NextDelay(attemptNumber int) time.Duration
}

// exponentialBackoff implements simple exponential backoff.
// Delay formula: initialDelay * 2^attemptNumber
//
// Attempt 0: 1x initialDelay
// Attempt 1: 2x initialDelay
// Attempt 2: 4x initialDelay
// ...until maxDelay is reached
type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewExponentialBackoff creates an exponential backoff strategy.
func NewExponentialBackoff(initialDelay, maxDelay time.Duration) BackoffStrategy {
	return &exponentialBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

// NextDelay calculates the exponential backoff delay for the given attempt number.
func (eb *exponentialBackoff) NextDelay(attemptNumber int) time.Duration {
	return calcExponentialDelay(attemptNumber, eb.initialDelay, eb.maxDelay)
}

func calcExponentialDelay(attemptNumber int, initialDelay, maxDelay time.Duration) time.Duration {
	if attemptNumber < 0 {
		return 0
	}

	if attemptNumber >= maxAttempts {
		return maxDelay
	}

	backoffFactor := int64(1) << uint(attemptNumber)
	delay := time.Duration(backoffFactor) * initialDelay

	if delay > maxDelay || delay < 0 || delay/time.Duration(backoffFactor) != initialDelay {
		return maxDelay
	}

	return delay
}

// Retrier tracks consecutive failures against a BackoffStrategy.
// It is not safe for concurrent use; each loop owns its own Retrier.
type Retrier struct {
	strategy BackoffStrategy
	attempt  int
}

// NewRetrier returns a Retrier starting at attempt 0.
func NewRetrier(strategy BackoffStrategy) *Retrier {
	return &Retrier{strategy: strategy}
}

// NewAcceptRetrier returns the retry schedule used by the accept loop:
// 5ms doubling up to 1s.
func NewAcceptRetrier() *Retrier {
	return NewRetrier(NewExponentialBackoff(AcceptInitialDelay, AcceptMaxDelay))
}

// Next returns the delay for the current failure and advances the attempt.
func (r *Retrier) Next() time.Duration {
	d := r.strategy.NextDelay(r.attempt)
	if r.attempt < maxAttempts {
		r.attempt++
	}
	return d
}

// Reset starts the schedule over after a success.
func (r *Retrier) Reset() {
	r.attempt = 0
}

// Attempt returns the number of consecutive failures seen since the last Reset.
func (r *Retrier) Attempt() int {
	return r.attempt
}
