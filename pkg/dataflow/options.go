package dataflow

import "time"

// Option tunes a Map or ForEach stage.
type Option func(*stage)

type stage struct {
	workers int
	buffer  int
	retries int
	backoff func(attempt int) time.Duration
	// onError reports whether a failed item may be skipped.
	onError func(error) bool
}

func newConfig(opts []Option) *stage {
	s := &stage{workers: 1}
	for _, o := range opts {
		o(s)
	}
	return s
}

// WithWorkers runs the stage on n goroutines. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(s *stage) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithBufferSize buffers a Map stage's output channel.
func WithBufferSize(n int) Option {
	return func(s *stage) {
		s.buffer = max(0, n)
	}
}

// WithRetry re-runs a failed item up to retries more times, waiting
// backoff(attempt) before each one.
func WithRetry(retries int, backoff func(attempt int) time.Duration) Option {
	return func(s *stage) {
		s.retries = retries
		s.backoff = backoff
	}
}

// WithErrorHandler sees every item that still fails after retries. Returning
// true skips the item; false fails a ForEach stage.
func WithErrorHandler(h func(error) bool) Option {
	return func(s *stage) {
		s.onError = h
	}
}

// ConstantBackoff waits d before every retry.
func ConstantBackoff(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}
