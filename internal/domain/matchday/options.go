package matchday

import "time"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWorkerCount sets the number of concurrent team-scoring workers.
func WithWorkerCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workerCount = n
		}
	}
}

// WithMaxRetries bounds per-team version-conflict retries.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithRetryBackoff sets the pause between conflict retries.
func WithRetryBackoff(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.retryBackoff = d
		}
	}
}
