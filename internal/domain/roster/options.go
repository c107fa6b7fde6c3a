package roster

import "time"

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithMaxRetries bounds how many times a version conflict is retried
// before the acquisition is escalated as unavailable.
func WithMaxRetries(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.maxRetries = n
		}
	}
}

// WithRetryBackoff sets the pause between conflict retries.
func WithRetryBackoff(d time.Duration) Option {
	return func(a *Assembler) {
		if d > 0 {
			a.retryBackoff = d
		}
	}
}

// WithRefundOnOverwrite controls what happens when an acquisition
// targets an already-filled slot. The original product charged full
// price and kept the displaced player's cost sunk; enabling the refund
// credits that cost back before charging the new price.
func WithRefundOnOverwrite(refund bool) Option {
	return func(a *Assembler) {
		a.refundOnOverwrite = refund
	}
}
