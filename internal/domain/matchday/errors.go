// Package matchday owns the matchday counter and the advance/reset
// state machine that turns player performances into ledger entries.
package matchday

import "errors"

// Sentinel kinds for matchday errors.
var (
	// ErrAlreadyProcessing is returned when an advance or reset is
	// requested while another advance or reset is still in flight.
	ErrAlreadyProcessing = errors.New("matchday already processing")

	// ErrPartialFailure marks an advance that committed some teams
	// but not all; the matchday counter stays put and the advance is
	// safe to retry.
	ErrPartialFailure = errors.New("matchday partially failed")
)
