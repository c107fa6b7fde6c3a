// Package roster validates and applies player acquisitions against
// budget and slot rules.
package roster

import "errors"

// Sentinel kinds for acquisition errors.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidSlot       = errors.New("invalid roster slot")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrMissingPlayer     = errors.New("player id is required")
)
