package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fastbreaklabs/fastbreak/internal/adapters/repository"
	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/pkg/logger"
	"github.com/fastbreaklabs/fastbreak/pkg/metrics"
)

// Default acquisition configuration constants.
const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 25 * time.Millisecond
)

// Assembler applies single player acquisitions. Each acquisition is
// one compare-and-commit write: either the team snapshot with the new
// slot and reduced coins lands atomically, or nothing changes.
type Assembler struct {
	store             repository.Store
	maxRetries        int
	retryBackoff      time.Duration
	refundOnOverwrite bool
	logger            logger.Logger
}

// New creates an Assembler over store with configuration options.
func New(store repository.Store, opts ...Option) *Assembler {
	a := &Assembler{
		store:        store,
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
		logger:       logger.Named("roster"),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Acquire assigns playerID to slot on the team, charging price against
// the coin balance. Returns the committed team snapshot. On any error
// the stored team is untouched.
func (a *Assembler) Acquire(ctx context.Context, teamID string, slot model.Slot, playerID string, price float64) (model.Team, error) {
	if !model.ValidSlot(slot) {
		metrics.RecordAcquisition("invalid_slot")
		return model.Team{}, fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	if playerID == "" {
		metrics.RecordAcquisition("missing_player")
		return model.Team{}, ErrMissingPlayer
	}
	if price < 0 {
		metrics.RecordAcquisition("invalid_price")
		return model.Team{}, fmt.Errorf("%w: %.2f", ErrInvalidPrice, price)
	}

	var lastErr error
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordStoreRetry()
			select {
			case <-ctx.Done():
				return model.Team{}, fmt.Errorf("acquire cancelled: %w", ctx.Err())
			case <-time.After(a.retryBackoff):
			}
		}

		team, err := a.store.GetTeam(ctx, teamID)
		if err != nil {
			metrics.RecordAcquisition("team_not_found")
			return model.Team{}, err
		}

		remaining := team.Coins - price
		if a.refundOnOverwrite {
			if sunk, filled := team.SlotCosts[slot]; filled {
				remaining += sunk
			}
		}
		if remaining < 0 {
			metrics.RecordAcquisition("insufficient_funds")
			return model.Team{}, fmt.Errorf("%w: have %.2f, need %.2f", ErrInsufficientFunds, team.Coins, price)
		}

		team.Slots[slot] = playerID
		team.SlotCosts[slot] = price
		team.Coins = remaining

		err = a.store.PutTeam(ctx, team)
		if err == nil {
			metrics.RecordAcquisition("ok")
			a.logger.Debug(ctx, "player acquired",
				logger.String("team", teamID),
				logger.String("slot", string(slot)),
				logger.String("player", playerID),
				logger.Float64("price", price),
				logger.Float64("coins", team.Coins),
			)
			committed := team.Clone()
			committed.Version++
			return committed, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			metrics.RecordAcquisition("store_error")
			return model.Team{}, err
		}
		lastErr = err
	}

	metrics.RecordAcquisition("unavailable")
	return model.Team{}, fmt.Errorf("%w: acquire %s after %d attempts: %w",
		repository.ErrUnavailable, teamID, a.maxRetries, lastErr)
}
