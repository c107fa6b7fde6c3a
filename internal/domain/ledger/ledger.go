// Package ledger provides points bookkeeping over the store. Totals
// are always derived from recorded entries so the cumulative and
// per-entry views cannot drift apart.
package ledger

import (
	"context"
	"fmt"

	"github.com/fastbreaklabs/fastbreak/internal/adapters/repository"
	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
)

// TeamPoints is a derived per-team view of the ledger.
type TeamPoints struct {
	TeamID         string
	TotalPoints    float64
	PointsMatchday float64
}

// Ledger records matchday awards and answers point queries. It is the
// single writer of ledger entries; nothing mutates totals directly.
type Ledger struct {
	store repository.Store
}

// New wraps store with ledger bookkeeping.
func New(store repository.Store) *Ledger {
	return &Ledger{store: store}
}

// RecordMatchday appends one award. A repeated (team, matchday) pair
// returns repository.ErrDuplicateMatchday and records nothing.
func (l *Ledger) RecordMatchday(ctx context.Context, teamID string, matchday int, points float64) error {
	if matchday < 1 {
		return fmt.Errorf("matchday %d out of range", matchday)
	}
	return l.store.AppendEntry(ctx, model.LedgerEntry{ //nolint:wrapcheck // sentinel must stay bare for errors.Is
		TeamID:   teamID,
		Matchday: matchday,
		Points:   points,
	})
}

// TotalPoints returns the sum of every entry recorded for the team.
func (l *Ledger) TotalPoints(ctx context.Context, teamID string) (float64, error) {
	entries, err := l.store.Entries(ctx, teamID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range entries {
		total += e.Points
	}
	return total, nil
}

// MatchdayPoints returns the team's entry for the given matchday, or 0
// when none was recorded. Keying on an explicit matchday keeps this
// view consistent with Totals, which measures every team against the
// same matchday.
func (l *Ledger) MatchdayPoints(ctx context.Context, teamID string, matchday int) (float64, error) {
	entries, err := l.store.Entries(ctx, teamID)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.Matchday == matchday {
			return e.Points, nil
		}
	}
	return 0, nil
}

// Totals derives per-team point views for every team with at least one
// entry. The most recent matchday across the whole ledger determines
// which entry counts as "matchday points"; teams that did not score on
// that matchday report 0.
func (l *Ledger) Totals(ctx context.Context) (map[string]TeamPoints, error) {
	entries, err := l.store.AllEntries(ctx)
	if err != nil {
		return nil, err
	}

	latest := 0
	for _, e := range entries {
		if e.Matchday > latest {
			latest = e.Matchday
		}
	}

	out := make(map[string]TeamPoints)
	for _, e := range entries {
		tp := out[e.TeamID]
		tp.TeamID = e.TeamID
		tp.TotalPoints += e.Points
		if e.Matchday == latest {
			tp.PointsMatchday = e.Points
		}
		out[e.TeamID] = tp
	}
	return out, nil
}

// ResetAll discards all history via the store's global reset.
func (l *Ledger) ResetAll(ctx context.Context) error {
	return l.store.ResetAll(ctx) //nolint:wrapcheck // pass-through reset
}
