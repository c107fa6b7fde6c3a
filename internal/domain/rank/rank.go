// Package rank derives leaderboard views from the points ledger.
// Rankings are pure read projections recomputed at call time; nothing
// here is cached or persisted.
package rank

import (
	"context"
	"sort"

	"github.com/fastbreaklabs/fastbreak/internal/adapters/repository"
	"github.com/fastbreaklabs/fastbreak/internal/domain/ledger"
	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/pkg/metrics"
)

// Ranker produces overall and per-matchday standings.
type Ranker struct {
	store  repository.Store
	ledger *ledger.Ledger
}

// New creates a Ranker over the store and ledger.
func New(store repository.Store, lg *ledger.Ledger) *Ranker {
	return &Ranker{store: store, ledger: lg}
}

// Overall returns every team ordered by total points descending, team
// id ascending on ties. Teams without ledger entries rank at 0 points.
func (r *Ranker) Overall(ctx context.Context) ([]model.Row, error) {
	return r.rows(ctx, func(tp ledger.TeamPoints) float64 { return tp.TotalPoints })
}

// Matchday returns the same ordering keyed on the most recent
// matchday's points.
func (r *Ranker) Matchday(ctx context.Context) ([]model.Row, error) {
	return r.rows(ctx, func(tp ledger.TeamPoints) float64 { return tp.PointsMatchday })
}

func (r *Ranker) rows(ctx context.Context, points func(ledger.TeamPoints) float64) ([]model.Row, error) {
	metrics.RecordLeaderboardQuery()

	teams, err := r.store.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := r.ledger.Totals(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]model.Row, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, model.Row{
			TeamID: t.ID,
			Points: points(totals[t.ID]),
		})
	}
	sortRows(rows)
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// sortRows orders by points descending with team id ascending as the
// deterministic tie-break.
func sortRows(rows []model.Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].TeamID < rows[j].TeamID
	})
}
