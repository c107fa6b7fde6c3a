package matchday

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/fastbreaklabs/fastbreak/internal/adapters/feed"
	"github.com/fastbreaklabs/fastbreak/internal/adapters/repository"
	"github.com/fastbreaklabs/fastbreak/internal/domain/ledger"
	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/pkg/logger"
	"github.com/fastbreaklabs/fastbreak/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 25 * time.Millisecond
)

// Outcome classifies what happened to one team during an advance.
type Outcome int

const (
	// OutcomeScored means a new ledger entry was committed.
	OutcomeScored Outcome = iota
	// OutcomeSkipped means the team already had an entry for this
	// matchday; its point mirror was refreshed, nothing was awarded.
	OutcomeSkipped
	// OutcomeFailed means the team's update did not commit.
	OutcomeFailed
)

// TeamResult reports one team's outcome within an advance.
type TeamResult struct {
	TeamID  string
	Outcome Outcome
	Points  float64
	Err     error
}

// Report summarizes one advance. Completed is true when every team
// committed and the counter moved to Matchday+1.
type Report struct {
	Matchday  int
	Scored    int
	Skipped   int
	Failed    int
	Completed bool
	Results   []TeamResult
}

// Engine advances the matchday counter exactly once per fully
// successful round. The counter lives in the store so it survives
// restarts; the engine only serializes access to it.
type Engine struct {
	store  repository.Store
	ledger *ledger.Ledger
	feed   feed.Feed

	workerCount  int
	maxRetries   int
	retryBackoff time.Duration

	// inFlight guards Advance and Reset process-wide. The ledger's
	// (team, matchday) uniqueness backstops races across processes.
	inFlight atomic.Bool

	logger logger.Logger
}

// New constructs an Engine with default configuration.
func New(store repository.Store, lg *ledger.Ledger, fd feed.Feed, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		ledger:       lg,
		feed:         fd,
		workerCount:  runtime.NumCPU(),
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
		logger:       logger.Named("matchday"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Current returns the next matchday to process.
func (e *Engine) Current(ctx context.Context) (int, error) {
	return e.store.Matchday(ctx) //nolint:wrapcheck // pass-through read
}

// Advance scores the current matchday for every team with at least one
// filled slot. Teams that already hold an entry for the matchday are
// skipped, never double-credited, so a retried advance is idempotent
// per team. The counter increments only when no team failed.
func (e *Engine) Advance(ctx context.Context) (Report, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		metrics.RecordAdvance("already_processing")
		return Report{}, ErrAlreadyProcessing
	}
	defer e.inFlight.Store(false)

	start := time.Now()
	day, err := e.store.Matchday(ctx)
	if err != nil {
		metrics.RecordAdvance("store_error")
		return Report{}, err
	}

	teams, err := e.store.ListTeams(ctx)
	if err != nil {
		metrics.RecordAdvance("store_error")
		return Report{}, err
	}

	active := teams[:0]
	for _, t := range teams {
		if t.FilledSlots() > 0 {
			active = append(active, t)
		}
	}

	report := Report{Matchday: day}
	report.Results = e.runPool(ctx, day, active)
	for _, res := range report.Results {
		switch res.Outcome {
		case OutcomeScored:
			report.Scored++
		case OutcomeSkipped:
			report.Skipped++
		case OutcomeFailed:
			report.Failed++
		}
	}

	if report.Failed > 0 {
		metrics.RecordAdvance("partial_failure")
		e.logger.Warn(ctx, "matchday advance partially failed",
			logger.Int("matchday", day),
			logger.Int("failed", report.Failed),
			logger.Int("scored", report.Scored),
		)
		return report, fmt.Errorf("%w: matchday %d, %d of %d teams failed",
			ErrPartialFailure, day, report.Failed, len(active))
	}

	if err := e.store.SetMatchday(ctx, day+1); err != nil {
		metrics.RecordAdvance("store_error")
		return report, err
	}
	report.Completed = true

	metrics.RecordAdvance("ok")
	metrics.RecordAdvanceDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdateCurrentMatchday(day + 1)
	e.logger.Info(ctx, "matchday advanced",
		logger.Int("matchday", day),
		logger.Int("scored", report.Scored),
		logger.Int("skipped", report.Skipped),
	)
	return report, nil
}

// Reset discards all point state: counter back to 1, ledger emptied,
// every team's points zeroed. Destructive and global; it refuses to
// run while an advance is in flight.
func (e *Engine) Reset(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrAlreadyProcessing
	}
	defer e.inFlight.Store(false)

	if err := e.ledger.ResetAll(ctx); err != nil {
		return err
	}
	metrics.UpdateCurrentMatchday(1)
	e.logger.Info(ctx, "matchday state reset")
	return nil
}

// runPool fans team scoring over a bounded set of workers and collects
// per-team results. Teams are independent, so order does not matter.
func (e *Engine) runPool(ctx context.Context, day int, teams []model.Team) []TeamResult {
	if len(teams) == 0 {
		return nil
	}

	workers := e.workerCount
	if workers > len(teams) {
		workers = len(teams)
	}

	jobs := make(chan model.Team)
	results := make(chan TeamResult, len(teams))

	for i := 0; i < workers; i++ {
		go func() {
			for team := range jobs {
				results <- e.processTeam(ctx, day, team)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, team := range teams {
			select {
			case jobs <- team:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make([]TeamResult, 0, len(teams))
	for range teams {
		select {
		case res := <-results:
			out = append(out, res)
		case <-ctx.Done():
			out = append(out, TeamResult{Outcome: OutcomeFailed, Err: ctx.Err()})
			return out
		}
	}
	return out
}

// processTeam computes and commits one team's matchday award.
func (e *Engine) processTeam(ctx context.Context, day int, team model.Team) TeamResult {
	points, err := e.scoreTeam(ctx, day, team)
	if err != nil {
		return TeamResult{TeamID: team.ID, Outcome: OutcomeFailed, Err: err}
	}

	skipped := false
	if err := e.ledger.RecordMatchday(ctx, team.ID, day, points); err != nil {
		if !errors.Is(err, repository.ErrDuplicateMatchday) {
			return TeamResult{TeamID: team.ID, Outcome: OutcomeFailed, Err: err}
		}
		// Entry already present from an earlier attempt; fall
		// through and refresh the team's point mirror so a retried
		// advance heals a half-committed team.
		skipped = true
	}

	if err := e.mirrorPoints(ctx, team.ID, day); err != nil {
		return TeamResult{TeamID: team.ID, Outcome: OutcomeFailed, Err: err}
	}

	if skipped {
		return TeamResult{TeamID: team.ID, Outcome: OutcomeSkipped, Points: points}
	}
	metrics.RecordTeamScored()
	return TeamResult{TeamID: team.ID, Outcome: OutcomeScored, Points: points}
}

// scoreTeam sums feed performances of every filled slot for day.
// Missing performance data contributes 0.
func (e *Engine) scoreTeam(ctx context.Context, day int, team model.Team) (float64, error) {
	var points float64
	for _, slot := range model.Slots() {
		playerID, filled := team.Slots[slot]
		if !filled {
			continue
		}
		perf, known, err := e.feed.Performance(ctx, playerID, day)
		if err != nil {
			return 0, fmt.Errorf("feed lookup %s/%d: %w", playerID, day, err)
		}
		if known {
			points += perf
		}
	}
	return points, nil
}

// mirrorPoints rewrites the team's denormalized point fields from the
// ledger, compare-and-commit with bounded retry. Totals always come
// from recorded entries.
func (e *Engine) mirrorPoints(ctx context.Context, teamID string, day int) error {
	total, err := e.ledger.TotalPoints(ctx, teamID)
	if err != nil {
		return err
	}
	last, err := e.ledger.MatchdayPoints(ctx, teamID, day)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordStoreRetry()
			select {
			case <-ctx.Done():
				return fmt.Errorf("mirror cancelled: %w", ctx.Err())
			case <-time.After(e.retryBackoff):
			}
		}

		team, err := e.store.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		team.TotalPoints = total
		team.PointsMatchday = last

		err = e.store.PutTeam(ctx, team)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: mirror points %s after %d attempts: %w",
		repository.ErrUnavailable, teamID, e.maxRetries, lastErr)
}
