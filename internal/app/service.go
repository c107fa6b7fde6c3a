// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastbreaklabs/fastbreak/internal/adapters/feed"
	"github.com/fastbreaklabs/fastbreak/internal/adapters/repository"
	"github.com/fastbreaklabs/fastbreak/internal/domain/ledger"
	"github.com/fastbreaklabs/fastbreak/internal/domain/matchday"
	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/internal/domain/rank"
	"github.com/fastbreaklabs/fastbreak/internal/domain/roster"
	"github.com/fastbreaklabs/fastbreak/pkg/logger"
	"github.com/fastbreaklabs/fastbreak/pkg/metrics"
)

// Service implements the league operations exposed to HTTP handlers
// and CLIs: team registration, acquisitions, matchday progression, and
// leaderboard reads.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	feed      feed.Feed
	assembler *roster.Assembler
	ledger    *ledger.Ledger
	engine    *matchday.Engine
	ranker    *rank.Ranker

	// Configuration
	initialBudget     float64
	workerCount       int
	maxRetries        int
	retryBackoff      time.Duration
	refundOnOverwrite bool

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the storage backend. Defaults to the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithFeed injects the performance feed. Defaults to an empty
// in-memory feed.
func WithFeed(f feed.Feed) Option {
	return func(s *Service) {
		if f != nil {
			s.feed = f
		}
	}
}

// WithInitialBudget sets the coin balance granted at registration.
func WithInitialBudget(coins float64) Option {
	return func(s *Service) {
		if coins >= 0 {
			s.initialBudget = coins
		}
	}
}

// WithWorkerCount bounds concurrent team scoring during an advance.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithMaxRetries bounds conflict retries on team writes.
func WithMaxRetries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryBackoff sets the pause between conflict retries.
func WithRetryBackoff(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retryBackoff = d
		}
	}
}

// WithRefundOnOverwrite selects the slot-overwrite refund policy.
func WithRefundOnOverwrite(refund bool) Option {
	return func(s *Service) {
		s.refundOnOverwrite = refund
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Default service configuration constants.
const (
	defaultInitialBudget = 100
	defaultWorkerCount   = 8
	defaultMaxRetries    = 3
	defaultRetryBackoff  = 25 * time.Millisecond
)

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		initialBudget: defaultInitialBudget,
		workerCount:   defaultWorkerCount,
		maxRetries:    defaultMaxRetries,
		retryBackoff:  defaultRetryBackoff,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start wires the core components. Safe to call once; repeated calls
// are no-ops.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.feed == nil {
		s.feed = feed.NewInMemoryFeed()
	}

	s.ledger = ledger.New(s.store)
	s.assembler = roster.New(s.store,
		roster.WithMaxRetries(s.maxRetries),
		roster.WithRetryBackoff(s.retryBackoff),
		roster.WithRefundOnOverwrite(s.refundOnOverwrite),
	)
	s.engine = matchday.New(s.store, s.ledger, s.feed,
		matchday.WithWorkerCount(s.workerCount),
		matchday.WithMaxRetries(s.maxRetries),
		matchday.WithRetryBackoff(s.retryBackoff),
	)
	s.ranker = rank.New(s.store, s.ledger)

	s.started = true
	s.logger.Info(ctx, "league service started",
		logger.Float64("initialBudget", s.initialBudget),
		logger.Int("workers", s.workerCount),
		logger.Bool("refundOnOverwrite", s.refundOnOverwrite),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "league service stopped")
}

// RegisterTeam creates a team with the configured starting budget.
// An empty id gets a generated one. Returns the created snapshot.
func (s *Service) RegisterTeam(ctx context.Context, id, owner string) (model.Team, error) {
	if id == "" {
		id = uuid.NewString()
	}
	team := model.NewTeam(id, owner, s.initialBudget)
	if err := s.store.CreateTeam(ctx, team); err != nil {
		return model.Team{}, err
	}

	if teams, err := s.store.ListTeams(ctx); err == nil {
		metrics.UpdateTotalTeams(len(teams))
	}
	s.logger.Info(ctx, "team registered",
		logger.String("team", id),
		logger.String("owner", owner),
	)
	return team, nil
}

// AcquirePlayer applies one player acquisition. See roster.Assembler.
func (s *Service) AcquirePlayer(ctx context.Context, teamID string, slot model.Slot, playerID string, price float64) (model.Team, error) {
	return s.assembler.Acquire(ctx, teamID, slot, playerID, price)
}

// AdvanceMatchday scores the current matchday for every team and, on
// full success, moves the counter forward.
func (s *Service) AdvanceMatchday(ctx context.Context) (matchday.Report, error) {
	return s.engine.Advance(ctx)
}

// ResetMatchday wipes all point state and returns the counter to 1.
func (s *Service) ResetMatchday(ctx context.Context) error {
	return s.engine.Reset(ctx)
}

// OverallLeaderboard returns standings by total points.
func (s *Service) OverallLeaderboard(ctx context.Context) ([]model.Row, error) {
	return s.ranker.Overall(ctx)
}

// MatchdayLeaderboard returns standings by the latest matchday's points.
func (s *Service) MatchdayLeaderboard(ctx context.Context) ([]model.Row, error) {
	return s.ranker.Matchday(ctx)
}

// Team returns the authoritative team snapshot. Callers hold identity
// only; state is always re-read from storage.
func (s *Service) Team(ctx context.Context, id string) (model.Team, error) {
	return s.store.GetTeam(ctx, id)
}

// CurrentMatchday returns the next matchday to process.
func (s *Service) CurrentMatchday(ctx context.Context) (int, error) {
	return s.engine.Current(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"initialBudget":     s.initialBudget,
		"refundOnOverwrite": s.refundOnOverwrite,
	}

	if s.started {
		if day, err := s.engine.Current(ctx); err == nil {
			stats["matchday"] = day
		}
		if teams, err := s.store.ListTeams(ctx); err == nil {
			stats["totalTeams"] = len(teams)
			metrics.UpdateTotalTeams(len(teams))
		}
	}

	return stats
}
