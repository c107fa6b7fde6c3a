// Package feed defines the contract for per-player matchday
// performance lookups supplied by an external stat provider.
package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Default feed configuration constants.
const (
	defaultMinLatency = 0
	defaultMaxLatency = 0
	defaultRandomSeed = 42
)

// Feed returns the scoring input for one player on one matchday.
// The second return is false when the provider has no data for the
// pair; callers treat that as zero points, never as an error.
type Feed interface {
	Performance(ctx context.Context, playerID string, matchday int) (float64, bool, error)
}

// Option applies a configuration option to the InMemoryFeed.
type Option func(*InMemoryFeed)

// WithPerformances seeds the feed from matchday -> player -> points.
func WithPerformances(data map[int]map[string]float64) Option {
	return func(f *InMemoryFeed) {
		for day, players := range data {
			for player, points := range players {
				f.set(player, day, points)
			}
		}
	}
}

// WithLatencyRange simulates the latency of a remote stat provider.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(f *InMemoryFeed) {
		if minLatency >= 0 && maxLatency > minLatency {
			f.minLatency = minLatency
			f.maxLatency = maxLatency
		}
	}
}

type key struct {
	playerID string
	matchday int
}

// InMemoryFeed implements Feed from a seeded table. It stands in for
// the external game-data provider in development and tests.
type InMemoryFeed struct {
	mu         sync.RWMutex
	values     map[key]float64
	minLatency time.Duration
	maxLatency time.Duration
	rng        *rand.Rand
	rngMu      sync.Mutex
}

// NewInMemoryFeed creates a feed with configuration options.
func NewInMemoryFeed(opts ...Option) *InMemoryFeed {
	f := &InMemoryFeed{
		values:     make(map[key]float64),
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible latency
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Performance implements Feed.
func (f *InMemoryFeed) Performance(ctx context.Context, playerID string, matchday int) (float64, bool, error) {
	if f.maxLatency > f.minLatency {
		f.rngMu.Lock()
		latency := f.minLatency + time.Duration(f.rng.Int63n(int64(f.maxLatency-f.minLatency)))
		f.rngMu.Unlock()
		select {
		case <-ctx.Done():
			return 0, false, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(latency):
		}
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key{playerID: playerID, matchday: matchday}]
	return v, ok, nil
}

// Set records or overwrites a performance value. Exposed so simulators
// and tests can feed matchdays incrementally.
func (f *InMemoryFeed) Set(playerID string, matchday int, points float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set(playerID, matchday, points)
}

func (f *InMemoryFeed) set(playerID string, matchday int, points float64) {
	if f.values == nil {
		f.values = make(map[key]float64)
	}
	f.values[key{playerID: playerID, matchday: matchday}] = points
}
