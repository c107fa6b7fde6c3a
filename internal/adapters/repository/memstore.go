package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/pkg/metrics"
)

// MemStore is the default in-process Store. All state lives behind one
// mutex; writes verify the version token so the compare-and-commit
// contract matches the external backends.
type MemStore struct {
	mu       sync.RWMutex
	teams    map[string]model.Team
	entries  map[string][]model.LedgerEntry // teamID -> entries ordered by matchday
	seen     map[string]map[int]struct{}    // teamID -> matchdays already recorded
	matchday int
}

// NewMemStore constructs an empty in-memory store with the matchday
// counter at 1.
func NewMemStore() *MemStore {
	return &MemStore{
		teams:    make(map[string]model.Team),
		entries:  make(map[string][]model.LedgerEntry),
		seen:     make(map[string]map[int]struct{}),
		matchday: 1,
	}
}

// GetTeam implements Store.
func (s *MemStore) GetTeam(ctx context.Context, id string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	if !ok {
		return model.Team{}, ErrTeamNotFound
	}
	return t.Clone(), nil
}

// PutTeam implements Store with an in-process version check.
func (s *MemStore) PutTeam(ctx context.Context, team model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.teams[team.ID]
	if !ok {
		return ErrTeamNotFound
	}
	if cur.Version != team.Version {
		metrics.RecordStoreConflict()
		return ErrConflict
	}
	next := team.Clone()
	next.Version++
	s.teams[team.ID] = next
	return nil
}

// CreateTeam implements Store.
func (s *MemStore) CreateTeam(ctx context.Context, team model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[team.ID]; ok {
		return ErrTeamExists
	}
	s.teams[team.ID] = team.Clone()
	return nil
}

// ListTeams implements Store. Teams come back ordered by id so batch
// processing is deterministic.
func (s *MemStore) ListTeams(ctx context.Context) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AppendEntry implements Store, enforcing the (team, matchday)
// uniqueness the ledger relies on.
func (s *MemStore) AppendEntry(ctx context.Context, entry model.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, ok := s.seen[entry.TeamID]
	if !ok {
		days = make(map[int]struct{})
		s.seen[entry.TeamID] = days
	}
	if _, dup := days[entry.Matchday]; dup {
		return ErrDuplicateMatchday
	}
	days[entry.Matchday] = struct{}{}
	s.entries[entry.TeamID] = append(s.entries[entry.TeamID], entry)
	metrics.RecordLedgerEntry()
	return nil
}

// Entries implements Store.
func (s *MemStore) Entries(ctx context.Context, teamID string) ([]model.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.entries[teamID]
	out := make([]model.LedgerEntry, len(src))
	copy(out, src)
	sort.Slice(out, func(i, j int) bool { return out[i].Matchday < out[j].Matchday })
	return out, nil
}

// AllEntries implements Store.
func (s *MemStore) AllEntries(ctx context.Context) ([]model.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.LedgerEntry
	for _, es := range s.entries {
		out = append(out, es...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		return out[i].Matchday < out[j].Matchday
	})
	return out, nil
}

// Matchday implements Store.
func (s *MemStore) Matchday(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matchday, nil
}

// SetMatchday implements Store.
func (s *MemStore) SetMatchday(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	s.matchday = n
	return nil
}

// ResetAll implements Store. Rosters and coin balances survive; only
// point state and the ledger are wiped.
func (s *MemStore) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.teams {
		t.PointsMatchday = 0
		t.TotalPoints = 0
		t.Version++
		s.teams[id] = t
	}
	s.entries = make(map[string][]model.LedgerEntry)
	s.seen = make(map[string]map[int]struct{})
	s.matchday = 1
	return nil
}

var _ Store = (*MemStore)(nil)
