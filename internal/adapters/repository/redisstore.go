package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/pkg/metrics"
)

// Redis key layout. Teams are JSON blobs guarded by WATCH for the
// version check; ledgers are one hash per team keyed by matchday so
// HSETNX gives the (team, matchday) uniqueness at the storage layer.
const (
	teamKeyPrefix   = "fastbreak:team:%s"
	teamIndexKey    = "fastbreak:teams"
	ledgerKeyPrefix = "fastbreak:ledger:%s"
	matchdayKey     = "fastbreak:matchday"

	redisDialTimeout = 5 * time.Second
	resetPutRetries  = 5
)

// RedisStore is a Store backed by a single Redis instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: redisDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("%w: ping %s: %w", ErrUnavailable, addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close() //nolint:wrapcheck // pass-through close
}

// GetTeam implements Store.
func (s *RedisStore) GetTeam(ctx context.Context, id string) (model.Team, error) {
	raw, err := s.client.Get(ctx, fmt.Sprintf(teamKeyPrefix, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Team{}, ErrTeamNotFound
	}
	if err != nil {
		return model.Team{}, fmt.Errorf("%w: get team %s: %w", ErrUnavailable, id, err)
	}
	var t model.Team
	if err := json.Unmarshal(raw, &t); err != nil {
		return model.Team{}, fmt.Errorf("decode team %s: %w", id, err)
	}
	return t, nil
}

// PutTeam implements Store. WATCH on the team key turns a concurrent
// write into ErrConflict instead of a lost update.
func (s *RedisStore) PutTeam(ctx context.Context, team model.Team) error {
	key := fmt.Sprintf(teamKeyPrefix, team.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrTeamNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: get team %s: %w", ErrUnavailable, team.ID, err)
		}
		var cur model.Team
		if err := json.Unmarshal(raw, &cur); err != nil {
			return fmt.Errorf("decode team %s: %w", team.ID, err)
		}
		if cur.Version != team.Version {
			return ErrConflict
		}

		next := team.Clone()
		next.Version++
		buf, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode team %s: %w", team.ID, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf, 0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("commit team %s: %w", team.ID, err)
		}
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		metrics.RecordStoreConflict()
		return ErrConflict
	}
	if errors.Is(err, ErrConflict) {
		metrics.RecordStoreConflict()
	}
	return err
}

// CreateTeam implements Store.
func (s *RedisStore) CreateTeam(ctx context.Context, team model.Team) error {
	buf, err := json.Marshal(team)
	if err != nil {
		return fmt.Errorf("encode team %s: %w", team.ID, err)
	}
	ok, err := s.client.SetNX(ctx, fmt.Sprintf(teamKeyPrefix, team.ID), buf, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: create team %s: %w", ErrUnavailable, team.ID, err)
	}
	if !ok {
		return ErrTeamExists
	}
	if err := s.client.SAdd(ctx, teamIndexKey, team.ID).Err(); err != nil {
		return fmt.Errorf("%w: index team %s: %w", ErrUnavailable, team.ID, err)
	}
	return nil
}

// ListTeams implements Store.
func (s *RedisStore) ListTeams(ctx context.Context) ([]model.Team, error) {
	ids, err := s.client.SMembers(ctx, teamIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list teams: %w", ErrUnavailable, err)
	}
	sort.Strings(ids)

	out := make([]model.Team, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTeam(ctx, id)
		if errors.Is(err, ErrTeamNotFound) {
			continue // removed between SMEMBERS and GET
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// AppendEntry implements Store via HSETNX on the team's ledger hash.
func (s *RedisStore) AppendEntry(ctx context.Context, entry model.LedgerEntry) error {
	key := fmt.Sprintf(ledgerKeyPrefix, entry.TeamID)
	field := strconv.Itoa(entry.Matchday)

	ok, err := s.client.HSetNX(ctx, key, field, entry.Points).Result()
	if err != nil {
		return fmt.Errorf("%w: append entry %s/%d: %w", ErrUnavailable, entry.TeamID, entry.Matchday, err)
	}
	if !ok {
		return ErrDuplicateMatchday
	}
	metrics.RecordLedgerEntry()
	return nil
}

// Entries implements Store.
func (s *RedisStore) Entries(ctx context.Context, teamID string) ([]model.LedgerEntry, error) {
	fields, err := s.client.HGetAll(ctx, fmt.Sprintf(ledgerKeyPrefix, teamID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: entries %s: %w", ErrUnavailable, teamID, err)
	}

	out := make([]model.LedgerEntry, 0, len(fields))
	for field, val := range fields {
		day, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("decode ledger field %q: %w", field, err)
		}
		points, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("decode ledger value %q: %w", val, err)
		}
		out = append(out, model.LedgerEntry{TeamID: teamID, Matchday: day, Points: points})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Matchday < out[j].Matchday })
	return out, nil
}

// AllEntries implements Store.
func (s *RedisStore) AllEntries(ctx context.Context) ([]model.LedgerEntry, error) {
	ids, err := s.client.SMembers(ctx, teamIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list teams: %w", ErrUnavailable, err)
	}
	sort.Strings(ids)

	var out []model.LedgerEntry
	for _, id := range ids {
		es, err := s.Entries(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, es...)
	}
	return out, nil
}

// Matchday implements Store.
func (s *RedisStore) Matchday(ctx context.Context) (int, error) {
	val, err := s.client.Get(ctx, matchdayKey).Int()
	if errors.Is(err, redis.Nil) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get matchday: %w", ErrUnavailable, err)
	}
	if val < 1 {
		val = 1
	}
	return val, nil
}

// SetMatchday implements Store.
func (s *RedisStore) SetMatchday(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	if err := s.client.Set(ctx, matchdayKey, n, 0).Err(); err != nil {
		return fmt.Errorf("%w: set matchday: %w", ErrUnavailable, err)
	}
	return nil
}

// ResetAll implements Store. The ledger hash is only deleted once the
// team's points are durably zeroed; a concurrent write losing the
// version check gets the team re-read and re-zeroed, never skipped.
func (s *RedisStore) ResetAll(ctx context.Context) error {
	teams, err := s.ListTeams(ctx)
	if err != nil {
		return err
	}
	for _, t := range teams {
		if err := s.zeroTeamPoints(ctx, t); err != nil {
			return err
		}
		if err := s.client.Del(ctx, fmt.Sprintf(ledgerKeyPrefix, t.ID)).Err(); err != nil {
			return fmt.Errorf("%w: reset ledger %s: %w", ErrUnavailable, t.ID, err)
		}
	}
	return s.SetMatchday(ctx, 1)
}

func (s *RedisStore) zeroTeamPoints(ctx context.Context, t model.Team) error {
	var lastErr error
	for attempt := 0; attempt < resetPutRetries; attempt++ {
		t.PointsMatchday = 0
		t.TotalPoints = 0
		err := s.PutTeam(ctx, t)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return err
		}
		lastErr = err
		t, err = s.GetTeam(ctx, t.ID)
		if err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: reset team %s after %d attempts: %w",
		ErrUnavailable, t.ID, resetPutRetries, lastErr)
}

var _ Store = (*RedisStore)(nil)
