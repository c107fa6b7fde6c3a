package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/pkg/metrics"
)

// pqUniqueViolation is the Postgres error code raised by the unique
// index on (team_id, matchday).
const pqUniqueViolation = "23505"

const pgConnectTimeout = 5 * time.Second

// Schema expected by PGStore. Rosters are stored as JSONB since slots
// are a small fixed map; ledger uniqueness lives in the database so the
// idempotency guarantee holds across processes.
const pgSchema = `
CREATE TABLE IF NOT EXISTS teams (
    id              TEXT PRIMARY KEY,
    owner_id        TEXT NOT NULL,
    coins           DOUBLE PRECISION NOT NULL,
    slots           JSONB NOT NULL DEFAULT '{}',
    slot_costs      JSONB NOT NULL DEFAULT '{}',
    points_matchday DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_points    DOUBLE PRECISION NOT NULL DEFAULT 0,
    version         BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS ledger_entries (
    team_id  TEXT NOT NULL REFERENCES teams(id),
    matchday INTEGER NOT NULL,
    points   DOUBLE PRECISION NOT NULL,
    UNIQUE (team_id, matchday)
);
CREATE TABLE IF NOT EXISTS matchday_state (
    singleton BOOLEAN PRIMARY KEY DEFAULT TRUE,
    matchday  INTEGER NOT NULL
);
INSERT INTO matchday_state (singleton, matchday)
    VALUES (TRUE, 1) ON CONFLICT (singleton) DO NOTHING;
`

// PGStore is a Store backed by Postgres via database/sql and lib/pq.
type PGStore struct {
	db *sql.DB
}

// NewPGStore opens dsn, verifies the connection, and ensures the schema.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pgConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", ErrUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PGStore{db: db}, nil
}

// Close closes the connection pool.
func (s *PGStore) Close() error {
	return s.db.Close() //nolint:wrapcheck // pass-through close
}

// GetTeam implements Store.
func (s *PGStore) GetTeam(ctx context.Context, id string) (model.Team, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, coins, slots, slot_costs, points_matchday, total_points, version
		FROM teams WHERE id = $1`, id)
	return scanTeam(row)
}

// PutTeam implements Store. The version predicate in the WHERE clause
// is the compare-and-commit: zero affected rows means someone else won.
func (s *PGStore) PutTeam(ctx context.Context, team model.Team) error {
	slots, costs, err := encodeRoster(team)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE teams
		SET coins = $2, slots = $3, slot_costs = $4,
		    points_matchday = $5, total_points = $6, version = version + 1
		WHERE id = $1 AND version = $7`,
		team.ID, team.Coins, slots, costs,
		team.PointsMatchday, team.TotalPoints, team.Version)
	if err != nil {
		return fmt.Errorf("%w: update team %s: %w", ErrUnavailable, team.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update team %s: rows affected: %w", team.ID, err)
	}
	if n == 0 {
		// Distinguish a missing team from a stale version.
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1)`, team.ID).Scan(&exists); err != nil {
			return fmt.Errorf("%w: check team %s: %w", ErrUnavailable, team.ID, err)
		}
		if !exists {
			return ErrTeamNotFound
		}
		metrics.RecordStoreConflict()
		return ErrConflict
	}
	return nil
}

// CreateTeam implements Store.
func (s *PGStore) CreateTeam(ctx context.Context, team model.Team) error {
	slots, costs, err := encodeRoster(team)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO teams (id, owner_id, coins, slots, slot_costs, points_matchday, total_points, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		team.ID, team.Owner, team.Coins, slots, costs,
		team.PointsMatchday, team.TotalPoints, team.Version)
	if isUniqueViolation(err) {
		return ErrTeamExists
	}
	if err != nil {
		return fmt.Errorf("%w: create team %s: %w", ErrUnavailable, team.ID, err)
	}
	return nil
}

// ListTeams implements Store.
func (s *PGStore) ListTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, coins, slots, slot_costs, points_matchday, total_points, version
		FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list teams: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []model.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list teams: %w", ErrUnavailable, err)
	}
	return out, nil
}

// AppendEntry implements Store; the unique index makes duplicates a
// storage-level failure rather than a best-effort in-process check.
func (s *PGStore) AppendEntry(ctx context.Context, entry model.LedgerEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (team_id, matchday, points) VALUES ($1, $2, $3)`,
		entry.TeamID, entry.Matchday, entry.Points)
	if isUniqueViolation(err) {
		return ErrDuplicateMatchday
	}
	if err != nil {
		return fmt.Errorf("%w: append entry %s/%d: %w", ErrUnavailable, entry.TeamID, entry.Matchday, err)
	}
	metrics.RecordLedgerEntry()
	return nil
}

// Entries implements Store.
func (s *PGStore) Entries(ctx context.Context, teamID string) ([]model.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, matchday, points FROM ledger_entries
		WHERE team_id = $1 ORDER BY matchday`, teamID)
	if err != nil {
		return nil, fmt.Errorf("%w: entries %s: %w", ErrUnavailable, teamID, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// AllEntries implements Store.
func (s *PGStore) AllEntries(ctx context.Context) ([]model.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, matchday, points FROM ledger_entries
		ORDER BY team_id, matchday`)
	if err != nil {
		return nil, fmt.Errorf("%w: all entries: %w", ErrUnavailable, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Matchday implements Store.
func (s *PGStore) Matchday(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT matchday FROM matchday_state WHERE singleton`).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get matchday: %w", ErrUnavailable, err)
	}
	if n < 1 {
		n = 1
	}
	return n, nil
}

// SetMatchday implements Store.
func (s *PGStore) SetMatchday(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matchday_state (singleton, matchday) VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET matchday = $1`, n)
	if err != nil {
		return fmt.Errorf("%w: set matchday: %w", ErrUnavailable, err)
	}
	return nil
}

// ResetAll implements Store inside one transaction.
func (s *PGStore) ResetAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin reset: %w", ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_entries`); err != nil {
		return fmt.Errorf("%w: reset ledger: %w", ErrUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE teams SET points_matchday = 0, total_points = 0, version = version + 1`); err != nil {
		return fmt.Errorf("%w: reset teams: %w", ErrUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE matchday_state SET matchday = 1 WHERE singleton`); err != nil {
		return fmt.Errorf("%w: reset matchday: %w", ErrUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit reset: %w", ErrUnavailable, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (model.Team, error) {
	var (
		t           model.Team
		slots, cost []byte
	)
	err := row.Scan(&t.ID, &t.Owner, &t.Coins, &slots, &cost,
		&t.PointsMatchday, &t.TotalPoints, &t.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Team{}, ErrTeamNotFound
	}
	if err != nil {
		return model.Team{}, fmt.Errorf("%w: scan team: %w", ErrUnavailable, err)
	}
	if err := json.Unmarshal(slots, &t.Slots); err != nil {
		return model.Team{}, fmt.Errorf("decode slots: %w", err)
	}
	if err := json.Unmarshal(cost, &t.SlotCosts); err != nil {
		return model.Team{}, fmt.Errorf("decode slot costs: %w", err)
	}
	if t.Slots == nil {
		t.Slots = make(map[model.Slot]string)
	}
	if t.SlotCosts == nil {
		t.SlotCosts = make(map[model.Slot]float64)
	}
	return t, nil
}

func scanEntries(rows *sql.Rows) ([]model.LedgerEntry, error) {
	var out []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.TeamID, &e.Matchday, &e.Points); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %w", ErrUnavailable, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan entries: %w", ErrUnavailable, err)
	}
	return out, nil
}

func encodeRoster(team model.Team) (slots, costs []byte, err error) {
	slots, err = json.Marshal(team.Slots)
	if err != nil {
		return nil, nil, fmt.Errorf("encode slots: %w", err)
	}
	costs, err = json.Marshal(team.SlotCosts)
	if err != nil {
		return nil, nil, fmt.Errorf("encode slot costs: %w", err)
	}
	return slots, costs, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

var _ Store = (*PGStore)(nil)
