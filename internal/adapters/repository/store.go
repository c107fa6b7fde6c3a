// Package repository defines the durable roster and ledger store
// interface plus its in-memory, Redis, and Postgres implementations.
package repository

import (
	"context"

	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
)

// Store provides atomic read-modify-write access to team, ledger, and
// matchday state. All team writes are compare-and-commit on the team's
// Version token so concurrent updates cannot be lost.
type Store interface {
	// GetTeam returns the team snapshot or ErrTeamNotFound.
	GetTeam(ctx context.Context, id string) (model.Team, error)

	// PutTeam commits team if the stored version still equals
	// team.Version; it returns ErrConflict otherwise. On success the
	// stored version is team.Version+1.
	PutTeam(ctx context.Context, team model.Team) error

	// CreateTeam inserts a new team or returns ErrTeamExists.
	CreateTeam(ctx context.Context, team model.Team) error

	// ListTeams returns snapshots of every registered team.
	ListTeams(ctx context.Context) ([]model.Team, error)

	// AppendEntry records a matchday award. A second entry for the
	// same (team, matchday) pair returns ErrDuplicateMatchday.
	AppendEntry(ctx context.Context, entry model.LedgerEntry) error

	// Entries returns a team's ledger entries ordered by matchday.
	Entries(ctx context.Context, teamID string) ([]model.LedgerEntry, error)

	// AllEntries returns every ledger entry across all teams.
	AllEntries(ctx context.Context) ([]model.LedgerEntry, error)

	// Matchday returns the next matchday to process (>= 1).
	Matchday(ctx context.Context) (int, error)

	// SetMatchday persists the matchday counter.
	SetMatchday(ctx context.Context, n int) error

	// ResetAll zeroes every team's points, discards all ledger
	// entries, and sets the matchday counter back to 1. Coins and
	// rosters are left untouched.
	ResetAll(ctx context.Context) error
}
