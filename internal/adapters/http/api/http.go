// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fastbreaklabs/fastbreak/internal/adapters/repository"
	"github.com/fastbreaklabs/fastbreak/internal/domain/matchday"
	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/internal/domain/roster"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the app service.
type Dependencies interface {
	RegisterTeam(ctx context.Context, id, owner string) (model.Team, error)
	AcquirePlayer(ctx context.Context, teamID string, slot model.Slot, playerID string, price float64) (model.Team, error)
	AdvanceMatchday(ctx context.Context) (matchday.Report, error)
	ResetMatchday(ctx context.Context) error
	OverallLeaderboard(ctx context.Context) ([]model.Row, error)
	MatchdayLeaderboard(ctx context.Context) ([]model.Row, error)
	Team(ctx context.Context, id string) (model.Team, error)
	CurrentMatchday(ctx context.Context) (int, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	teamsHandler       *TeamsHandler
	matchdayHandler    *MatchdayHandler
	leaderboardHandler *LeaderboardHandler
	statsHandler       *StatsHandler
	healthHandler      *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		teamsHandler:       NewTeamsHandler(deps),
		matchdayHandler:    NewMatchdayHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		statsHandler:       NewStatsHandler(statsProvider),
		healthHandler:      NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/teams", MetricsMiddleware(s.teamsHandler.HandleTeams, "teams"))
	mux.HandleFunc("/teams/", MetricsMiddleware(s.teamsHandler.HandleTeam, "team"))
	mux.HandleFunc("/matchday", MetricsMiddleware(s.matchdayHandler.HandleGetMatchday, "matchday"))
	mux.HandleFunc("/matchday/advance", MetricsMiddleware(s.matchdayHandler.HandleAdvance, "matchday_advance"))
	mux.HandleFunc("/matchday/reset", MetricsMiddleware(s.matchdayHandler.HandleReset, "matchday_reset"))
	mux.HandleFunc("/leaderboard/overall", MetricsMiddleware(s.leaderboardHandler.HandleOverall, "leaderboard_overall"))
	mux.HandleFunc("/leaderboard/matchday", MetricsMiddleware(s.leaderboardHandler.HandleMatchday, "leaderboard_matchday"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps domain error kinds onto HTTP statuses so
// callers can branch without parsing messages.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roster.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient_funds", err)
	case errors.Is(err, roster.ErrInvalidSlot),
		errors.Is(err, roster.ErrInvalidPrice),
		errors.Is(err, roster.ErrMissingPlayer):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrTeamNotFound):
		writeError(w, http.StatusNotFound, "team_not_found", err)
	case errors.Is(err, repository.ErrTeamExists):
		writeError(w, http.StatusConflict, "team_exists", err)
	case errors.Is(err, matchday.ErrAlreadyProcessing):
		writeError(w, http.StatusConflict, "already_processing", err)
	case errors.Is(err, repository.ErrDuplicateMatchday):
		writeError(w, http.StatusConflict, "duplicate_matchday", err)
	// Retry-exhaustion errors wrap the last conflict alongside
	// ErrUnavailable, so the unavailable check has to win.
	case errors.Is(err, repository.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
