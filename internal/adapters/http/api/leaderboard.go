package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies, maxLimit int) *LeaderboardHandler {
	if maxLimit < 1 {
		maxLimit = 100
	}
	return &LeaderboardHandler{deps: deps, maxLimit: maxLimit}
}

// HandleOverall handles GET /leaderboard/overall?limit=N requests.
func (h *LeaderboardHandler) HandleOverall(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "api.get_overall_leaderboard", h.deps.OverallLeaderboard)
}

// HandleMatchday handles GET /leaderboard/matchday?limit=N requests.
func (h *LeaderboardHandler) HandleMatchday(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "api.get_matchday_leaderboard", h.deps.MatchdayLeaderboard)
}

func (h *LeaderboardHandler) handle(w http.ResponseWriter, r *http.Request, op string, query func(context.Context) ([]model.Row, error)) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	rows, err := query(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	writeJSON(w, http.StatusOK, rows)
}
