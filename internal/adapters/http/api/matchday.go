package api

import (
	"errors"
	"net/http"

	"github.com/fastbreaklabs/fastbreak/internal/domain/matchday"
)

// MatchdayHandler handles matchday progression requests.
type MatchdayHandler struct {
	deps Dependencies
}

// NewMatchdayHandler creates a new matchday handler.
func NewMatchdayHandler(deps Dependencies) *MatchdayHandler {
	return &MatchdayHandler{deps: deps}
}

// matchdayResponse mirrors the GET /matchday body.
type matchdayResponse struct {
	Matchday int `json:"matchday"`
}

// advanceResponse mirrors the POST /matchday/advance body.
type advanceResponse struct {
	Matchday  int  `json:"matchday"`
	Next      int  `json:"next_matchday"`
	Scored    int  `json:"scored"`
	Skipped   int  `json:"skipped"`
	Failed    int  `json:"failed"`
	Completed bool `json:"completed"`
}

// HandleGetMatchday handles GET /matchday requests.
func (h *MatchdayHandler) HandleGetMatchday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	day, err := h.deps.CurrentMatchday(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matchdayResponse{Matchday: day})
}

// HandleAdvance handles POST /matchday/advance requests. A partial
// failure reports 502 with the per-outcome counts so the operator can
// retry; committed teams are never rolled back.
func (h *MatchdayHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	report, err := h.deps.AdvanceMatchday(r.Context())
	if err != nil && !errors.Is(err, matchday.ErrPartialFailure) {
		writeDomainError(w, err)
		return
	}

	resp := advanceResponse{
		Matchday:  report.Matchday,
		Next:      report.Matchday,
		Scored:    report.Scored,
		Skipped:   report.Skipped,
		Failed:    report.Failed,
		Completed: report.Completed,
	}
	if report.Completed {
		resp.Next = report.Matchday + 1
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusBadGateway, resp)
}

// HandleReset handles POST /matchday/reset requests.
func (h *MatchdayHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.ResetMatchday(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matchdayResponse{Matchday: 1})
}
