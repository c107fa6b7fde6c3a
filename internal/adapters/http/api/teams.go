package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
)

// TeamsHandler handles team registration, lookup, and acquisitions.
type TeamsHandler struct {
	deps Dependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps Dependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// registerRequest mirrors the POST /teams body.
type registerRequest struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

// acquireRequest mirrors the POST /teams/{id}/roster body.
type acquireRequest struct {
	Slot     string  `json:"slot"`
	PlayerID string  `json:"player_id"`
	Price    float64 `json:"price"`
}

func (a acquireRequest) validate() error {
	switch {
	case strings.TrimSpace(a.Slot) == "":
		return NewKind("api.acquire", ErrBadRequest)
	case strings.TrimSpace(a.PlayerID) == "":
		return NewKind("api.acquire", ErrBadRequest)
	}
	return nil
}

// HandleTeams handles POST /teams requests.
func (h *TeamsHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_teams"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	team, err := h.deps.RegisterTeam(r.Context(), req.ID, req.Owner)
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// HandleTeam handles GET /teams/{id} and POST /teams/{id}/roster.
func (h *TeamsHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/teams/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if id, found := strings.CutSuffix(path, "/roster"); found {
		h.handleAcquire(w, r, id)
		return
	}

	if r.Method != http.MethodGet || strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}
	team, err := h.deps.Team(r.Context(), path)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamsHandler) handleAcquire(w http.ResponseWriter, r *http.Request, teamID string) {
	const op = "api.acquire"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req acquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	team, err := h.deps.AcquirePlayer(r.Context(), teamID, model.Slot(req.Slot), req.PlayerID, req.Price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}
