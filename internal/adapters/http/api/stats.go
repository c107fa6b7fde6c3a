// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// StatsProvider exposes a snapshot of league runtime statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves league statistics.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a handler backed by the given provider.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
