package handlers

import (
	"net/http"

	"github.com/arenagg/tournament-core/services"
)

type DashboardHandler struct {
	tournamentService services.TournamentService
}

func NewDashboardHandler(ts services.TournamentService) *DashboardHandler {
	return &DashboardHandler{tournamentService: ts}
}

// StatsHandler обрабатывает GET /stats
func (h *DashboardHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tournamentService.GetPlatformStats(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
