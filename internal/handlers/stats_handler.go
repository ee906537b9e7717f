package handlers

import (
	"net/http"

	"geoclash/internal/logging"
	"geoclash/internal/models"
	"geoclash/internal/repository"
	"geoclash/internal/service"
)

// StatsHandler exposes per-user game statistics.
type StatsHandler struct {
	stats  *repository.StatsRepository
	auth   *service.AuthService
	logger *logging.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *repository.StatsRepository, auth *service.AuthService, logger *logging.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, auth: auth, logger: logger}
}

type bestStreakResponse struct {
	Mode       string `json:"mode"`
	BestStreak int    `json:"best_streak"`
}

// BestStreak returns the caller's best streak for a mode. Requires a valid
// bearer token; anonymous players have no persisted stats.
func (h *StatsHandler) BestStreak(w http.ResponseWriter, r *http.Request) {
	userID, authenticated, err := h.auth.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to authenticate", "auth lookup failed", err)
		return
	}
	if !authenticated {
		respondWithError(w, h.logger, http.StatusUnauthorized, "Authentication required", "", nil)
		return
	}

	mode := models.GameMode(r.URL.Query().Get("mode"))
	if !mode.Valid() {
		respondWithError(w, h.logger, http.StatusBadRequest, "Unsupported game mode", "", nil)
		return
	}

	best, err := h.stats.BestStreak(r.Context(), userID, mode)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to load stats", "best streak lookup failed", err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, bestStreakResponse{Mode: string(mode), BestStreak: best})
}
