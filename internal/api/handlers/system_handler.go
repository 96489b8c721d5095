package handlers

import (
	"net/http"

	"github.com/koloni/koloni-be/internal/monitoring"
	"github.com/rs/zerolog/log"
)

// SystemHandler serves host health information for the dashboard.
type SystemHandler struct{}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// GetStats handles GET /system/stats with a point-in-time host snapshot.
func (h *SystemHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := monitoring.Sample()
	if err != nil {
		log.Error().Err(err).Msg("Failed to sample host stats")
		http.Error(w, "Failed to sample host stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
