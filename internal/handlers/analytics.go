package handlers

import (
	"net/http"
	"strconv"
)

// GetAnalytics returns prediction outcomes aggregated from the event log
// @Summary Prediction Analytics
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param days query int false "Look-back window in days" default(30)
// @Success 200 {object} models.AnalyticsSummary
// @Failure 400 {object} map[string]string
// @Router /analytics [get]
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 {
			h.errorResponse(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = d
	}

	summary, err := h.analytics.Summary(r.Context(), days)
	if err != nil {
		h.logger.Errorw("Failed to get analytics", "error", err, "days", days)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get analytics")
		return
	}

	h.jsonResponse(w, http.StatusOK, summary)
}
