package handlers

import (
	"net/http"
	"strconv"

	"trendintel/internal/service/dashboard"
)

// DashboardHandler serves the aggregated dashboard summary
type DashboardHandler struct {
	dashboard *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		dashboard: svc,
	}
}

// GetSummary returns the dashboard summary for the trailing window
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days, _ := strconv.Atoi(q.Get("days"))
	if days <= 0 || days > 90 {
		days = 7
	}

	summary, err := h.dashboard.Summary(r.Context(), days, q.Get("demographic"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to build summary", err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
