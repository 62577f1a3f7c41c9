package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trendintel/internal/domain/insight"
	"trendintel/internal/service/insights"
)

// InsightsHandler serves generated category insights and their jobs
type InsightsHandler struct {
	insights *insights.Service
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(svc *insights.Service) *InsightsHandler {
	return &InsightsHandler{
		insights: svc,
	}
}

// Generate starts an asynchronous insights generation job
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	job, err := h.insights.StartGeneration(r.Context())
	if err != nil {
		if errors.Is(err, insights.ErrAlreadyRunning) {
			respondWithJSON(w, http.StatusOK, map[string]string{
				"message": "Generation already in progress",
				"status":  insight.JobStatusRunning,
			})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to start generation", err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, job)
}

// Status reports the state of a generation job. Without an id it
// reports the most recent job.
func (h *InsightsHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var job *insight.Job
	var err error
	if id == "" {
		job, err = h.insights.LatestStatus(r.Context())
	} else {
		job, err = h.insights.Status(r.Context(), id)
	}

	if err != nil {
		if errors.Is(err, insight.ErrNotFound) {
			respondWithJSON(w, http.StatusOK, map[string]string{"status": "idle"})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load job", err)
		return
	}

	respondWithJSON(w, http.StatusOK, job)
}

// List returns the stored category insights
func (h *InsightsHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.insights.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list insights", err)
		return
	}
	if result == nil {
		result = []insight.CategoryInsight{}
	}

	respondWithJSON(w, http.StatusOK, result)
}
