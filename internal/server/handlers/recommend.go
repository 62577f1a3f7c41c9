package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trendintel/internal/domain/recommendation"
	"trendintel/internal/domain/trend"
	"trendintel/internal/service/recommend"
)

// RecommendHandler handles recommendation and feedback requests
type RecommendHandler struct {
	recommender *recommend.Service
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(recommender *recommend.Service) *RecommendHandler {
	return &RecommendHandler{
		recommender: recommender,
	}
}

// ListRecommendations returns recommendations, pending by default
func (h *RecommendHandler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	recs, err := h.recommender.List(r.Context(), q.Get("status"), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list recommendations", err)
		return
	}

	respondWithJSON(w, http.StatusOK, recs)
}

// GenerateRecommendations asks the classifier for new sources to track
func (h *RecommendHandler) GenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	result, err := h.recommender.Generate(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Recommendation generation failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// RespondToRecommendation accepts, rejects, or dismisses a recommendation
func (h *RecommendHandler) RespondToRecommendation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.recommender.Respond(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrInvalidStatus):
			respondWithError(w, http.StatusBadRequest, "status must be accepted, rejected, or dismissed", nil)
		case errors.Is(err, recommendation.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Recommendation not found", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to respond to recommendation", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":            rec.Status,
		"recommendation_id": rec.ID,
	})
}

// SubmitTrendFeedback records a thumbs up/down vote on a trend item
func (h *RecommendHandler) SubmitTrendFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		FeedbackType string `json:"feedback_type"`
		Context      string `json:"context,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.recommender.TrendFeedback(r.Context(), id, req.FeedbackType, req.Context); err != nil {
		switch {
		case errors.Is(err, recommend.ErrInvalidFeedback):
			respondWithError(w, http.StatusBadRequest, "feedback_type must be thumbs_up or thumbs_down", nil)
		case errors.Is(err, trend.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Trend not found", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to record feedback", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":   "recorded",
		"trend_id": id,
		"feedback": req.FeedbackType,
	})
}

// GetFeedbackSummary returns aggregated feedback stats
func (h *RecommendHandler) GetFeedbackSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.recommender.Summary(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to summarize feedback", err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
