package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"trendintel/internal/domain/trend"
	"trendintel/internal/service/ingest"
)

// TrendHandler handles trend-related HTTP requests
type TrendHandler struct {
	ingest  *ingest.Service
	trends  trend.Store
	sources trend.SourceStore
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(ingestSvc *ingest.Service, trends trend.Store, sources trend.SourceStore) *TrendHandler {
	return &TrendHandler{
		ingest:  ingestSvc,
		trends:  trends,
		sources: sources,
	}
}

// SubmitTrend accepts a new trend URL for analysis
func (h *TrendHandler) SubmitTrend(w http.ResponseWriter, r *http.Request) {
	var req ingest.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.URL == "" {
		respondWithError(w, http.StatusBadRequest, "url is required", nil)
		return
	}

	item, err := h.ingest.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, ingest.ErrDuplicateURL) {
			respondWithError(w, http.StatusBadRequest, "URL already submitted", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to submit trend", err)
		return
	}

	respondWithJSON(w, http.StatusOK, item)
}

// GetDailyTrends returns trending items with filtering and sorting
func (h *TrendHandler) GetDailyTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	// The frontend sends either field name.
	platform := q.Get("source_platform")
	if platform == "" {
		platform = q.Get("platform")
	}

	sortBy := "trend_score"
	switch q.Get("sort_by") {
	case "velocity_score":
		sortBy = "velocity"
	case "submitted_at", "newest":
		sortBy = "recent"
	}

	filter := trend.Filter{
		Category:    q.Get("category"),
		Platform:    platform,
		Demographic: q.Get("demographic"),
		Status:      "active",
		SortBy:      sortBy,
		Limit:       limit,
		Offset:      offset,
	}

	items, total, err := h.trends.Find(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get trends", err)
		return
	}
	if items == nil {
		items = []trend.TrendItem{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetTrend returns a specific trend by ID
func (h *TrendHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing trend ID", nil)
		return
	}

	item, err := h.trends.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, trend.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Trend not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get trend", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, item)
}

// GetTrendMetrics returns the time-series snapshot history for a trend
func (h *TrendHandler) GetTrendMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing trend ID", nil)
		return
	}

	hours, _ := strconv.Atoi(r.URL.Query().Get("hours"))
	if hours <= 0 || hours > 720 {
		hours = 24
	}

	if _, err := h.trends.Get(r.Context(), id); err != nil {
		if errors.Is(err, trend.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Trend not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get trend", err)
		}
		return
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	snaps, err := h.trends.Snapshots(r.Context(), id, since)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get metrics", err)
		return
	}
	if snaps == nil {
		snaps = []trend.MetricSnapshot{}
	}

	respondWithJSON(w, http.StatusOK, snaps)
}

// ReanalyzeTrend re-runs classification on an existing trend
func (h *TrendHandler) ReanalyzeTrend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing trend ID", nil)
		return
	}

	item, err := h.ingest.Reanalyze(r.Context(), id)
	if err != nil {
		if errors.Is(err, trend.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Trend not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to reanalyze trend", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, item)
}

// SeedTrends generates trend items from the registered ecommerce sources
func (h *TrendHandler) SeedTrends(w http.ResponseWriter, r *http.Request) {
	result, err := h.ingest.SeedFromSources(r.Context())
	if err != nil {
		if errors.Is(err, ingest.ErrNoSources) {
			respondWithError(w, http.StatusBadRequest, "No ecommerce sources found", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Seed generation failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ListSources returns the registered brand sources
func (h *TrendHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	activeOnly, _ := strconv.ParseBool(q.Get("active_only"))

	sources, err := h.sources.ListSources(r.Context(), q.Get("platform"), activeOnly)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list sources", err)
		return
	}
	if sources == nil {
		sources = []trend.Source{}
	}

	respondWithJSON(w, http.StatusOK, sources)
}

// AddSource registers a new brand source
func (h *TrendHandler) AddSource(w http.ResponseWriter, r *http.Request) {
	var src trend.Source
	if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if src.Name == "" || src.URL == "" {
		respondWithError(w, http.StatusBadRequest, "name and url are required", nil)
		return
	}
	if src.Platform == "" {
		src.Platform = "ecommerce"
	}
	if src.ID == "" {
		src.ID = uuid.New().String()
	}
	src.Active = true
	if src.AddedAt.IsZero() {
		src.AddedAt = time.Now()
	}

	if err := h.sources.SaveSource(r.Context(), &src); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save source", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, src)
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		slog.Error("request failed", "code", code, "message", message, "error", err)
	}

	respondWithJSON(w, code, map[string]string{"error": message})
}
