package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trendintel/internal/domain/moodboard"
	"trendintel/internal/service/moodboards"
)

// MoodboardHandler handles mood board requests
type MoodboardHandler struct {
	boards *moodboards.Service
}

// NewMoodboardHandler creates a new mood board handler
func NewMoodboardHandler(boards *moodboards.Service) *MoodboardHandler {
	return &MoodboardHandler{
		boards: boards,
	}
}

// CreateBoard creates a new mood board
func (h *MoodboardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req moodboards.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "title is required", nil)
		return
	}

	board, err := h.boards.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, moodboards.ErrUnknownItem) {
			respondWithError(w, http.StatusBadRequest, "One or more trend items not found", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to create mood board", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, board)
}

// ListBoards lists mood boards with optional filtering
func (h *MoodboardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	page, err := h.boards.List(r.Context(), moodboard.Filter{
		CreatedBy: q.Get("created_by"),
		Category:  q.Get("category"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list mood boards", err)
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

// GetBoard returns a mood board with its trend items resolved
func (h *MoodboardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.boards.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, moodboard.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Mood board not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get mood board", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

// UpdateBoard applies a partial update to a mood board
func (h *MoodboardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req moodboards.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	board, err := h.boards.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, moodboard.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Mood board not found", nil)
		case errors.Is(err, moodboards.ErrUnknownItem):
			respondWithError(w, http.StatusBadRequest, "One or more trend items not found", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update mood board", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}

// DeleteBoard removes a mood board
func (h *MoodboardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.boards.Delete(r.Context(), id); err != nil {
		if errors.Is(err, moodboard.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Mood board not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to delete mood board", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Mood board deleted successfully"})
}
