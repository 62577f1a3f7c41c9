package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"trendintel/internal/domain/people"
	"trendintel/internal/service/scrape"
)

// PeopleHandler manages the tracked-people registry and scrape runs
type PeopleHandler struct {
	store   people.Store
	scraper *scrape.Service
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(store people.Store, scraper *scrape.Service) *PeopleHandler {
	return &PeopleHandler{
		store:   store,
		scraper: scraper,
	}
}

// ListPeople returns tracked people
func (h *PeopleHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active_only"))

	result, err := h.store.ListPeople(r.Context(), activeOnly)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list people", err)
		return
	}
	if result == nil {
		result = []people.Person{}
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetPerson returns one tracked person
func (h *PeopleHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing person ID", nil)
		return
	}

	person, err := h.store.GetPerson(r.Context(), id)
	if err != nil {
		if errors.Is(err, people.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Person not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get person", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, person)
}

// CreatePerson registers a new tracked person
func (h *PeopleHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var person people.Person
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if person.Name == "" {
		respondWithError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	if person.Type == "" {
		person.Type = "influencer"
	}
	if person.ScrapeFrequency == "" {
		person.ScrapeFrequency = "daily"
	}
	person.Active = true
	for i := range person.Platforms {
		person.Platforms[i].PersonID = person.ID
	}

	if err := h.store.SavePerson(r.Context(), &person); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save person", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, person)
}

// ScrapePerson runs an on-demand scrape for one person
func (h *PeopleHandler) ScrapePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing person ID", nil)
		return
	}

	result, err := h.scraper.ScrapePerson(r.Context(), id)
	if err != nil {
		if errors.Is(err, people.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Person not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Scrape failed", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ScrapeAll runs a scrape pass over every active person
func (h *PeopleHandler) ScrapeAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.scraper.ScrapeAll(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Scrape failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}
