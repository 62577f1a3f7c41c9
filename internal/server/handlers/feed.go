package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"trendintel/internal/domain/analysis"
	"trendintel/internal/domain/people"
	"trendintel/internal/service/feed"
)

// FeedHandler serves the scraped-post feed and trend analysis
type FeedHandler struct {
	feed *feed.Service
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedSvc *feed.Service) *FeedHandler {
	return &FeedHandler{
		feed: feedSvc,
	}
}

// GetFeed returns a page of scraped posts
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days, _ := strconv.Atoi(q.Get("days"))
	if days <= 0 || days > 365 {
		days = 30
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	sortBy := q.Get("sort_by")
	switch sortBy {
	case "engagement", "recent", "views":
	default:
		sortBy = "engagement"
	}

	filter := people.PostFilter{
		Platform:   q.Get("platform"),
		PersonID:   q.Get("person_id"),
		PersonType: q.Get("person_type"),
		SortBy:     sortBy,
		Limit:      limit,
		Offset:     offset,
	}

	page, err := h.feed.Posts(r.Context(), filter, days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load feed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

// GetFeedStats returns scrape activity stats for the feed window
func (h *FeedHandler) GetFeedStats(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 || days > 365 {
		days = 7
	}

	stats, err := h.feed.Stats(r.Context(), days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load stats", err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// GetTrendAnalysis runs the analysis engine over the recent feed
func (h *FeedHandler) GetTrendAnalysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days, _ := strconv.Atoi(q.Get("days"))
	if days <= 0 || days > 90 {
		days = 7
	}

	minMentions := 2
	if raw := q.Get("min_mentions"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "min_mentions must be an integer", nil)
			return
		}
		minMentions = parsed
	}
	if minMentions > 20 {
		minMentions = 20
	}

	report, err := h.feed.AnalyzeRecent(r.Context(), days, minMentions)
	if err != nil {
		if errors.Is(err, analysis.ErrInvalidArgument) {
			respondWithError(w, http.StatusBadRequest, "min_mentions must be at least 1", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Analysis failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
