// Package recommendation models AI-suggested sources and the
// thumbs-up/down feedback loop that steers future suggestions.
package recommendation

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a recommendation does not exist.
var ErrNotFound = errors.New("recommendation not found")

// Recommendation statuses.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusDismissed = "dismissed"
)

// Feedback types.
const (
	ThumbsUp   = "thumbs_up"
	ThumbsDown = "thumbs_down"
)

// Recommendation is one AI-proposed source or influencer to track.
type Recommendation struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	URL             string     `json:"url"`
	Platform        string     `json:"platform"`
	Reason          string     `json:"reason,omitempty"`
	ConfidenceScore float64    `json:"confidence_score"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
}

// Feedback is one thumbs-up/down vote on an entity. There is at most one
// vote per entity; a new vote replaces the old one.
type Feedback struct {
	EntityType   string    `json:"entity_type"`
	EntityID     string    `json:"entity_id"`
	FeedbackType string    `json:"feedback_type"`
	Context      string    `json:"context,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Summary aggregates all recorded feedback.
type Summary struct {
	TotalThumbsUp      int      `json:"total_thumbs_up"`
	TotalThumbsDown    int      `json:"total_thumbs_down"`
	LikedCategories    []string `json:"liked_categories"`
	DislikedCategories []string `json:"disliked_categories"`
	LikedSources       []string `json:"liked_sources"`
}

// Store persists recommendations.
type Store interface {
	SaveRecommendation(ctx context.Context, rec *Recommendation) error
	GetRecommendation(ctx context.Context, id string) (*Recommendation, error)
	GetRecommendationByURL(ctx context.Context, url string) (*Recommendation, error)
	// ListRecommendations returns recommendations in any of the given
	// statuses, highest confidence first.
	ListRecommendations(ctx context.Context, statuses []string, limit int) ([]Recommendation, error)
}

// FeedbackStore persists feedback votes.
type FeedbackStore interface {
	SaveFeedback(ctx context.Context, fb *Feedback) error
	RecentFeedback(ctx context.Context, limit int) ([]Feedback, error)
	FeedbackCounts(ctx context.Context) (up, down int, err error)
	EntityIDs(ctx context.Context, entityType, feedbackType string) ([]string, error)
}
