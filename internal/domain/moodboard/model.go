// Package moodboard models curated collections of trend items that
// buyers assemble for a season or a story.
package moodboard

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a mood board does not exist.
var ErrNotFound = errors.New("mood board not found")

// MoodBoard is a named collection of trend item IDs.
type MoodBoard struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	Category    string    `json:"category,omitempty"`
	ItemIDs     []string  `json:"item_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Filter narrows a mood board listing.
type Filter struct {
	CreatedBy string
	Category  string
	Limit     int
	Offset    int
}

// Store persists mood boards.
type Store interface {
	Save(ctx context.Context, board *MoodBoard) error
	Get(ctx context.Context, id string) (*MoodBoard, error)
	List(ctx context.Context, filter Filter) ([]MoodBoard, int, error)
	Delete(ctx context.Context, id string) error
}
