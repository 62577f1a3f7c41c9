// Package moodboards manages curated collections of trend items.
package moodboards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trendintel/internal/domain/moodboard"
	"trendintel/internal/domain/trend"
)

// ErrUnknownItem is returned when a board references a trend item that
// does not exist.
var ErrUnknownItem = errors.New("one or more trend items not found")

// CreateRequest is a request to create a mood board.
type CreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"created_by,omitempty"`
	Category    string   `json:"category,omitempty"`
	ItemIDs     []string `json:"item_ids"`
}

// UpdateRequest carries the fields to change; nil means leave as-is.
type UpdateRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	ItemIDs     []string `json:"items,omitempty"`
}

// BoardDetail is a mood board with its trend items resolved.
type BoardDetail struct {
	moodboard.MoodBoard
	TrendItems []trend.TrendItem `json:"trend_items"`
}

// Page is one page of mood boards.
type Page struct {
	Boards []moodboard.MoodBoard `json:"boards"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// Service manages mood boards
type Service struct {
	boards moodboard.Store
	trends trend.Store
	now    func() time.Time
}

// NewService creates a new mood board service
func NewService(boards moodboard.Store, trends trend.Store) *Service {
	return &Service{
		boards: boards,
		trends: trends,
		now:    time.Now,
	}
}

// Create validates the referenced trend items and stores a new board.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*moodboard.MoodBoard, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if err := s.verifyItems(ctx, req.ItemIDs); err != nil {
		return nil, err
	}

	itemIDs := req.ItemIDs
	if itemIDs == nil {
		itemIDs = []string{}
	}

	now := s.now()
	board := &moodboard.MoodBoard{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
		Category:    req.Category,
		ItemIDs:     itemIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.boards.Save(ctx, board); err != nil {
		return nil, fmt.Errorf("saving mood board: %w", err)
	}

	return board, nil
}

// Get returns a board with its trend items resolved. Items that have
// been removed since the board was assembled are silently absent.
func (s *Service) Get(ctx context.Context, id string) (*BoardDetail, error) {
	board, err := s.boards.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &BoardDetail{
		MoodBoard:  *board,
		TrendItems: []trend.TrendItem{},
	}
	for _, itemID := range board.ItemIDs {
		item, err := s.trends.Get(ctx, itemID)
		if err != nil {
			if errors.Is(err, trend.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("loading board item: %w", err)
		}
		detail.TrendItems = append(detail.TrendItems, *item)
	}

	return detail, nil
}

// List pages through boards matching the filter.
func (s *Service) List(ctx context.Context, filter moodboard.Filter) (*Page, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	boards, total, err := s.boards.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing mood boards: %w", err)
	}
	if boards == nil {
		boards = []moodboard.MoodBoard{}
	}

	return &Page{
		Boards: boards,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Update applies the non-nil fields of the request to an existing board.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*moodboard.MoodBoard, error) {
	board, err := s.boards.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ItemIDs != nil {
		if err := s.verifyItems(ctx, req.ItemIDs); err != nil {
			return nil, err
		}
		board.ItemIDs = req.ItemIDs
	}
	if req.Title != nil {
		board.Title = *req.Title
	}
	if req.Description != nil {
		board.Description = *req.Description
	}
	if req.Category != nil {
		board.Category = *req.Category
	}
	board.UpdatedAt = s.now()

	if err := s.boards.Save(ctx, board); err != nil {
		return nil, fmt.Errorf("saving mood board: %w", err)
	}

	return board, nil
}

// Delete removes a board.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.boards.Delete(ctx, id)
}

func (s *Service) verifyItems(ctx context.Context, itemIDs []string) error {
	for _, itemID := range itemIDs {
		if _, err := s.trends.Get(ctx, itemID); err != nil {
			if errors.Is(err, trend.ErrNotFound) {
				return ErrUnknownItem
			}
			return fmt.Errorf("verifying board item: %w", err)
		}
	}
	return nil
}
