// Package recommend grows the source list: the classifier proposes new
// sources and influencers, buyers accept or reject them, and the votes
// feed back into the next generation round.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trendintel/internal/domain/recommendation"
	"trendintel/internal/domain/trend"
	"trendintel/internal/service/classify"
)

// ErrInvalidStatus is returned for a response status outside
// accepted/rejected/dismissed.
var ErrInvalidStatus = errors.New("invalid recommendation status")

// ErrInvalidFeedback is returned for a vote other than thumbs_up or
// thumbs_down.
var ErrInvalidFeedback = errors.New("invalid feedback type")

const (
	maxFeedbackContext = 50
	maxFeedbackLabels  = 20
	maxRejectedURLs    = 50
)

// GenerateResult summarizes one recommendation generation run.
type GenerateResult struct {
	Created          int `json:"created"`
	TotalSuggestions int `json:"total_suggestions"`
}

// Service coordinates recommendation generation and the feedback loop.
type Service struct {
	recs       recommendation.Store
	feedback   recommendation.FeedbackStore
	trends     trend.Store
	sources    trend.SourceStore
	classifier classify.Classifier
	now        func() time.Time
}

// NewService creates a new recommendation service
func NewService(
	recs recommendation.Store,
	feedback recommendation.FeedbackStore,
	trends trend.Store,
	sources trend.SourceStore,
	classifier classify.Classifier,
) *Service {
	return &Service{
		recs:       recs,
		feedback:   feedback,
		trends:     trends,
		sources:    sources,
		classifier: classifier,
		now:        time.Now,
	}
}

// List returns recommendations in the given status, defaulting to
// pending, highest confidence first.
func (s *Service) List(ctx context.Context, status string, limit int) ([]recommendation.Recommendation, error) {
	if status == "" {
		status = recommendation.StatusPending
	}
	recs, err := s.recs.ListRecommendations(ctx, []string{status}, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}
	if recs == nil {
		recs = []recommendation.Recommendation{}
	}
	return recs, nil
}

// Generate asks the classifier for new sources to track, steered by the
// current source list and past feedback, and stores the suggestions
// whose URLs are new.
func (s *Service) Generate(ctx context.Context) (*GenerateResult, error) {
	sources, err := s.sources.ListSources(ctx, "", true)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	sourceNames := make([]string, 0, len(sources))
	for _, src := range sources {
		sourceNames = append(sourceNames, src.Name)
	}

	votes, err := s.feedback.RecentFeedback(ctx, maxFeedbackContext)
	if err != nil {
		return nil, fmt.Errorf("loading feedback: %w", err)
	}
	var liked, disliked []string
	for _, fb := range votes {
		label := fmt.Sprintf("%s:%s", fb.EntityType, fb.EntityID)
		switch fb.FeedbackType {
		case recommendation.ThumbsUp:
			liked = append(liked, label)
		case recommendation.ThumbsDown:
			disliked = append(disliked, label)
		}
	}

	rejected, err := s.recs.ListRecommendations(ctx,
		[]string{recommendation.StatusRejected, recommendation.StatusDismissed}, maxRejectedURLs)
	if err != nil {
		return nil, fmt.Errorf("loading rejected recommendations: %w", err)
	}
	rejectedURLs := make([]string, 0, len(rejected))
	for _, rec := range rejected {
		rejectedURLs = append(rejectedURLs, rec.URL)
	}

	suggestions, err := s.classifier.Recommend(ctx, classify.RecommendContext{
		ExistingSources: sourceNames,
		Liked:           capList(liked, maxFeedbackLabels),
		Disliked:        capList(disliked, maxFeedbackLabels),
		RejectedURLs:    rejectedURLs,
	})
	if err != nil {
		return nil, fmt.Errorf("generating recommendations: %w", err)
	}

	result := &GenerateResult{TotalSuggestions: len(suggestions)}
	now := s.now()

	for _, sug := range suggestions {
		if sug.URL == "" {
			continue
		}

		existing, err := s.recs.GetRecommendationByURL(ctx, sug.URL)
		if err != nil && !errors.Is(err, recommendation.ErrNotFound) {
			slog.Warn("checking recommendation for duplicate", "url", sug.URL, "error", err)
			continue
		}
		if existing != nil {
			continue
		}

		rec := &recommendation.Recommendation{
			ID:              uuid.New().String(),
			Type:            sug.Type,
			Title:           sug.Title,
			Description:     sug.Description,
			URL:             sug.URL,
			Platform:        sug.Platform,
			Reason:          sug.Reason,
			ConfidenceScore: sug.ConfidenceScore,
			Status:          recommendation.StatusPending,
			CreatedAt:       now,
		}
		if rec.Type == "" {
			rec.Type = "source"
		}
		if rec.Platform == "" {
			rec.Platform = "ecommerce"
		}
		if rec.ConfidenceScore == 0 {
			rec.ConfidenceScore = 0.5
		}

		if err := s.recs.SaveRecommendation(ctx, rec); err != nil {
			slog.Warn("saving recommendation", "url", sug.URL, "error", err)
			continue
		}
		result.Created++
	}

	slog.Info("recommendation generation finished",
		"created", result.Created,
		"suggestions", result.TotalSuggestions)

	return result, nil
}

// Respond accepts, rejects, or dismisses a recommendation. Accepting
// registers the recommendation as a new source. Either way the response
// is recorded as feedback for future rounds.
func (s *Service) Respond(ctx context.Context, id, status string) (*recommendation.Recommendation, error) {
	switch status {
	case recommendation.StatusAccepted, recommendation.StatusRejected, recommendation.StatusDismissed:
	default:
		return nil, ErrInvalidStatus
	}

	rec, err := s.recs.GetRecommendation(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec.Status = status
	rec.RespondedAt = &now

	if err := s.recs.SaveRecommendation(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving recommendation: %w", err)
	}

	if status == recommendation.StatusAccepted {
		if err := s.addAsSource(ctx, rec, now); err != nil {
			return nil, err
		}
	}

	vote := recommendation.ThumbsDown
	if status == recommendation.StatusAccepted {
		vote = recommendation.ThumbsUp
	}
	fb := &recommendation.Feedback{
		EntityType:   "recommendation",
		EntityID:     rec.ID,
		FeedbackType: vote,
		RecordedAt:   now,
	}
	if err := s.feedback.SaveFeedback(ctx, fb); err != nil {
		return nil, fmt.Errorf("recording feedback: %w", err)
	}

	return rec, nil
}

// TrendFeedback records a thumbs-up/down vote on a trend item,
// replacing any earlier vote on the same item.
func (s *Service) TrendFeedback(ctx context.Context, trendID, feedbackType, note string) error {
	if feedbackType != recommendation.ThumbsUp && feedbackType != recommendation.ThumbsDown {
		return ErrInvalidFeedback
	}

	if _, err := s.trends.Get(ctx, trendID); err != nil {
		return err
	}

	fb := &recommendation.Feedback{
		EntityType:   "trend",
		EntityID:     trendID,
		FeedbackType: feedbackType,
		Context:      note,
		RecordedAt:   s.now(),
	}
	if err := s.feedback.SaveFeedback(ctx, fb); err != nil {
		return fmt.Errorf("recording feedback: %w", err)
	}

	return nil
}

// Summary aggregates all recorded feedback into the shape the model is
// steered with.
func (s *Service) Summary(ctx context.Context) (*recommendation.Summary, error) {
	up, down, err := s.feedback.FeedbackCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting feedback: %w", err)
	}

	likedCategories, err := s.trendCategories(ctx, recommendation.ThumbsUp)
	if err != nil {
		return nil, err
	}
	dislikedCategories, err := s.trendCategories(ctx, recommendation.ThumbsDown)
	if err != nil {
		return nil, err
	}

	accepted, err := s.recs.ListRecommendations(ctx, []string{recommendation.StatusAccepted}, maxRejectedURLs)
	if err != nil {
		return nil, fmt.Errorf("loading accepted recommendations: %w", err)
	}
	likedSources := make([]string, 0, len(accepted))
	for _, rec := range accepted {
		likedSources = append(likedSources, rec.Title)
	}

	return &recommendation.Summary{
		TotalThumbsUp:      up,
		TotalThumbsDown:    down,
		LikedCategories:    likedCategories,
		DislikedCategories: dislikedCategories,
		LikedSources:       likedSources,
	}, nil
}

func (s *Service) addAsSource(ctx context.Context, rec *recommendation.Recommendation, now time.Time) error {
	existing, err := s.sources.ListSources(ctx, "", false)
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}
	for _, src := range existing {
		if src.URL == rec.URL {
			return nil
		}
	}

	src := &trend.Source{
		ID:       uuid.New().String(),
		Name:     rec.Title,
		URL:      rec.URL,
		Platform: rec.Platform,
		Active:   true,
		AddedBy:  "AI Recommendation",
		AddedAt:  now,
	}
	if err := s.sources.SaveSource(ctx, src); err != nil {
		return fmt.Errorf("adding recommended source: %w", err)
	}

	slog.Info("recommendation accepted as source", "id", rec.ID, "name", rec.Title)
	return nil
}

func (s *Service) trendCategories(ctx context.Context, vote string) ([]string, error) {
	ids, err := s.feedback.EntityIDs(ctx, "trend", vote)
	if err != nil {
		return nil, fmt.Errorf("loading voted trends: %w", err)
	}

	seen := map[string]bool{}
	categories := []string{}
	for _, id := range ids {
		item, err := s.trends.Get(ctx, id)
		if err != nil {
			if errors.Is(err, trend.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("loading voted trend: %w", err)
		}
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		categories = append(categories, item.Category)
	}

	return categories, nil
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
