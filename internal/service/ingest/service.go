// Package ingest owns the write path for trend items: URL submission,
// seed generation from ecommerce sources, reanalysis, and the periodic
// metric refresh that keeps scores current.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"trendintel/internal/domain/trend"
	"trendintel/internal/service/classify"
)

// ErrDuplicateURL is returned when a URL has already been submitted.
var ErrDuplicateURL = errors.New("url already submitted")

// ErrNoSources is returned by SeedFromSources when no ecommerce sources
// are registered.
var ErrNoSources = errors.New("no ecommerce sources found")

// Config contains configuration for the ingest service
type Config struct {
	EventsTopic    string
	SnapshotWindow time.Duration
}

// SubmitRequest is a request to track a new trend URL
type SubmitRequest struct {
	URL            string `json:"url"`
	SourcePlatform string `json:"source_platform,omitempty"`
	SubmittedBy    string `json:"submitted_by,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	SourceID       string `json:"source_id,omitempty"`
	Demographic    string `json:"demographic,omitempty"`
}

// SeedResult summarizes one seed generation run
type SeedResult struct {
	Created          int `json:"created"`
	Skipped          int `json:"skipped"`
	SourcesProcessed int `json:"sources_processed"`
	Errors           int `json:"errors"`
}

// Service coordinates classification, scoring, and persistence for
// trend items.
type Service struct {
	trends     trend.Store
	sources    trend.SourceStore
	classifier classify.Classifier
	eventBus   *nats.Conn
	config     Config
	now        func() time.Time
}

// NewService creates a new ingest service
func NewService(
	trends trend.Store,
	sources trend.SourceStore,
	classifier classify.Classifier,
	eventBus *nats.Conn,
	config Config,
) *Service {
	if config.SnapshotWindow <= 0 {
		config.SnapshotWindow = 24 * time.Hour
	}
	if config.EventsTopic == "" {
		config.EventsTopic = "trend"
	}

	return &Service{
		trends:     trends,
		sources:    sources,
		classifier: classifier,
		eventBus:   eventBus,
		config:     config,
		now:        time.Now,
	}
}

// Submit analyzes a new trend URL, scores it, and stores it along with
// its first metric snapshot. Submitting a URL twice returns
// ErrDuplicateURL.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*trend.TrendItem, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("url is required")
	}

	existing, err := s.trends.GetByURL(ctx, req.URL)
	if err != nil && !errors.Is(err, trend.ErrNotFound) {
		return nil, fmt.Errorf("checking for duplicate: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateURL
	}

	platform := req.SourcePlatform
	if platform == "" {
		platform = PlatformOf(req.URL)
	}
	analysis, err := s.classifier.AnalyzeTrend(ctx, req.URL, platform)
	if err != nil {
		return nil, fmt.Errorf("analyzing trend: %w", err)
	}
	classified := analysis.Demographic != ""
	analysis.Normalize()

	// The classifier's demographic wins; the request value only fills
	// in when classification came back empty.
	demographic := analysis.Demographic
	if req.Demographic != "" && !classified {
		demographic = req.Demographic
	}

	now := s.now()
	item := &trend.TrendItem{
		ID:             uuid.New().String(),
		URL:            req.URL,
		SourcePlatform: platform,
		ImageURL:       req.ImageURL,
		SubmittedBy:    req.SubmittedBy,
		SubmittedAt:    now,
		Category:       analysis.Category,
		Subcategory:    analysis.Subcategory,
		Colors:         analysis.Colors,
		Patterns:       analysis.Patterns,
		StyleTags:      analysis.StyleTags,
		Fabrications:   analysis.Fabrications,
		PricePoint:     analysis.PricePoint,
		Demographic:    demographic,
		Narrative:      analysis.Narrative,
		Likes:          analysis.EngagementEstimate / 4,
		Comments:       analysis.EngagementEstimate / 10,
		Shares:         analysis.EngagementEstimate / 20,
		Views:          analysis.EngagementEstimate,
		Status:         "active",
		SourceID:       req.SourceID,
		LastUpdated:    now,
	}

	trend.UpdateScores(item, nil, now)

	if err := s.trends.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("saving trend: %w", err)
	}

	if err := s.trends.AppendSnapshot(ctx, item.ID, trend.SnapshotOf(item, now)); err != nil {
		return nil, fmt.Errorf("recording initial snapshot: %w", err)
	}

	s.publishScored(item)

	slog.Info("trend submitted",
		"id", item.ID,
		"platform", item.SourcePlatform,
		"category", item.Category,
		"trend_score", item.TrendScore)

	return item, nil
}

// SeedFromSources asks the classifier to invent trending products for
// every registered ecommerce source and stores the ones whose URLs are
// new.
func (s *Service) SeedFromSources(ctx context.Context) (*SeedResult, error) {
	sources, err := s.sources.ListSources(ctx, "ecommerce", true)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	var brands []classify.Brand
	for _, src := range sources {
		brands = append(brands, classify.Brand{
			SourceID: src.ID,
			Name:     src.Name,
			URL:      src.URL,
		})
	}

	if len(brands) == 0 {
		return nil, ErrNoSources
	}

	seeds, err := s.classifier.GenerateSeeds(ctx, brands)
	if err != nil {
		return nil, fmt.Errorf("generating seeds: %w", err)
	}

	result := &SeedResult{SourcesProcessed: len(brands)}
	now := s.now()

	for _, seed := range seeds {
		if seed.ProductURL == "" {
			result.Errors++
			continue
		}

		existing, err := s.trends.GetByURL(ctx, seed.ProductURL)
		if err != nil && !errors.Is(err, trend.ErrNotFound) {
			slog.Warn("checking seed for duplicate", "url", seed.ProductURL, "error", err)
			result.Errors++
			continue
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		item := &trend.TrendItem{
			ID:             uuid.New().String(),
			URL:            seed.ProductURL,
			SourcePlatform: "ecommerce",
			SubmittedBy:    "AI Seed Generator",
			SubmittedAt:    now,
			Category:       seed.Category,
			Colors:         seed.Colors,
			Patterns:       seed.Patterns,
			StyleTags:      seed.StyleTags,
			Fabrications:   seed.Fabrications,
			PricePoint:     seed.PricePoint,
			Demographic:    seed.Demographic,
			Narrative:      seed.Narrative,
			Likes:          seed.EstimatedLikes,
			Comments:       seed.EstimatedComments,
			Shares:         seed.EstimatedShares,
			Views:          seed.EstimatedViews,
			Status:         "active",
			SourceID:       seed.SourceID,
			LastUpdated:    now,
		}

		trend.UpdateScores(item, nil, now)

		if err := s.trends.Save(ctx, item); err != nil {
			slog.Warn("saving seed trend", "url", seed.ProductURL, "error", err)
			result.Errors++
			continue
		}

		if err := s.trends.AppendSnapshot(ctx, item.ID, trend.SnapshotOf(item, now)); err != nil {
			slog.Warn("recording seed snapshot", "id", item.ID, "error", err)
			result.Errors++
			continue
		}

		s.publishScored(item)
		result.Created++
	}

	slog.Info("seed generation finished",
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", result.Errors,
		"sources", result.SourcesProcessed)

	return result, nil
}

// Reanalyze re-runs classification on an existing trend and rescores it.
// Engagement counters and demographic are left as-is.
func (s *Service) Reanalyze(ctx context.Context, id string) (*trend.TrendItem, error) {
	item, err := s.trends.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	analysis, err := s.classifier.AnalyzeTrend(ctx, item.URL, item.SourcePlatform)
	if err != nil {
		return nil, fmt.Errorf("analyzing trend: %w", err)
	}
	analysis.Normalize()

	item.Category = analysis.Category
	item.Subcategory = analysis.Subcategory
	item.Colors = analysis.Colors
	item.Patterns = analysis.Patterns
	item.StyleTags = analysis.StyleTags
	item.PricePoint = analysis.PricePoint
	item.Narrative = analysis.Narrative

	now := s.now()
	history, err := s.trends.Snapshots(ctx, item.ID, now.Add(-s.config.SnapshotWindow))
	if err != nil {
		return nil, fmt.Errorf("loading snapshots: %w", err)
	}

	trend.UpdateScores(item, history, now)
	item.LastUpdated = now

	if err := s.trends.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("saving trend: %w", err)
	}

	if err := s.trends.AppendSnapshot(ctx, item.ID, trend.SnapshotOf(item, now)); err != nil {
		return nil, fmt.Errorf("recording snapshot: %w", err)
	}

	s.publishScored(item)

	return item, nil
}

// RefreshMetrics rescores every active trend against its recent snapshot
// history and appends a fresh snapshot. Returns the number of trends
// updated.
func (s *Service) RefreshMetrics(ctx context.Context) (int, error) {
	items, _, err := s.trends.Find(ctx, trend.Filter{Status: "active", Limit: 500})
	if err != nil {
		return 0, fmt.Errorf("listing active trends: %w", err)
	}

	now := s.now()
	updated := 0

	for i := range items {
		item := &items[i]

		history, err := s.trends.Snapshots(ctx, item.ID, now.Add(-s.config.SnapshotWindow))
		if err != nil {
			slog.Warn("loading snapshots", "id", item.ID, "error", err)
			continue
		}

		trend.UpdateScores(item, history, now)
		item.LastUpdated = now

		if err := s.trends.Save(ctx, item); err != nil {
			slog.Warn("saving rescored trend", "id", item.ID, "error", err)
			continue
		}

		if err := s.trends.AppendSnapshot(ctx, item.ID, trend.SnapshotOf(item, now)); err != nil {
			slog.Warn("appending snapshot", "id", item.ID, "error", err)
			continue
		}

		updated++
	}

	slog.Info("metric refresh finished", "updated", updated, "total", len(items))

	return updated, nil
}

// Run periodically refreshes metrics until the context is canceled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RefreshMetrics(ctx); err != nil {
				slog.Error("metric refresh failed", "error", err)
			}
		}
	}
}

func (s *Service) publishScored(item *trend.TrendItem) {
	if s.eventBus == nil {
		return
	}

	data, err := json.Marshal(item)
	if err != nil {
		slog.Warn("marshaling trend event", "id", item.ID, "error", err)
		return
	}

	topic := fmt.Sprintf("%s.scored", s.config.EventsTopic)
	if err := s.eventBus.Publish(topic, data); err != nil {
		slog.Warn("publishing trend event", "id", item.ID, "error", err)
	}
}
