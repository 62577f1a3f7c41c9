// Package insights aggregates active trends by category and produces
// narrative summaries for each through the classifier.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"trendintel/internal/domain/insight"
	"trendintel/internal/domain/trend"
	"trendintel/internal/service/classify"
)

// ErrAlreadyRunning is returned by StartGeneration while a previous run
// is still in progress.
var ErrAlreadyRunning = errors.New("insights generation already in progress")

// minCategorySize excludes categories with too few items to summarize.
const minCategorySize = 2

// Service generates and serves category insights
type Service struct {
	trends     trend.Store
	insights   insight.Store
	jobs       insight.JobStore
	classifier classify.Classifier
	eventBus   *nats.Conn
	topic      string
	now        func() time.Time
}

// NewService creates a new insights service
func NewService(
	trends trend.Store,
	insightStore insight.Store,
	jobs insight.JobStore,
	classifier classify.Classifier,
	eventBus *nats.Conn,
	topic string,
) *Service {
	if topic == "" {
		topic = "trend"
	}

	return &Service{
		trends:     trends,
		insights:   insightStore,
		jobs:       jobs,
		classifier: classifier,
		eventBus:   eventBus,
		topic:      topic,
		now:        time.Now,
	}
}

// Aggregate groups trend items by category and computes the per-category
// attribute distributions. Categories with fewer than two items are
// skipped. Results are ordered by item count, largest first.
func Aggregate(items []trend.TrendItem) []insight.CategoryAggregate {
	type bucket struct {
		count        int
		scoreSum     float64
		colors       *freqCounter
		patterns     *freqCounter
		styles       *freqCounter
		fabrics      *freqCounter
		demographics *freqCounter
		pricePoints  *freqCounter
	}

	buckets := map[string]*bucket{}
	var order []string

	for _, item := range items {
		cat := item.Category
		if cat == "" {
			cat = "uncategorized"
		}

		b, ok := buckets[cat]
		if !ok {
			b = &bucket{
				colors:       newFreqCounter(),
				patterns:     newFreqCounter(),
				styles:       newFreqCounter(),
				fabrics:      newFreqCounter(),
				demographics: newFreqCounter(),
				pricePoints:  newFreqCounter(),
			}
			buckets[cat] = b
			order = append(order, cat)
		}

		b.count++
		b.scoreSum += item.TrendScore
		b.colors.addAll(item.Colors)
		b.patterns.addAll(item.Patterns)
		b.styles.addAll(item.StyleTags)
		b.fabrics.addAll(item.Fabrications)
		if item.Demographic != "" {
			b.demographics.add(item.Demographic)
		}
		if item.PricePoint != "" {
			b.pricePoints.add(item.PricePoint)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return buckets[order[i]].count > buckets[order[j]].count
	})

	var aggregates []insight.CategoryAggregate
	for _, cat := range order {
		b := buckets[cat]
		if b.count < minCategorySize {
			continue
		}

		aggregates = append(aggregates, insight.CategoryAggregate{
			Category:     cat,
			Count:        b.count,
			AvgScore:     b.scoreSum / float64(b.count),
			TopColors:    b.colors.top(5),
			TopPatterns:  b.patterns.top(4),
			TopStyles:    b.styles.top(5),
			TopFabrics:   b.fabrics.top(4),
			Demographics: b.demographics.top(3),
			PricePoints:  b.pricePoints.top(3),
		})
	}

	return aggregates
}

// StartGeneration begins an asynchronous insights run and returns its
// job. A second call while a run is active returns ErrAlreadyRunning.
func (s *Service) StartGeneration(ctx context.Context) (*insight.Job, error) {
	latest, err := s.jobs.LatestJob(ctx)
	if err != nil && !errors.Is(err, insight.ErrNotFound) {
		return nil, fmt.Errorf("checking latest job: %w", err)
	}
	if latest != nil && latest.Status == insight.JobStatusRunning {
		return nil, ErrAlreadyRunning
	}

	job := insight.Job{
		ID:        uuid.New().String(),
		Status:    insight.JobStatusRunning,
		Progress:  "Aggregating trend data by category...",
		StartedAt: s.now(),
	}
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("saving job: %w", err)
	}

	go s.run(context.Background(), job)

	return &job, nil
}

func (s *Service) run(ctx context.Context, job insight.Job) {
	fail := func(reason string) {
		job.Status = insight.JobStatusFailed
		job.Error = reason
		job.CompletedAt = s.now()
		if err := s.jobs.SaveJob(ctx, job); err != nil {
			slog.Error("saving failed job", "id", job.ID, "error", err)
		}
		s.publishJob(job)
	}

	items, _, err := s.trends.Find(ctx, trend.Filter{Status: "active", Limit: 500})
	if err != nil {
		fail(fmt.Sprintf("loading trends: %v", err))
		return
	}
	if len(items) == 0 {
		fail("No active trends found")
		return
	}

	aggregates := Aggregate(items)
	if len(aggregates) == 0 {
		fail("No category has enough items to summarize")
		return
	}

	job.Progress = fmt.Sprintf("Generating insights for %d categories...", len(aggregates))
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		slog.Warn("saving job progress", "id", job.ID, "error", err)
	}

	generated, err := s.classifier.CategoryInsights(ctx, aggregates)
	if err != nil {
		fail(fmt.Sprintf("generating insights: %v", err))
		return
	}

	job.Progress = "Saving category insights..."
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		slog.Warn("saving job progress", "id", job.ID, "error", err)
	}

	saved := 0
	for i := range generated {
		if generated[i].Category == "" {
			continue
		}
		generated[i].GeneratedAt = s.now()
		if err := s.insights.UpsertInsight(ctx, &generated[i]); err != nil {
			slog.Error("saving insight", "category", generated[i].Category, "error", err)
			continue
		}
		saved++
	}

	job.Status = insight.JobStatusCompleted
	job.Progress = fmt.Sprintf("Generated %d category insights", saved)
	job.CompletedAt = s.now()
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		slog.Error("saving completed job", "id", job.ID, "error", err)
	}
	s.publishJob(job)

	slog.Info("insights generation finished", "job", job.ID, "insights", saved)
}

// Status returns the job with the given id.
func (s *Service) Status(ctx context.Context, id string) (*insight.Job, error) {
	return s.jobs.GetJob(ctx, id)
}

// LatestStatus returns the most recently started job.
func (s *Service) LatestStatus(ctx context.Context) (*insight.Job, error) {
	return s.jobs.LatestJob(ctx)
}

// List returns the stored category insights.
func (s *Service) List(ctx context.Context) ([]insight.CategoryInsight, error) {
	return s.insights.ListInsights(ctx)
}

func (s *Service) publishJob(job insight.Job) {
	if s.eventBus == nil {
		return
	}

	data, err := json.Marshal(job)
	if err != nil {
		slog.Warn("marshaling job event", "id", job.ID, "error", err)
		return
	}

	subject := fmt.Sprintf("%s.insights", s.topic)
	if err := s.eventBus.Publish(subject, data); err != nil {
		slog.Warn("publishing job event", "id", job.ID, "error", err)
	}
}

// freqCounter tallies strings while remembering first-seen order so
// ties rank deterministically.
type freqCounter struct {
	counts map[string]int
	order  []string
}

func newFreqCounter() *freqCounter {
	return &freqCounter{counts: map[string]int{}}
}

func (c *freqCounter) add(s string) {
	if _, seen := c.counts[s]; !seen {
		c.order = append(c.order, s)
	}
	c.counts[s]++
}

func (c *freqCounter) addAll(values []string) {
	for _, v := range values {
		c.add(v)
	}
}

func (c *freqCounter) top(n int) []string {
	ranked := make([]string, len(c.order))
	copy(ranked, c.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.counts[ranked[i]] > c.counts[ranked[j]]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
