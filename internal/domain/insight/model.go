// Package insight defines the typed aggregates and job state used by the
// category insight generator.
package insight

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a job or insight does not exist.
var ErrNotFound = errors.New("insight not found")

// CategoryAggregate is the explicit grouping of active trend items by
// category, computed before any narrative generation. It is independent of
// any classifier's response shape.
type CategoryAggregate struct {
	Category     string   `json:"category"`
	Count        int      `json:"count"`
	AvgScore     float64  `json:"avg_score"`
	TopColors    []string `json:"top_colors"`
	TopPatterns  []string `json:"top_patterns"`
	TopStyles    []string `json:"top_styles"`
	TopFabrics   []string `json:"top_fabrications"`
	Demographics []string `json:"demographics"`
	PricePoints  []string `json:"price_points"`
}

// CategoryInsight is a persisted narrative summary for one category.
type CategoryInsight struct {
	Category           string         `json:"category"`
	Summary            string         `json:"summary"`
	KeyCharacteristics map[string]any `json:"key_characteristics,omitempty"`
	TrendingItemsCount int            `json:"trending_items_count"`
	AvgTrendScore      float64        `json:"avg_trend_score"`
	StyleDistribution  map[string]int `json:"style_tags_distribution,omitempty"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

// Job status values.
const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job is the explicit state of one insight generation run, keyed by id.
// Workers persist Job values through a JobStore instead of mutating any
// process-wide status.
type Job struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Progress    string    `json:"progress,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// JobStore persists job state keyed by job id.
type JobStore interface {
	SaveJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	LatestJob(ctx context.Context) (*Job, error)
}

// Store persists generated category insights.
type Store interface {
	UpsertInsight(ctx context.Context, ins *CategoryInsight) error
	ListInsights(ctx context.Context) ([]CategoryInsight, error)
}
