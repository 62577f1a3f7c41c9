package trend

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a trend item does not exist.
var ErrNotFound = errors.New("trend not found")

// TrendItem represents one piece of tracked content: a submitted URL, a
// generated seed product, or a social post folded into the scoring flow.
type TrendItem struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	SourcePlatform string    `json:"source_platform"`
	ImageURL       string    `json:"image_url,omitempty"`
	SubmittedBy    string    `json:"submitted_by"`
	SubmittedAt    time.Time `json:"submitted_at"`

	// Classification (populated by the attribute classifier)
	Category     string   `json:"category,omitempty"`
	Subcategory  string   `json:"subcategory,omitempty"`
	Colors       []string `json:"colors,omitempty"`
	Patterns     []string `json:"patterns,omitempty"`
	StyleTags    []string `json:"style_tags,omitempty"`
	Fabrications []string `json:"fabrications,omitempty"`
	PricePoint   string   `json:"price_point,omitempty"`
	Demographic  string   `json:"demographic,omitempty"`
	Narrative    string   `json:"narrative,omitempty"`

	// Engagement counters
	Likes          int     `json:"likes"`
	Comments       int     `json:"comments"`
	Shares         int     `json:"shares"`
	Views          int     `json:"views"`
	EngagementRate float64 `json:"engagement_rate"`

	// Derived scores. Never set directly; only UpdateScores writes them.
	TrendScore         float64 `json:"trend_score"`
	VelocityScore      float64 `json:"velocity_score"`
	CrossPlatformScore float64 `json:"cross_platform_score"`

	Status      string    `json:"status"`
	SourceID    string    `json:"source_id,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// MetricSnapshot is an immutable point-in-time copy of a trend item's
// counters and score. Snapshots are append-only, ordered by RecordedAt,
// and are the only input to velocity computation.
type MetricSnapshot struct {
	Likes      int       `json:"likes"`
	Comments   int       `json:"comments"`
	Shares     int       `json:"shares"`
	Views      int       `json:"views"`
	TrendScore float64   `json:"trend_score"`
	RecordedAt time.Time `json:"recorded_at"`
}

// SnapshotOf captures the item's current counters and score.
func SnapshotOf(item *TrendItem, at time.Time) MetricSnapshot {
	return MetricSnapshot{
		Likes:      item.Likes,
		Comments:   item.Comments,
		Shares:     item.Shares,
		Views:      item.Views,
		TrendScore: item.TrendScore,
		RecordedAt: at,
	}
}

// Source is a monitored origin for seed generation (ecommerce brand, account).
type Source struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Platform  string    `json:"platform"`
	Active    bool      `json:"active"`
	AddedBy   string    `json:"added_by"`
	AddedAt   time.Time `json:"added_at"`
	SeedCount int       `json:"seed_count"`
}

// Filter defines criteria for listing trend items.
type Filter struct {
	Category    string
	Platform    string
	Demographic string
	Status      string
	Since       time.Time
	SortBy      string // trend_score (default), velocity_score, submitted_at
	Limit       int
	Offset      int
}

// Store defines persistence for trend items and their snapshot history.
type Store interface {
	Save(ctx context.Context, item *TrendItem) error
	Get(ctx context.Context, id string) (*TrendItem, error)
	GetByURL(ctx context.Context, url string) (*TrendItem, error)
	Find(ctx context.Context, filter Filter) ([]TrendItem, int, error)

	// AppendSnapshot records an immutable metric snapshot for a trend item.
	AppendSnapshot(ctx context.Context, trendID string, snap MetricSnapshot) error
	// Snapshots returns snapshots recorded at or after since, ordered by
	// RecordedAt ascending.
	Snapshots(ctx context.Context, trendID string, since time.Time) ([]MetricSnapshot, error)
}

// SourceStore defines persistence for monitored seed sources.
type SourceStore interface {
	SaveSource(ctx context.Context, src *Source) error
	ListSources(ctx context.Context, platform string, activeOnly bool) ([]Source, error)
}
