// Package classify is the AI attribute-classification boundary. Raw model
// responses are parsed into explicit value types here, and all input
// defaulting happens once in Normalize rather than at call sites.
package classify

import (
	"context"

	"trendintel/internal/domain/insight"
)

// Analysis is the validated result of classifying one trend URL.
type Analysis struct {
	Category           string   `json:"category"`
	Subcategory        string   `json:"subcategory,omitempty"`
	Colors             []string `json:"colors"`
	Patterns           []string `json:"patterns"`
	StyleTags          []string `json:"style_tags"`
	Fabrications       []string `json:"fabrications"`
	PricePoint         string   `json:"price_point"`
	Demographic        string   `json:"demographic"`
	EngagementEstimate int      `json:"engagement_estimate"`
	Narrative          string   `json:"narrative"`
}

// Normalize applies the defaulting rules in one place: negative estimates
// become zero, nil slices become empty, blank enums get their defaults.
func (a *Analysis) Normalize() {
	if a.EngagementEstimate < 0 {
		a.EngagementEstimate = 0
	}
	if a.Colors == nil {
		a.Colors = []string{}
	}
	if a.Patterns == nil {
		a.Patterns = []string{}
	}
	if a.StyleTags == nil {
		a.StyleTags = []string{}
	}
	if a.Fabrications == nil {
		a.Fabrications = []string{}
	}
	if a.PricePoint == "" {
		a.PricePoint = "mid"
	}
	if a.Demographic == "" {
		a.Demographic = "junior_girls"
	}
	if a.Category == "" {
		a.Category = "uncategorized"
	}
}

// Brand identifies one ecommerce source for seed generation.
type Brand struct {
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

// SeedProduct is one classifier-generated trending product for a brand.
type SeedProduct struct {
	SourceID          string   `json:"source_id"`
	ProductURL        string   `json:"product_url"`
	Category          string   `json:"category"`
	Colors            []string `json:"colors"`
	Patterns          []string `json:"patterns"`
	StyleTags         []string `json:"style_tags"`
	Fabrications      []string `json:"fabrications"`
	PricePoint        string   `json:"price_point"`
	Demographic       string   `json:"demographic"`
	Narrative         string   `json:"narrative"`
	EstimatedLikes    int      `json:"estimated_likes"`
	EstimatedComments int      `json:"estimated_comments"`
	EstimatedShares   int      `json:"estimated_shares"`
	EstimatedViews    int      `json:"estimated_views"`
}

// Suggestion is one classifier-proposed source or influencer to track.
type Suggestion struct {
	Type            string  `json:"type"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	URL             string  `json:"url"`
	Platform        string  `json:"platform"`
	Reason          string  `json:"reason"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// RecommendContext is what the model sees when proposing new sources:
// what is already tracked, what the buyers voted on, and what they
// already turned down.
type RecommendContext struct {
	ExistingSources []string
	Liked           []string
	Disliked        []string
	RejectedURLs    []string
}

// Classifier turns URLs and aggregates into structured fashion attributes.
// Implementations must return fully normalized values.
type Classifier interface {
	AnalyzeTrend(ctx context.Context, url, sourcePlatform string) (*Analysis, error)
	GenerateSeeds(ctx context.Context, brands []Brand) ([]SeedProduct, error)
	CategoryInsights(ctx context.Context, aggregates []insight.CategoryAggregate) ([]insight.CategoryInsight, error)
	Recommend(ctx context.Context, rc RecommendContext) ([]Suggestion, error)
}
