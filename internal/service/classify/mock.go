package classify

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"trendintel/internal/domain/insight"
)

// Mock data pools for development without an API key.
var mockCategories = []string{
	"midi dress", "crop top", "cargo pants", "mini skirt", "blazer",
	"oversized shirt", "slip dress", "bucket hat", "vintage jeans",
	"ballet flats", "platform sneakers", "trench coat", "wrap dress",
	"bodysuit", "maxi skirt", "leather jacket", "tote bag",
}

var mockColors = []string{
	"navy blue", "cream", "chocolate brown", "olive green", "mauve",
	"burnt orange", "sage green", "butter yellow", "blush pink",
	"charcoal grey", "white", "black", "camel", "rust", "burgundy",
}

var mockPatterns = []string{
	"solid", "plaid", "striped", "floral", "checkered", "polka dot",
	"paisley", "animal print", "houndstooth", "gingham",
}

var mockStyleTags = []string{
	"cottagecore", "y2k", "clean girl", "mob wife", "quiet luxury",
	"coquette", "dark academia", "soft girl", "gorpcore", "barbiecore",
	"maximalist", "minimalist", "grunge", "preppy", "streetwear",
}

var mockFabrications = []string{
	"cotton", "linen", "silk", "satin", "denim", "knit", "leather",
	"polyester blend", "cashmere", "mesh",
}

var mockPricePoints = []string{"budget", "mid", "luxury", "designer"}

// MockClassifier produces deterministic pseudo-analysis keyed by the input
// URL, so development runs are reproducible without an API key.
type MockClassifier struct{}

// NewMockClassifier returns the deterministic development classifier.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// AnalyzeTrend derives stable mock attributes from a hash of the URL.
func (m *MockClassifier) AnalyzeTrend(_ context.Context, url, _ string) (*Analysis, error) {
	seed := hashOf(url)

	analysis := &Analysis{
		Category:           pick(mockCategories, seed),
		Colors:             pickN(mockColors, seed>>3, 1+int(seed%3)),
		Patterns:           pickN(mockPatterns, seed>>5, 1+int(seed%2)),
		StyleTags:          pickN(mockStyleTags, seed>>7, 2+int(seed%3)),
		Fabrications:       pickN(mockFabrications, seed>>9, 1+int(seed%2)),
		PricePoint:         pick(mockPricePoints, seed>>11),
		Demographic:        "junior_girls",
		EngagementEstimate: 100 + int(seed%49_900),
		Narrative: "This item exemplifies current trending aesthetics. The styling combines " +
			"elements of popular substyles while maintaining contemporary appeal to junior " +
			"fashion consumers.",
	}

	analysis.Normalize()
	return analysis, nil
}

// GenerateSeeds produces three stable seed products per brand.
func (m *MockClassifier) GenerateSeeds(_ context.Context, brands []Brand) ([]SeedProduct, error) {
	var seeds []SeedProduct
	for _, brand := range brands {
		for i := 0; i < 3; i++ {
			seed := hashOf(fmt.Sprintf("%s#%d", brand.URL, i))
			category := pick(mockCategories, seed)
			slug := strings.ReplaceAll(category, " ", "-")
			seeds = append(seeds, SeedProduct{
				SourceID:          brand.SourceID,
				ProductURL:        fmt.Sprintf("%s/products/%s-%d", strings.TrimSuffix(brand.URL, "/"), slug, seed%10_000),
				Category:          category,
				Colors:            pickN(mockColors, seed>>3, 2),
				Patterns:          pickN(mockPatterns, seed>>5, 1),
				StyleTags:         pickN(mockStyleTags, seed>>7, 3),
				Fabrications:      pickN(mockFabrications, seed>>9, 2),
				PricePoint:        pick(mockPricePoints, seed>>11),
				Demographic:       "junior_girls",
				Narrative:         fmt.Sprintf("A %s drop from %s aligned with what junior shoppers are saving right now.", category, brand.Name),
				EstimatedLikes:    500 + int(seed%20_000),
				EstimatedComments: 50 + int(seed%2_000),
				EstimatedShares:   10 + int(seed%500),
				EstimatedViews:    5_000 + int(seed%200_000),
			})
		}
	}
	return seeds, nil
}

// CategoryInsights writes a template summary per aggregate.
func (m *MockClassifier) CategoryInsights(_ context.Context, aggregates []insight.CategoryAggregate) ([]insight.CategoryInsight, error) {
	now := time.Now().UTC()
	insights := make([]insight.CategoryInsight, 0, len(aggregates))
	for _, agg := range aggregates {
		summary := fmt.Sprintf(
			"%s is holding %d active trend items at an average score of %.1f.",
			agg.Category, agg.Count, agg.AvgScore,
		)
		if len(agg.TopColors) > 0 {
			summary += fmt.Sprintf(" Leading colors: %s.", strings.Join(agg.TopColors, ", "))
		}
		if len(agg.TopStyles) > 0 {
			summary += fmt.Sprintf(" Dominant aesthetics: %s.", strings.Join(agg.TopStyles, ", "))
		}
		insights = append(insights, insight.CategoryInsight{
			Category: agg.Category,
			Summary:  summary,
			KeyCharacteristics: map[string]any{
				"colors":       agg.TopColors,
				"patterns":     agg.TopPatterns,
				"styles":       agg.TopStyles,
				"fabrications": agg.TopFabrics,
			},
			TrendingItemsCount: agg.Count,
			AvgTrendScore:      agg.AvgScore,
			GeneratedAt:        now,
		})
	}
	return insights, nil
}

var mockBoutiques = []string{
	"Peony Atelier", "Juniper Lane", "Velvet Hour", "Cherry Soda Shop",
	"Meadow & Moss", "Tangerine States", "Opaline Studio", "Daisy Chain Co",
}

// Recommend proposes deterministic boutiques keyed by the tracked
// sources, skipping anything already rejected.
func (m *MockClassifier) Recommend(_ context.Context, rc RecommendContext) ([]Suggestion, error) {
	rejected := make(map[string]bool, len(rc.RejectedURLs))
	for _, url := range rc.RejectedURLs {
		rejected[url] = true
	}

	seed := hashOf("rec#" + strings.Join(rc.ExistingSources, "|"))
	names := pickN(mockBoutiques, seed, 3)

	var suggestions []Suggestion
	for i, name := range names {
		slug := strings.ToLower(strings.ReplaceAll(name, " ", ""))
		url := fmt.Sprintf("https://%s.example.com", slug)

		kind := "source"
		platform := "ecommerce"
		if (seed+uint64(i))%3 == 0 {
			kind = "influencer"
			platform = "instagram"
			url = fmt.Sprintf("https://instagram.com/%s", slug)
		}
		if rejected[url] {
			continue
		}

		style := pick(mockStyleTags, seed>>uint(4+i))
		suggestions = append(suggestions, Suggestion{
			Type:            kind,
			Title:           name,
			Description:     fmt.Sprintf("%s carries the %s aesthetic the junior market is saving.", name, style),
			URL:             url,
			Platform:        platform,
			Reason:          fmt.Sprintf("Strong overlap with trending %s looks.", style),
			ConfidenceScore: 0.55 + float64((seed>>uint(i))%40)/100,
		})
	}
	return suggestions, nil
}

func hashOf(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func pick(pool []string, seed uint64) string {
	return pool[seed%uint64(len(pool))]
}

func pickN(pool []string, seed uint64, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	start := int(seed % uint64(len(pool)))
	for i := 0; i < n; i++ {
		out = append(out, pool[(start+i*3)%len(pool)])
	}
	return out
}
