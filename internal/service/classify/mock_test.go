package classify

import (
	"context"
	"reflect"
	"testing"
)

func TestMockAnalyzeIsDeterministic(t *testing.T) {
	c := NewMockClassifier()

	first, err := c.AnalyzeTrend(context.Background(), "https://example.com/item/1", "instagram")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	second, err := c.AnalyzeTrend(context.Background(), "https://example.com/item/1", "instagram")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("mock analysis must be stable for the same URL")
	}
	if first.Category == "" || first.EngagementEstimate <= 0 {
		t.Fatalf("analysis missing required fields: %+v", first)
	}
}

func TestMockGenerateSeedsPerBrand(t *testing.T) {
	c := NewMockClassifier()

	brands := []Brand{
		{SourceID: "s1", Name: "Brand A", URL: "https://a.example.com"},
		{SourceID: "s2", Name: "Brand B", URL: "https://b.example.com/"},
	}

	seeds, err := c.GenerateSeeds(context.Background(), brands)
	if err != nil {
		t.Fatalf("seeds: %v", err)
	}
	if len(seeds) != 6 {
		t.Fatalf("expected 3 seeds per brand, got %d", len(seeds))
	}
	urls := map[string]bool{}
	for _, s := range seeds {
		if s.ProductURL == "" || s.SourceID == "" {
			t.Errorf("seed missing url or source: %+v", s)
		}
		if urls[s.ProductURL] {
			t.Errorf("duplicate seed url %s", s.ProductURL)
		}
		urls[s.ProductURL] = true
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	a := &Analysis{EngagementEstimate: -10}
	a.Normalize()

	if a.EngagementEstimate != 0 {
		t.Errorf("negative estimate should clamp to 0, got %d", a.EngagementEstimate)
	}
	if a.PricePoint != "mid" || a.Demographic != "junior_girls" || a.Category != "uncategorized" {
		t.Errorf("defaults not applied: %+v", a)
	}
	if a.Colors == nil || a.StyleTags == nil {
		t.Errorf("nil slices should become empty")
	}
}

func TestMockRecommendIsDeterministicAndSkipsRejected(t *testing.T) {
	c := NewMockClassifier()
	rc := RecommendContext{ExistingSources: []string{"Brandy Melville", "Garage"}}

	first, err := c.Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(first))
	}

	second, err := c.Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same context must produce the same suggestions")
	}

	seen := map[string]bool{}
	for _, sug := range first {
		if sug.URL == "" || seen[sug.URL] {
			t.Fatalf("suggestion URLs must be unique and non-empty: %+v", first)
		}
		seen[sug.URL] = true
	}

	rc.RejectedURLs = []string{first[0].URL}
	filtered, err := c.Recommend(context.Background(), rc)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	for _, sug := range filtered {
		if sug.URL == first[0].URL {
			t.Errorf("rejected URL must not be re-suggested")
		}
	}
}
