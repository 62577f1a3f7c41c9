package dashboard

import (
	"context"
	"testing"
	"time"

	"trendintel/internal/domain/trend"
)

type stubStore struct {
	trend.Store
	items []trend.TrendItem
}

func (s *stubStore) Find(_ context.Context, filter trend.Filter) ([]trend.TrendItem, int, error) {
	var out []trend.TrendItem
	for _, item := range s.items {
		if filter.Demographic != "" && item.Demographic != filter.Demographic {
			continue
		}
		if !filter.Since.IsZero() && item.SubmittedAt.Before(filter.Since) {
			continue
		}
		out = append(out, item)
	}
	return out, len(out), nil
}

func fixedNow() time.Time { return time.Date(2026, 5, 2, 15, 0, 0, 0, time.UTC) }

func TestSummaryAggregatesWindow(t *testing.T) {
	store := &stubStore{items: []trend.TrendItem{
		{
			ID: "1", URL: "https://a.example.com/1", Category: "dresses",
			Colors: []string{"pink", "white"}, StyleTags: []string{"coquette"},
			TrendScore: 80, VelocityScore: 120,
			SubmittedAt: fixedNow().Add(-2 * time.Hour), Demographic: "junior_girls", Status: "active",
		},
		{
			ID: "2", URL: "https://a.example.com/2", Category: "dresses",
			Colors: []string{"pink"}, StyleTags: []string{"balletcore"},
			TrendScore: 60, VelocityScore: 40,
			SubmittedAt: fixedNow().AddDate(0, 0, -3), Demographic: "junior_girls", Status: "active",
		},
		{
			ID: "3", URL: "https://a.example.com/3", Category: "denim",
			Colors: []string{"blue"}, TrendScore: 50, VelocityScore: 90,
			SubmittedAt: fixedNow().AddDate(0, 0, -40), Demographic: "young_women", Status: "active",
		},
	}}

	svc := NewService(store)
	svc.now = fixedNow

	summary, err := svc.Summary(context.Background(), 7, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.TotalActiveTrends != 3 {
		t.Errorf("total active = %d, want 3", summary.TotalActiveTrends)
	}
	if summary.NewToday != 1 {
		t.Errorf("new today = %d, want 1", summary.NewToday)
	}

	if len(summary.TopCategories) != 1 || summary.TopCategories[0].Name != "dresses" {
		t.Fatalf("top categories = %+v", summary.TopCategories)
	}
	if summary.TopCategories[0].Count != 2 || summary.TopCategories[0].TrendScore != 70 {
		t.Errorf("dresses stats = %+v", summary.TopCategories[0])
	}

	if summary.TrendingColors[0].Name != "pink" || summary.TrendingColors[0].Count != 2 {
		t.Errorf("colors = %+v", summary.TrendingColors)
	}

	if len(summary.VelocityLeaders) == 0 || summary.VelocityLeaders[0].ID != "1" {
		t.Errorf("velocity leaders = %+v", summary.VelocityLeaders)
	}
}

func TestSummaryFiltersDemographic(t *testing.T) {
	store := &stubStore{items: []trend.TrendItem{
		{ID: "1", Category: "dresses", Demographic: "junior_girls", SubmittedAt: fixedNow().Add(-time.Hour), Status: "active"},
		{ID: "2", Category: "denim", Demographic: "young_women", SubmittedAt: fixedNow().Add(-time.Hour), Status: "active"},
	}}

	svc := NewService(store)
	svc.now = fixedNow

	summary, err := svc.Summary(context.Background(), 7, "young_women")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.TotalActiveTrends != 1 {
		t.Errorf("total = %d, want 1", summary.TotalActiveTrends)
	}
	if summary.DemographicFilter != "young_women" {
		t.Errorf("filter echo = %q", summary.DemographicFilter)
	}
}
