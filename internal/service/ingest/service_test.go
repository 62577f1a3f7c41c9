package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"trendintel/internal/domain/trend"
	"trendintel/internal/service/classify"
)

type fakeTrendStore struct {
	items     map[string]trend.TrendItem
	byURL     map[string]string
	snapshots map[string][]trend.MetricSnapshot
}

func newFakeTrendStore() *fakeTrendStore {
	return &fakeTrendStore{
		items:     map[string]trend.TrendItem{},
		byURL:     map[string]string{},
		snapshots: map[string][]trend.MetricSnapshot{},
	}
}

func (f *fakeTrendStore) Save(_ context.Context, t *trend.TrendItem) error {
	f.items[t.ID] = *t
	f.byURL[t.URL] = t.ID
	return nil
}

func (f *fakeTrendStore) Get(_ context.Context, id string) (*trend.TrendItem, error) {
	t, ok := f.items[id]
	if !ok {
		return nil, trend.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTrendStore) GetByURL(_ context.Context, url string) (*trend.TrendItem, error) {
	id, ok := f.byURL[url]
	if !ok {
		return nil, trend.ErrNotFound
	}
	t := f.items[id]
	return &t, nil
}

func (f *fakeTrendStore) Find(_ context.Context, filter trend.Filter) ([]trend.TrendItem, int, error) {
	var out []trend.TrendItem
	for _, t := range f.items {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}

func (f *fakeTrendStore) AppendSnapshot(_ context.Context, id string, snap trend.MetricSnapshot) error {
	f.snapshots[id] = append(f.snapshots[id], snap)
	return nil
}

func (f *fakeTrendStore) Snapshots(_ context.Context, id string, since time.Time) ([]trend.MetricSnapshot, error) {
	var out []trend.MetricSnapshot
	for _, snap := range f.snapshots[id] {
		if !snap.RecordedAt.Before(since) {
			out = append(out, snap)
		}
	}
	return out, nil
}

type fakeSourceStore struct {
	sources []trend.Source
}

func (f *fakeSourceStore) SaveSource(_ context.Context, src *trend.Source) error {
	f.sources = append(f.sources, *src)
	return nil
}

func (f *fakeSourceStore) ListSources(_ context.Context, platform string, activeOnly bool) ([]trend.Source, error) {
	var out []trend.Source
	for _, src := range f.sources {
		if platform != "" && src.Platform != platform {
			continue
		}
		if activeOnly && !src.Active {
			continue
		}
		out = append(out, src)
	}
	return out, nil
}

func newTestService(store *fakeTrendStore, sources *fakeSourceStore) *Service {
	svc := NewService(store, sources, classify.NewMockClassifier(), nil, Config{EventsTopic: "trend"})
	svc.now = func() time.Time { return time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestSubmitStoresScoredItemWithSnapshot(t *testing.T) {
	store := newFakeTrendStore()
	svc := newTestService(store, &fakeSourceStore{})

	item, err := svc.Submit(context.Background(), SubmitRequest{
		URL:         "https://www.tiktok.com/@someone/video/123",
		SubmittedBy: "buyer@label.com",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if item.SourcePlatform != "TikTok" {
		t.Errorf("platform = %q, want TikTok", item.SourcePlatform)
	}
	if item.Status != "active" {
		t.Errorf("status = %q, want active", item.Status)
	}
	if item.Category == "" || item.Demographic == "" || item.PricePoint == "" {
		t.Errorf("classification fields not populated: %+v", item)
	}
	if item.Views > 0 {
		if item.Likes != item.Views/4 || item.Comments != item.Views/10 || item.Shares != item.Views/20 {
			t.Errorf("counters not derived from estimate: likes=%d comments=%d shares=%d views=%d",
				item.Likes, item.Comments, item.Shares, item.Views)
		}
	}
	if item.TrendScore < 0 || item.TrendScore > 100 {
		t.Errorf("trend score %v out of range", item.TrendScore)
	}

	snaps := store.snapshots[item.ID]
	if len(snaps) != 1 {
		t.Fatalf("expected 1 initial snapshot, got %d", len(snaps))
	}
	if snaps[0].Likes != item.Likes || snaps[0].TrendScore != item.TrendScore {
		t.Errorf("snapshot does not match item: %+v vs %+v", snaps[0], item)
	}
}

func TestSubmitRejectsDuplicateURL(t *testing.T) {
	store := newFakeTrendStore()
	svc := newTestService(store, &fakeSourceStore{})

	req := SubmitRequest{URL: "https://www.instagram.com/p/abc/"}
	if _, err := svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), req); !errors.Is(err, ErrDuplicateURL) {
		t.Fatalf("expected ErrDuplicateURL, got %v", err)
	}
}

func TestSeedFromSourcesRequiresEcommerce(t *testing.T) {
	store := newFakeTrendStore()
	sources := &fakeSourceStore{sources: []trend.Source{
		{ID: "s1", Name: "Some Blog", URL: "https://blog.example.com", Platform: "editorial", Active: true},
	}}
	svc := newTestService(store, sources)

	if _, err := svc.SeedFromSources(context.Background()); !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
}

func TestSeedFromSourcesCreatesAndSkips(t *testing.T) {
	store := newFakeTrendStore()
	sources := &fakeSourceStore{sources: []trend.Source{
		{ID: "s1", Name: "Brandy Melville", URL: "https://brandymelville.com", Platform: "ecommerce", Active: true},
	}}
	svc := newTestService(store, sources)

	first, err := svc.SeedFromSources(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if first.Created != 3 || first.Skipped != 0 || first.Errors != 0 {
		t.Fatalf("first run = %+v, want 3 created", first)
	}
	if first.SourcesProcessed != 1 {
		t.Errorf("sources processed = %d, want 1", first.SourcesProcessed)
	}

	// The mock classifier is deterministic, so a second run hits the
	// same URLs and skips everything.
	second, err := svc.SeedFromSources(context.Background())
	if err != nil {
		t.Fatalf("seed again: %v", err)
	}
	if second.Created != 0 || second.Skipped != 3 {
		t.Fatalf("second run = %+v, want 3 skipped", second)
	}
}

func TestReanalyzePreservesCounters(t *testing.T) {
	store := newFakeTrendStore()
	svc := newTestService(store, &fakeSourceStore{})

	item, err := svc.Submit(context.Background(), SubmitRequest{URL: "https://www.pinterest.com/pin/999/"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	again, err := svc.Reanalyze(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("reanalyze: %v", err)
	}

	if again.Likes != item.Likes || again.Views != item.Views {
		t.Errorf("reanalyze must not touch counters: %+v vs %+v", again, item)
	}
	if again.Demographic != item.Demographic {
		t.Errorf("reanalyze must not touch demographic")
	}

	// Every rescore leaves a snapshot: one from submit, one from
	// reanalyze.
	if got := len(store.snapshots[item.ID]); got != 2 {
		t.Errorf("expected 2 snapshots after reanalyze, got %d", got)
	}
}

// blankDemographicClassifier simulates a model response that omits the
// demographic field.
type blankDemographicClassifier struct {
	classify.Classifier
}

func (c blankDemographicClassifier) AnalyzeTrend(ctx context.Context, url, platform string) (*classify.Analysis, error) {
	analysis, err := c.Classifier.AnalyzeTrend(ctx, url, platform)
	if err != nil {
		return nil, err
	}
	analysis.Demographic = ""
	return analysis, nil
}

func TestSubmitDemographicPrefersClassifier(t *testing.T) {
	store := newFakeTrendStore()
	svc := newTestService(store, &fakeSourceStore{})

	// The mock classifier returns junior_girls. A request value must
	// not override a real classification, even the default one.
	item, err := svc.Submit(context.Background(), SubmitRequest{
		URL:         "https://www.tiktok.com/@a/video/77",
		Demographic: "young_women",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if item.Demographic != "junior_girls" {
		t.Errorf("demographic = %q, want classifier's junior_girls", item.Demographic)
	}
}

func TestSubmitDemographicFallsBackToRequest(t *testing.T) {
	store := newFakeTrendStore()
	svc := newTestService(store, &fakeSourceStore{})
	svc.classifier = blankDemographicClassifier{classify.NewMockClassifier()}

	item, err := svc.Submit(context.Background(), SubmitRequest{
		URL:         "https://www.tiktok.com/@a/video/78",
		Demographic: "young_women",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if item.Demographic != "young_women" {
		t.Errorf("demographic = %q, want request's young_women", item.Demographic)
	}
}

func TestRefreshMetricsRescoresActiveTrends(t *testing.T) {
	store := newFakeTrendStore()
	svc := newTestService(store, &fakeSourceStore{})

	item, err := svc.Submit(context.Background(), SubmitRequest{URL: "https://www.tiktok.com/@a/video/1"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Advance the clock and bump counters so the refresh sees growth.
	svc.now = func() time.Time { return time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC) }
	grown := store.items[item.ID]
	grown.Likes *= 3
	grown.Comments *= 3
	store.items[item.ID] = grown

	updated, err := svc.RefreshMetrics(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	if got := len(store.snapshots[item.ID]); got != 2 {
		t.Errorf("expected 2 snapshots after refresh, got %d", got)
	}

	rescored := store.items[item.ID]
	if rescored.LastUpdated.Equal(item.LastUpdated) {
		t.Errorf("last_updated not advanced")
	}
	if item.Likes > 0 && rescored.VelocityScore <= item.VelocityScore {
		t.Errorf("velocity score should rise with growth: %v <= %v", rescored.VelocityScore, item.VelocityScore)
	}
}

func TestPlatformOf(t *testing.T) {
	cases := map[string]string{
		"https://www.tiktok.com/@x/video/1":  "TikTok",
		"https://instagram.com/p/abc/":       "Instagram",
		"https://x.com/someone/status/5":     "Twitter",
		"https://shop.example.com/dress":     "Other",
		"not a url":                          "Other",
		"https://www.pinterest.com/pin/1/":   "Pinterest",
		"https://youtu.be/dQw4w9WgXcQ":       "YouTube",
	}

	for raw, want := range cases {
		if got := PlatformOf(raw); got != want {
			t.Errorf("PlatformOf(%q) = %q, want %q", raw, got, want)
		}
	}
}
