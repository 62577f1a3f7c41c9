package insights

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"trendintel/internal/domain/insight"
	"trendintel/internal/domain/trend"
	"trendintel/internal/service/classify"
)

func item(category string, score float64, colors, styles []string) trend.TrendItem {
	return trend.TrendItem{
		ID:          category + "-" + colors[0],
		Category:    category,
		TrendScore:  score,
		Colors:      colors,
		StyleTags:   styles,
		Demographic: "junior_girls",
		PricePoint:  "mid",
		Status:      "active",
	}
}

func TestAggregateSkipsSmallCategories(t *testing.T) {
	items := []trend.TrendItem{
		item("dresses", 80, []string{"pink"}, []string{"coquette"}),
		item("dresses", 60, []string{"pink", "white"}, []string{"coquette", "balletcore"}),
		item("denim", 90, []string{"blue"}, []string{"y2k"}),
	}

	aggs := Aggregate(items)
	if len(aggs) != 1 {
		t.Fatalf("expected only dresses to survive, got %d aggregates", len(aggs))
	}

	agg := aggs[0]
	if agg.Category != "dresses" || agg.Count != 2 {
		t.Errorf("aggregate = %+v", agg)
	}
	if agg.AvgScore != 70 {
		t.Errorf("avg score = %v, want 70", agg.AvgScore)
	}
	if agg.TopColors[0] != "pink" {
		t.Errorf("top color = %v, want pink first", agg.TopColors)
	}
	if !reflect.DeepEqual(agg.Demographics, []string{"junior_girls"}) {
		t.Errorf("demographics = %v", agg.Demographics)
	}
}

func TestAggregateOrdersByCount(t *testing.T) {
	items := []trend.TrendItem{
		item("tops", 50, []string{"red"}, nil),
		item("tops", 50, []string{"green"}, nil),
		item("skirts", 50, []string{"plaid"}, nil),
		item("skirts", 50, []string{"black"}, nil),
		item("skirts", 50, []string{"grey"}, nil),
	}

	aggs := Aggregate(items)
	if len(aggs) != 2 {
		t.Fatalf("got %d aggregates", len(aggs))
	}
	if aggs[0].Category != "skirts" || aggs[1].Category != "tops" {
		t.Errorf("order = %s, %s; want skirts first", aggs[0].Category, aggs[1].Category)
	}
}

func TestAggregateDefaultsBlankCategory(t *testing.T) {
	items := []trend.TrendItem{
		item("", 10, []string{"red"}, nil),
		item("", 20, []string{"blue"}, nil),
	}

	aggs := Aggregate(items)
	if len(aggs) != 1 || aggs[0].Category != "uncategorized" {
		t.Fatalf("blank categories should group as uncategorized: %+v", aggs)
	}
}

type fakeTrendFinder struct {
	trend.Store
	items []trend.TrendItem
}

func (f *fakeTrendFinder) Find(_ context.Context, _ trend.Filter) ([]trend.TrendItem, int, error) {
	return f.items, len(f.items), nil
}

type fakeInsightStore struct {
	saved []insight.CategoryInsight
}

func (f *fakeInsightStore) UpsertInsight(_ context.Context, ins *insight.CategoryInsight) error {
	f.saved = append(f.saved, *ins)
	return nil
}

func (f *fakeInsightStore) ListInsights(_ context.Context) ([]insight.CategoryInsight, error) {
	return f.saved, nil
}

type memJobStore struct {
	jobs   map[string]insight.Job
	latest string
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: map[string]insight.Job{}}
}

func (m *memJobStore) SaveJob(_ context.Context, job insight.Job) error {
	m.jobs[job.ID] = job
	m.latest = job.ID
	return nil
}

func (m *memJobStore) GetJob(_ context.Context, id string) (*insight.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, insight.ErrNotFound
	}
	return &job, nil
}

func (m *memJobStore) LatestJob(_ context.Context) (*insight.Job, error) {
	job, ok := m.jobs[m.latest]
	if !ok {
		return nil, insight.ErrNotFound
	}
	return &job, nil
}

func TestGenerationRunCompletesJob(t *testing.T) {
	trends := &fakeTrendFinder{items: []trend.TrendItem{
		item("dresses", 80, []string{"pink"}, []string{"coquette"}),
		item("dresses", 60, []string{"white"}, []string{"balletcore"}),
	}}
	store := &fakeInsightStore{}
	jobs := newMemJobStore()

	svc := NewService(trends, store, jobs, classify.NewMockClassifier(), nil, "trend")
	svc.now = func() time.Time { return time.Date(2026, 4, 15, 8, 0, 0, 0, time.UTC) }

	job := insight.Job{ID: "j1", Status: insight.JobStatusRunning, StartedAt: svc.now()}
	if err := jobs.SaveJob(context.Background(), job); err != nil {
		t.Fatalf("save: %v", err)
	}

	svc.run(context.Background(), job)

	done, err := jobs.GetJob(context.Background(), "j1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if done.Status != insight.JobStatusCompleted {
		t.Fatalf("job status = %q (%s), want completed", done.Status, done.Error)
	}
	if done.CompletedAt.IsZero() {
		t.Errorf("completed_at not set")
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected 1 insight saved, got %d", len(store.saved))
	}
	if store.saved[0].Category != "dresses" || store.saved[0].Summary == "" {
		t.Errorf("saved insight = %+v", store.saved[0])
	}
}

func TestGenerationRunFailsWithoutTrends(t *testing.T) {
	svc := NewService(&fakeTrendFinder{}, &fakeInsightStore{}, newMemJobStore(), classify.NewMockClassifier(), nil, "trend")

	job := insight.Job{ID: "j2", Status: insight.JobStatusRunning, StartedAt: time.Now()}
	if err := svc.jobs.SaveJob(context.Background(), job); err != nil {
		t.Fatalf("save: %v", err)
	}

	svc.run(context.Background(), job)

	done, err := svc.jobs.GetJob(context.Background(), "j2")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if done.Status != insight.JobStatusFailed || done.Error == "" {
		t.Errorf("job = %+v, want failed with reason", done)
	}
}

func TestStartGenerationRejectsConcurrentRuns(t *testing.T) {
	jobs := newMemJobStore()
	running := insight.Job{ID: "busy", Status: insight.JobStatusRunning, StartedAt: time.Now()}
	if err := jobs.SaveJob(context.Background(), running); err != nil {
		t.Fatalf("save: %v", err)
	}

	svc := NewService(&fakeTrendFinder{}, &fakeInsightStore{}, jobs, classify.NewMockClassifier(), nil, "trend")

	if _, err := svc.StartGeneration(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}
