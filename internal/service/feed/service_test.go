package feed

import (
	"context"
	"testing"
	"time"

	"trendintel/internal/domain/people"
)

type fakeStore struct {
	people map[string]people.Person
	posts  []people.ScrapedPost
	filter people.PostFilter
}

func (f *fakeStore) SavePerson(_ context.Context, p *people.Person) error {
	f.people[p.ID] = *p
	return nil
}

func (f *fakeStore) GetPerson(_ context.Context, id string) (*people.Person, error) {
	p, ok := f.people[id]
	if !ok {
		return nil, people.ErrNotFound
	}
	return &p, nil
}

func (f *fakeStore) ListPeople(_ context.Context, _ bool) ([]people.Person, error) {
	return nil, nil
}

func (f *fakeStore) SavePost(_ context.Context, post *people.ScrapedPost) error {
	f.posts = append(f.posts, *post)
	return nil
}

func (f *fakeStore) GetPostByPlatformID(_ context.Context, _, _ string) (*people.ScrapedPost, error) {
	return nil, people.ErrNotFound
}

func (f *fakeStore) FindPosts(_ context.Context, filter people.PostFilter) ([]people.ScrapedPost, int, error) {
	f.filter = filter
	var out []people.ScrapedPost
	for _, post := range f.posts {
		if !filter.Since.IsZero() && post.ScrapedAt.Before(filter.Since) {
			continue
		}
		out = append(out, post)
	}
	return out, len(out), nil
}

func (f *fakeStore) Stats(_ context.Context, _ time.Time) (*people.FeedStats, error) {
	return &people.FeedStats{TotalPosts: len(f.posts)}, nil
}

func fixedNow() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

func newTestFeed() (*Service, *fakeStore) {
	store := &fakeStore{
		people: map[string]people.Person{
			"p1": {ID: "p1", Name: "Ari Styles", Type: "influencer"},
			"p2": {ID: "p2", Name: "Bea Mode", Type: "celebrity"},
		},
	}
	store.posts = []people.ScrapedPost{
		{ID: "a", PersonID: "p1", Platform: "instagram", Caption: "spring look #cottagecore", Hashtags: []string{"cottagecore"}, Likes: 100, ScrapedAt: fixedNow().AddDate(0, 0, -1)},
		{ID: "b", PersonID: "p2", Platform: "tiktok", Caption: "cottagecore dress haul", Hashtags: []string{"cottagecore"}, Likes: 50, ScrapedAt: fixedNow().AddDate(0, 0, -2)},
		{ID: "old", PersonID: "p1", Platform: "instagram", Caption: "last season", Likes: 900, ScrapedAt: fixedNow().AddDate(0, 0, -60)},
	}

	svc := NewService(store, nil)
	svc.now = fixedNow
	return svc, store
}

func TestPostsJoinsOwnerAndWindows(t *testing.T) {
	svc, store := newTestFeed()

	page, err := svc.Posts(context.Background(), people.PostFilter{}, 30)
	if err != nil {
		t.Fatalf("posts: %v", err)
	}

	if page.Total != 2 || len(page.Posts) != 2 {
		t.Fatalf("expected 2 posts inside window, got %+v", page)
	}
	if page.Posts[0].PersonName != "Ari Styles" || page.Posts[0].PersonType != "influencer" {
		t.Errorf("owner not joined: %+v", page.Posts[0])
	}

	wantSince := fixedNow().AddDate(0, 0, -30)
	if !store.filter.Since.Equal(wantSince) {
		t.Errorf("since = %v, want %v", store.filter.Since, wantSince)
	}
	if store.filter.Limit != 50 {
		t.Errorf("default limit = %d, want 50", store.filter.Limit)
	}
}

func TestStatsSetsPeriod(t *testing.T) {
	svc, _ := newTestFeed()

	stats, err := svc.Stats(context.Background(), 14)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PeriodDays != 14 {
		t.Errorf("period = %d, want 14", stats.PeriodDays)
	}
}

func TestAnalyzeRecentFindsConvergence(t *testing.T) {
	svc, _ := newTestFeed()

	report, err := svc.AnalyzeRecent(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if report.TotalPosts != 2 {
		t.Fatalf("analyzed %d posts, want 2", report.TotalPosts)
	}

	found := false
	for _, conv := range report.CrossPersonTrends {
		if conv.Trend == "cottagecore" && conv.PeopleCount == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected cottagecore convergence across 2 people: %+v", report.CrossPersonTrends)
	}
}
