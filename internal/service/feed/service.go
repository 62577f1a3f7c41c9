// Package feed serves the scraped-post feed and runs the trend
// analysis engine over recent posts.
package feed

import (
	"context"
	"fmt"
	"time"

	"trendintel/internal/domain/analysis"
	"trendintel/internal/domain/people"
)

// Page is one page of the post feed.
type Page struct {
	Posts  []PostView `json:"posts"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// PostView is a feed post joined with its owner's name and type.
type PostView struct {
	people.ScrapedPost
	PersonName string `json:"person_name"`
	PersonType string `json:"person_type"`
}

// Service reads the scraped-post feed
type Service struct {
	store  people.Store
	engine *analysis.Engine
	now    func() time.Time
}

// NewService creates a new feed service
func NewService(store people.Store, engine *analysis.Engine) *Service {
	if engine == nil {
		engine = analysis.NewEngine(nil)
	}

	return &Service{
		store:  store,
		engine: engine,
		now:    time.Now,
	}
}

// Posts returns a page of scraped posts from the trailing window of
// days, sorted by engagement unless the filter says otherwise.
func (s *Service) Posts(ctx context.Context, filter people.PostFilter, days int) (*Page, error) {
	if days <= 0 {
		days = 30
	}
	filter.Since = s.now().AddDate(0, 0, -days)

	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	posts, total, err := s.store.FindPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}

	views := make([]PostView, 0, len(posts))
	names := map[string]*people.Person{}
	for _, post := range posts {
		person, ok := names[post.PersonID]
		if !ok {
			person, err = s.store.GetPerson(ctx, post.PersonID)
			if err != nil {
				person = &people.Person{ID: post.PersonID}
			}
			names[post.PersonID] = person
		}

		views = append(views, PostView{
			ScrapedPost: post,
			PersonName:  person.Name,
			PersonType:  person.Type,
		})
	}

	return &Page{
		Posts:  views,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Stats summarizes scraping activity over the trailing window of days.
func (s *Service) Stats(ctx context.Context, days int) (*people.FeedStats, error) {
	if days <= 0 {
		days = 7
	}

	stats, err := s.store.Stats(ctx, s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	stats.PeriodDays = days

	return stats, nil
}

// AnalyzeRecent runs the trend analysis engine over posts scraped in
// the trailing window of days.
func (s *Service) AnalyzeRecent(ctx context.Context, days, minMentions int) (*analysis.Report, error) {
	if days <= 0 {
		days = 7
	}

	posts, _, err := s.store.FindPosts(ctx, people.PostFilter{
		Since:  s.now().AddDate(0, 0, -days),
		SortBy: "recent",
		Limit:  2000,
	})
	if err != nil {
		return nil, fmt.Errorf("loading posts for analysis: %w", err)
	}

	inputs := make([]analysis.Post, 0, len(posts))
	owners := map[string]*people.Person{}
	for _, post := range posts {
		person, ok := owners[post.PersonID]
		if !ok {
			person, err = s.store.GetPerson(ctx, post.PersonID)
			if err != nil {
				person = &people.Person{ID: post.PersonID}
			}
			owners[post.PersonID] = person
		}

		inputs = append(inputs, analysis.Post{
			OwnerID:   post.PersonID,
			OwnerName: person.Name,
			OwnerType: person.Type,
			Platform:  post.Platform,
			PostURL:   post.PostURL,
			ImageURLs: post.ImageURLs,
			Caption:   post.Caption,
			Hashtags:  post.Hashtags,
			Likes:     post.Likes,
			Comments:  post.Comments,
			Shares:    post.Shares,
			Views:     post.Views,
			PostedAt:  post.PostedAt,
			ScrapedAt: post.ScrapedAt,
		})
	}

	return s.engine.Analyze(inputs, days, minMentions)
}
