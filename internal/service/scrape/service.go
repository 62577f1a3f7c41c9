// Package scrape collects posts from tracked people's social accounts
// and persists them for trend analysis.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trendintel/internal/domain/people"
)

// Result summarizes one scrape run for a person.
type Result struct {
	PersonID string   `json:"person_id"`
	NewPosts int      `json:"new_posts"`
	Updated  int      `json:"updated"`
	Debug    []string `json:"debug,omitempty"`
}

// Service orchestrates platform scrapers against the people registry
type Service struct {
	store    people.Store
	scrapers map[string]PlatformScraper
	maxPosts int
	now      func() time.Time
}

// NewService creates a new scrape service
func NewService(store people.Store, scrapers []PlatformScraper, maxPosts int) *Service {
	if maxPosts <= 0 {
		maxPosts = 10
	}

	byPlatform := make(map[string]PlatformScraper, len(scrapers))
	for _, s := range scrapers {
		byPlatform[s.Platform()] = s
	}

	return &Service{
		store:    store,
		scrapers: byPlatform,
		maxPosts: maxPosts,
		now:      time.Now,
	}
}

// ScrapePerson fetches recent posts from every enabled platform account
// of a person. Posts already seen get their engagement counters
// refreshed instead of being duplicated.
func (s *Service) ScrapePerson(ctx context.Context, personID string) (*Result, error) {
	person, err := s.store.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	result := &Result{PersonID: person.ID}

	for _, account := range person.Platforms {
		if !account.ScrapeEnabled {
			result.Debug = append(result.Debug,
				fmt.Sprintf("%s/@%s: scraping disabled, skipped", account.Platform, account.Handle))
			continue
		}

		scraper, ok := s.scrapers[account.Platform]
		if !ok {
			result.Debug = append(result.Debug,
				fmt.Sprintf("%s/@%s: unsupported platform, skipped", account.Platform, account.Handle))
			continue
		}

		posts, err := scraper.FetchPosts(ctx, account.Handle, s.maxPosts)
		if err != nil {
			result.Debug = append(result.Debug,
				fmt.Sprintf("%s/@%s: %v", account.Platform, account.Handle, err))
			slog.Error("scrape failed",
				"platform", account.Platform,
				"handle", account.Handle,
				"error", err)
			continue
		}

		result.Debug = append(result.Debug,
			fmt.Sprintf("%s/@%s: got %d posts", account.Platform, account.Handle, len(posts)))

		for i := range posts {
			post := posts[i]
			post.PersonID = person.ID

			if err := s.savePost(ctx, &post, result); err != nil {
				slog.Warn("saving scraped post", "url", post.PostURL, "error", err)
			}
		}
	}

	person.LastScrapedAt = s.now()
	for i := range person.Platforms {
		if person.Platforms[i].ScrapeEnabled {
			person.Platforms[i].LastChecked = person.LastScrapedAt
		}
	}
	if err := s.store.SavePerson(ctx, person); err != nil {
		return nil, fmt.Errorf("updating person after scrape: %w", err)
	}

	slog.Info("scraped person", "name", person.Name, "new_posts", result.NewPosts, "updated", result.Updated)

	return result, nil
}

func (s *Service) savePost(ctx context.Context, post *people.ScrapedPost, result *Result) error {
	existing, err := s.store.GetPostByPlatformID(ctx, post.Platform, post.PlatformPostID)
	if err != nil && !errors.Is(err, people.ErrNotFound) {
		return err
	}

	if existing != nil {
		existing.Likes = post.Likes
		existing.Comments = post.Comments
		existing.Shares = post.Shares
		existing.Views = post.Views
		if err := s.store.SavePost(ctx, existing); err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	post.ID = uuid.New().String()
	post.ScrapedAt = s.now()
	if err := s.store.SavePost(ctx, post); err != nil {
		return err
	}
	result.NewPosts++
	return nil
}

// ScrapeAll runs ScrapePerson for every active person, returning
// per-person results. Errors on individual people do not stop the run.
func (s *Service) ScrapeAll(ctx context.Context) ([]Result, error) {
	active, err := s.store.ListPeople(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}

	results := make([]Result, 0, len(active))
	for _, person := range active {
		res, err := s.ScrapePerson(ctx, person.ID)
		if err != nil {
			slog.Error("scraping person", "id", person.ID, "error", err)
			results = append(results, Result{
				PersonID: person.ID,
				Debug:    []string{err.Error()},
			})
			continue
		}
		results = append(results, *res)
	}

	return results, nil
}
