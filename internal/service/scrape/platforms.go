package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trendintel/internal/domain/people"
)

// PlatformScraper fetches recent posts for one handle on one platform.
type PlatformScraper interface {
	Platform() string
	FetchPosts(ctx context.Context, handle string, maxPosts int) ([]people.ScrapedPost, error)
}

// InstagramScraper scrapes Instagram profiles through an Apify actor
type InstagramScraper struct {
	client *ApifyClient
}

// NewInstagramScraper creates a new Instagram scraper
func NewInstagramScraper(client *ApifyClient) *InstagramScraper {
	return &InstagramScraper{client: client}
}

// Platform returns the platform name
func (s *InstagramScraper) Platform() string { return "instagram" }

type instagramItem struct {
	ID             string   `json:"id"`
	ShortCode      string   `json:"shortCode"`
	URL            string   `json:"url"`
	Caption        string   `json:"caption"`
	Images         []string `json:"images"`
	DisplayURL     string   `json:"displayUrl"`
	LikesCount     int      `json:"likesCount"`
	CommentsCount  int      `json:"commentsCount"`
	VideoViewCount int      `json:"videoViewCount"`
	Timestamp      string   `json:"timestamp"`
}

// FetchPosts returns recent posts for an Instagram profile
func (s *InstagramScraper) FetchPosts(ctx context.Context, handle string, maxPosts int) ([]people.ScrapedPost, error) {
	input := map[string]interface{}{
		"username":     []string{strings.TrimPrefix(handle, "@")},
		"resultsLimit": maxPosts,
		"resultsType":  "posts",
	}

	var items []instagramItem
	if err := s.client.RunActor(ctx, instagramActor, input, &items); err != nil {
		return nil, fmt.Errorf("scraping instagram @%s: %w", handle, err)
	}

	posts := make([]people.ScrapedPost, 0, len(items))
	for _, item := range items {
		platformPostID := item.ID
		if platformPostID == "" {
			platformPostID = item.ShortCode
		}

		postURL := item.URL
		if postURL == "" && item.ShortCode != "" {
			postURL = fmt.Sprintf("https://www.instagram.com/p/%s/", item.ShortCode)
		}

		imageURLs := item.Images
		if len(imageURLs) == 0 && item.DisplayURL != "" {
			imageURLs = []string{item.DisplayURL}
		}

		posts = append(posts, people.ScrapedPost{
			Platform:       "instagram",
			PlatformPostID: platformPostID,
			PostURL:        postURL,
			ImageURLs:      imageURLs,
			Caption:        item.Caption,
			Hashtags:       ExtractHashtags(item.Caption),
			Likes:          item.LikesCount,
			Comments:       item.CommentsCount,
			// Instagram does not expose shares.
			Shares:   0,
			Views:    item.VideoViewCount,
			PostedAt: parseTimestamp(item.Timestamp),
		})
	}

	return posts, nil
}

// TikTokScraper scrapes TikTok profiles through an Apify actor
type TikTokScraper struct {
	client *ApifyClient
}

// NewTikTokScraper creates a new TikTok scraper
func NewTikTokScraper(client *ApifyClient) *TikTokScraper {
	return &TikTokScraper{client: client}
}

// Platform returns the platform name
func (s *TikTokScraper) Platform() string { return "tiktok" }

type tiktokItem struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	WebVideoURL   string `json:"webVideoUrl"`
	DiggCount     int    `json:"diggCount"`
	CommentCount  int    `json:"commentCount"`
	ShareCount    int    `json:"shareCount"`
	PlayCount     int    `json:"playCount"`
	CreateTimeISO string `json:"createTimeISO"`
	VideoMeta     struct {
		CoverURL string `json:"coverUrl"`
	} `json:"videoMeta"`
}

// FetchPosts returns recent posts for a TikTok profile
func (s *TikTokScraper) FetchPosts(ctx context.Context, handle string, maxPosts int) ([]people.ScrapedPost, error) {
	input := map[string]interface{}{
		"profiles":             []string{strings.TrimPrefix(handle, "@")},
		"resultsPerPage":       maxPosts,
		"shouldDownloadVideos": false,
	}

	var items []tiktokItem
	if err := s.client.RunActor(ctx, tiktokActor, input, &items); err != nil {
		return nil, fmt.Errorf("scraping tiktok @%s: %w", handle, err)
	}

	posts := make([]people.ScrapedPost, 0, len(items))
	for _, item := range items {
		postURL := item.WebVideoURL
		if postURL == "" && item.ID != "" {
			postURL = fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", strings.TrimPrefix(handle, "@"), item.ID)
		}

		var imageURLs []string
		if item.VideoMeta.CoverURL != "" {
			imageURLs = []string{item.VideoMeta.CoverURL}
		}

		posts = append(posts, people.ScrapedPost{
			Platform:       "tiktok",
			PlatformPostID: item.ID,
			PostURL:        postURL,
			ImageURLs:      imageURLs,
			Caption:        item.Text,
			Hashtags:       ExtractHashtags(item.Text),
			Likes:          item.DiggCount,
			Comments:       item.CommentCount,
			Shares:         item.ShareCount,
			Views:          item.PlayCount,
			PostedAt:       parseTimestamp(item.CreateTimeISO),
		})
	}

	return posts, nil
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
