// Package people holds the tracked-people registry: celebrities,
// influencers, brands, and the posts scraped from their accounts.
package people

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a person does not exist.
var ErrNotFound = errors.New("person not found")

// Person is a tracked individual, brand, or account in the fashion
// ecosystem.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // celebrity, influencer, brand, editor, stylist, media
	Tier string `json:"tier,omitempty"`

	Bio           string   `json:"bio,omitempty"`
	PrimaryRegion string   `json:"primary_region,omitempty"`
	Demographics  []string `json:"demographics,omitempty"`
	StyleTags     []string `json:"style_tags,omitempty"`
	Categories    []string `json:"categories,omitempty"`

	FollowerCountTotal int     `json:"follower_count_total"`
	AvgEngagementRate  float64 `json:"avg_engagement_rate"`
	RelevanceScore     float64 `json:"relevance_score"`

	Active          bool   `json:"active"`
	ScrapeFrequency string `json:"scrape_frequency"` // hourly, daily, weekly
	Priority        int    `json:"priority"`         // 1 = highest

	AddedAt       time.Time `json:"added_at"`
	LastScrapedAt time.Time `json:"last_scraped_at,omitempty"`

	Platforms []Platform `json:"platforms,omitempty"`
}

// Platform is one social account belonging to a person.
type Platform struct {
	PersonID      string    `json:"person_id"`
	Platform      string    `json:"platform"` // instagram, tiktok, twitter, pinterest
	Handle        string    `json:"handle"`
	ProfileURL    string    `json:"profile_url,omitempty"`
	FollowerCount int       `json:"follower_count"`
	Verified      bool      `json:"is_verified"`
	ScrapeEnabled bool      `json:"scrape_enabled"`
	LastChecked   time.Time `json:"last_checked,omitempty"`
}

// ScrapedPost is one content item collected from a person's account.
// Once stored it is read-only except for engagement counter refreshes.
type ScrapedPost struct {
	ID             string `json:"id"`
	PersonID       string `json:"person_id"`
	Platform       string `json:"platform"`
	PlatformPostID string `json:"platform_post_id,omitempty"`

	PostURL   string   `json:"post_url"`
	ImageURLs []string `json:"image_urls,omitempty"`
	Caption   string   `json:"caption,omitempty"`
	Hashtags  []string `json:"hashtags,omitempty"`

	Likes          int     `json:"likes"`
	Comments       int     `json:"comments"`
	Shares         int     `json:"shares"`
	Views          int     `json:"views"`
	EngagementRate float64 `json:"engagement_rate"`

	Analyzed    bool     `json:"analyzed"`
	Category    string   `json:"category,omitempty"`
	StyleTags   []string `json:"style_tags,omitempty"`
	Narrative   string   `json:"ai_narrative,omitempty"`
	TrendItemID string   `json:"trend_item_id,omitempty"`

	PostedAt  time.Time `json:"posted_at,omitempty"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// PostFilter defines criteria for querying the post feed.
type PostFilter struct {
	Platform   string
	PersonID   string
	PersonType string
	Since      time.Time
	SortBy     string // engagement (default), recent, views
	Limit      int
	Offset     int
}

// FeedStats summarizes scraping activity over a window.
type FeedStats struct {
	PeriodDays    int            `json:"period_days"`
	TotalPosts    int            `json:"total_posts"`
	ByPlatform    map[string]int `json:"by_platform"`
	TotalLikes    int            `json:"total_likes"`
	TotalComments int            `json:"total_comments"`
	TotalViews    int            `json:"total_views"`
	UniquePeople  int            `json:"unique_people_scraped"`
}

// Store defines persistence for people and their scraped posts.
type Store interface {
	SavePerson(ctx context.Context, p *Person) error
	GetPerson(ctx context.Context, id string) (*Person, error)
	ListPeople(ctx context.Context, activeOnly bool) ([]Person, error)

	SavePost(ctx context.Context, post *ScrapedPost) error
	// GetPostByPlatformID finds a previously scraped post by its native id,
	// used to dedupe repeat scrapes.
	GetPostByPlatformID(ctx context.Context, platform, platformPostID string) (*ScrapedPost, error)
	FindPosts(ctx context.Context, filter PostFilter) ([]ScrapedPost, int, error)
	Stats(ctx context.Context, since time.Time) (*FeedStats, error)
}
