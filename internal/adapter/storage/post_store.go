package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendintel/internal/domain/people"
)

// PostStore implements storage for tracked people and their scraped posts
type PostStore struct {
	db *pgxpool.Pool
}

// NewPostStore creates a new post store
func NewPostStore(db *pgxpool.Pool) *PostStore {
	return &PostStore{
		db: db,
	}
}

// SavePerson inserts or updates a tracked person and their platform accounts
func (s *PostStore) SavePerson(ctx context.Context, p *people.Person) error {
	query := `
		INSERT INTO people (
			id, name, person_type, tier, bio, primary_region,
			demographics, style_tags, categories,
			follower_count_total, avg_engagement_rate, relevance_score,
			active, scrape_frequency, priority, added_at, last_scraped_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12,
			$13, $14, $15, $16, $17
		)
		ON CONFLICT (id) DO UPDATE
		SET
			name = $2,
			person_type = $3,
			tier = $4,
			bio = $5,
			primary_region = $6,
			demographics = $7,
			style_tags = $8,
			categories = $9,
			follower_count_total = $10,
			avg_engagement_rate = $11,
			relevance_score = $12,
			active = $13,
			scrape_frequency = $14,
			priority = $15,
			last_scraped_at = $17
	`

	if p.AddedAt.IsZero() {
		p.AddedAt = time.Now()
	}

	demographicsJSON, err := json.Marshal(p.Demographics)
	if err != nil {
		return fmt.Errorf("error marshaling demographics: %w", err)
	}

	styleTagsJSON, err := json.Marshal(p.StyleTags)
	if err != nil {
		return fmt.Errorf("error marshaling style tags: %w", err)
	}

	categoriesJSON, err := json.Marshal(p.Categories)
	if err != nil {
		return fmt.Errorf("error marshaling categories: %w", err)
	}

	var lastScraped *time.Time
	if !p.LastScrapedAt.IsZero() {
		lastScraped = &p.LastScrapedAt
	}

	_, err = s.db.Exec(
		ctx,
		query,
		p.ID,
		p.Name,
		p.Type,
		p.Tier,
		p.Bio,
		p.PrimaryRegion,
		demographicsJSON,
		styleTagsJSON,
		categoriesJSON,
		p.FollowerCountTotal,
		p.AvgEngagementRate,
		p.RelevanceScore,
		p.Active,
		p.ScrapeFrequency,
		p.Priority,
		p.AddedAt,
		lastScraped,
	)
	if err != nil {
		return fmt.Errorf("error saving person: %w", err)
	}

	for _, plat := range p.Platforms {
		if err := s.savePlatform(ctx, p.ID, plat); err != nil {
			return err
		}
	}

	return nil
}

func (s *PostStore) savePlatform(ctx context.Context, personID string, plat people.Platform) error {
	query := `
		INSERT INTO person_platforms (
			person_id, platform, handle, profile_url,
			follower_count, is_verified, scrape_enabled, last_checked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (person_id, platform) DO UPDATE
		SET
			handle = $3,
			profile_url = $4,
			follower_count = $5,
			is_verified = $6,
			scrape_enabled = $7,
			last_checked = $8
	`

	var lastChecked *time.Time
	if !plat.LastChecked.IsZero() {
		lastChecked = &plat.LastChecked
	}

	_, err := s.db.Exec(
		ctx,
		query,
		personID,
		plat.Platform,
		plat.Handle,
		plat.ProfileURL,
		plat.FollowerCount,
		plat.Verified,
		plat.ScrapeEnabled,
		lastChecked,
	)
	if err != nil {
		return fmt.Errorf("error saving platform account: %w", err)
	}

	return nil
}

// GetPerson retrieves a person with their platform accounts
func (s *PostStore) GetPerson(ctx context.Context, id string) (*people.Person, error) {
	query := `
		SELECT
			id, name, person_type, tier, bio, primary_region,
			demographics, style_tags, categories,
			follower_count_total, avg_engagement_rate, relevance_score,
			active, scrape_frequency, priority, added_at, last_scraped_at
		FROM people
		WHERE id = $1
	`

	p, err := s.scanPerson(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, people.ErrNotFound
		}
		return nil, fmt.Errorf("error querying person: %w", err)
	}

	platforms, err := s.listPlatforms(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Platforms = platforms

	return p, nil
}

// ListPeople returns all tracked people ordered by priority
func (s *PostStore) ListPeople(ctx context.Context, activeOnly bool) ([]people.Person, error) {
	query := `
		SELECT
			id, name, person_type, tier, bio, primary_region,
			demographics, style_tags, categories,
			follower_count_total, avg_engagement_rate, relevance_score,
			active, scrape_frequency, priority, added_at, last_scraped_at
		FROM people
	`
	if activeOnly {
		query += " WHERE active = true"
	}
	query += " ORDER BY priority ASC, name ASC"

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying people: %w", err)
	}
	defer rows.Close()

	var result []people.Person
	for rows.Next() {
		p, err := s.scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning person: %w", err)
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	for i := range result {
		platforms, err := s.listPlatforms(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Platforms = platforms
	}

	return result, nil
}

func (s *PostStore) listPlatforms(ctx context.Context, personID string) ([]people.Platform, error) {
	query := `
		SELECT person_id, platform, handle, profile_url,
			follower_count, is_verified, scrape_enabled, last_checked
		FROM person_platforms
		WHERE person_id = $1
		ORDER BY platform ASC
	`

	rows, err := s.db.Query(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("error querying platforms: %w", err)
	}
	defer rows.Close()

	var platforms []people.Platform
	for rows.Next() {
		var plat people.Platform
		var lastChecked *time.Time
		if err := rows.Scan(
			&plat.PersonID,
			&plat.Platform,
			&plat.Handle,
			&plat.ProfileURL,
			&plat.FollowerCount,
			&plat.Verified,
			&plat.ScrapeEnabled,
			&lastChecked,
		); err != nil {
			return nil, fmt.Errorf("error scanning platform: %w", err)
		}
		if lastChecked != nil {
			plat.LastChecked = *lastChecked
		}
		platforms = append(platforms, plat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating platforms: %w", err)
	}

	return platforms, nil
}

const postColumns = `
	id, person_id, platform, platform_post_id,
	post_url, image_urls, caption, hashtags,
	likes, comments, shares, views, engagement_rate,
	analyzed, category, style_tags, ai_narrative, trend_item_id,
	posted_at, scraped_at
`

// SavePost inserts or updates a scraped post
func (s *PostStore) SavePost(ctx context.Context, post *people.ScrapedPost) error {
	query := `
		INSERT INTO scraped_posts (
			id, person_id, platform, platform_post_id,
			post_url, image_urls, caption, hashtags,
			likes, comments, shares, views, engagement_rate,
			analyzed, category, style_tags, ai_narrative, trend_item_id,
			posted_at, scraped_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20
		)
		ON CONFLICT (id) DO UPDATE
		SET
			likes = $9,
			comments = $10,
			shares = $11,
			views = $12,
			engagement_rate = $13,
			analyzed = $14,
			category = $15,
			style_tags = $16,
			ai_narrative = $17,
			trend_item_id = $18
	`

	if post.ScrapedAt.IsZero() {
		post.ScrapedAt = time.Now()
	}

	imageURLsJSON, err := json.Marshal(post.ImageURLs)
	if err != nil {
		return fmt.Errorf("error marshaling image urls: %w", err)
	}

	hashtagsJSON, err := json.Marshal(post.Hashtags)
	if err != nil {
		return fmt.Errorf("error marshaling hashtags: %w", err)
	}

	styleTagsJSON, err := json.Marshal(post.StyleTags)
	if err != nil {
		return fmt.Errorf("error marshaling style tags: %w", err)
	}

	var postedAt *time.Time
	if !post.PostedAt.IsZero() {
		postedAt = &post.PostedAt
	}

	_, err = s.db.Exec(
		ctx,
		query,
		post.ID,
		post.PersonID,
		post.Platform,
		post.PlatformPostID,
		post.PostURL,
		imageURLsJSON,
		post.Caption,
		hashtagsJSON,
		post.Likes,
		post.Comments,
		post.Shares,
		post.Views,
		post.EngagementRate,
		post.Analyzed,
		post.Category,
		styleTagsJSON,
		post.Narrative,
		post.TrendItemID,
		postedAt,
		post.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving post: %w", err)
	}

	return nil
}

// GetPostByPlatformID finds a previously scraped post by its native platform id
func (s *PostStore) GetPostByPlatformID(ctx context.Context, platform, platformPostID string) (*people.ScrapedPost, error) {
	query := `SELECT ` + postColumns + ` FROM scraped_posts WHERE platform = $1 AND platform_post_id = $2`

	post, err := s.scanPost(s.db.QueryRow(ctx, query, platform, platformPostID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, people.ErrNotFound
		}
		return nil, fmt.Errorf("error querying post: %w", err)
	}

	return post, nil
}

// FindPosts returns posts matching the filter plus the total count for paging
func (s *PostStore) FindPosts(ctx context.Context, filter people.PostFilter) ([]people.ScrapedPost, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	argIndex := 1

	if filter.Platform != "" {
		where += fmt.Sprintf(" AND p.platform = $%d", argIndex)
		args = append(args, filter.Platform)
		argIndex++
	}

	if filter.PersonID != "" {
		where += fmt.Sprintf(" AND p.person_id = $%d", argIndex)
		args = append(args, filter.PersonID)
		argIndex++
	}

	if filter.PersonType != "" {
		where += fmt.Sprintf(" AND pe.person_type = $%d", argIndex)
		args = append(args, filter.PersonType)
		argIndex++
	}

	if !filter.Since.IsZero() {
		where += fmt.Sprintf(" AND p.scraped_at >= $%d", argIndex)
		args = append(args, filter.Since)
		argIndex++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM scraped_posts p
		JOIN people pe ON pe.id = p.person_id
	` + where

	var total int
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting posts: %w", err)
	}

	query := `
		SELECT
			p.id, p.person_id, p.platform, p.platform_post_id,
			p.post_url, p.image_urls, p.caption, p.hashtags,
			p.likes, p.comments, p.shares, p.views, p.engagement_rate,
			p.analyzed, p.category, p.style_tags, p.ai_narrative, p.trend_item_id,
			p.posted_at, p.scraped_at
		FROM scraped_posts p
		JOIN people pe ON pe.id = p.person_id
	` + where

	switch filter.SortBy {
	case "recent":
		query += " ORDER BY p.posted_at DESC NULLS LAST"
	case "views":
		query += " ORDER BY p.views DESC"
	default:
		// engagement weighs a comment as three likes
		query += " ORDER BY (p.likes + p.comments * 3) DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)
	argIndex++

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	var posts []people.ScrapedPost
	for rows.Next() {
		post, err := s.scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, total, nil
}

// Stats summarizes scrape activity since the given time
func (s *PostStore) Stats(ctx context.Context, since time.Time) (*people.FeedStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(likes), 0),
			COALESCE(SUM(comments), 0),
			COALESCE(SUM(views), 0),
			COUNT(DISTINCT person_id)
		FROM scraped_posts
		WHERE scraped_at >= $1
	`

	stats := &people.FeedStats{ByPlatform: map[string]int{}}
	err := s.db.QueryRow(ctx, query, since).Scan(
		&stats.TotalPosts,
		&stats.TotalLikes,
		&stats.TotalComments,
		&stats.TotalViews,
		&stats.UniquePeople,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying stats: %w", err)
	}

	byPlatform := `
		SELECT platform, COUNT(*)
		FROM scraped_posts
		WHERE scraped_at >= $1
		GROUP BY platform
	`

	rows, err := s.db.Query(ctx, byPlatform, since)
	if err != nil {
		return nil, fmt.Errorf("error querying platform stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var platform string
		var count int
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("error scanning platform stats: %w", err)
		}
		stats.ByPlatform[platform] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating platform stats: %w", err)
	}

	return stats, nil
}

func (s *PostStore) scanPerson(row rowScanner) (*people.Person, error) {
	var p people.Person
	var demographicsJSON, styleTagsJSON, categoriesJSON []byte
	var lastScraped *time.Time

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Type,
		&p.Tier,
		&p.Bio,
		&p.PrimaryRegion,
		&demographicsJSON,
		&styleTagsJSON,
		&categoriesJSON,
		&p.FollowerCountTotal,
		&p.AvgEngagementRate,
		&p.RelevanceScore,
		&p.Active,
		&p.ScrapeFrequency,
		&p.Priority,
		&p.AddedAt,
		&lastScraped,
	)
	if err != nil {
		return nil, err
	}

	if lastScraped != nil {
		p.LastScrapedAt = *lastScraped
	}

	if err := json.Unmarshal(demographicsJSON, &p.Demographics); err != nil {
		return nil, fmt.Errorf("error unmarshaling demographics: %w", err)
	}
	if err := json.Unmarshal(styleTagsJSON, &p.StyleTags); err != nil {
		return nil, fmt.Errorf("error unmarshaling style tags: %w", err)
	}
	if err := json.Unmarshal(categoriesJSON, &p.Categories); err != nil {
		return nil, fmt.Errorf("error unmarshaling categories: %w", err)
	}

	return &p, nil
}

func (s *PostStore) scanPost(row rowScanner) (*people.ScrapedPost, error) {
	var post people.ScrapedPost
	var imageURLsJSON, hashtagsJSON, styleTagsJSON []byte
	var postedAt *time.Time

	err := row.Scan(
		&post.ID,
		&post.PersonID,
		&post.Platform,
		&post.PlatformPostID,
		&post.PostURL,
		&imageURLsJSON,
		&post.Caption,
		&hashtagsJSON,
		&post.Likes,
		&post.Comments,
		&post.Shares,
		&post.Views,
		&post.EngagementRate,
		&post.Analyzed,
		&post.Category,
		&styleTagsJSON,
		&post.Narrative,
		&post.TrendItemID,
		&postedAt,
		&post.ScrapedAt,
	)
	if err != nil {
		return nil, err
	}

	if postedAt != nil {
		post.PostedAt = *postedAt
	}

	if err := json.Unmarshal(imageURLsJSON, &post.ImageURLs); err != nil {
		return nil, fmt.Errorf("error unmarshaling image urls: %w", err)
	}
	if err := json.Unmarshal(hashtagsJSON, &post.Hashtags); err != nil {
		return nil, fmt.Errorf("error unmarshaling hashtags: %w", err)
	}
	if err := json.Unmarshal(styleTagsJSON, &post.StyleTags); err != nil {
		return nil, fmt.Errorf("error unmarshaling style tags: %w", err)
	}

	return &post, nil
}
