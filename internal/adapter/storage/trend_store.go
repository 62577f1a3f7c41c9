package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendintel/internal/domain/trend"
)

// TrendStore implements storage for trend items
type TrendStore struct {
	db *pgxpool.Pool
}

// NewTrendStore creates a new trend store
func NewTrendStore(db *pgxpool.Pool) *TrendStore {
	return &TrendStore{
		db: db,
	}
}

const trendColumns = `
	id, url, source_platform, image_url, submitted_by, submitted_at,
	category, subcategory, colors, patterns, style_tags, fabrications,
	price_point, demographic, narrative,
	likes, comments, shares, views, engagement_rate,
	trend_score, velocity_score, cross_platform_score,
	status, source_id, last_updated
`

// Save inserts or updates a trend item
func (s *TrendStore) Save(ctx context.Context, t *trend.TrendItem) error {
	query := `
		INSERT INTO trends (
			id, url, source_platform, image_url, submitted_by, submitted_at,
			category, subcategory, colors, patterns, style_tags, fabrications,
			price_point, demographic, narrative,
			likes, comments, shares, views, engagement_rate,
			trend_score, velocity_score, cross_platform_score,
			status, source_id, last_updated
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22, $23,
			$24, $25, $26
		)
		ON CONFLICT (id) DO UPDATE
		SET
			image_url = $4,
			category = $7,
			subcategory = $8,
			colors = $9,
			patterns = $10,
			style_tags = $11,
			fabrications = $12,
			price_point = $13,
			demographic = $14,
			narrative = $15,
			likes = $16,
			comments = $17,
			shares = $18,
			views = $19,
			engagement_rate = $20,
			trend_score = $21,
			velocity_score = $22,
			cross_platform_score = $23,
			status = $24,
			source_id = $25,
			last_updated = $26
	`

	if t.SubmittedAt.IsZero() {
		t.SubmittedAt = time.Now()
	}
	if t.LastUpdated.IsZero() {
		t.LastUpdated = time.Now()
	}

	colorsJSON, err := json.Marshal(t.Colors)
	if err != nil {
		return fmt.Errorf("error marshaling colors: %w", err)
	}

	patternsJSON, err := json.Marshal(t.Patterns)
	if err != nil {
		return fmt.Errorf("error marshaling patterns: %w", err)
	}

	styleTagsJSON, err := json.Marshal(t.StyleTags)
	if err != nil {
		return fmt.Errorf("error marshaling style tags: %w", err)
	}

	fabricationsJSON, err := json.Marshal(t.Fabrications)
	if err != nil {
		return fmt.Errorf("error marshaling fabrications: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		t.ID,
		t.URL,
		t.SourcePlatform,
		t.ImageURL,
		t.SubmittedBy,
		t.SubmittedAt,
		t.Category,
		t.Subcategory,
		colorsJSON,
		patternsJSON,
		styleTagsJSON,
		fabricationsJSON,
		t.PricePoint,
		t.Demographic,
		t.Narrative,
		t.Likes,
		t.Comments,
		t.Shares,
		t.Views,
		t.EngagementRate,
		t.TrendScore,
		t.VelocityScore,
		t.CrossPlatformScore,
		t.Status,
		t.SourceID,
		t.LastUpdated,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// Get retrieves a trend item by ID
func (s *TrendStore) Get(ctx context.Context, id string) (*trend.TrendItem, error) {
	query := `SELECT ` + trendColumns + ` FROM trends WHERE id = $1`

	t, err := s.scanRow(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, trend.ErrNotFound
		}
		return nil, fmt.Errorf("error querying trend: %w", err)
	}

	return t, nil
}

// GetByURL retrieves a trend item by its submitted URL
func (s *TrendStore) GetByURL(ctx context.Context, url string) (*trend.TrendItem, error) {
	query := `SELECT ` + trendColumns + ` FROM trends WHERE url = $1`

	t, err := s.scanRow(s.db.QueryRow(ctx, query, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, trend.ErrNotFound
		}
		return nil, fmt.Errorf("error querying trend by url: %w", err)
	}

	return t, nil
}

// Find returns trend items matching the filter along with the total
// count before pagination.
func (s *TrendStore) Find(ctx context.Context, filter trend.Filter) ([]trend.TrendItem, int, error) {
	where := " WHERE 1=1"

	var args []interface{}
	argIndex := 1

	if filter.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}

	if filter.Platform != "" {
		where += fmt.Sprintf(" AND source_platform = $%d", argIndex)
		args = append(args, filter.Platform)
		argIndex++
	}

	if filter.Demographic != "" {
		where += fmt.Sprintf(" AND demographic = $%d", argIndex)
		args = append(args, filter.Demographic)
		argIndex++
	}

	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	if !filter.Since.IsZero() {
		where += fmt.Sprintf(" AND submitted_at >= $%d", argIndex)
		args = append(args, filter.Since)
		argIndex++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM trends` + where
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting trends: %w", err)
	}

	query := `SELECT ` + trendColumns + ` FROM trends` + where

	switch filter.SortBy {
	case "velocity":
		query += " ORDER BY velocity_score DESC"
	case "recent":
		query += " ORDER BY submitted_at DESC"
	default:
		query += " ORDER BY trend_score DESC"
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
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var items []trend.TrendItem
	for rows.Next() {
		t, err := s.scanRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning trend: %w", err)
		}
		items = append(items, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating trends: %w", err)
	}

	return items, total, nil
}

// AppendSnapshot records a metric snapshot for a trend item
func (s *TrendStore) AppendSnapshot(ctx context.Context, trendID string, snap trend.MetricSnapshot) error {
	query := `
		INSERT INTO metric_snapshots (
			trend_id, likes, comments, shares, views, trend_score, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if snap.RecordedAt.IsZero() {
		snap.RecordedAt = time.Now()
	}

	_, err := s.db.Exec(
		ctx,
		query,
		trendID,
		snap.Likes,
		snap.Comments,
		snap.Shares,
		snap.Views,
		snap.TrendScore,
		snap.RecordedAt,
	)

	if err != nil {
		return fmt.Errorf("error inserting snapshot: %w", err)
	}

	return nil
}

// Snapshots returns the metric history for a trend item since the
// given time, oldest first.
func (s *TrendStore) Snapshots(ctx context.Context, trendID string, since time.Time) ([]trend.MetricSnapshot, error) {
	query := `
		SELECT likes, comments, shares, views, trend_score, recorded_at
		FROM metric_snapshots
		WHERE trend_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC
	`

	rows, err := s.db.Query(ctx, query, trendID, since)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []trend.MetricSnapshot
	for rows.Next() {
		var snap trend.MetricSnapshot
		if err := rows.Scan(
			&snap.Likes,
			&snap.Comments,
			&snap.Shares,
			&snap.Views,
			&snap.TrendScore,
			&snap.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snaps, nil
}

// SaveSource inserts or updates a brand source
func (s *TrendStore) SaveSource(ctx context.Context, src *trend.Source) error {
	query := `
		INSERT INTO sources (id, name, url, platform, active, added_by, added_at, seed_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, url = $3, platform = $4, active = $5, seed_count = $8
	`

	if src.AddedAt.IsZero() {
		src.AddedAt = time.Now()
	}

	_, err := s.db.Exec(
		ctx,
		query,
		src.ID,
		src.Name,
		src.URL,
		src.Platform,
		src.Active,
		src.AddedBy,
		src.AddedAt,
		src.SeedCount,
	)
	if err != nil {
		return fmt.Errorf("error saving source: %w", err)
	}

	return nil
}

// ListSources returns registered sources, optionally filtered by
// platform and active flag.
func (s *TrendStore) ListSources(ctx context.Context, platform string, activeOnly bool) ([]trend.Source, error) {
	query := `SELECT id, name, url, platform, active, added_by, added_at, seed_count FROM sources WHERE 1=1`

	var args []interface{}
	argIndex := 1

	if platform != "" {
		query += fmt.Sprintf(" AND platform = $%d", argIndex)
		args = append(args, platform)
		argIndex++
	}

	if activeOnly {
		query += " AND active = TRUE"
	}

	query += " ORDER BY added_at ASC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying sources: %w", err)
	}
	defer rows.Close()

	var sources []trend.Source
	for rows.Next() {
		var src trend.Source
		if err := rows.Scan(
			&src.ID,
			&src.Name,
			&src.URL,
			&src.Platform,
			&src.Active,
			&src.AddedBy,
			&src.AddedAt,
			&src.SeedCount,
		); err != nil {
			return nil, fmt.Errorf("error scanning source: %w", err)
		}
		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sources: %w", err)
	}

	return sources, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *TrendStore) scanRow(row rowScanner) (*trend.TrendItem, error) {
	var t trend.TrendItem
	var colorsJSON, patternsJSON, styleTagsJSON, fabricationsJSON []byte

	err := row.Scan(
		&t.ID,
		&t.URL,
		&t.SourcePlatform,
		&t.ImageURL,
		&t.SubmittedBy,
		&t.SubmittedAt,
		&t.Category,
		&t.Subcategory,
		&colorsJSON,
		&patternsJSON,
		&styleTagsJSON,
		&fabricationsJSON,
		&t.PricePoint,
		&t.Demographic,
		&t.Narrative,
		&t.Likes,
		&t.Comments,
		&t.Shares,
		&t.Views,
		&t.EngagementRate,
		&t.TrendScore,
		&t.VelocityScore,
		&t.CrossPlatformScore,
		&t.Status,
		&t.SourceID,
		&t.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(colorsJSON, &t.Colors); err != nil {
		return nil, fmt.Errorf("error unmarshaling colors: %w", err)
	}
	if err := json.Unmarshal(patternsJSON, &t.Patterns); err != nil {
		return nil, fmt.Errorf("error unmarshaling patterns: %w", err)
	}
	if err := json.Unmarshal(styleTagsJSON, &t.StyleTags); err != nil {
		return nil, fmt.Errorf("error unmarshaling style tags: %w", err)
	}
	if err := json.Unmarshal(fabricationsJSON, &t.Fabrications); err != nil {
		return nil, fmt.Errorf("error unmarshaling fabrications: %w", err)
	}

	return &t, nil
}
