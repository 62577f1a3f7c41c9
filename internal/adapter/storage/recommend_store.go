package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendintel/internal/domain/recommendation"
)

// RecommendStore implements storage for recommendations and the
// feedback votes that steer them
type RecommendStore struct {
	db *pgxpool.Pool
}

// NewRecommendStore creates a new recommendation store
func NewRecommendStore(db *pgxpool.Pool) *RecommendStore {
	return &RecommendStore{
		db: db,
	}
}

const recommendationColumns = `
	id, rec_type, title, description, url, platform, reason,
	confidence_score, status, created_at, responded_at
`

// SaveRecommendation inserts or updates a recommendation
func (s *RecommendStore) SaveRecommendation(ctx context.Context, rec *recommendation.Recommendation) error {
	query := `
		INSERT INTO recommendations (
			id, rec_type, title, description, url, platform, reason,
			confidence_score, status, created_at, responded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET status = $9, responded_at = $11
	`

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		ctx,
		query,
		rec.ID,
		rec.Type,
		rec.Title,
		rec.Description,
		rec.URL,
		rec.Platform,
		rec.Reason,
		rec.ConfidenceScore,
		rec.Status,
		rec.CreatedAt,
		rec.RespondedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving recommendation: %w", err)
	}

	return nil
}

// GetRecommendation retrieves a recommendation by ID
func (s *RecommendStore) GetRecommendation(ctx context.Context, id string) (*recommendation.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE id = $1`

	rec, err := s.scanRecommendation(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recommendation.ErrNotFound
		}
		return nil, fmt.Errorf("error querying recommendation: %w", err)
	}

	return rec, nil
}

// GetRecommendationByURL retrieves a recommendation by its URL
func (s *RecommendStore) GetRecommendationByURL(ctx context.Context, url string) (*recommendation.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE url = $1`

	rec, err := s.scanRecommendation(s.db.QueryRow(ctx, query, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recommendation.ErrNotFound
		}
		return nil, fmt.Errorf("error querying recommendation by url: %w", err)
	}

	return rec, nil
}

// ListRecommendations returns recommendations in any of the given
// statuses, highest confidence first
func (s *RecommendStore) ListRecommendations(ctx context.Context, statuses []string, limit int) ([]recommendation.Recommendation, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + recommendationColumns + `
		FROM recommendations
		WHERE status = ANY($1)
		ORDER BY confidence_score DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, statuses, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying recommendations: %w", err)
	}
	defer rows.Close()

	var recs []recommendation.Recommendation
	for rows.Next() {
		rec, err := s.scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning recommendation: %w", err)
		}
		recs = append(recs, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}

	return recs, nil
}

// SaveFeedback upserts the single vote for an entity
func (s *RecommendStore) SaveFeedback(ctx context.Context, fb *recommendation.Feedback) error {
	query := `
		INSERT INTO user_feedback (entity_type, entity_id, feedback_type, context, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (entity_type, entity_id) DO UPDATE
		SET feedback_type = $3, context = $4, recorded_at = $5
	`

	if fb.RecordedAt.IsZero() {
		fb.RecordedAt = time.Now()
	}

	_, err := s.db.Exec(ctx, query, fb.EntityType, fb.EntityID, fb.FeedbackType, fb.Context, fb.RecordedAt)
	if err != nil {
		return fmt.Errorf("error saving feedback: %w", err)
	}

	return nil
}

// RecentFeedback returns the newest feedback votes
func (s *RecommendStore) RecentFeedback(ctx context.Context, limit int) ([]recommendation.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT entity_type, entity_id, feedback_type, context, recorded_at
		FROM user_feedback
		ORDER BY recorded_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying feedback: %w", err)
	}
	defer rows.Close()

	var votes []recommendation.Feedback
	for rows.Next() {
		var fb recommendation.Feedback
		if err := rows.Scan(&fb.EntityType, &fb.EntityID, &fb.FeedbackType, &fb.Context, &fb.RecordedAt); err != nil {
			return nil, fmt.Errorf("error scanning feedback: %w", err)
		}
		votes = append(votes, fb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return votes, nil
}

// FeedbackCounts returns the total thumbs-up and thumbs-down votes
func (s *RecommendStore) FeedbackCounts(ctx context.Context) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE feedback_type = 'thumbs_up'),
			COUNT(*) FILTER (WHERE feedback_type = 'thumbs_down')
		FROM user_feedback
	`

	var up, down int
	if err := s.db.QueryRow(ctx, query).Scan(&up, &down); err != nil {
		return 0, 0, fmt.Errorf("error counting feedback: %w", err)
	}

	return up, down, nil
}

// EntityIDs returns the IDs of entities with the given vote
func (s *RecommendStore) EntityIDs(ctx context.Context, entityType, feedbackType string) ([]string, error) {
	query := `SELECT entity_id FROM user_feedback WHERE entity_type = $1 AND feedback_type = $2`

	rows, err := s.db.Query(ctx, query, entityType, feedbackType)
	if err != nil {
		return nil, fmt.Errorf("error querying feedback entities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning feedback entity: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback entities: %w", err)
	}

	return ids, nil
}

func (s *RecommendStore) scanRecommendation(row rowScanner) (*recommendation.Recommendation, error) {
	var rec recommendation.Recommendation

	err := row.Scan(
		&rec.ID,
		&rec.Type,
		&rec.Title,
		&rec.Description,
		&rec.URL,
		&rec.Platform,
		&rec.Reason,
		&rec.ConfidenceScore,
		&rec.Status,
		&rec.CreatedAt,
		&rec.RespondedAt,
	)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
