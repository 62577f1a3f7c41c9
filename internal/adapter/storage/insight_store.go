package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"trendintel/internal/domain/insight"
)

// InsightStore implements storage for generated category insights
type InsightStore struct {
	db *pgxpool.Pool
}

// NewInsightStore creates a new insight store
func NewInsightStore(db *pgxpool.Pool) *InsightStore {
	return &InsightStore{
		db: db,
	}
}

// UpsertInsight writes the latest insight for a category, replacing any
// previous one.
func (s *InsightStore) UpsertInsight(ctx context.Context, ins *insight.CategoryInsight) error {
	query := `
		INSERT INTO category_insights (
			category, summary, key_characteristics,
			trending_items_count, avg_trend_score, style_distribution, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (category) DO UPDATE
		SET
			summary = $2,
			key_characteristics = $3,
			trending_items_count = $4,
			avg_trend_score = $5,
			style_distribution = $6,
			generated_at = $7
	`

	if ins.GeneratedAt.IsZero() {
		ins.GeneratedAt = time.Now()
	}

	characteristicsJSON, err := json.Marshal(ins.KeyCharacteristics)
	if err != nil {
		return fmt.Errorf("error marshaling key characteristics: %w", err)
	}

	distributionJSON, err := json.Marshal(ins.StyleDistribution)
	if err != nil {
		return fmt.Errorf("error marshaling style distribution: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		ins.Category,
		ins.Summary,
		characteristicsJSON,
		ins.TrendingItemsCount,
		ins.AvgTrendScore,
		distributionJSON,
		ins.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving insight: %w", err)
	}

	return nil
}

// ListInsights returns all stored insights, most items first
func (s *InsightStore) ListInsights(ctx context.Context) ([]insight.CategoryInsight, error) {
	query := `
		SELECT category, summary, key_characteristics,
			trending_items_count, avg_trend_score, style_distribution, generated_at
		FROM category_insights
		ORDER BY trending_items_count DESC, category ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying insights: %w", err)
	}
	defer rows.Close()

	var insights []insight.CategoryInsight
	for rows.Next() {
		var ins insight.CategoryInsight
		var characteristicsJSON, distributionJSON []byte

		if err := rows.Scan(
			&ins.Category,
			&ins.Summary,
			&characteristicsJSON,
			&ins.TrendingItemsCount,
			&ins.AvgTrendScore,
			&distributionJSON,
			&ins.GeneratedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning insight: %w", err)
		}

		if err := json.Unmarshal(characteristicsJSON, &ins.KeyCharacteristics); err != nil {
			return nil, fmt.Errorf("error unmarshaling key characteristics: %w", err)
		}
		if err := json.Unmarshal(distributionJSON, &ins.StyleDistribution); err != nil {
			return nil, fmt.Errorf("error unmarshaling style distribution: %w", err)
		}

		insights = append(insights, ins)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating insights: %w", err)
	}

	return insights, nil
}
