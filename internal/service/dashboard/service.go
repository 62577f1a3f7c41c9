// Package dashboard aggregates trend items into the summary shown on
// the dashboard landing view.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"trendintel/internal/domain/trend"
)

// CategoryStat is one category with its item count and average score.
type CategoryStat struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	TrendScore float64 `json:"trend_score"`
}

// TermStat is one attribute value with its occurrence count.
type TermStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Leader is a trend ranked by velocity.
type Leader struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Category      string  `json:"category"`
	VelocityScore float64 `json:"velocity_score"`
	TrendScore    float64 `json:"trend_score"`
}

// Summary is the aggregated dashboard payload.
type Summary struct {
	TopCategories        []CategoryStat `json:"top_categories"`
	TrendingColors       []TermStat     `json:"trending_colors"`
	TrendingStyles       []TermStat     `json:"trending_styles"`
	TrendingFabrications []TermStat     `json:"trending_fabrications"`
	VelocityLeaders      []Leader       `json:"velocity_leaders"`
	TotalActiveTrends    int            `json:"total_active_trends"`
	NewToday             int            `json:"new_today"`
	DemographicFilter    string         `json:"demographic_filter,omitempty"`
	Timestamp            time.Time      `json:"timestamp"`
}

// Service builds dashboard summaries from the trend store
type Service struct {
	trends trend.Store
	now    func() time.Time
}

// NewService creates a new dashboard service
func NewService(trends trend.Store) *Service {
	return &Service{
		trends: trends,
		now:    time.Now,
	}
}

// Summary aggregates active trends submitted in the trailing window of
// days, optionally filtered by demographic.
func (s *Service) Summary(ctx context.Context, days int, demographic string) (*Summary, error) {
	if days <= 0 {
		days = 7
	}

	now := s.now()

	window, _, err := s.trends.Find(ctx, trend.Filter{
		Status:      "active",
		Demographic: demographic,
		Since:       now.AddDate(0, 0, -days),
		Limit:       500,
	})
	if err != nil {
		return nil, fmt.Errorf("loading windowed trends: %w", err)
	}

	allActive, totalActive, err := s.trends.Find(ctx, trend.Filter{
		Status:      "active",
		Demographic: demographic,
		Limit:       500,
	})
	if err != nil {
		return nil, fmt.Errorf("loading active trends: %w", err)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	newToday := 0
	for _, item := range allActive {
		if !item.SubmittedAt.Before(midnight) {
			newToday++
		}
	}

	summary := &Summary{
		TopCategories:        categoryStats(window, 10),
		TrendingColors:       termStats(window, func(t trend.TrendItem) []string { return t.Colors }, 10),
		TrendingStyles:       termStats(window, func(t trend.TrendItem) []string { return t.StyleTags }, 10),
		TrendingFabrications: termStats(window, func(t trend.TrendItem) []string { return t.Fabrications }, 10),
		VelocityLeaders:      velocityLeaders(window, 5),
		TotalActiveTrends:    totalActive,
		NewToday:             newToday,
		DemographicFilter:    demographic,
		Timestamp:            now,
	}

	return summary, nil
}

func categoryStats(items []trend.TrendItem, limit int) []CategoryStat {
	counts := map[string]int{}
	scores := map[string]float64{}
	var order []string

	for _, item := range items {
		if item.Category == "" {
			continue
		}
		if _, seen := counts[item.Category]; !seen {
			order = append(order, item.Category)
		}
		counts[item.Category]++
		scores[item.Category] += item.TrendScore
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	stats := make([]CategoryStat, 0, len(order))
	for _, cat := range order {
		stats = append(stats, CategoryStat{
			Name:       cat,
			Count:      counts[cat],
			TrendScore: scores[cat] / float64(counts[cat]),
		})
	}
	return stats
}

func termStats(items []trend.TrendItem, pick func(trend.TrendItem) []string, limit int) []TermStat {
	counts := map[string]int{}
	var order []string

	for _, item := range items {
		for _, term := range pick(item) {
			if _, seen := counts[term]; !seen {
				order = append(order, term)
			}
			counts[term]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	stats := make([]TermStat, 0, len(order))
	for _, term := range order {
		stats = append(stats, TermStat{Name: term, Count: counts[term]})
	}
	return stats
}

func velocityLeaders(items []trend.TrendItem, limit int) []Leader {
	ranked := make([]trend.TrendItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].VelocityScore > ranked[j].VelocityScore
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	leaders := make([]Leader, 0, len(ranked))
	for _, item := range ranked {
		title := item.URL
		if len(title) > 50 {
			title = title[:50] + "..."
		}
		leaders = append(leaders, Leader{
			ID:            item.ID,
			Title:         title,
			Category:      item.Category,
			VelocityScore: item.VelocityScore,
			TrendScore:    item.TrendScore,
		})
	}
	return leaders
}
