package trend

import (
	"math"
	"time"
)

// Scoring weights and limits. The cross-platform bonus is a reserved
// extension point: it stays additive and non-negative, currently zero
// until multi-platform duplicate detection exists.
const (
	baseEngagementWeight = 0.30
	velocityWeight       = 0.40
	recencyWeight        = 0.30
	crossPlatformBonus   = 0.0
	maxTrendScore        = 100.0
)

// Metric weights and log-normalization divisors. The divisors assume
// practical ceilings of ~10^5 likes, ~10^4 comments/shares, ~10^6 views.
const (
	likesWeight    = 0.30
	commentsWeight = 0.30
	sharesWeight   = 0.25
	viewsWeight    = 0.15

	likesDivisor    = 5.0
	commentsDivisor = 4.0
	sharesDivisor   = 4.0
	viewsDivisor    = 6.0
)

// Scores holds the three derived scores for a trend item.
type Scores struct {
	Trend         float64 `json:"trend_score"`
	Velocity      float64 `json:"velocity_score"`
	CrossPlatform float64 `json:"cross_platform_score"`
}

// EngagementScore maps raw counters into a 0-100 engagement sub-score.
// Each counter passes through log10(n+1) so viral outliers cannot saturate
// the score; weights bias toward comments and likes over passive views.
// Negative counters are treated as zero.
func EngagementScore(likes, comments, shares, views int) float64 {
	score := (logNorm(likes, likesDivisor)*likesWeight +
		logNorm(comments, commentsDivisor)*commentsWeight +
		logNorm(shares, sharesDivisor)*sharesWeight +
		logNorm(views, viewsDivisor)*viewsWeight) * 100

	return math.Min(score, maxTrendScore)
}

func logNorm(n int, divisor float64) float64 {
	if n < 0 {
		n = 0
	}
	return math.Log10(float64(n)+1) / divisor
}

// velocityMultiplier computes the 1.0-3.0 growth factor from snapshot
// history. It needs at least two snapshots recorded within the trailing
// 24 hours of now; otherwise there is no velocity signal and it returns 1.0.
func velocityMultiplier(history []MetricSnapshot, now time.Time) float64 {
	if len(history) < 2 {
		return 1.0
	}

	dayAgo := now.Add(-24 * time.Hour)
	var window []MetricSnapshot
	for _, snap := range history {
		if !snap.RecordedAt.Before(dayAgo) {
			window = append(window, snap)
		}
	}
	if len(window) < 2 {
		return 1.0
	}

	first := window[0]
	last := window[len(window)-1]

	// The +1 in the denominator avoids division by zero and dampens
	// growth rates when the base count is near zero.
	likesGrowth := float64(last.Likes-first.Likes) / float64(nonNegative(first.Likes)+1)
	commentsGrowth := float64(last.Comments-first.Comments) / float64(nonNegative(first.Comments)+1)
	sharesGrowth := float64(last.Shares-first.Shares) / float64(nonNegative(first.Shares)+1)

	avgGrowth := (likesGrowth + commentsGrowth + sharesGrowth) / 3

	// 100%+ average growth over the window reaches the cap.
	multiplier := 1.0 + math.Min(avgGrowth/2, 2.0)

	return math.Max(1.0, math.Min(multiplier, 3.0))
}

// recencyFactor boosts newly submitted content. Under 24 hours old the boost
// is the full 1.5; it then decays linearly to 1.0 at 7 days. The decay
// formula is anchored at days_old = 1 so the factor is continuous across
// the 24-hour seam. A zero submission time is neutral.
func recencyFactor(submittedAt, now time.Time) float64 {
	if submittedAt.IsZero() {
		return 1.0
	}

	age := now.Sub(submittedAt)
	switch {
	case age < 24*time.Hour:
		return 1.5
	case age < 7*24*time.Hour:
		daysOld := age.Hours() / 24
		return 1.5 - 0.5*(daysOld-1)/6
	default:
		return 1.0
	}
}

// ComputeScores derives the full score triple for a trend item from its
// current counters and snapshot history. Pure and deterministic: the same
// item, history, and now always produce the same result.
func ComputeScores(item *TrendItem, history []MetricSnapshot, now time.Time) Scores {
	engagement := EngagementScore(item.Likes, item.Comments, item.Shares, item.Views)
	velocity := velocityMultiplier(history, now)
	recency := recencyFactor(item.SubmittedAt, now)

	trendScore := engagement*baseEngagementWeight +
		engagement*velocity*velocityWeight +
		engagement*recency*recencyWeight +
		crossPlatformBonus

	trendScore = math.Min(trendScore, maxTrendScore)

	return Scores{
		Trend:         round2(trendScore),
		Velocity:      round2(velocity * engagement),
		CrossPlatform: round2(crossPlatformBonus),
	}
}

// UpdateScores applies ComputeScores to the item, mutating only the three
// score fields. The caller is responsible for persisting the item and
// appending a new MetricSnapshot afterwards.
func UpdateScores(item *TrendItem, history []MetricSnapshot, now time.Time) {
	scores := ComputeScores(item, history, now)
	item.TrendScore = scores.Trend
	item.VelocityScore = scores.Velocity
	item.CrossPlatformScore = scores.CrossPlatform
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
