package trend

import (
	"math"
	"testing"
	"time"
)

func TestEngagementScoreMonotonicInLikes(t *testing.T) {
	prev := EngagementScore(0, 50, 10, 1000)
	for _, likes := range []int{1, 10, 500, 10_000, 1_000_000} {
		score := EngagementScore(likes, 50, 10, 1000)
		if score <= prev {
			t.Fatalf("engagement should strictly increase with likes: %d gave %f, previous %f", likes, score, prev)
		}
		prev = score
	}
}

func TestScoreBounds(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	items := []*TrendItem{
		{},
		{Likes: -5, Comments: -1, Shares: -100, Views: -3},
		{Likes: 1_000_000_000, Comments: 1_000_000_000, Shares: 1_000_000_000, Views: 1_000_000_000, SubmittedAt: now.Add(-time.Hour)},
		{Likes: 1000, Comments: 100, Shares: 50, Views: 10_000, SubmittedAt: now.Add(-48 * time.Hour)},
	}

	history := []MetricSnapshot{
		{Likes: 100, Comments: 10, Shares: 5, RecordedAt: now.Add(-20 * time.Hour)},
		{Likes: 900, Comments: 90, Shares: 45, RecordedAt: now.Add(-time.Hour)},
	}

	for i, item := range items {
		scores := ComputeScores(item, history, now)
		if scores.Trend < 0 || scores.Trend > 100 {
			t.Errorf("item %d: trend score out of bounds: %f", i, scores.Trend)
		}
		if scores.Velocity < 0 {
			t.Errorf("item %d: velocity score negative: %f", i, scores.Velocity)
		}
		if scores.CrossPlatform < 0 {
			t.Errorf("item %d: cross-platform score negative: %f", i, scores.CrossPlatform)
		}
	}
}

func TestVelocityFloorWithoutHistory(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := &TrendItem{Likes: 1000, Comments: 100, Shares: 50, Views: 10_000}

	cases := map[string][]MetricSnapshot{
		"no history":      nil,
		"single snapshot": {{Likes: 500, RecordedAt: now.Add(-2 * time.Hour)}},
		"stale snapshots": {
			{Likes: 100, RecordedAt: now.Add(-72 * time.Hour)},
			{Likes: 900, RecordedAt: now.Add(-30 * time.Hour)},
		},
	}

	engagement := EngagementScore(item.Likes, item.Comments, item.Shares, item.Views)
	for name, history := range cases {
		scores := ComputeScores(item, history, now)
		if math.Abs(scores.Velocity-round2(engagement)) > 0.005 {
			t.Errorf("%s: velocity score should equal engagement (multiplier 1.0), got %f want %f", name, scores.Velocity, engagement)
		}
	}
}

func TestVelocityMultiplierCapsAtThree(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	history := []MetricSnapshot{
		{Likes: 10, Comments: 1, Shares: 1, RecordedAt: now.Add(-23 * time.Hour)},
		{Likes: 100_000, Comments: 10_000, Shares: 10_000, RecordedAt: now.Add(-time.Hour)},
	}

	if got := velocityMultiplier(history, now); got != 3.0 {
		t.Fatalf("explosive growth should cap multiplier at 3.0, got %f", got)
	}
}

func TestVelocityMultiplierModestGrowth(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	history := []MetricSnapshot{
		{Likes: 99, Comments: 49, Shares: 19, RecordedAt: now.Add(-20 * time.Hour)},
		{Likes: 199, Comments: 99, Shares: 39, RecordedAt: now.Add(-time.Hour)},
	}

	// All three counters doubled: avg growth 1.0, multiplier 1 + 1.0/2 = 1.5.
	if got := velocityMultiplier(history, now); math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("expected multiplier 1.5 for 100%% growth, got %f", got)
	}
}

func TestRecencyBoundaryContinuity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	justUnder := recencyFactor(now.Add(-24*time.Hour+time.Second), now)
	justOver := recencyFactor(now.Add(-24*time.Hour-time.Second), now)

	if justUnder != 1.5 {
		t.Fatalf("factor just under 24h should be 1.5, got %f", justUnder)
	}
	if math.Abs(justOver-1.5) > 0.001 {
		t.Fatalf("factor just over 24h should stay continuous at ~1.5, got %f", justOver)
	}
}

func TestRecencyDecay(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		age  time.Duration
		want float64
	}{
		{time.Hour, 1.5},
		{4 * 24 * time.Hour, 1.25},
		{7 * 24 * time.Hour, 1.0},
		{30 * 24 * time.Hour, 1.0},
	}
	for _, tc := range cases {
		got := recencyFactor(now.Add(-tc.age), now)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("age %v: recency factor %f, want %f", tc.age, got, tc.want)
		}
	}

	if got := recencyFactor(time.Time{}, now); got != 1.0 {
		t.Errorf("zero submission time should be neutral, got %f", got)
	}
}

func TestComputeScoresFreshItemNoHistory(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := &TrendItem{
		Likes:       1000,
		Comments:    100,
		Shares:      50,
		Views:       10_000,
		SubmittedAt: now.Add(-time.Hour),
	}

	engagement := (math.Log10(1001)/5*0.30 +
		math.Log10(101)/4*0.30 +
		math.Log10(51)/4*0.25 +
		math.Log10(10001)/6*0.15) * 100

	// No history: velocity multiplier 1.0. One hour old: recency 1.5.
	wantTrend := engagement*0.30 + engagement*1.0*0.40 + engagement*1.5*0.30

	scores := ComputeScores(item, nil, now)
	if math.Abs(scores.Trend-round2(wantTrend)) > 0.005 {
		t.Errorf("trend score %f, want %f", scores.Trend, wantTrend)
	}
	if math.Abs(scores.Velocity-round2(engagement)) > 0.005 {
		t.Errorf("velocity score %f, want engagement %f", scores.Velocity, engagement)
	}
	if scores.CrossPlatform != 0 {
		t.Errorf("cross-platform score should be 0, got %f", scores.CrossPlatform)
	}
}

func TestUpdateScoresOnlyTouchesScoreFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := &TrendItem{
		ID:          "t1",
		URL:         "https://example.com/item",
		Likes:       500,
		Comments:    20,
		SubmittedAt: now.Add(-2 * time.Hour),
	}

	UpdateScores(item, nil, now)

	if item.TrendScore <= 0 {
		t.Fatalf("trend score should be set, got %f", item.TrendScore)
	}
	if item.ID != "t1" || item.URL != "https://example.com/item" || item.Likes != 500 {
		t.Fatalf("non-score fields must not change")
	}

	want := ComputeScores(item, nil, now)
	if item.TrendScore != want.Trend || item.VelocityScore != want.Velocity {
		t.Fatalf("UpdateScores should match ComputeScores")
	}
}

func TestComputeScoresDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := &TrendItem{Likes: 123, Comments: 45, Shares: 6, Views: 7890, SubmittedAt: now.Add(-36 * time.Hour)}
	history := []MetricSnapshot{
		{Likes: 50, Comments: 20, Shares: 2, RecordedAt: now.Add(-18 * time.Hour)},
		{Likes: 123, Comments: 45, Shares: 6, RecordedAt: now.Add(-time.Minute)},
	}

	first := ComputeScores(item, history, now)
	second := ComputeScores(item, history, now)
	if first != second {
		t.Fatalf("scores must be deterministic: %+v vs %+v", first, second)
	}
}
