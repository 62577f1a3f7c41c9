package analysis

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func post(owner, name, caption string, hashtags ...string) Post {
	return Post{
		OwnerID:   owner,
		OwnerName: name,
		Platform:  "instagram",
		Caption:   caption,
		Hashtags:  hashtags,
		Likes:     100,
		Comments:  10,
		ScrapedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	engine := NewEngine(nil)

	report, err := engine.Analyze(nil, 7, 2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if report.TotalPosts != 0 {
		t.Errorf("expected 0 posts analyzed, got %d", report.TotalPosts)
	}
	if report.PeriodDays != 7 {
		t.Errorf("expected period 7, got %d", report.PeriodDays)
	}
	if len(report.Insights) != 1 || report.Insights[0].Kind != "info" {
		t.Fatalf("expected exactly one info insight, got %+v", report.Insights)
	}
	if len(report.Hashtags) != 0 || len(report.Styles) != 0 || len(report.TopPosts) != 0 || len(report.CrossPersonTrends) != 0 {
		t.Errorf("empty window must produce empty collections")
	}
}

func TestAnalyzeRejectsBadMinMentions(t *testing.T) {
	engine := NewEngine(nil)

	if _, err := engine.Analyze(nil, 7, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("minMentions=0 should fail with ErrInvalidArgument, got %v", err)
	}
	if _, err := engine.Analyze(nil, 7, -3); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("negative minMentions should fail with ErrInvalidArgument, got %v", err)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	engine := NewEngine(nil)
	posts := []Post{
		post("p1", "Ari", "loving this cottagecore look", "cottagecore", "ootd"),
		post("p2", "Bea", "midi dress in sage green", "dressinspo"),
		post("p3", "Cal", "y2k vibes all day", "y2k", "fashion"),
	}

	first, err := engine.Analyze(posts, 7, 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	second, err := engine.Analyze(posts, 7, 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("analysis must be idempotent over an identical window")
	}
}

func TestCrossPersonConvergenceThreshold(t *testing.T) {
	engine := NewEngine(nil)

	// "coquette" mentioned by 2 distinct people, "grunge" by only 1.
	posts := []Post{
		post("p1", "Ari", "full coquette today"),
		post("p2", "Bea", "coquette bows forever"),
		post("p3", "Cal", "grunge revival"),
	}

	report, err := engine.Analyze(posts, 7, 2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var foundCoquette, foundGrunge bool
	for _, conv := range report.CrossPersonTrends {
		switch conv.Trend {
		case "coquette":
			foundCoquette = true
			if conv.PeopleCount != 2 {
				t.Errorf("coquette people_count = %d, want 2", conv.PeopleCount)
			}
		case "grunge":
			foundGrunge = true
		}
	}

	if !foundCoquette {
		t.Errorf("term at exactly minMentions distinct people must appear")
	}
	if foundGrunge {
		t.Errorf("term below minMentions distinct people must not appear")
	}
}

func TestConvergenceCountsDistinctPeopleNotPosts(t *testing.T) {
	engine := NewEngine(nil)

	// Three mentions but only one distinct person.
	posts := []Post{
		post("p1", "Ari", "balletcore forever"),
		post("p1", "Ari", "more balletcore"),
		post("p1", "Ari", "balletcore again"),
	}

	report, err := engine.Analyze(posts, 7, 2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	for _, conv := range report.CrossPersonTrends {
		if conv.Trend == "balletcore" {
			t.Fatalf("single-person repetition must not converge, got %+v", conv)
		}
	}
}

func TestCottagecoreHashtagScenario(t *testing.T) {
	engine := NewEngine(nil)

	posts := []Post{
		post("p1", "Ari", "", "cottagecore"),
		post("p2", "Bea", "", "cottagecore"),
	}

	report, err := engine.Analyze(posts, 7, 2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var tagStat *HashtagStat
	for i := range report.Hashtags {
		if report.Hashtags[i].Hashtag == "cottagecore" {
			tagStat = &report.Hashtags[i]
		}
	}
	if tagStat == nil {
		t.Fatalf("trending_hashtags missing cottagecore: %+v", report.Hashtags)
	}
	if tagStat.Count != 2 || tagStat.UniquePeople != 2 {
		t.Errorf("cottagecore count=%d unique_people=%d, want 2/2", tagStat.Count, tagStat.UniquePeople)
	}
	if !tagStat.FashionRelated {
		t.Errorf("cottagecore is a taxonomy term and must be flagged fashion-related")
	}

	var conv *Convergence
	for i := range report.CrossPersonTrends {
		if report.CrossPersonTrends[i].Trend == "cottagecore" {
			conv = &report.CrossPersonTrends[i]
		}
	}
	if conv == nil {
		t.Fatalf("cross_person_trends missing cottagecore: %+v", report.CrossPersonTrends)
	}
	if conv.Kind != "style" || conv.PeopleCount != 2 {
		t.Errorf("cottagecore convergence = %+v, want style with people_count 2", conv)
	}
}

func TestNoiseAndShortHashtagsFiltered(t *testing.T) {
	engine := NewEngine(nil)
	posts := []Post{
		post("p1", "Ari", "", "fyp", "ad", "OOTD", "it"),
		post("p2", "Bea", "", "fyp", "ootd"),
	}

	report, err := engine.Analyze(posts, 7, 2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(report.Hashtags) != 1 || report.Hashtags[0].Hashtag != "ootd" {
		t.Fatalf("expected only ootd to survive filtering, got %+v", report.Hashtags)
	}
	if report.Hashtags[0].Count != 2 {
		t.Errorf("hashtag matching must be case-insensitive, count = %d", report.Hashtags[0].Count)
	}
}

func TestShortHashtagFilterCountsRunes(t *testing.T) {
	engine := NewEngine(nil)
	// Two runes but six bytes: must be dropped like any two-letter tag.
	posts := []Post{
		post("p1", "Ari", "", "古着", "古着コーデ"),
		post("p2", "Bea", "", "古着", "古着コーデ"),
	}

	report, err := engine.Analyze(posts, 7, 2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(report.Hashtags) != 1 || report.Hashtags[0].Hashtag != "古着コーデ" {
		t.Fatalf("length filter must count runes, not bytes: %+v", report.Hashtags)
	}
}

func TestStyleSubstringVersusWholeWordMatching(t *testing.T) {
	engine := NewEngine(nil)

	posts := []Post{
		// Style term fused inside a longer hashtag still counts.
		post("p1", "Ari", "", "barbiecoreoutfit"),
		// "sundress" must NOT count as the category "dress".
		post("p2", "Bea", "wearing my favorite sundress"),
		// Standalone "dress" does count.
		post("p3", "Cal", "this midi dress is everything"),
	}

	report, err := engine.Analyze(posts, 7, 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	styleCounts := map[string]int{}
	for _, tc := range report.Styles {
		styleCounts[tc.Term] = tc.Count
	}
	if styleCounts["barbiecore"] != 1 {
		t.Errorf("fused style tag should substring-match, got %+v", report.Styles)
	}

	catCounts := map[string]int{}
	for _, tc := range report.Categories {
		catCounts[tc.Term] = tc.Count
	}
	if catCounts["dress"] != 1 {
		t.Errorf("category matching must be whole-word: want exactly 1 dress mention, got %+v", report.Categories)
	}
	if catCounts["midi"] != 1 {
		t.Errorf("expected midi category mention, got %+v", report.Categories)
	}
}

func TestTopPostsWeighCommentsTriple(t *testing.T) {
	engine := NewEngine(nil)

	posts := []Post{
		{OwnerID: "p1", OwnerName: "Ari", Caption: "a", Likes: 100, Comments: 0},
		{OwnerID: "p2", OwnerName: "Bea", Caption: "b", Likes: 10, Comments: 40},
		{OwnerID: "p3", OwnerName: "Cal", Caption: "c", Likes: 50, Comments: 10},
	}

	report, err := engine.Analyze(posts, 7, 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(report.TopPosts) != 3 {
		t.Fatalf("expected all posts ranked, got %d", len(report.TopPosts))
	}
	// 10+40*3=130 > 100+0=100 > 50+10*3=80
	want := []string{"Bea", "Ari", "Cal"}
	for i, name := range want {
		if report.TopPosts[i].OwnerName != name {
			t.Errorf("top post %d = %s, want %s", i, report.TopPosts[i].OwnerName, name)
		}
	}
}

func TestInsightsForPopulatedWindow(t *testing.T) {
	engine := NewEngine(nil)

	posts := []Post{
		post("p1", "Ari", "cottagecore linen dress in sage"),
		post("p2", "Bea", "cottagecore picnic fit, white lace skirt"),
		post("p3", "Cal", "cottagecore cardigan and cream boots"),
	}

	report, err := engine.Analyze(posts, 14, 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	kinds := map[string]bool{}
	for _, ins := range report.Insights {
		kinds[ins.Kind] = true
	}

	for _, want := range []string{"style", "category", "color", "convergence", "volume"} {
		if !kinds[want] {
			t.Errorf("missing %q insight: %+v", want, report.Insights)
		}
	}
}

func TestHashtagEngagementAggregation(t *testing.T) {
	engine := NewEngine(nil)

	posts := []Post{
		{OwnerID: "p1", OwnerName: "Ari", Hashtags: []string{"streetwear"}, Likes: 100, Comments: 20},
		{OwnerID: "p2", OwnerName: "Bea", Hashtags: []string{"streetwear"}, Likes: 50, Comments: 10},
		// Negative counters degrade to zero instead of failing.
		{OwnerID: "p3", OwnerName: "Cal", Hashtags: []string{"streetwear"}, Likes: -5, Comments: -1},
	}

	report, err := engine.Analyze(posts, 7, 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(report.Hashtags) != 1 {
		t.Fatalf("expected one hashtag, got %+v", report.Hashtags)
	}
	stat := report.Hashtags[0]
	if stat.TotalLikes != 150 || stat.TotalComments != 30 {
		t.Errorf("aggregation wrong: likes=%d comments=%d", stat.TotalLikes, stat.TotalComments)
	}
	// (150 + 30) / 3 posts = 60.0
	if stat.AvgEngagement != 60.0 {
		t.Errorf("avg_engagement = %f, want 60.0", stat.AvgEngagement)
	}
	if stat.UniquePeople != 3 {
		t.Errorf("unique_people = %d, want 3", stat.UniquePeople)
	}
}

func TestRankingStableOnTies(t *testing.T) {
	engine := NewEngine(nil)

	// Both colors appear exactly once; first-seen order must hold.
	posts := []Post{
		post("p1", "Ari", "burgundy coat over an olive skirt"),
	}

	report, err := engine.Analyze(posts, 7, 1)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(report.Colors) < 2 {
		t.Fatalf("expected two color mentions, got %+v", report.Colors)
	}
	// Taxonomy order lists burgundy before olive.
	if report.Colors[0].Term != "burgundy" || report.Colors[1].Term != "olive" {
		t.Errorf("tie order not stable: %+v", report.Colors)
	}
}
