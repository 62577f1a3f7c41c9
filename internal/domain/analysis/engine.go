package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrInvalidArgument marks a contract violation by the caller.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	maxHashtags          = 30
	maxStyles            = 20
	maxCategories        = 20
	maxColors            = 15
	maxPatterns          = 10
	maxFabrics           = 10
	maxTopPosts          = 20
	maxConvergence       = 20
	maxConvergencePeople = 10
	captionPreviewRunes  = 300
)

// Marker substrings that flag a hashtag as fashion-related even when it is
// not a taxonomy term itself.
var fashionMarkers = []string{"fashion", "style", "outfit", "ootd", "wear", "look"}

// Engine analyzes a window of posts against a fixed taxonomy. It is pure:
// no I/O, no hidden state, safe for concurrent use.
type Engine struct {
	taxonomy *Taxonomy
}

// NewEngine returns an engine over the given taxonomy, or the default
// vocabulary when nil.
func NewEngine(t *Taxonomy) *Engine {
	if t == nil {
		t = DefaultTaxonomy()
	}
	return &Engine{taxonomy: t}
}

// Analyze produces a trend report over a caller-supplied, already
// time-filtered window of posts. days is recorded as the window length;
// minMentions is the distinct-mention threshold for ranked terms and
// cross-person convergence, and must be at least 1.
//
// Posts with empty captions or hashtags contribute nothing and never fail.
// An empty window yields the defined empty-state report with a single
// informational insight.
func (e *Engine) Analyze(posts []Post, days, minMentions int) (*Report, error) {
	if minMentions < 1 {
		return nil, fmt.Errorf("min mentions must be >= 1, got %d: %w", minMentions, ErrInvalidArgument)
	}

	report := &Report{
		PeriodDays:        days,
		TotalPosts:        len(posts),
		Hashtags:          []HashtagStat{},
		Styles:            []TermCount{},
		Categories:        []TermCount{},
		Colors:            []TermCount{},
		Patterns:          []TermCount{},
		Fabrics:           []TermCount{},
		TopPosts:          []TopPost{},
		CrossPersonTrends: []Convergence{},
		Insights:          []Insight{},
	}

	if len(posts) == 0 {
		report.Insights = append(report.Insights, Insight{
			Kind:  "info",
			Title: "No Data Yet",
			Text:  "Scrape some people to start seeing trend insights.",
		})
		return report, nil
	}

	hashtags := newHashtagTable()
	styles := newTermCounter()
	categories := newTermCounter()
	colors := newTermCounter()
	patterns := newTermCounter()
	fabrics := newTermCounter()
	convergence := newConvergenceTable()

	for i := range posts {
		post := &posts[i]

		for _, raw := range post.Hashtags {
			tag := strings.TrimSpace(strings.ToLower(raw))
			if utf8.RuneCountInString(tag) < 3 || e.taxonomy.IsNoise(tag) {
				continue
			}
			hashtags.add(tag, post)
		}

		blob := matchBlob(post)

		for _, term := range e.taxonomy.Styles {
			if strings.Contains(blob, term) {
				styles.add(term)
				convergence.add("style", term, post)
			}
		}
		for _, term := range e.taxonomy.Categories {
			if e.taxonomy.matchWord(term, blob) {
				categories.add(term)
				convergence.add("cat", term, post)
			}
		}
		for _, term := range e.taxonomy.Colors {
			if e.taxonomy.matchWord(term, blob) {
				colors.add(term)
			}
		}
		for _, term := range e.taxonomy.Patterns {
			if e.taxonomy.matchWord(term, blob) {
				patterns.add(term)
			}
		}
		for _, term := range e.taxonomy.Fabrics {
			if e.taxonomy.matchWord(term, blob) {
				fabrics.add(term)
			}
		}
	}

	report.Hashtags = hashtags.ranked(e.taxonomy, minMentions, maxHashtags)
	report.Styles = styles.ranked(minMentions, maxStyles)
	report.Categories = categories.ranked(minMentions, maxCategories)
	report.Colors = colors.ranked(minMentions, maxColors)
	report.Patterns = patterns.ranked(minMentions, maxPatterns)
	report.Fabrics = fabrics.ranked(minMentions, maxFabrics)
	report.CrossPersonTrends = convergence.ranked(minMentions, maxConvergence)
	report.TopPosts = topPosts(posts, maxTopPosts)
	report.Insights = buildInsights(styles, categories, colors, report.CrossPersonTrends, len(posts), days)

	return report, nil
}

// matchBlob concatenates the lowercased caption and hashtags into one
// searchable text.
func matchBlob(post *Post) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(post.Caption))
	for _, tag := range post.Hashtags {
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(tag))
	}
	return b.String()
}

// termCounter counts term mentions while remembering first-seen order so
// ranking is deterministic under equal counts.
type termCounter struct {
	counts map[string]int
	order  []string
}

func newTermCounter() *termCounter {
	return &termCounter{counts: make(map[string]int)}
}

func (c *termCounter) add(term string) {
	if _, seen := c.counts[term]; !seen {
		c.order = append(c.order, term)
	}
	c.counts[term]++
}

// ranked returns terms sorted by count descending (stable by first-seen),
// dropping counts below minCount and capping the list length.
func (c *termCounter) ranked(minCount, limit int) []TermCount {
	out := c.top(len(c.order))
	filtered := out[:0]
	for _, tc := range out {
		if tc.Count >= minCount {
			filtered = append(filtered, tc)
		}
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// top returns the n highest-count terms with no minimum filter.
func (c *termCounter) top(n int) []TermCount {
	out := make([]TermCount, 0, len(c.order))
	for _, term := range c.order {
		out = append(out, TermCount{Term: term, Count: c.counts[term]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// hashtagTable aggregates per-hashtag counts and engagement.
type hashtagTable struct {
	stats map[string]*hashtagAgg
	order []string
}

type hashtagAgg struct {
	count    int
	likes    int
	comments int
	posts    int
	people   map[string]struct{}
}

func newHashtagTable() *hashtagTable {
	return &hashtagTable{stats: make(map[string]*hashtagAgg)}
}

func (t *hashtagTable) add(tag string, post *Post) {
	agg, ok := t.stats[tag]
	if !ok {
		agg = &hashtagAgg{people: make(map[string]struct{})}
		t.stats[tag] = agg
		t.order = append(t.order, tag)
	}
	agg.count++
	agg.likes += clampCount(post.Likes)
	agg.comments += clampCount(post.Comments)
	agg.posts++
	agg.people[post.OwnerID] = struct{}{}
}

func (t *hashtagTable) ranked(tax *Taxonomy, minCount, limit int) []HashtagStat {
	tags := append([]string(nil), t.order...)
	sort.SliceStable(tags, func(i, j int) bool {
		return t.stats[tags[i]].count > t.stats[tags[j]].count
	})

	out := []HashtagStat{}
	for _, tag := range tags {
		agg := t.stats[tag]
		if agg.count < minCount {
			continue
		}
		var avg float64
		if agg.posts > 0 {
			avg = round1(float64(agg.likes+agg.comments) / float64(agg.posts))
		}
		out = append(out, HashtagStat{
			Hashtag:        tag,
			Count:          agg.count,
			TotalLikes:     agg.likes,
			TotalComments:  agg.comments,
			UniquePeople:   len(agg.people),
			AvgEngagement:  avg,
			FashionRelated: isFashionRelated(tax, tag),
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

func isFashionRelated(tax *Taxonomy, tag string) bool {
	if tax.IsTerm(tag) {
		return true
	}
	for _, marker := range fashionMarkers {
		if strings.Contains(tag, marker) {
			return true
		}
	}
	return false
}

// convergenceTable tracks which distinct people mentioned each style or
// category term, preserving encounter order for stable ties.
type convergenceTable struct {
	entries map[string]*convergenceAgg
	order   []string
}

type convergenceAgg struct {
	kind   string
	term   string
	people map[string]struct{}
	names  []string
}

func newConvergenceTable() *convergenceTable {
	return &convergenceTable{entries: make(map[string]*convergenceAgg)}
}

func (t *convergenceTable) add(kind, term string, post *Post) {
	key := kind + ":" + term
	agg, ok := t.entries[key]
	if !ok {
		agg = &convergenceAgg{kind: kind, term: term, people: make(map[string]struct{})}
		t.entries[key] = agg
		t.order = append(t.order, key)
	}
	if _, seen := agg.people[post.OwnerID]; !seen {
		agg.people[post.OwnerID] = struct{}{}
		name := post.OwnerName
		if name == "" {
			name = post.OwnerID
		}
		agg.names = append(agg.names, name)
	}
}

func (t *convergenceTable) ranked(minPeople, limit int) []Convergence {
	out := []Convergence{}
	for _, key := range t.order {
		agg := t.entries[key]
		if len(agg.people) < minPeople {
			continue
		}
		kind := "category"
		if agg.kind == "style" {
			kind = "style"
		}
		names := agg.names
		if len(names) > maxConvergencePeople {
			names = names[:maxConvergencePeople]
		}
		out = append(out, Convergence{
			Trend:       agg.term,
			Kind:        kind,
			PeopleCount: len(agg.people),
			People:      append([]string(nil), names...),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PeopleCount > out[j].PeopleCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// topPosts ranks posts by likes + 3*comments; comments are weighted as a
// stronger intent signal than passive likes.
func topPosts(posts []Post, limit int) []TopPost {
	ranked := make([]*Post, len(posts))
	for i := range posts {
		ranked[i] = &posts[i]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return engagementRank(ranked[i]) > engagementRank(ranked[j])
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]TopPost, 0, len(ranked))
	for _, post := range ranked {
		out = append(out, TopPost{
			OwnerName: post.OwnerName,
			OwnerType: post.OwnerType,
			Platform:  post.Platform,
			PostURL:   post.PostURL,
			ImageURLs: post.ImageURLs,
			Caption:   truncateRunes(post.Caption, captionPreviewRunes),
			Hashtags:  post.Hashtags,
			Likes:     clampCount(post.Likes),
			Comments:  clampCount(post.Comments),
			Shares:    clampCount(post.Shares),
			Views:     clampCount(post.Views),
			PostedAt:  post.PostedAt,
			ScrapedAt: post.ScrapedAt,
		})
	}
	return out
}

func engagementRank(p *Post) int {
	return clampCount(p.Likes) + clampCount(p.Comments)*3
}

func buildInsights(styles, categories, colors *termCounter, convergence []Convergence, totalPosts, days int) []Insight {
	insights := []Insight{}

	if top := styles.top(3); len(top) > 0 {
		parts := make([]string, 0, len(top))
		for _, tc := range top {
			parts = append(parts, fmt.Sprintf("%s (%d mentions)", tc.Term, tc.Count))
		}
		insights = append(insights, Insight{
			Kind:  "style",
			Title: "Trending Styles",
			Text:  fmt.Sprintf("Top aesthetics in the last %d days: %s.", days, strings.Join(parts, ", ")),
		})
	}

	if top := categories.top(3); len(top) > 0 {
		parts := make([]string, 0, len(top))
		for _, tc := range top {
			parts = append(parts, fmt.Sprintf("%s (%dx)", tc.Term, tc.Count))
		}
		insights = append(insights, Insight{
			Kind:  "category",
			Title: "Hot Categories",
			Text:  fmt.Sprintf("Most-mentioned product categories: %s.", strings.Join(parts, ", ")),
		})
	}

	if top := colors.top(3); len(top) > 0 {
		parts := make([]string, 0, len(top))
		for _, tc := range top {
			parts = append(parts, tc.Term)
		}
		insights = append(insights, Insight{
			Kind:  "color",
			Title: "Color Direction",
			Text:  fmt.Sprintf("Colors trending across posts: %s.", strings.Join(parts, ", ")),
		})
	}

	for _, conv := range convergence {
		if conv.PeopleCount < 3 {
			continue
		}
		names := conv.People
		if len(names) > 4 {
			names = names[:4]
		}
		insights = append(insights, Insight{
			Kind:  "convergence",
			Title: "Cross-Person Convergence",
			Text: fmt.Sprintf("%q is appearing across %d different people (%s).",
				conv.Trend, conv.PeopleCount, strings.Join(names, ", ")),
		})
		break
	}

	insights = append(insights, Insight{
		Kind:  "volume",
		Title: "Scrape Volume",
		Text:  fmt.Sprintf("Analyzed %d posts over the last %d days.", totalPosts, days),
	})

	return insights
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
