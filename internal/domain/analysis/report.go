package analysis

import "time"

// Post is one scraped content item as consumed by the engine. Read-only;
// the feed layer maps its storage records into this shape.
type Post struct {
	OwnerID   string
	OwnerName string
	OwnerType string
	Platform  string
	PostURL   string
	ImageURLs []string
	Caption   string
	Hashtags  []string
	Likes     int
	Comments  int
	Shares    int
	Views     int
	PostedAt  time.Time
	ScrapedAt time.Time
}

// HashtagStat is an aggregated view of one hashtag across the window.
type HashtagStat struct {
	Hashtag        string  `json:"hashtag"`
	Count          int     `json:"count"`
	TotalLikes     int     `json:"total_likes"`
	TotalComments  int     `json:"total_comments"`
	UniquePeople   int     `json:"unique_people"`
	AvgEngagement  float64 `json:"avg_engagement"`
	FashionRelated bool    `json:"is_fashion_related"`
}

// TermCount is a taxonomy term with its mention count.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Convergence records a style or category term mentioned by multiple
// distinct people within the window.
type Convergence struct {
	Trend       string   `json:"trend"`
	Kind        string   `json:"type"` // style or category
	PeopleCount int      `json:"people_count"`
	People      []string `json:"people"`
}

// TopPost is an engagement-ranked post summary.
type TopPost struct {
	OwnerName string    `json:"person_name"`
	OwnerType string    `json:"person_type"`
	Platform  string    `json:"platform"`
	PostURL   string    `json:"post_url"`
	ImageURLs []string  `json:"image_urls"`
	Caption   string    `json:"caption"`
	Hashtags  []string  `json:"hashtags"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	Shares    int       `json:"shares"`
	Views     int       `json:"views"`
	PostedAt  time.Time `json:"posted_at,omitempty"`
	ScrapedAt time.Time `json:"scraped_at,omitempty"`
}

// Insight is a short human-readable trend summary.
type Insight struct {
	Kind  string `json:"type"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Report is the full result of analyzing one window of posts.
type Report struct {
	PeriodDays        int           `json:"period_days"`
	TotalPosts        int           `json:"total_posts_analyzed"`
	Hashtags          []HashtagStat `json:"trending_hashtags"`
	Styles            []TermCount   `json:"trending_styles"`
	Categories        []TermCount   `json:"trending_categories"`
	Colors            []TermCount   `json:"trending_colors"`
	Patterns          []TermCount   `json:"trending_patterns"`
	Fabrics           []TermCount   `json:"trending_fabrics"`
	TopPosts          []TopPost     `json:"top_posts"`
	CrossPersonTrends []Convergence `json:"cross_person_trends"`
	Insights          []Insight     `json:"insights"`
}
