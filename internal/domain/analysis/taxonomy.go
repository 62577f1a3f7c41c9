// Package analysis detects emerging fashion trends across a window of
// scraped posts: hashtag frequency, taxonomy term mentions, and
// cross-person convergence.
package analysis

import "regexp"

// Taxonomy is the static categorized fashion vocabulary used for keyword
// matching, plus a denylist of generic noise hashtags. Immutable at runtime.
//
// Style terms are matched as substrings because style tags commonly appear
// fused with other words ("barbiecoreoutfit"); all other categories use
// whole-word matching. The asymmetry is deliberate.
type Taxonomy struct {
	Styles     []string
	Categories []string
	Colors     []string
	Patterns   []string
	Fabrics    []string
	Noise      map[string]struct{}

	wordMatchers map[string]*regexp.Regexp
	allTerms     map[string]struct{}
}

var fashionCategories = []string{
	"dress", "dresses", "midi", "maxi", "mini", "skirt", "top", "crop",
	"jeans", "denim", "pants", "trousers", "blazer", "jacket", "coat",
	"sweater", "hoodie", "cardigan", "bodysuit", "romper", "jumpsuit",
	"bikini", "swimwear", "lingerie", "activewear", "athleisure",
	"sneakers", "heels", "boots", "sandals", "shoes", "bag", "handbag",
	"jewelry", "earrings", "necklace", "bracelet", "sunglasses",
	"hat", "scarf", "belt",
}

var fashionStyles = []string{
	"streetwear", "y2k", "cottagecore", "coquette", "balletcore",
	"quietluxury", "oldmoney", "coastal", "coastalgranddaughter",
	"mobwife", "cleangirlera", "cleangirl", "thatgirl",
	"darkfeminine", "lightacademia", "darkacademia", "grunge",
	"boho", "bohemian", "minimalist", "maximalist", "preppy",
	"fairycore", "goblincore", "gorpcore", "normcore",
	"blokette", "tenniscore", "officecore", "corporate",
	"downtown", "uptown", "tomato", "tomatogirl",
	"vanilla", "vanillagirl", "strawberry", "strawberrygirl",
	"cherryred", "burgandyfall", "butter", "lavenderhaze",
	"dopamine", "dopaminedressing", "barbiecore", "mermaidcore",
	"retrofuturism", "cybercore", "westernchic",
	"quiet", "luxury", "effortless", "aesthetic",
}

var fashionColors = []string{
	"red", "blue", "green", "pink", "black", "white", "beige",
	"navy", "burgundy", "lavender", "sage", "olive", "coral",
	"pastel", "neon", "neutral", "earth", "jeweltone",
	"chocolate", "camel", "cream", "ivory", "blush",
	"terracotta", "rust", "mustard", "forest",
}

var fashionPatterns = []string{
	"plaid", "stripe", "striped", "floral", "leopard", "animal",
	"polkadot", "checkered", "gingham", "houndstooth",
	"tie-dye", "tiedye", "camo", "abstract", "geometric",
	"paisley", "colorblock", "ombre",
}

var fashionFabrics = []string{
	"silk", "satin", "velvet", "leather", "denim", "linen",
	"cotton", "cashmere", "wool", "mesh", "lace", "tulle",
	"sequin", "crochet", "knit", "sheer",
}

// Generic hashtags that say nothing about fashion.
var noiseHashtags = []string{
	"love", "instagood", "photooftheday", "beautiful", "happy",
	"cute", "selfie", "me", "follow", "like", "followme",
	"picoftheday", "instadaily", "amazing", "fun", "summer",
	"winter", "spring", "fall", "life", "smile", "music",
	"food", "fitness", "workout", "travel", "photography",
	"nature", "art", "friends", "family", "dog", "cat",
	"reels", "reel", "viral", "trending", "fyp", "foryou",
	"foryoupage", "explore", "explorepage", "ad", "sponsored",
	"gifted", "collab", "collaboration",
}

var defaultTaxonomy = newTaxonomy()

// DefaultTaxonomy returns the process-wide fashion vocabulary.
func DefaultTaxonomy() *Taxonomy {
	return defaultTaxonomy
}

func newTaxonomy() *Taxonomy {
	t := &Taxonomy{
		Styles:       fashionStyles,
		Categories:   fashionCategories,
		Colors:       fashionColors,
		Patterns:     fashionPatterns,
		Fabrics:      fashionFabrics,
		Noise:        make(map[string]struct{}, len(noiseHashtags)),
		wordMatchers: make(map[string]*regexp.Regexp),
		allTerms:     make(map[string]struct{}),
	}

	for _, tag := range noiseHashtags {
		t.Noise[tag] = struct{}{}
	}

	for _, group := range [][]string{t.Styles, t.Categories, t.Colors, t.Patterns, t.Fabrics} {
		for _, term := range group {
			t.allTerms[term] = struct{}{}
		}
	}

	// Whole-word matchers for everything except styles.
	for _, group := range [][]string{t.Categories, t.Colors, t.Patterns, t.Fabrics} {
		for _, term := range group {
			if _, ok := t.wordMatchers[term]; !ok {
				t.wordMatchers[term] = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
			}
		}
	}

	return t
}

// IsNoise reports whether a lowercased hashtag is on the denylist.
func (t *Taxonomy) IsNoise(tag string) bool {
	_, ok := t.Noise[tag]
	return ok
}

// IsTerm reports whether a lowercased token is a taxonomy term in any group.
func (t *Taxonomy) IsTerm(token string) bool {
	_, ok := t.allTerms[token]
	return ok
}

// matchWord reports whether text contains term as a whole word.
func (t *Taxonomy) matchWord(term, text string) bool {
	re, ok := t.wordMatchers[term]
	if !ok {
		return false
	}
	return re.MatchString(text)
}
