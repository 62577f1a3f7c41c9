package scrape

import "regexp"

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags returns the hashtags found in a caption, without the
// leading "#".
func ExtractHashtags(caption string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(caption, -1)
	if len(matches) == 0 {
		return nil
	}

	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}
