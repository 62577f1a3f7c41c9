package ingest

import (
	"net/url"
	"strings"
)

var platformHosts = map[string]string{
	"tiktok.com":    "TikTok",
	"instagram.com": "Instagram",
	"pinterest.com": "Pinterest",
	"twitter.com":   "Twitter",
	"x.com":         "Twitter",
	"youtube.com":   "YouTube",
	"youtu.be":      "YouTube",
}

// PlatformOf infers the source platform from a URL's host. Unknown
// hosts map to "Other".
func PlatformOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "Other"
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")

	for suffix, platform := range platformHosts {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return platform
		}
	}

	return "Other"
}
