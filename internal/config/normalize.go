package config

import (
	"regexp"
	"strings"
)

var (
	httpPrefix    = regexp.MustCompile(`(?i)^http://`)
	urlGarbage    = regexp.MustCompile(`%0A|\n|\r|\s+`)
	trailingAPI   = regexp.MustCompile(`/api$`)
	trailingSlash = regexp.MustCompile(`/+$`)
)

// EnsureHTTPS rewrites a plain-http URL to https. Host pages are served
// over https, so every backend URL must be too or the fetch is blocked as
// mixed content.
func EnsureHTTPS(url string) string {
	if url == "" {
		return url
	}
	return httpPrefix.ReplaceAllString(url, "https://")
}

// NormalizeBaseURL strips copy-paste artifacts (encoded newlines,
// whitespace), trailing slashes, and a trailing /api segment, then coerces
// the result to https. The output is a bare origin suitable for joining
// with endpoint paths.
func NormalizeBaseURL(raw string) string {
	cleaned := urlGarbage.ReplaceAllString(strings.TrimSpace(raw), "")
	cleaned = trailingSlash.ReplaceAllString(cleaned, "")
	cleaned = trailingAPI.ReplaceAllString(cleaned, "")
	return EnsureHTTPS(cleaned)
}
