package util

import (
	"regexp"
	"strings"

	"quiztube/internal/domain"
)

// youtubeIDRx matches the 11-character video id after either the short-form
// host or a watch-style "v=" parameter. It is a substring search, not full
// URL validation: protocol, "www." and extra query parameters are irrelevant.
var youtubeIDRx = regexp.MustCompile(`(?:youtu\.be/|v=)([\w\-]{11})`)

// ExtractVideoID extracts the 11-character YouTube video id from a URL.
func ExtractVideoID(url string) (string, error) {
	m := youtubeIDRx.FindStringSubmatch(strings.TrimSpace(url))
	if m == nil {
		return "", domain.NewInvalidURLError(url)
	}
	return m[1], nil
}

// ValidateVideoURL reports whether ExtractVideoID would succeed.
func ValidateVideoURL(url string) bool {
	_, err := ExtractVideoID(url)
	return err == nil
}
