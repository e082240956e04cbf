package util

import (
	"regexp"
	"strings"
)

var (
	reAllowed   = regexp.MustCompile(`[^a-zA-Z0-9 \-.,&()R]`)
	reFileSafe  = regexp.MustCompile(`[^a-zA-Z0-9\s_-]`)
	reSpaceRuns = regexp.MustCompile(`\s+`)
)

// Sanitize strips everything outside the character set the import template
// tolerates for free-text fields (letters, digits, spaces and a short list
// of punctuation, R kept for Rand amounts).
func Sanitize(input string) string {
	if input == "" {
		return ""
	}
	return reAllowed.ReplaceAllString(input, "")
}

// SanitizeSiteName makes a site name usable as part of a file name.
func SanitizeSiteName(input string) string {
	s := reFileSafe.ReplaceAllString(strings.TrimSpace(input), "")
	return reSpaceRuns.ReplaceAllString(s, "_")
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaceRuns.ReplaceAllString(input, " "))
}
