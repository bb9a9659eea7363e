package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given title.
//
// Examples:
//   - "Cozy Loft in Nairobi" → "cozy-loft-in-nairobi"
//   - "Beach   House!" → "beach-house"
func Generate(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))

	// Replace any non-alphanumeric runs with a single hyphen.
	s = slugRegexp.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
