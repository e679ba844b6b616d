// Package score extracts a numeric bias rating from free-text model output.
package score

import (
	"regexp"
	"strconv"

	"golang.org/x/text/width"
)

// Fallback is returned when no rating can be found. It means "unknown", not
// a measured neutral score.
const Fallback = 50.0

// tokenPattern matches a standalone integer from 0 to 100. Word boundaries are
// ASCII, so digits followed by CJK text or punctuation still match.
var tokenPattern = regexp.MustCompile(`\b(100|\d{1,2})\b`)

// Extract returns the first standalone integer in [0,100] found in text, or
// Fallback.
func Extract(text string) float64 {
	v, _ := ExtractOK(text)
	return v
}

// ExtractOK is like Extract but also reports whether a rating was found.
func ExtractOK(text string) (float64, bool) {
	// Full-width digits are common in CJK responses.
	m := tokenPattern.FindStringSubmatch(width.Narrow.String(text))
	if m == nil {
		return Fallback, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 100 {
		return Fallback, false
	}

	return float64(n), true
}
