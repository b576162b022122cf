package scan

import "strings"

// Normalize returns the dedup key for an endpoint candidate: everything
// before the first '?'.
func Normalize(s string) string {
	before, _, _ := strings.Cut(s, "?")
	return before
}
