package utils

import "github.com/microcosm-cc/bluemonday"

// Directory entries are plain text; strip all markup instead of allowing a
// UGC subset.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize removes HTML from user supplied field values to prevent XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
