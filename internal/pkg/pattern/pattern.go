// Package pattern turns user-supplied search text into safe matchers.
package pattern

import (
	"regexp"
)

// Literal compiles s into a case-insensitive matcher for the whole string.
// Metacharacters in s are quoted, so the text only ever matches itself.
func Literal(s string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(s) + `$`)
}
