// Package scope translates invariant glob patterns into path predicates.
//
// The glob dialect is small by design: `.` is literal, `**` crosses path
// separators, `*` stays within one segment. Every other character is taken
// verbatim, so patterns from existing invariant files keep their meaning.
package scope

import (
	"regexp"
	"strings"
)

// dsMarker protects `**` while `*` is being rewritten.
const dsMarker = "\x00DS\x00"

// GlobToRegex converts a glob pattern into an unanchored regex source string.
// `**` must be substituted before `*` so the single-segment rewrite does not
// swallow it.
func GlobToRegex(pattern string) string {
	r := strings.ReplaceAll(pattern, ".", `\.`)
	r = strings.ReplaceAll(r, "**", dsMarker)
	r = strings.ReplaceAll(r, "*", `[^/]*`)
	r = strings.ReplaceAll(r, dsMarker, ".*")
	return r
}

// Compile builds an anchored matcher for a glob pattern.
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^" + GlobToRegex(pattern) + "$")
}

// Matches reports whether path matches the glob pattern as a full string.
// A pattern that fails to compile matches nothing.
func Matches(path, pattern string) bool {
	re, err := Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(path)
}
