package ir

import (
	"regexp"
	"strings"
)

// Sentinel marks a variable reference inside query text.
const Sentinel = "$"

var (
	// refPattern matches a sentinel-prefixed identifier.
	refPattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*`)

	// identPattern matches a bare identifier (no sentinel).
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	whitespace = regexp.MustCompile(`\s+`)
)

// CanonicalName validates a variable name and returns it with exactly one
// leading sentinel. Both "c" and "$c" yield "$c".
func CanonicalName(name string) (string, error) {
	bare := strings.TrimPrefix(strings.TrimSpace(name), Sentinel)
	if !identPattern.MatchString(bare) {
		return "", &QueryError{
			Code:    ErrCodeInvalidArgument,
			Message: "variable name must be an identifier ([A-Za-z_][A-Za-z0-9_]*)",
			Name:    name,
		}
	}
	return Sentinel + bare, nil
}

// ReferencedNames returns the distinct sentinel-prefixed identifiers in text,
// in order of first appearance. It returns nil when there are none.
func ReferencedNames(text string) []string {
	matches := refPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			names = append(names, m)
		}
	}
	return names
}

// ReplaceRefs calls fn for every sentinel-prefixed identifier in text and
// substitutes its result. Matching is by whole token, so "$c" never matches
// inside "$c2".
func ReplaceRefs(text string, fn func(name string) string) string {
	return refPattern.ReplaceAllStringFunc(text, fn)
}

// CollapseWhitespace replaces every whitespace run with a single space.
func CollapseWhitespace(text string) string {
	return whitespace.ReplaceAllString(text, " ")
}
