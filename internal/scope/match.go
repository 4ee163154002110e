// Package scope decides whether a workspace-relative path falls inside an
// intent's owned scope.
package scope

import (
	"path"
	"path/filepath"
	"strings"
)

// MatchPattern reports whether target matches pattern. Matching is anchored
// to the whole relative path and works segment by segment:
//
//   - "*", "?" and character classes match within one segment (path.Match)
//   - "**" as a whole segment matches zero or more segments, anywhere in the
//     pattern and any number of times
//   - "src/api/*" matches "src/api/x.ts" but not "other/src/api/x.ts" or
//     "src/api/v1/x.ts"
//
// Malformed patterns never match.
func MatchPattern(pattern, target string) bool {
	pattern = normalizePattern(pattern)
	if pattern == "" {
		return false
	}
	patternSegments := strings.Split(pattern, "/")
	if !validSegments(patternSegments) {
		return false
	}
	return matchSegments(patternSegments, strings.Split(normalizeTarget(target), "/"))
}

// MatchAny reports whether target matches at least one pattern. An empty
// pattern list matches nothing.
func MatchAny(patterns []string, target string) bool {
	for _, p := range patterns {
		if MatchPattern(p, target) {
			return true
		}
	}
	return false
}

func matchSegments(pattern, segments []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for len(rest) > 0 && rest[0] == "**" {
				rest = rest[1:]
			}
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(segments); i++ {
				if matchSegments(rest, segments[i:]) {
					return true
				}
			}
			return false
		}
		if len(segments) == 0 {
			return false
		}
		ok, err := path.Match(pattern[0], segments[0])
		if err != nil || !ok {
			return false
		}
		pattern, segments = pattern[1:], segments[1:]
	}
	return len(segments) == 0
}

func validSegments(segments []string) bool {
	for _, s := range segments {
		if s == "**" {
			continue
		}
		if _, err := path.Match(s, ""); err != nil {
			return false
		}
	}
	return true
}

func normalizePattern(p string) string {
	p = strings.TrimSpace(filepath.ToSlash(p))
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	return p
}

func normalizeTarget(t string) string {
	t = path.Clean(filepath.ToSlash(strings.TrimSpace(t)))
	return strings.TrimPrefix(t, "/")
}
