package pathutil

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var wildcardRunRe = regexp.MustCompile(`\*+`)

// Match implements the case-insensitive glob described in spec §4.1:
// `*` matches any sequence, crossing directory separators only when
// the pattern itself spans directories (contains a separator); `?`
// matches any single character. Both ends are anchored. Pattern
// matching never panics; malformed inputs simply return false.
//
// The crossing/non-crossing distinction is delegated to doublestar's
// own `*` (non-crossing) vs `**` (crossing) semantics: when the
// pattern spans directories every wildcard run is widened to `**`
// before matching, otherwise it is matched as-is.
func Match(value, pattern string) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()

	normValue := toSlash(Normalize(value))
	normPattern := toSlash(Normalize(pattern))

	spans := strings.Contains(normPattern, "/")
	if spans {
		normPattern = wildcardRunRe.ReplaceAllString(normPattern, "**")
	}

	ok, err := doublestar.Match(strings.ToLower(normPattern), strings.ToLower(normValue))
	if err != nil {
		return false
	}
	return ok
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func hasWildcard(segment string) bool {
	return strings.ContainsAny(segment, "*?")
}

// matchSegment matches a single path segment (no separators present)
// against a single pattern segment using the same case-insensitive
// `*`/`?` semantics, without directory-spanning widening since a
// segment by construction contains no separator to cross.
func matchSegment(value, pattern string) bool {
	ok, err := doublestar.Match(strings.ToLower(pattern), strings.ToLower(value))
	return err == nil && ok
}
