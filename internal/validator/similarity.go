// Package validator implements the Component Validator (spec §4.6):
// download-necessity analysis and the fixed repair-pass sequence run
// when a component's symbolic dry run fails.
package validator

import (
	"regexp"
	"strings"

	"github.com/hbollon/go-edlib"
)

var versionTokenPattern = regexp.MustCompile(`(?i)v?\d+(\.\d+)*`)
var nonWordPattern = regexp.MustCompile(`[^\w]+`)
var whitespaceDashPattern = regexp.MustCompile(`[\s\-_]+`)

// normalizeName lowercases, collapses whitespace/dashes/underscores,
// strips version tokens, and removes non-word characters (spec §4.6).
func normalizeName(name string) string {
	n := strings.ToLower(name)
	n = whitespaceDashPattern.ReplaceAllString(n, " ")
	n = versionTokenPattern.ReplaceAllString(n, "")
	n = nonWordPattern.ReplaceAllString(n, "")
	return strings.TrimSpace(n)
}

// similarity implements the fixed cascade of spec §4.6: exact (1.0),
// substring containment (0.95), normalized match (0.90), token
// Jaccard >= 0.5 (0.75-0.90), Levenshtein-ratio >= 0.7 (x0.85),
// longest-common-substring ratio >= 0.6 (x0.80). The first matching
// rung wins; later rungs are only tried when earlier ones don't
// clear their threshold.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.95
	}

	na, nb := normalizeName(a), normalizeName(b)
	if na == nb && na != "" {
		return 0.90
	}

	if jac := tokenJaccard(na, nb); jac >= 0.5 {
		return 0.75 + (jac-0.5)*(0.90-0.75)/0.5
	}

	if lr := levenshteinRatio(a, b); lr >= 0.7 {
		return lr * 0.85
	}

	if lcs := lcsRatio(a, b); lcs >= 0.6 {
		return lcs * 0.80
	}

	return 0.0
}

// tokenJaccard computes the Jaccard index of two strings' whitespace
// token sets.
func tokenJaccard(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	intersection := 0
	for t := range ta {
		if tb[t] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// levenshteinRatio returns go-edlib's Levenshtein similarity score
// (0-1, higher is more similar) between two archive or resource
// names, used to find the closest on-disk candidate for a pattern
// that otherwise matched nothing.
func levenshteinRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0.0
	}
	return float64(score)
}

// lcsRatio returns the longest-common-substring length as a fraction
// of the longer input's length.
func lcsRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	maxLen := longestCommonSubstringLen(a, b)
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	if denom == 0 {
		return 0.0
	}
	return float64(maxLen) / float64(denom)
}

func longestCommonSubstringLen(a, b string) int {
	m, n := len(a), len(b)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	best := 0
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return best
}
