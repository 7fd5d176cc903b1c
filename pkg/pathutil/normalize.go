// Package pathutil implements the Path & Wildcard Engine (spec §4.1):
// path normalization plus the two pattern-matching primitives every
// other component (VFS, Executor, Auto-Generator, Validator) compares
// paths through.
//
// Architecture note: the planning core stores every path as a
// Windows-style backslash string internally, since the target game
// installs on Windows-style trees even when the host OS is not
// Windows. Only the external interfaces accept forward slashes on
// input.
package pathutil

import "strings"

const (
	modDirectoryPlaceholder    = "<<modDirectory>>"
	kotorDirectoryPlaceholder  = "<<kotorDirectory>>"
)

// Normalize canonicalizes a path string per spec §4.1: forward slashes
// become backslashes, trailing separators are stripped, and
// "<<modDirectory>>\x" compares equal regardless of the separator it
// was originally written with. Normalize does not lowercase; callers
// that need case-insensitive comparison do that explicitly, so
// Normalize stays idempotent under repeated application as required by
// the path-normalization-idempotence property (spec §8).
func Normalize(path string) string {
	if path == "" {
		return path
	}
	p := strings.ReplaceAll(path, "/", `\`)
	for strings.HasSuffix(p, `\`) && len(p) > 1 {
		p = p[:len(p)-1]
	}
	return p
}

// EqualFold reports whether two paths are equal once normalized and
// case-folded.
func EqualFold(a, b string) bool {
	return strings.EqualFold(Normalize(a), Normalize(b))
}

// Segments splits a normalized path into its backslash-delimited
// components.
func Segments(path string) []string {
	norm := Normalize(path)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, `\`)
}

// ResolvePlaceholders substitutes <<modDirectory>> and
// <<kotorDirectory>> with the supplied run-wide roots (spec §4.4).
// The Executor calls it for destinations and single-path sources, and
// VFS.Enumerate calls it for source patterns.
func ResolvePlaceholders(path, modDirectory, kotorDirectory string) string {
	p := Normalize(path)
	p = replaceFold(p, modDirectoryPlaceholder, strings.TrimRight(Normalize(modDirectory), `\`))
	p = replaceFold(p, kotorDirectoryPlaceholder, strings.TrimRight(Normalize(kotorDirectory), `\`))
	return p
}

// replaceFold replaces all case-insensitive occurrences of old in s
// with new.
func replaceFold(s, old, new string) string {
	if old == "" {
		return s
	}
	lowerS := strings.ToLower(s)
	lowerOld := strings.ToLower(old)
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(lowerS[i:], lowerOld)
		if idx < 0 {
			b.WriteString(s[i:])
			break
		}
		idx += i
		b.WriteString(s[i:idx])
		b.WriteString(new)
		i = idx + len(old)
	}
	return b.String()
}
