package vfs

import (
	"strings"

	kmserrors "github.com/OldRepublicDevs/kotormodsync/internal/errors"
	"github.com/OldRepublicDevs/kotormodsync/pkg/pathutil"
)

// Enumerate resolves each pattern (after placeholder substitution)
// against the virtual-file set using the Path & Wildcard Engine (spec
// §4.3). A pattern with a wildcard is matched with Match against every
// known file; a literal pattern matches itself exactly, and, when
// includeSubfolders is true, also matches any file nested under it
// as a directory prefix.
//
// A pattern that resolves to zero files is collected and surfaced as
// a single *errors.WildcardPatternNotFoundError carrying every
// unresolved pattern, once all patterns have been attempted.
func (v *VFS) Enumerate(patterns []string, includeSubfolders bool) ([]string, error) {
	var matched []string
	var unresolved []string
	seen := make(map[string]struct{})

	for _, raw := range patterns {
		resolved := pathutil.ResolvePlaceholders(raw, v.modDirectory, v.kotorDirectory)
		found := v.matchOne(resolved, includeSubfolders)
		if len(found) == 0 {
			unresolved = append(unresolved, raw)
			continue
		}
		for _, f := range found {
			k := key(f)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			matched = append(matched, f)
		}
	}

	if len(unresolved) > 0 {
		return matched, kmserrors.NewWildcardPatternNotFoundError(unresolved)
	}
	return matched, nil
}

func (v *VFS) matchOne(resolved string, includeSubfolders bool) []string {
	var out []string
	isWildcard := strings.ContainsAny(resolved, "*?")
	lowerResolved := strings.ToLower(resolved)

	for k, original := range v.files {
		if isWildcard {
			if pathutil.Match(original, resolved) {
				out = append(out, original)
			}
			continue
		}
		if k == lowerResolved {
			out = append(out, original)
			continue
		}
		if includeSubfolders && strings.HasPrefix(k, lowerResolved+`\`) {
			out = append(out, original)
		}
	}
	return out
}
