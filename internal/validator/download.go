package validator

import (
	"strings"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/pkg/pathutil"
)

// AnalyzeDownloadNecessity implements spec §4.6's download-necessity
// analysis: for every Extract source pattern (component + option
// instructions), test whether it matches something already known
// (on disk, in the resource registry, or inside an already-present
// archive). Unmatched patterns nominate their URL; when no URL can be
// matched to a pattern, every URL of the component is nominated.
func AnalyzeDownloadNecessity(component *model.Component, knownNames map[string]struct{}) []string {
	patterns := collectExtractSources(component)
	if len(patterns) == 0 {
		return nil
	}

	var needed []string
	seen := make(map[string]struct{})
	add := func(url string) {
		if url == "" {
			return
		}
		if _, ok := seen[url]; ok {
			return
		}
		seen[url] = struct{}{}
		needed = append(needed, url)
	}

	for _, p := range patterns {
		if matchesKnown(p, knownNames) {
			continue
		}
		if url := urlForPattern(component, p); url != "" {
			add(url)
			continue
		}
		for _, u := range component.URLs {
			add(u)
		}
	}
	return needed
}

func collectExtractSources(component *model.Component) []string {
	var patterns []string
	collectFrom := func(instructions []model.Instruction) {
		for _, instr := range instructions {
			if instr.Action == model.ActionExtract {
				patterns = append(patterns, instr.Sources...)
			}
		}
	}
	collectFrom(component.Instructions)
	for _, opt := range component.Options {
		collectFrom(opt.Instructions)
	}
	return patterns
}

func matchesKnown(pattern string, knownNames map[string]struct{}) bool {
	for name := range knownNames {
		if pathutil.Match(name, pattern) {
			return true
		}
	}
	return false
}

func urlForPattern(component *model.Component, pattern string) string {
	base := lastSegment(pattern)
	for _, u := range component.URLs {
		if pathutil.PatternsOverlap(urlBasename(u), base) {
			return u
		}
	}
	return ""
}

func lastSegment(pattern string) string {
	norm := pathutil.Normalize(pattern)
	if idx := strings.LastIndex(norm, `\`); idx >= 0 {
		return norm[idx+1:]
	}
	return norm
}

func urlBasename(u string) string {
	if idx := strings.LastIndex(u, "/"); idx >= 0 {
		return u[idx+1:]
	}
	return u
}
