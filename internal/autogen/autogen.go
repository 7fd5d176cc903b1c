// Package autogen implements the Auto-Instruction Generator (spec
// §4.5): given a Component and an archive's shape analysis, it
// produces or augments the component's instruction list and options,
// never duplicating an instruction already present.
package autogen

import (
	"strings"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/pkg/pathutil"
)

const (
	modDirectoryPlaceholder   = "<<modDirectory>>"
	kotorDirectoryPlaceholder = "<<kotorDirectory>>"
)

// Generator holds no state across runs; every method call is
// independent, operating entirely on the Component and analysis
// passed in.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// Generate augments component with instructions derived from the
// archive's shape analysis (spec §4.5's shape table), skipping
// anything equivalent to what's already present, then runs the
// option-consolidation sweep.
func (g *Generator) Generate(component *model.Component, archivePath string, analysis model.ArchiveAnalysis) {
	if matchesDuplicateFixFingerprint(component) {
		appendInstructionDedup(&component.Instructions, model.Instruction{
			ID: model.NewID(), Action: model.ActionDelDuplicate, OwnerID: component.ID,
		})
		return
	}

	if !analysis.HasTslPatchData && !analysis.HasSimpleOverrideFiles {
		return
	}

	extractedDir := extractedDirFor(archivePath)
	appendInstructionDedup(&component.Instructions, model.Instruction{
		ID: model.NewID(), Action: model.ActionExtract,
		Sources: []string{archivePath}, Destination: extractedDir, OwnerID: component.ID,
	})

	if analysis.HasTslPatchData {
		g.generateTslPatcher(component, analysis, extractedDir)
		component.UpgradeInstallMethod(model.MethodTSLPatcher)
	}
	if analysis.HasSimpleOverrideFiles {
		g.generateOverride(component, analysis, extractedDir)
		component.UpgradeInstallMethod(model.MethodOverride)
	}

	ConsolidateOptions(component)
}

func (g *Generator) generateTslPatcher(component *model.Component, analysis model.ArchiveAnalysis, extractedDir string) {
	patcherDir := extractedDir
	if analysis.PatcherPath != "" {
		patcherDir += `\` + pathutil.Normalize(analysis.PatcherPath)
	}
	exeName := analysis.PatcherExecutable
	if exeName == "" {
		exeName = "TSLPatcher.exe"
	}
	exePath := patcherDir + `\` + exeName

	if analysis.HasNamespacesIni && len(analysis.NamespaceEntries) > 0 {
		var optionIDs []string
		for _, ns := range analysis.NamespaceEntries {
			opt := model.Option{
				ID:   model.NewID(),
				Name: ns,
				Instructions: []model.Instruction{
					{ID: model.NewID(), Action: model.ActionPatcher, Sources: []string{exePath},
						Destination: kotorDirectoryPlaceholder, Arguments: ns, OwnerID: component.ID},
				},
			}
			optionIDs = append(optionIDs, string(appendOptionDedup(component, opt)))
		}
		appendInstructionDedup(&component.Instructions, model.Instruction{
			ID: model.NewID(), Action: model.ActionChoose, Sources: optionIDs, OwnerID: component.ID,
		})
		return
	}

	appendInstructionDedup(&component.Instructions, model.Instruction{
		ID: model.NewID(), Action: model.ActionPatcher, Sources: []string{exePath},
		Destination: kotorDirectoryPlaceholder, Arguments: "changes.ini", OwnerID: component.ID,
	})
}

func (g *Generator) generateOverride(component *model.Component, analysis model.ArchiveAnalysis, extractedDir string) {
	switch {
	case len(analysis.TopLevelFolders) == 1:
		folder := analysis.TopLevelFolders[0]
		pattern := extractedDir + `\` + folder + `\*`
		if !parentCovered(component, pattern) {
			appendInstructionDedup(&component.Instructions, moveAllInstruction(component.ID, pattern))
		}
	case len(analysis.TopLevelFolders) > 1:
		var optionIDs []string
		for _, folder := range analysis.TopLevelFolders {
			pattern := extractedDir + `\` + folder + `\*`
			if parentCovered(component, pattern) {
				continue
			}
			opt := model.Option{
				ID:           model.NewID(),
				Name:         folder,
				Instructions: []model.Instruction{moveAllInstruction(component.ID, pattern)},
			}
			optionIDs = append(optionIDs, string(appendOptionDedup(component, opt)))
		}
		if len(optionIDs) > 0 {
			appendInstructionDedup(&component.Instructions, model.Instruction{
				ID: model.NewID(), Action: model.ActionChoose, Sources: optionIDs, OwnerID: component.ID,
			})
		}
	}

	if analysis.HasFlatFiles {
		pattern := extractedDir + `\*`
		if !parentCovered(component, pattern) {
			appendInstructionDedup(&component.Instructions, moveAllInstruction(component.ID, pattern))
		}
	}
}

func moveAllInstruction(ownerID model.ID, pattern string) model.Instruction {
	return model.Instruction{
		ID: model.NewID(), Action: model.ActionMove,
		Sources: []string{pattern}, Destination: kotorDirectoryPlaceholder + `\Override`, OwnerID: ownerID,
	}
}

func extractedDirFor(archivePath string) string {
	norm := pathutil.Normalize(archivePath)
	base := norm
	if idx := strings.LastIndex(norm, `\`); idx >= 0 {
		base = norm[idx+1:]
	}
	stem := base
	if idx := strings.LastIndex(base, "."); idx > 0 {
		stem = base[:idx]
	}
	return modDirectoryPlaceholder + `\extracted\` + stem
}

// parentCovered implements the parent-path coverage check (spec
// §4.5): skip generating a folder-move instruction when an existing
// Move/Extract source already matches it, or already covers it as a
// wildcarded parent prefix.
func parentCovered(component *model.Component, candidate string) bool {
	for _, instr := range component.Instructions {
		if instr.Action != model.ActionMove && instr.Action != model.ActionExtract {
			continue
		}
		for _, src := range instr.Sources {
			if pathutil.EqualFold(src, candidate) || pathutil.Match(candidate, src) {
				return true
			}
			if coversAsPrefix(src, candidate) {
				return true
			}
		}
	}
	return false
}

func coversAsPrefix(existing, candidate string) bool {
	var trimmed string
	switch {
	case strings.HasSuffix(existing, `\*\*`):
		trimmed = strings.TrimSuffix(existing, `\*\*`)
	case strings.HasSuffix(existing, `\*`):
		trimmed = strings.TrimSuffix(existing, `\*`)
	default:
		return false
	}
	return strings.HasPrefix(strings.ToLower(candidate), strings.ToLower(trimmed))
}

// duplicateFixNameSubstrings/duplicateFixAuthorSubstrings/duplicateFixURLPrefixes
// are the "Remove Duplicate TGA/TPC" fingerprint (spec §4.5). These
// are an illustrative fixed table, not a reverse-engineered catalog:
// no ground-truth source for the exact production list was available.
var duplicateFixNameSubstrings = []string{
	"remove duplicate tga", "remove duplicate tpc", "duplicate tga/tpc", "tga/tpc duplicate",
}
var duplicateFixAuthorSubstrings = []string{
	"ndix ur",
}
var duplicateFixURLPrefixes = []string{
	"https://deadlystream.com/files/file/1114-tga-tpc-duplicate-fixer",
}

func matchesDuplicateFixFingerprint(c *model.Component) bool {
	lowerName := strings.ToLower(c.Name)
	for _, s := range duplicateFixNameSubstrings {
		if strings.Contains(lowerName, s) {
			return true
		}
	}
	lowerAuthor := strings.ToLower(c.Author)
	for _, s := range duplicateFixAuthorSubstrings {
		if strings.Contains(lowerAuthor, s) {
			return true
		}
	}
	for _, u := range c.URLs {
		lu := strings.ToLower(u)
		for _, p := range duplicateFixURLPrefixes {
			if strings.HasPrefix(lu, p) {
				return true
			}
		}
	}
	return false
}
