package autogen

import (
	"strings"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/pkg/pathutil"
)

// instructionsEquivalent implements spec §4.5's equivalence rule:
// action matches exactly, sources match under set-equality-with-
// wildcard-overlap, and destination/arguments/overwrite are compared
// only when the action's MeaningfulFields says they participate.
func instructionsEquivalent(a, b model.Instruction) bool {
	if a.Action != b.Action {
		return false
	}
	if !sourcesEquivalent(a.Sources, b.Sources) {
		return false
	}
	destMeaningful, argsMeaningful, overwriteMeaningful := a.MeaningfulFields()
	if destMeaningful && !pathutil.PatternsOverlap(a.Destination, b.Destination) {
		return false
	}
	if argsMeaningful && !strings.EqualFold(a.Arguments, b.Arguments) {
		return false
	}
	if overwriteMeaningful && a.Overwrite != b.Overwrite {
		return false
	}
	return true
}

// sourcesEquivalent is bidirectional set-equality-with-wildcard-
// overlap: every element of a overlaps some element of b and vice
// versa. Applied as-is to Choose instructions too, whose Sources hold
// Option ids rather than path patterns; PatternsOverlap degrades to
// plain case-insensitive equality for strings with no separator and no
// `*` or `?`, such as these ids, so this
// stays correct without a special case.
func sourcesEquivalent(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	for _, sa := range a {
		if !anyOverlap(sa, b) {
			return false
		}
	}
	for _, sb := range b {
		if !anyOverlap(sb, a) {
			return false
		}
	}
	return true
}

func anyOverlap(s string, set []string) bool {
	for _, o := range set {
		if pathutil.PatternsOverlap(s, o) {
			return true
		}
	}
	return false
}

// appendInstructionDedup appends candidate to existing unless an
// equivalent instruction is already present (spec §4.5: "never
// creating a duplicate of an instruction already present").
func appendInstructionDedup(existing *[]model.Instruction, candidate model.Instruction) {
	for _, e := range *existing {
		if instructionsEquivalent(e, candidate) {
			return
		}
	}
	*existing = append(*existing, candidate)
}

// appendOptionDedup appends candidate as a new Option unless an
// existing option is equivalent-by-instructions, in which case any
// instructions missing from the existing option are merged into it
// and its id is reused (spec §4.5).
func appendOptionDedup(component *model.Component, candidate model.Option) model.ID {
	for i := range component.Options {
		if optionsEquivalentByInstructions(component.Options[i], candidate) {
			mergeMissingInstructions(&component.Options[i].Instructions, candidate.Instructions)
			return component.Options[i].ID
		}
	}
	component.Options = append(component.Options, candidate)
	return candidate.ID
}

func mergeMissingInstructions(into *[]model.Instruction, from []model.Instruction) {
	for _, candidate := range from {
		appendInstructionDedup(into, candidate)
	}
}

// optionsEquivalentByInstructions: two options' instruction sets are
// bidirectionally pairwise equivalent, ignoring name/description
// (spec §4.5).
func optionsEquivalentByInstructions(a, b model.Option) bool {
	return instructionSetsEquivalent(a.Instructions, b.Instructions)
}

func instructionSetsEquivalent(a, b []model.Instruction) bool {
	for _, ia := range a {
		if !anyInstructionMatch(ia, b) {
			return false
		}
	}
	for _, ib := range b {
		if !anyInstructionMatch(ib, a) {
			return false
		}
	}
	return true
}

func anyInstructionMatch(i model.Instruction, set []model.Instruction) bool {
	for _, o := range set {
		if instructionsEquivalent(i, o) {
			return true
		}
	}
	return false
}

// ConsolidateOptions runs the post-generation sweep (spec §4.5):
// merges any pair of options whose instruction sets overlap by at
// least one equivalent instruction, rewrites every Choose.Sources
// reference to the surviving id, and drops the merged-away options.
func ConsolidateOptions(component *model.Component) {
	idMap := make(map[model.ID]model.ID)

	for {
		merged := false
		for i := 0; i < len(component.Options); i++ {
			for j := i + 1; j < len(component.Options); j++ {
				if !optionsOverlapByOneInstruction(component.Options[i], component.Options[j]) {
					continue
				}
				mergeMissingInstructions(&component.Options[i].Instructions, component.Options[j].Instructions)
				idMap[component.Options[j].ID] = component.Options[i].ID
				component.Options = append(component.Options[:j], component.Options[j+1:]...)
				merged = true
				break
			}
			if merged {
				break
			}
		}
		if !merged {
			break
		}
	}

	if len(idMap) == 0 {
		return
	}
	rewriteChooseSources(component.Instructions, idMap)
	for i := range component.Options {
		rewriteChooseSources(component.Options[i].Instructions, idMap)
	}
}

func optionsOverlapByOneInstruction(a, b model.Option) bool {
	for _, ia := range a.Instructions {
		if anyInstructionMatch(ia, b.Instructions) {
			return true
		}
	}
	return false
}

func rewriteChooseSources(instructions []model.Instruction, idMap map[model.ID]model.ID) {
	for i := range instructions {
		if instructions[i].Action != model.ActionChoose {
			continue
		}
		for j, src := range instructions[i].Sources {
			instructions[i].Sources[j] = string(resolveID(model.ID(src), idMap))
		}
	}
}

func resolveID(id model.ID, idMap map[model.ID]model.ID) model.ID {
	seen := make(map[model.ID]bool)
	for {
		next, ok := idMap[id]
		if !ok || seen[id] {
			return id
		}
		seen[id] = true
		id = next
	}
}
