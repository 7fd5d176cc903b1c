package validator

import (
	"strings"

	"github.com/OldRepublicDevs/kotormodsync/internal/executor"
	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/internal/vfs"
	"github.com/OldRepublicDevs/kotormodsync/pkg/pathutil"
)

// snapshot is the save point a repair pass restores to when its
// rewrite makes things worse, per spec §4.6's snapshot/restore
// protocol.
type snapshot struct {
	instructions []model.Instruction
	options      []model.Option
}

func snapshotComponent(c *model.Component) snapshot {
	instr := make([]model.Instruction, len(c.Instructions))
	for i, in := range c.Instructions {
		instr[i] = in.Clone()
	}
	opts := make([]model.Option, len(c.Options))
	for i, o := range c.Options {
		opts[i] = o.Clone()
	}
	return snapshot{instructions: instr, options: opts}
}

func restoreComponent(c *model.Component, s snapshot) {
	c.Instructions = s.instructions
	c.Options = s.options
}

// forEachSourceSet applies fn to every Sources pattern of every
// instruction owned by the component or one of its options, in place.
func forEachSourceSet(c *model.Component, fn func(string) (string, bool)) bool {
	changed := false
	rewrite := func(instructions []model.Instruction) {
		for i := range instructions {
			for j, src := range instructions[i].Sources {
				if rewritten, ok := fn(src); ok {
					instructions[i].Sources[j] = rewritten
					changed = true
				}
			}
		}
	}
	rewrite(c.Instructions)
	for i := range c.Options {
		rewrite(c.Options[i].Instructions)
	}
	return changed
}

// fixDuplicateFolder collapses a doubled path segment produced by a
// naive archive-name-as-folder join, e.g.
// "<<modDirectory>>\MyMod\MyMod\file.2da" becomes
// "<<modDirectory>>\MyMod\file.2da" (spec §4.6, repair pass 1).
func fixDuplicateFolder(c *model.Component) bool {
	return forEachSourceSet(c, collapseDuplicateFolder)
}

func collapseDuplicateFolder(path string) (string, bool) {
	segs := pathutil.Segments(path)
	if len(segs) < 2 {
		return path, false
	}
	out := make([]string, 0, len(segs))
	changed := false
	for i, seg := range segs {
		if i > 0 && strings.EqualFold(seg, segs[i-1]) {
			changed = true
			continue
		}
		out = append(out, seg)
	}
	if !changed {
		return path, false
	}
	return strings.Join(out, `\`), true
}

// fixNestedArchive detects a tracked archive whose extraction
// directory's sole child reproduces the archive's own stem name (an
// archive packaged with an extra self-named wrapper folder) and
// inserts the missing segment into every source pattern that
// descends from that extraction directory (spec §4.6, repair pass 2).
func fixNestedArchive(c *model.Component, fs vfs.FileSystem) bool {
	concrete, ok := fs.(*vfs.VFS)
	if !ok {
		return false
	}

	changed := false
	for archivePath, dst := range concrete.TrackedArchives() {
		archiveStem := stemName(baseName(archivePath))
		children := concrete.ChildrenOf(dst)
		if len(children) != 1 || !strings.EqualFold(children[0], archiveStem) {
			continue
		}

		dstSegs := pathutil.Segments(dst)
		if forEachSourceSet(c, func(src string) (string, bool) {
			return insertNestedSegment(src, dstSegs, archiveStem)
		}) {
			changed = true
		}
	}
	return changed
}

// insertNestedSegment duplicates the archiveStem segment immediately
// following the path prefix dstSegs, unless it is already present.
func insertNestedSegment(src string, dstSegs []string, archiveStem string) (string, bool) {
	segs := pathutil.Segments(src)
	if len(segs) <= len(dstSegs) {
		return src, false
	}
	for i, seg := range dstSegs {
		if !strings.EqualFold(seg, segs[i]) {
			return src, false
		}
	}
	insertAt := len(dstSegs)
	if insertAt < len(segs) && strings.EqualFold(segs[insertAt], archiveStem) {
		return src, false
	}

	out := make([]string, 0, len(segs)+1)
	out = append(out, segs[:insertAt]...)
	out = append(out, archiveStem)
	out = append(out, segs[insertAt:]...)
	return strings.Join(out, `\`), true
}

// fixArchiveNameMismatch tries, for every pattern the failed run could
// not resolve, to find the best-matching known archive name via the
// similarity cascade; on a match above threshold it rewrites every
// reference to the expected name, re-runs the symbolic executor, and
// reverts if the re-run still fails (spec §4.6, repair pass 3).
func fixArchiveNameMismatch(
	c *model.Component,
	failingPatterns []string,
	knownNames map[string]struct{},
	exec *executor.Executor,
	newVFS func() vfs.FileSystem,
) bool {
	const threshold = 0.7

	changed := false
	for _, pattern := range failingPatterns {
		expectedBase := lastSegment(pattern)

		bestName, bestScore := "", 0.0
		for name := range knownNames {
			s := similarity(strings.ToLower(expectedBase), strings.ToLower(name))
			if s > bestScore {
				bestScore, bestName = s, name
			}
		}
		if bestName == "" || bestScore < threshold {
			continue
		}

		snap := snapshotComponent(c)
		rewriteArchiveReference(c, expectedBase, bestName)

		if err := exec.Run(newVFS(), c); err != nil {
			restoreComponent(c, snap)
			continue
		}
		changed = true
	}
	return changed
}

// rewriteArchiveReference replaces every case-insensitive occurrence
// of oldBase (and its extension-stripped stem) with newBase across
// every instruction's Sources and Destination.
func rewriteArchiveReference(c *model.Component, oldBase, newBase string) {
	oldStem, newStem := stemName(oldBase), stemName(newBase)
	rewrite := func(s string) string {
		s = replaceFold(s, oldBase, newBase)
		s = replaceFold(s, oldStem, newStem)
		return s
	}
	apply := func(instructions []model.Instruction) {
		for i := range instructions {
			for j, src := range instructions[i].Sources {
				instructions[i].Sources[j] = rewrite(src)
			}
			instructions[i].Destination = rewrite(instructions[i].Destination)
		}
	}
	apply(c.Instructions)
	for i := range c.Options {
		apply(c.Options[i].Instructions)
	}
}

func replaceFold(s, old, newVal string) string {
	if old == "" {
		return s
	}
	lowerS, lowerOld := strings.ToLower(s), strings.ToLower(old)
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
		b.WriteString(newVal)
		i = idx + len(old)
	}
	return b.String()
}

func baseName(path string) string {
	norm := pathutil.Normalize(path)
	if idx := strings.LastIndex(norm, `\`); idx >= 0 {
		return norm[idx+1:]
	}
	return norm
}

func stemName(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx]
	}
	return name
}
