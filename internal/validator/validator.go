package validator

import (
	goerrors "errors"

	"github.com/OldRepublicDevs/kotormodsync/internal/debug"
	kmserrors "github.com/OldRepublicDevs/kotormodsync/internal/errors"
	"github.com/OldRepublicDevs/kotormodsync/internal/executor"
	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/internal/vfs"
)

// Result is the outcome of validating a single component (spec §4.6).
type Result struct {
	Success bool

	// NonCriticalPathMismatch is set when the symbolic run still fails
	// after every repair pass, but every archive the component needs
	// is already present on disk: the spec's final downgrade clause.
	NonCriticalPathMismatch bool

	// DownloadsNeeded lists the URLs AnalyzeDownloadNecessity
	// nominated, populated whenever Success is false.
	DownloadsNeeded []string
}

// Validator runs a component's instructions symbolically, applies the
// fixed repair-pass sequence on a WildcardPatternNotFound signal, and
// caches outcomes for 5 minutes keyed by component identity (spec
// §4.6).
type Validator struct {
	modDirectory   string
	kotorDirectory string
	cache          *resultCache
}

// New builds a Validator bound to the two placeholder roots every
// instruction resolves against.
func New(modDirectory, kotorDirectory string) *Validator {
	return &Validator{
		modDirectory:   modDirectory,
		kotorDirectory: kotorDirectory,
		cache:          newResultCache(defaultResultTTL),
	}
}

// Validate runs component's instructions against a freshly constructed
// VFS (newVFS is called once for the first run; after a wildcard
// failure it is called again for every candidate rewrite the
// archive-name-mismatch pass tries and once more for the post-repair
// re-run). knownNames are archive/resource names already
// on disk or in the resource index, used by the download-necessity
// analysis and the archive-name-mismatch repair pass. diskExists
// reports whether a given filename already exists on disk, used only
// for the final non-critical-mismatch downgrade.
func (v *Validator) Validate(
	component *model.Component,
	modArchiveDir string,
	newVFS func() vfs.FileSystem,
	knownNames map[string]struct{},
	diskExists func(name string) bool,
) Result {
	key := resultKey{
		componentID:      component.ID,
		modArchiveDir:    modArchiveDir,
		instructionCount: len(component.Instructions),
	}
	if cached, ok := v.cache.get(key); ok {
		return cached
	}

	result := v.validateUncached(component, modArchiveDir, newVFS, knownNames, diskExists)
	v.cache.put(key, result)
	return result
}

func (v *Validator) validateUncached(
	component *model.Component,
	modArchiveDir string,
	newVFS func() vfs.FileSystem,
	knownNames map[string]struct{},
	diskExists func(name string) bool,
) Result {
	exec := executor.New(v.modDirectory, v.kotorDirectory)

	fs := newVFS()
	if err := exec.Run(fs, component); err == nil {
		debug.LogValidate(model.SeverityInfo, "component %s: symbolic run succeeded on first attempt", component.ID)
		return Result{Success: true}
	} else if wpnf := asWildcardSignal(err); wpnf == nil {
		debug.LogValidate(model.SeverityError, "component %s: run failed without a wildcard signal: %v", component.ID, err)
		return Result{Success: false, DownloadsNeeded: AnalyzeDownloadNecessity(component, knownNames)}
	} else {
		debug.LogValidate(model.SeverityWarning, "component %s: applying repair passes for patterns %v", component.ID, wpnf.Patterns)
		applyRepairPasses(component, fs, wpnf.Patterns, knownNames, exec, newVFS)
	}

	if err := exec.Run(newVFS(), component); err == nil {
		debug.LogValidate(model.SeverityInfo, "component %s: symbolic run succeeded after repair", component.ID)
		return Result{Success: true}
	}

	downloads := AnalyzeDownloadNecessity(component, knownNames)
	if allExtractedArchivesExistOnDisk(component, diskExists) {
		debug.LogValidate(model.SeverityWarning, "component %s: downgrading to non-critical path mismatch", component.ID)
		return Result{Success: true, NonCriticalPathMismatch: true, DownloadsNeeded: downloads}
	}
	debug.LogValidate(model.SeverityError, "component %s: run still failing after repair passes", component.ID)
	return Result{Success: false, DownloadsNeeded: downloads}
}

// applyRepairPasses runs the three repair passes in their fixed order
// (spec §4.6). Passes 1 and 2 are deterministic textual rewrites with
// no internal re-run; pass 3 tries and reverts per candidate using its
// own snapshot/restore protocol.
func applyRepairPasses(
	component *model.Component,
	failedFS vfs.FileSystem,
	failingPatterns []string,
	knownNames map[string]struct{},
	exec *executor.Executor,
	newVFS func() vfs.FileSystem,
) {
	fixDuplicateFolder(component)
	fixNestedArchive(component, failedFS)
	fixArchiveNameMismatch(component, failingPatterns, knownNames, exec, newVFS)
}

func asWildcardSignal(err error) *kmserrors.WildcardPatternNotFoundError {
	var wpnf *kmserrors.WildcardPatternNotFoundError
	if goerrors.As(err, &wpnf) {
		return wpnf
	}
	return nil
}

// allExtractedArchivesExistOnDisk reports whether every archive name a
// component's Extract instructions reference is already present on
// disk, the condition spec §4.6 requires before downgrading a
// persistent post-repair failure to a non-critical path mismatch.
func allExtractedArchivesExistOnDisk(component *model.Component, diskExists func(string) bool) bool {
	if diskExists == nil {
		return false
	}
	patterns := collectExtractSources(component)
	if len(patterns) == 0 {
		return false
	}
	for _, p := range patterns {
		if !diskExists(lastSegment(p)) {
			return false
		}
	}
	return true
}
