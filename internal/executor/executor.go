// Package executor implements the Instruction Executor (spec §4.4):
// strictly sequential, single-threaded execution of a component's
// instruction list over a vfs.FileSystem.
package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OldRepublicDevs/kotormodsync/internal/debug"
	kmserrors "github.com/OldRepublicDevs/kotormodsync/internal/errors"
	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/internal/vfs"
	"github.com/OldRepublicDevs/kotormodsync/pkg/pathutil"
)

// Executor runs a Component's Instructions against a vfs.FileSystem.
// It holds no state across runs beyond the two placeholder roots, so a
// single Executor can be reused across components.
type Executor struct {
	modDirectory   string
	kotorDirectory string
}

func New(modDirectory, kotorDirectory string) *Executor {
	return &Executor{modDirectory: modDirectory, kotorDirectory: kotorDirectory}
}

func (e *Executor) resolve(path string) string {
	return pathutil.ResolvePlaceholders(path, e.modDirectory, e.kotorDirectory)
}

// Run executes every top-level instruction of a component in order.
// It returns nil on success, or an *errors.InstructionFailedError (or
// a propagated *errors.WildcardPatternNotFoundError signal) on the
// first instruction that fails (spec §4.4 termination rule).
func (e *Executor) Run(fs vfs.FileSystem, component *model.Component) error {
	return e.runInstructions(fs, component, component.Instructions)
}

func (e *Executor) runInstructions(fs vfs.FileSystem, component *model.Component, instructions []model.Instruction) error {
	for idx, instr := range instructions {
		debug.LogExec(model.SeverityInfo, "instruction %d (%s) starting", idx, instr.Action)
		before := len(fs.Issues())
		if err := e.execOne(fs, component, instr); err != nil {
			debug.LogExec(model.SeverityError, "instruction %d (%s) aborted the run: %v", idx, instr.Action, err)
			return err
		}
		if fatal := firstFatal(fs.Issues()[before:]); fatal != nil {
			debug.LogExec(model.SeverityError, "instruction %d (%s) logged a fatal issue: %s", idx, instr.Action, fatal.Message)
			return kmserrors.NewInstructionFailedError(idx, string(instr.ID), fatal.Message)
		}
	}
	return nil
}

func firstFatal(issues []model.ValidationIssue) *model.ValidationIssue {
	for i := range issues {
		if issues[i].IsFatal() {
			return &issues[i]
		}
	}
	return nil
}

func (e *Executor) execOne(fs vfs.FileSystem, component *model.Component, instr model.Instruction) error {
	switch instr.Action {
	case model.ActionExtract:
		return e.execExtract(fs, instr)
	case model.ActionMove:
		return e.execMoveCopy(fs, instr, true)
	case model.ActionCopy:
		return e.execMoveCopy(fs, instr, false)
	case model.ActionDelete:
		return e.execDelete(fs, instr)
	case model.ActionRename:
		return e.execRename(fs, instr)
	case model.ActionPatcher:
		return e.execPatcher(fs, instr)
	case model.ActionExecute:
		return e.execExecute(fs, instr)
	case model.ActionChoose:
		return e.execChoose(fs, component, instr)
	case model.ActionDelDuplicate:
		return nil // marker for a post-install pass; no-op in the virtual run
	default:
		fs.LogIssue(model.SeverityError, model.CategoryDependencyConflict, fmt.Sprintf("unknown action: %s", instr.Action))
		return nil
	}
}

// enumerateSources resolves an instruction's source patterns, folding
// the Optional flag into the WildcardPatternNotFound signal: an
// optional instruction with no matches is a silent no-op, a mandatory
// one lets the signal propagate so Validator repair passes can pivot
// on it (spec §4.3's stated contract for that signal).
func (e *Executor) enumerateSources(fs vfs.FileSystem, instr model.Instruction) ([]string, bool, error) {
	matched, err := fs.Enumerate(instr.Sources, true)
	if err == nil {
		return matched, false, nil
	}
	var wpnf *kmserrors.WildcardPatternNotFoundError
	if errors.As(err, &wpnf) {
		if instr.Optional {
			return matched, true, nil
		}
		return matched, false, err
	}
	return matched, false, err
}

func (e *Executor) execExtract(fs vfs.FileSystem, instr model.Instruction) error {
	matched, skipped, err := e.enumerateSources(fs, instr)
	if err != nil {
		return err
	}
	if skipped {
		return nil
	}
	if len(matched) == 0 {
		if !instr.Optional {
			fs.LogIssue(model.SeverityError, model.CategoryExtractArchive, "no archives matched Extract sources")
		}
		return nil
	}

	dst := e.resolve(instr.Destination)
	multi := len(matched) > 1
	for _, archivePath := range matched {
		target := dst
		if multi {
			target = dst + `\` + stem(archivePath)
		}
		_ = fs.ExtractArchive(archivePath, target)
	}
	return nil
}

func (e *Executor) execMoveCopy(fs vfs.FileSystem, instr model.Instruction, isMove bool) error {
	category := model.CategoryCopyFile
	if isMove {
		category = model.CategoryMoveFile
	}

	matched, skipped, err := e.enumerateSources(fs, instr)
	if err != nil {
		return err
	}
	if skipped {
		return nil
	}
	if len(matched) == 0 {
		if !instr.Optional {
			fs.LogIssue(model.SeverityError, category, fmt.Sprintf("no files matched sources for %s instruction", instr.Action))
		}
		return nil
	}

	dst := e.resolve(instr.Destination)
	multi := len(matched) > 1
	for _, src := range matched {
		target := dst
		if multi {
			target = dst + `\` + base(src)
		}
		if isMove {
			_ = fs.MoveFile(src, target, instr.Overwrite)
		} else {
			_ = fs.CopyFile(src, target, instr.Overwrite)
		}
	}
	return nil
}

// execDelete never hard-fails the run: a Delete miss is logged as a
// Warning, never an Error, regardless of Optional. It may indicate an
// instruction ordering bug but never corrupts state.
func (e *Executor) execDelete(fs vfs.FileSystem, instr model.Instruction) error {
	matched, err := fs.Enumerate(instr.Sources, true)
	if err != nil {
		fs.LogIssue(model.SeverityWarning, model.CategoryDeleteFile, fmt.Sprintf("no files matched Delete sources: %v", err))
		return nil
	}
	if len(matched) == 0 {
		fs.LogIssue(model.SeverityWarning, model.CategoryDeleteFile, "no files matched Delete sources")
		return nil
	}
	for _, src := range matched {
		_ = fs.DeleteFile(src)
	}
	return nil
}

func (e *Executor) execRename(fs vfs.FileSystem, instr model.Instruction) error {
	if len(instr.Sources) != 1 {
		fs.LogIssue(model.SeverityError, model.CategoryRenameFile, "Rename instruction must have exactly one source")
		return nil
	}
	src := e.resolve(instr.Sources[0])
	if !fs.FileExists(src) {
		fs.LogIssue(model.SeverityError, model.CategoryRenameFile, fmt.Sprintf("source does not exist: %s", src))
		return nil
	}
	return fs.RenameFile(src, instr.Arguments)
}

func (e *Executor) execPatcher(fs vfs.FileSystem, instr model.Instruction) error {
	if len(instr.Sources) != 1 {
		fs.LogIssue(model.SeverityError, model.CategoryPatcher, "Patcher instruction must name exactly one executable source")
		return nil
	}
	exePath := e.resolve(instr.Sources[0])
	if !fs.FileExists(exePath) {
		fs.LogIssue(model.SeverityError, model.CategoryPatcher, fmt.Sprintf("patcher executable does not exist: %s", exePath))
		return nil
	}
	sibling := parentDir(exePath) + `\tslpatchdata`
	if !fs.DirExists(sibling) {
		fs.LogIssue(model.SeverityError, model.CategoryPatcher, fmt.Sprintf("tslpatchdata directory missing beside patcher: %s", sibling))
		return nil
	}
	return nil
}

func (e *Executor) execExecute(fs vfs.FileSystem, instr model.Instruction) error {
	if len(instr.Sources) != 1 {
		fs.LogIssue(model.SeverityError, model.CategoryExecute, "Execute instruction must name exactly one target")
		return nil
	}
	target := e.resolve(instr.Sources[0])
	if !fs.FileExists(target) {
		fs.LogIssue(model.SeverityError, model.CategoryExecute, fmt.Sprintf("execute target does not exist: %s", target))
	}
	return nil
}

func (e *Executor) execChoose(fs vfs.FileSystem, component *model.Component, instr model.Instruction) error {
	for _, idStr := range instr.Sources {
		opt := component.FindOption(model.ID(idStr))
		if opt == nil {
			fs.LogIssue(model.SeverityError, model.CategoryChoose, fmt.Sprintf("unknown option id: %s", idStr))
			continue
		}
		if !opt.Selected {
			continue
		}
		if err := e.runInstructions(fs, component, opt.Instructions); err != nil {
			return err
		}
	}
	return nil
}

func base(normPath string) string {
	idx := strings.LastIndex(normPath, `\`)
	if idx < 0 {
		return normPath
	}
	return normPath[idx+1:]
}

func parentDir(normPath string) string {
	idx := strings.LastIndex(normPath, `\`)
	if idx <= 0 {
		return ""
	}
	return normPath[:idx]
}

func stem(normPath string) string {
	b := base(normPath)
	if idx := strings.LastIndex(b, "."); idx > 0 {
		return b[:idx]
	}
	return b
}
