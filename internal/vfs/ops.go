package vfs

import (
	"fmt"
	"strings"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/pkg/pathutil"
)

// CopyFile mutates the virtual state, logging a ValidationIssue (not
// an error) on precondition failure (spec §4.3).
func (v *VFS) CopyFile(src, dst string, overwrite bool) error {
	if !v.FileExists(src) {
		v.logIssue(model.SeverityError, model.CategoryCopyFile, fmt.Sprintf("source does not exist: %s", src))
		return nil
	}
	if v.FileExists(dst) && !overwrite {
		v.logIssue(model.SeverityError, model.CategoryCopyFile, fmt.Sprintf("destination exists and overwrite is false: %s", dst))
		return nil
	}
	v.addFile(pathutil.Normalize(dst))
	return nil
}

// MoveFile mutates the virtual state, logging a ValidationIssue on
// precondition failure.
func (v *VFS) MoveFile(src, dst string, overwrite bool) error {
	if !v.FileExists(src) {
		v.logIssue(model.SeverityError, model.CategoryMoveFile, fmt.Sprintf("source does not exist: %s", src))
		return nil
	}
	if v.FileExists(dst) && !overwrite {
		v.logIssue(model.SeverityError, model.CategoryMoveFile, fmt.Sprintf("destination exists and overwrite is false: %s", dst))
		return nil
	}
	delete(v.files, key(src))
	v.addFile(pathutil.Normalize(dst))
	return nil
}

// DeleteFile mutates the virtual state. A missing file is a Warning,
// not an Error: spec §4.4 notes this may indicate an instruction
// ordering bug but never corrupts state.
func (v *VFS) DeleteFile(path string) error {
	if !v.FileExists(path) {
		v.logIssue(model.SeverityWarning, model.CategoryDeleteFile, fmt.Sprintf("file does not exist: %s", path))
		return nil
	}
	delete(v.files, key(path))
	return nil
}

// RenameFile renames a single source file within its own directory.
func (v *VFS) RenameFile(src, newName string) error {
	if !v.FileExists(src) {
		v.logIssue(model.SeverityError, model.CategoryRenameFile, fmt.Sprintf("source does not exist: %s", src))
		return nil
	}
	norm := pathutil.Normalize(src)
	dir := parentOf(norm)
	var dst string
	if dir == "" {
		dst = newName
	} else {
		dst = dir + `\` + newName
	}
	delete(v.files, key(src))
	v.addFile(pathutil.Normalize(dst))
	return nil
}

// ExtractArchive scans the archive's content set (lazily) and adds
// every entry under dstDir/ to the virtual-file set, creating
// intermediate directories. Also records a tracked archive used by
// the Validator's nested-folder detection (spec §4.3, §4.6).
func (v *VFS) ExtractArchive(archivePath, dstDir string) error {
	entries, err := v.archiveEntries(archivePath)
	if err != nil {
		v.logIssue(model.SeverityError, model.CategoryExtractArchive, fmt.Sprintf("failed to read archive %s: %v", archivePath, err))
		return err
	}

	dst := pathutil.Normalize(dstDir)
	for _, entry := range entries {
		full := dst + `\` + pathutil.Normalize(entry)
		v.addFile(full)
	}
	v.trackedArchives[key(archivePath)] = dst
	return nil
}

// archiveEntries returns the (normalized) non-directory entries of an
// archive, scanning and caching the result on first reference.
func (v *VFS) archiveEntries(archivePath string) ([]string, error) {
	k := key(archivePath)
	if set, ok := v.archiveContents[k]; ok {
		out := make([]string, 0, len(set))
		for e := range set {
			out = append(out, e)
		}
		return out, nil
	}

	if v.lister == nil {
		return nil, fmt.Errorf("no archive lister configured")
	}
	entries, err := v.lister.ListEntries(archivePath)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[pathutil.Normalize(e)] = struct{}{}
	}
	v.archiveContents[k] = set

	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	return out, nil
}

// TrackedArchiveDestination returns the destination directory a
// tracked archive was extracted to, and whether it is tracked at all.
// Consumed by the Validator's nested-archive repair pass (spec §4.6).
func (v *VFS) TrackedArchiveDestination(archivePath string) (string, bool) {
	dst, ok := v.trackedArchives[key(archivePath)]
	return dst, ok
}

// TrackedArchives returns a copy of every tracked archive path to its
// extraction destination, consumed by the Validator's nested-archive
// repair pass (spec §4.6) to scan all archives extracted so far.
func (v *VFS) TrackedArchives() map[string]string {
	out := make(map[string]string, len(v.trackedArchives))
	for k, dst := range v.trackedArchives {
		out[k] = dst
	}
	return out
}

// ChildrenOf returns the immediate child names (files and
// directories) of dir, in their originally observed casing.
func (v *VFS) ChildrenOf(dir string) []string {
	prefix := key(dir) + `\`
	seen := make(map[string]struct{})
	var out []string
	collect := func(set map[string]string) {
		for k, original := range set {
			if !strings.HasPrefix(k, prefix) {
				continue
			}
			rest := k[len(prefix):]
			if strings.Contains(rest, `\`) {
				continue
			}
			if _, ok := seen[rest]; ok {
				continue
			}
			seen[rest] = struct{}{}
			out = append(out, original[len(original)-len(rest):])
		}
	}
	collect(v.dirs)
	collect(v.files)
	return out
}
