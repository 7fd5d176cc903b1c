// Package vfs implements the Virtual File System (spec §4.3): an
// in-memory mirror of disk and archive contents over which every
// instruction type is executed symbolically. It is single-threaded
// and exclusive-owner-per-run, matching the scheduling model of spec
// §5 (one VFS per component's instruction execution).
package vfs

import "github.com/OldRepublicDevs/kotormodsync/internal/model"

// FileSystem is the interface consumed by the Instruction Executor
// (spec §6). It must be implemented by two providers: the in-memory
// VFS in this package, and a real-disk implementation (out of scope
// for this core; only this interface is specified, per spec §1/§6).
//
// Precondition failures (missing source, destination exists without
// overwrite) are not reported as Go errors: they are appended to the
// implementation's own issue log and the call returns nil. Only
// genuine implementation-level failures (a real-disk I/O error, or
// enumerate's WildcardPatternNotFound signal) return a non-nil error.
type FileSystem interface {
	FileExists(path string) bool
	DirExists(path string) bool

	// CreateDir is idempotent and creates parent directories.
	CreateDir(path string) error

	CopyFile(src, dst string, overwrite bool) error
	MoveFile(src, dst string, overwrite bool) error
	DeleteFile(path string) error
	RenameFile(src, newName string) error

	// ExtractArchive scans the archive's content set (lazily) and adds
	// every entry under dstDir/ to the virtual-file set, creating
	// intermediate directories. If the archive cannot be read it
	// returns the archive lister's error (an *errors.CorruptedArchiveError
	// when archive.Inspector classifies the failure as corruption).
	ExtractArchive(archivePath, dstDir string) error

	// Enumerate resolves each pattern against the current file set
	// using the Path & Wildcard Engine. A pattern that matches nothing
	// returns an *errors.WildcardPatternNotFoundError carrying every
	// unresolved pattern (spec §4.3), the only path-resolution
	// condition that propagates as a signal rather than an issue.
	Enumerate(patterns []string, includeSubfolders bool) ([]string, error)

	// Issues returns the append-only issue log accumulated so far.
	Issues() []model.ValidationIssue

	// LogIssue appends a ValidationIssue directly, used by callers
	// (the Executor) that detect a precondition failure before it ever
	// reaches a mutating VFS method, e.g. an empty non-optional source
	// match (spec §4.4).
	LogIssue(severity model.Severity, category model.IssueCategory, message string)
}

// ArchiveLister enumerates the non-directory entries of an archive
// without extracting it. Implemented by internal/archive.Inspector;
// accepted here as an interface so the VFS stays decoupled from any
// concrete archive-format reader.
type ArchiveLister interface {
	ListEntries(archivePath string) ([]string, error)
}
