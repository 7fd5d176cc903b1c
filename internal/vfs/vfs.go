package vfs

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/pkg/pathutil"
)

// VFS is the in-memory mirror of disk and archive contents (spec
// §4.3). A single VFS instance is exclusively owned by one
// component's instruction run; it is never shared across goroutines.
type VFS struct {
	// files and dirs map a lowercased, normalized key to the
	// original-cased normalized path, so Enumerate can return paths in
	// their originally observed casing while lookups stay
	// case-insensitive.
	files map[string]string
	dirs  map[string]string

	// archiveContents caches archive path -> set of contained entry
	// paths (normalized, archive-relative), scanned lazily on first
	// reference.
	archiveContents map[string]map[string]struct{}

	// trackedArchives remembers which archive extracted to which
	// destination directory, consumed by the Validator's
	// nested-archive repair pass (spec §4.6).
	trackedArchives map[string]string

	// modDirectory/kotorDirectory back the <<modDirectory>> and
	// <<kotorDirectory>> placeholders Enumerate resolves before
	// matching (spec §4.3).
	modDirectory    string
	kotorDirectory  string

	lister ArchiveLister
	issues []model.ValidationIssue
}

// New constructs an empty VFS. Use NewFromRoot to seed it from a real
// directory tree.
func New(lister ArchiveLister) *VFS {
	return &VFS{
		files:           make(map[string]string),
		dirs:            make(map[string]string),
		archiveContents: make(map[string]map[string]struct{}),
		trackedArchives: make(map[string]string),
		lister:          lister,
	}
}

// SetRoots configures the roots <<modDirectory>> and <<kotorDirectory>>
// resolve to during Enumerate (spec §4.4's placeholder resolution,
// performed here so Enumerate can be exercised without an Executor).
func (v *VFS) SetRoots(modDirectory, kotorDirectory string) {
	v.modDirectory = modDirectory
	v.kotorDirectory = kotorDirectory
}

// NewFromRoot enumerates a real root directory recursively and
// populates the file/directory sets (spec §4.3 "Initialization").
func NewFromRoot(root string, lister ArchiveLister) (*VFS, error) {
	v := New(lister)
	if root == "" {
		return v, nil
	}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		norm := pathutil.Normalize(filepath.Join(root, rel))
		if info.IsDir() {
			v.addDir(norm)
		} else {
			v.addFile(norm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Seed adds paths directly to the virtual-file set without touching
// real disk, for constructing a VFS in tests and for callers that
// already know a component's expected output layout.
func (v *VFS) Seed(paths ...string) {
	for _, p := range paths {
		v.addFile(p)
	}
}

// SeedDir adds paths directly to the virtual-directory set.
func (v *VFS) SeedDir(paths ...string) {
	for _, p := range paths {
		v.addDir(p)
	}
}

func key(path string) string {
	return strings.ToLower(pathutil.Normalize(path))
}

func (v *VFS) addFile(path string) {
	norm := pathutil.Normalize(path)
	v.files[key(norm)] = norm
	v.ensureParentDirs(norm)
}

func (v *VFS) addDir(path string) {
	norm := pathutil.Normalize(path)
	v.dirs[key(norm)] = norm
	v.ensureParentDirs(norm)
}

// ensureParentDirs keeps the invariant from spec §4.3: after every
// operation, no directory implied by a file path is missing.
func (v *VFS) ensureParentDirs(normPath string) {
	dir := parentOf(normPath)
	for dir != "" {
		k := key(dir)
		if _, ok := v.dirs[k]; ok {
			return
		}
		v.dirs[k] = dir
		dir = parentOf(dir)
	}
}

func parentOf(normPath string) string {
	idx := strings.LastIndex(normPath, `\`)
	if idx <= 0 {
		return ""
	}
	return normPath[:idx]
}

func baseOf(normPath string) string {
	idx := strings.LastIndex(normPath, `\`)
	if idx < 0 {
		return normPath
	}
	return normPath[idx+1:]
}

func (v *VFS) logIssue(severity model.Severity, category model.IssueCategory, message string) {
	v.issues = append(v.issues, model.ValidationIssue{
		Severity:  severity,
		Category:  category,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// Issues returns the append-only issue log accumulated so far.
func (v *VFS) Issues() []model.ValidationIssue {
	return v.issues
}

// LogIssue appends a ValidationIssue directly; part of the FileSystem
// interface so callers outside this package can report preconditions
// they detect themselves (spec §4.4).
func (v *VFS) LogIssue(severity model.Severity, category model.IssueCategory, message string) {
	v.logIssue(severity, category, message)
}

// FileExists is a pure predicate over the virtual-file set.
func (v *VFS) FileExists(path string) bool {
	_, ok := v.files[key(path)]
	return ok
}

// DirExists is a pure predicate over the virtual-directory set.
func (v *VFS) DirExists(path string) bool {
	_, ok := v.dirs[key(path)]
	return ok
}

// CreateDir is idempotent and creates parent directories.
func (v *VFS) CreateDir(path string) error {
	v.addDir(pathutil.Normalize(path))
	return nil
}
