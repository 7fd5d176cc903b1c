// Package archive implements the Archive Inspector (spec §4.2): lazy
// entry enumeration over ZIP/RAR/7z without materializing files, plus
// the shape classification the Auto-Instruction Generator consumes.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"

	kmserrors "github.com/OldRepublicDevs/kotormodsync/internal/errors"
	"github.com/OldRepublicDevs/kotormodsync/pkg/pathutil"
)

// Entry is a single non-directory member of an archive.
type Entry struct {
	Path string // normalized, archive-relative
	Size int64
}

// corruptionIndicators is the fixed substring set (spec §4.2) used to
// recognize a corrupted archive from a reader's error message when the
// reader doesn't otherwise classify it.
var corruptionIndicators = []string{
	"invalid central directory",
	"unexpected eof",
	"crc32 failed",
	"checksum error",
	"nextheaderoffset",
	"bad magic",
	"not a valid archive",
	"not a valid zip file",
	"corrupt",
}

// Inspector enumerates archive entries. It satisfies vfs.ArchiveLister.
type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

// ListEntries implements vfs.ArchiveLister: it returns archive-relative
// normalized paths of every non-directory entry.
func (i *Inspector) ListEntries(archivePath string) ([]string, error) {
	entries, err := i.Entries(archivePath)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out, nil
}

// Entries lazily enumerates an archive's non-directory members by
// dispatching on file extension, classifying any reader failure that
// matches the fixed corruption-indicator set as *errors.CorruptedArchiveError.
func (i *Inspector) Entries(archivePath string) ([]Entry, error) {
	lower := strings.ToLower(archivePath)
	var entries []Entry
	var err error

	switch {
	case strings.HasSuffix(lower, ".zip"):
		entries, err = entriesZip(archivePath)
	case strings.HasSuffix(lower, ".rar"):
		entries, err = entriesRar(archivePath)
	case strings.HasSuffix(lower, ".7z"):
		entries, err = entriesSevenZip(archivePath)
	default:
		return nil, fmt.Errorf("unsupported archive extension: %s", archivePath)
	}

	if err != nil {
		if isCorruption(err) {
			return nil, kmserrors.NewCorruptedArchiveError(archivePath, err)
		}
		return nil, err
	}
	return entries, nil
}

func isCorruption(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, indicator := range corruptionIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

func entriesZip(path string) ([]Entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, Entry{
			Path: pathutil.Normalize(f.Name),
			Size: int64(f.UncompressedSize64),
		})
	}
	return entries, nil
}

func entriesRar(path string) ([]Entry, error) {
	rc, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var entries []Entry
	for {
		hdr, err := rc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.IsDir {
			continue
		}
		entries = append(entries, Entry{
			Path: pathutil.Normalize(hdr.Name),
			Size: hdr.UnPackedSize,
		})
	}
	return entries, nil
}

func entriesSevenZip(path string) ([]Entry, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, Entry{
			Path: pathutil.Normalize(f.Name),
			Size: int64(f.UncompressedSize64),
		})
	}
	return entries, nil
}
