package validator

import (
	"testing"

	"github.com/OldRepublicDevs/kotormodsync/internal/executor"
	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/internal/vfs"
)

func seeded(files, dirs []string) func() vfs.FileSystem {
	return func() vfs.FileSystem {
		v := vfs.New(nil)
		v.Seed(files...)
		v.SeedDir(dirs...)
		v.SetRoots(`C:\Mods\ModX`, `C:\KOTOR`)
		return v
	}
}

func executorFor() *executor.Executor {
	return executor.New(`C:\Mods\ModX`, `C:\KOTOR`)
}

// fakeLister implements vfs.ArchiveLister with a fixed entry set, for
// tests that need ExtractArchive to register a tracked archive.
type fakeLister struct{ entries []string }

func (f fakeLister) ListEntries(string) ([]string, error) { return f.entries, nil }

func TestValidateSucceedsOnFirstRun(t *testing.T) {
	c := &model.Component{
		ID: model.NewID(),
		Instructions: []model.Instruction{
			{ID: model.NewID(), Action: model.ActionMove, Sources: []string{`<<modDirectory>>\a.2da`}, Destination: `<<kotorDirectory>>\Override\a.2da`},
		},
	}

	v := New(`C:\Mods\ModX`, `C:\KOTOR`)
	newVFS := seeded([]string{`C:\Mods\ModX\a.2da`}, nil)
	result := v.Validate(c, `C:\Mods\ModX`, newVFS, nil, nil)

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
}

func TestValidateCachesResult(t *testing.T) {
	c := &model.Component{
		ID: model.NewID(),
		Instructions: []model.Instruction{
			{ID: model.NewID(), Action: model.ActionMove, Sources: []string{`<<modDirectory>>\a.2da`}, Destination: `<<kotorDirectory>>\Override\a.2da`},
		},
	}

	v := New(`C:\Mods\ModX`, `C:\KOTOR`)
	calls := 0
	newVFS := func() vfs.FileSystem {
		calls++
		fs := vfs.New(nil)
		fs.Seed(`C:\Mods\ModX\a.2da`)
		fs.SetRoots(`C:\Mods\ModX`, `C:\KOTOR`)
		return fs
	}

	first := v.Validate(c, `C:\Mods\ModX`, newVFS, nil, nil)
	callsAfterFirst := calls
	second := v.Validate(c, `C:\Mods\ModX`, newVFS, nil, nil)

	if !first.Success || !second.Success {
		t.Fatalf("expected both validations to succeed")
	}
	if calls != callsAfterFirst {
		t.Errorf("expected second Validate to be served from cache without invoking newVFS again, calls went from %d to %d", callsAfterFirst, calls)
	}
}

func TestValidateFailsWithDownloadNeeded(t *testing.T) {
	c := &model.Component{
		ID:   model.NewID(),
		URLs: []string{"https://example.com/mymod.zip"},
		Instructions: []model.Instruction{
			{ID: model.NewID(), Action: model.ActionExtract, Sources: []string{`<<modDirectory>>\MyMod.zip`}, Destination: `<<modDirectory>>\extracted`},
		},
	}

	v := New(`C:\Mods\ModX`, `C:\KOTOR`)
	newVFS := seeded(nil, nil)
	result := v.Validate(c, `C:\Mods\ModX`, newVFS, nil, nil)

	if result.Success {
		t.Fatalf("expected failure when the archive is entirely absent, got %+v", result)
	}
	if len(result.DownloadsNeeded) != 1 || result.DownloadsNeeded[0] != "https://example.com/mymod.zip" {
		t.Errorf("expected the component's single URL nominated for download, got %v", result.DownloadsNeeded)
	}
}

func TestValidateDowngradesToNonCriticalWhenArchivesPresentOnDisk(t *testing.T) {
	c := &model.Component{
		ID: model.NewID(),
		Instructions: []model.Instruction{
			{ID: model.NewID(), Action: model.ActionExtract, Sources: []string{`<<modDirectory>>\MyMod.zip`}, Destination: `<<modDirectory>>\extracted`},
		},
	}

	v := New(`C:\Mods\ModX`, `C:\KOTOR`)
	newVFS := seeded(nil, nil)
	diskExists := func(name string) bool { return name == "MyMod.zip" }

	result := v.Validate(c, `C:\Mods\ModX`, newVFS, nil, diskExists)

	if !result.NonCriticalPathMismatch {
		t.Fatalf("expected a non-critical path mismatch downgrade, got %+v", result)
	}
}

func TestFixDuplicateFolderCollapsesRepeatedSegment(t *testing.T) {
	c := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionMove, Sources: []string{`<<modDirectory>>\MyMod\MyMod\a.2da`}},
		},
	}

	if !fixDuplicateFolder(c) {
		t.Fatalf("expected fixDuplicateFolder to report a change")
	}
	want := `<<modDirectory>>\MyMod\a.2da`
	if got := c.Instructions[0].Sources[0]; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFixDuplicateFolderNoopWhenNothingToCollapse(t *testing.T) {
	c := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionMove, Sources: []string{`<<modDirectory>>\MyMod\a.2da`}},
		},
	}
	if fixDuplicateFolder(c) {
		t.Errorf("expected no change for a path with no duplicated segment")
	}
}

func TestFixNestedArchiveInsertsMissingSegment(t *testing.T) {
	c := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionMove, Sources: []string{`<<modDirectory>>\extracted\MyMod\Override\*`}},
		},
	}

	fs := vfs.New(fakeLister{entries: []string{`MyMod\Override\a.2da`}})
	fs.SetRoots(`C:\Mods\ModX`, `C:\KOTOR`)
	if err := fs.ExtractArchive(`C:\Mods\ModX\MyMod.zip`, `C:\Mods\ModX\extracted\MyMod`); err != nil {
		t.Fatalf("unexpected ExtractArchive error: %v", err)
	}

	if !fixNestedArchive(c, fs) {
		t.Fatalf("expected fixNestedArchive to report a change")
	}
	want := `<<modDirectory>>\extracted\MyMod\MyMod\Override\*`
	if got := c.Instructions[0].Sources[0]; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFixArchiveNameMismatchRewritesAndRetains(t *testing.T) {
	c := &model.Component{
		ID: model.NewID(),
		Instructions: []model.Instruction{
			{ID: model.NewID(), Action: model.ActionExtract, Sources: []string{`<<modDirectory>>\MyModd.zip`}, Destination: `<<modDirectory>>\extracted`},
		},
	}

	newVFS := seeded([]string{`C:\Mods\ModX\MyMod.zip`}, nil)
	known := map[string]struct{}{"MyMod.zip": {}}

	changed := fixArchiveNameMismatch(c, []string{`<<modDirectory>>\MyModd.zip`}, known, executorFor(), newVFS)
	if !changed {
		t.Fatalf("expected the mismatched archive name to be rewritten")
	}
	want := `<<modDirectory>>\MyMod.zip`
	if got := c.Instructions[0].Sources[0]; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFixArchiveNameMismatchRevertsWhenStillFailing(t *testing.T) {
	c := &model.Component{
		ID: model.NewID(),
		Instructions: []model.Instruction{
			{ID: model.NewID(), Action: model.ActionExtract, Sources: []string{`<<modDirectory>>\MyModd.zip`}, Destination: `<<modDirectory>>\extracted`},
		},
	}
	original := c.Instructions[0].Sources[0]

	newVFS := seeded(nil, nil) // the "corrected" name still won't exist
	known := map[string]struct{}{"MyMod.zip": {}}

	changed := fixArchiveNameMismatch(c, []string{`<<modDirectory>>\MyModd.zip`}, known, executorFor(), newVFS)
	if changed {
		t.Fatalf("expected no lasting change when the re-run still fails")
	}
	if got := c.Instructions[0].Sources[0]; got != original {
		t.Errorf("expected source reverted to %q, got %q", original, got)
	}
}
