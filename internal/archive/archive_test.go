package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	kmserrors "github.com/OldRepublicDevs/kotormodsync/internal/errors"
)

func writeTestZip(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return path
}

func TestListEntriesZip(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"Override/a.2da": "x",
		"Override/b.tga": "x",
		"readme.txt":      "x",
	})
	i := NewInspector()
	entries, err := i.ListEntries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(entries)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %v", entries)
	}
}

func TestAnalyzeLooseOverrideSingleFolder(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"MyMod/a.2da": "x",
		"MyMod/b.tga": "x",
	})
	i := NewInspector()
	a, err := i.Analyze(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.HasTslPatchData {
		t.Errorf("did not expect tslpatchdata")
	}
	if !a.HasSimpleOverrideFiles || a.HasFlatFiles {
		t.Errorf("expected simple override, non-flat; got %+v", a)
	}
	if len(a.TopLevelFolders) != 1 || a.TopLevelFolders[0] != "MyMod" {
		t.Errorf("expected single top folder MyMod, got %v", a.TopLevelFolders)
	}
}

func TestAnalyzeFlatFiles(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"a.2da": "x",
		"b.tga": "x",
	})
	i := NewInspector()
	a, err := i.Analyze(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.HasFlatFiles {
		t.Errorf("expected flat files")
	}
	if len(a.TopLevelFolders) != 0 {
		t.Errorf("expected no top-level folders, got %v", a.TopLevelFolders)
	}
}

func TestAnalyzeMultipleFolders(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"OptionA/a.2da": "x",
		"OptionB/b.2da": "x",
	})
	i := NewInspector()
	a, err := i.Analyze(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.TopLevelFolders) != 2 {
		t.Fatalf("expected 2 top-level folders, got %v", a.TopLevelFolders)
	}
}

func TestAnalyzeTslPatcherWithNamespaces(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"tslpatchdata/changes.ini": "x",
		"tslpatchdata/install.2da": "x",
		"namespaces.ini": "[Namespaces]\nID0=Namespace1\nID1=Namespace2\n\n[Namespace1]\nName=Option A\n",
		"TSLPatcher.exe": "x",
	})
	i := NewInspector()
	a, err := i.Analyze(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.HasTslPatchData || !a.HasNamespacesIni {
		t.Fatalf("expected tslpatchdata + namespaces detected, got %+v", a)
	}
	if len(a.NamespaceEntries) != 2 || a.NamespaceEntries[0] != "Namespace1" || a.NamespaceEntries[1] != "Namespace2" {
		t.Fatalf("unexpected namespace entries: %v", a.NamespaceEntries)
	}
	if a.PatcherExecutable != "TSLPatcher.exe" {
		t.Fatalf("expected patcher executable detected, got %q", a.PatcherExecutable)
	}
}

func TestAnalyzeTslPatcherWithoutNamespaces(t *testing.T) {
	path := writeTestZip(t, map[string]string{
		"tslpatchdata/changes.ini": "x",
	})
	i := NewInspector()
	a, err := i.Analyze(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.HasTslPatchData || !a.HasChangesIni || a.HasNamespacesIni {
		t.Fatalf("unexpected analysis: %+v", a)
	}
}

func TestEntriesCorruptZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.zip")
	if err := os.WriteFile(path, []byte("not a zip file at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	i := NewInspector()
	_, err := i.Entries(path)
	if err == nil {
		t.Fatalf("expected error for corrupt zip")
	}
	var ca *kmserrors.CorruptedArchiveError
	isCorrupted := false
	if e, ok := err.(*kmserrors.CorruptedArchiveError); ok {
		ca = e
		isCorrupted = true
	}
	if !isCorrupted {
		t.Fatalf("expected *CorruptedArchiveError, got %T: %v", err, err)
	}
	_ = ca
}

func TestUnsupportedExtension(t *testing.T) {
	i := NewInspector()
	_, err := i.Entries("archive.tar")
	if err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}
