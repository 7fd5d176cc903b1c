package executor

import (
	"errors"
	"testing"

	kmserrors "github.com/OldRepublicDevs/kotormodsync/internal/errors"
	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/internal/vfs"
)

type fakeLister struct {
	entries map[string][]string
}

func (f *fakeLister) ListEntries(archivePath string) ([]string, error) {
	e, ok := f.entries[archivePath]
	if !ok {
		return nil, errors.New("not found")
	}
	return e, nil
}

func vfsWithFiles(files ...string) *vfs.VFS {
	v := vfs.New(&fakeLister{entries: map[string][]string{}})
	v.SetRoots(`C:\Mods\ModX`, `C:\KOTOR`)
	v.Seed(files...)
	return v
}

func vfsWithDirs(dirs []string, files ...string) *vfs.VFS {
	v := vfsWithFiles(files...)
	v.SeedDir(dirs...)
	return v
}


func TestRunMoveSingleMatch(t *testing.T) {
	v := vfsWithFiles(`C:\Mods\ModX\foo.2da`)
	comp := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionMove, Sources: []string{`<<modDirectory>>\foo.2da`}, Destination: `<<kotorDirectory>>\Override\foo.2da`},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	if err := e.Run(v, comp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.FileExists(`C:\Mods\ModX\foo.2da`) {
		t.Errorf("expected source removed after move")
	}
	if !v.FileExists(`C:\KOTOR\Override\foo.2da`) {
		t.Errorf("expected destination to exist")
	}
}

func TestRunMoveMultiMatchDirectoryDestination(t *testing.T) {
	v := vfsWithFiles(`C:\Mods\ModX\a.2da`, `C:\Mods\ModX\b.2da`)
	comp := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionMove, Sources: []string{`<<modDirectory>>\*.2da`}, Destination: `<<kotorDirectory>>\Override`},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	if err := e.Run(v, comp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.FileExists(`C:\KOTOR\Override\a.2da`) || !v.FileExists(`C:\KOTOR\Override\b.2da`) {
		t.Errorf("expected both files moved under destination directory")
	}
}

func TestRunDeleteMandatoryNoMatchLogsWarningAndSucceeds(t *testing.T) {
	v := vfsWithFiles(`C:\Mods\ModX\a.2da`)
	comp := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionDelete, Sources: []string{`<<modDirectory>>\missing.2da`}},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	if err := e.Run(v, comp); err != nil {
		t.Fatalf("Delete miss must never fail the run, got %v", err)
	}
	issues := v.Issues()
	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %d: %+v", len(issues), issues)
	}
	if issues[0].Severity != model.SeverityWarning {
		t.Errorf("expected SeverityWarning, got %v", issues[0].Severity)
	}
	if issues[0].Category != model.CategoryDeleteFile {
		t.Errorf("expected CategoryDeleteFile, got %v", issues[0].Category)
	}
}

func TestRunOptionalNoMatchIsNoop(t *testing.T) {
	v := vfsWithFiles(`C:\Mods\ModX\a.2da`)
	comp := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionMove, Sources: []string{`<<modDirectory>>\missing.2da`}, Destination: `<<kotorDirectory>>\Override`, Optional: true},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	if err := e.Run(v, comp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunMoveOverwriteCollisionFails(t *testing.T) {
	v := vfsWithFiles(`C:\Mods\ModX\a.2da`, `C:\KOTOR\Override\a.2da`)
	comp := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionMove, Sources: []string{`<<modDirectory>>\a.2da`}, Destination: `<<kotorDirectory>>\Override\a.2da`, Overwrite: false},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	err := e.Run(v, comp)
	var ife *kmserrors.InstructionFailedError
	if !errors.As(err, &ife) {
		t.Fatalf("expected InstructionFailedError, got %v", err)
	}
	if ife.InstructionIndex != 0 {
		t.Errorf("expected index 0, got %d", ife.InstructionIndex)
	}
}

func TestRunPatcherChecksSiblingTslpatchdata(t *testing.T) {
	v := vfsWithDirs(
		[]string{`C:\Mods\ModX\tslpatchdata`},
		`C:\Mods\ModX\TSLPatcher.exe`,
	)
	comp := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionPatcher, Sources: []string{`<<modDirectory>>\TSLPatcher.exe`}, Destination: `<<kotorDirectory>>`, Arguments: "changes.ini"},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	if err := e.Run(v, comp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunPatcherMissingSiblingFails(t *testing.T) {
	v := vfsWithFiles(`C:\Mods\ModX\TSLPatcher.exe`)
	comp := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionPatcher, Sources: []string{`<<modDirectory>>\TSLPatcher.exe`}, Destination: `<<kotorDirectory>>`, Arguments: "changes.ini"},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	err := e.Run(v, comp)
	var ife *kmserrors.InstructionFailedError
	if !errors.As(err, &ife) {
		t.Fatalf("expected InstructionFailedError, got %v", err)
	}
}

func TestRunChooseExecutesSelectedOption(t *testing.T) {
	v := vfsWithFiles(`C:\Mods\ModX\a.2da`)
	optID := model.NewID()
	comp := &model.Component{
		Options: []model.Option{
			{
				ID:       optID,
				Selected: true,
				Instructions: []model.Instruction{
					{Action: model.ActionMove, Sources: []string{`<<modDirectory>>\a.2da`}, Destination: `<<kotorDirectory>>\Override\a.2da`},
				},
			},
		},
		Instructions: []model.Instruction{
			{Action: model.ActionChoose, Sources: []string{string(optID)}},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	if err := e.Run(v, comp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.FileExists(`C:\KOTOR\Override\a.2da`) {
		t.Errorf("expected selected option's Move to have run")
	}
}

func TestRunChooseSkipsUnselectedOption(t *testing.T) {
	v := vfsWithFiles(`C:\Mods\ModX\a.2da`)
	optID := model.NewID()
	comp := &model.Component{
		Options: []model.Option{
			{
				ID:       optID,
				Selected: false,
				Instructions: []model.Instruction{
					{Action: model.ActionMove, Sources: []string{`<<modDirectory>>\a.2da`}, Destination: `<<kotorDirectory>>\Override\a.2da`},
				},
			},
		},
		Instructions: []model.Instruction{
			{Action: model.ActionChoose, Sources: []string{string(optID)}},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	if err := e.Run(v, comp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.FileExists(`C:\KOTOR\Override\a.2da`) {
		t.Errorf("expected unselected option's instructions not to run")
	}
	if !v.FileExists(`C:\Mods\ModX\a.2da`) {
		t.Errorf("expected source untouched")
	}
}

func TestRunDelDuplicateIsNoop(t *testing.T) {
	v := vfsWithFiles(`C:\Mods\ModX\a.2da`)
	comp := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionDelDuplicate, Sources: []string{`anything`}},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	if err := e.Run(v, comp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.FileExists(`C:\Mods\ModX\a.2da`) {
		t.Errorf("expected no mutation")
	}
}

func TestRunExtract(t *testing.T) {
	v := vfs.New(&fakeLister{entries: map[string][]string{
		`C:\Mods\ModX\Mod.zip`: {"Override/a.2da"},
	}})
	v.SetRoots(`C:\Mods\ModX`, `C:\KOTOR`)
	v.Seed(`C:\Mods\ModX\Mod.zip`)

	comp := &model.Component{
		Instructions: []model.Instruction{
			{Action: model.ActionExtract, Sources: []string{`<<modDirectory>>\Mod.zip`}, Destination: `<<modDirectory>>\extracted`},
		},
	}
	e := New(`C:\Mods\ModX`, `C:\KOTOR`)
	if err := e.Run(v, comp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.FileExists(`C:\Mods\ModX\extracted\Override\a.2da`) {
		t.Errorf("expected extracted file to exist")
	}
}
