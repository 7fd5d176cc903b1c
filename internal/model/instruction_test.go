package model

import "testing"

func TestInstructionClone_IsIndependent(t *testing.T) {
	orig := Instruction{
		ID:           NewID(),
		Action:       ActionExtract,
		Sources:      []string{"a/*.tga"},
		DependsOn:    []ID{NewID()},
		RestrictedBy: []ID{NewID()},
	}

	cp := orig.Clone()
	cp.Sources[0] = "mutated"
	cp.DependsOn[0] = NewID()

	if orig.Sources[0] != "a/*.tga" {
		t.Fatalf("mutating the clone's Sources affected the original")
	}
	if orig.DependsOn[0] == cp.DependsOn[0] {
		t.Fatalf("mutating the clone's DependsOn affected the original")
	}
}

func TestMeaningfulFields(t *testing.T) {
	tests := []struct {
		action                          ActionKind
		destination, arguments, overwrite bool
	}{
		{ActionExtract, true, false, false},
		{ActionMove, true, false, true},
		{ActionCopy, true, false, true},
		{ActionDelete, false, false, false},
		{ActionRename, false, true, false},
		{ActionPatcher, true, true, false},
		{ActionExecute, false, false, false},
		{ActionChoose, false, false, false},
		{ActionDelDuplicate, false, false, false},
	}

	for _, tt := range tests {
		i := Instruction{Action: tt.action}
		dest, args, overwrite := i.MeaningfulFields()
		if dest != tt.destination || args != tt.arguments || overwrite != tt.overwrite {
			t.Errorf("%s: got (%v,%v,%v), want (%v,%v,%v)",
				tt.action, dest, args, overwrite, tt.destination, tt.arguments, tt.overwrite)
		}
	}
}
