package model

import "testing"

func TestOptionClone_InstructionsAreIndependent(t *testing.T) {
	orig := Option{
		ID:           NewID(),
		Name:         "alt",
		Instructions: []Instruction{{ID: NewID(), Action: ActionCopy, Sources: []string{"x"}}},
	}

	cp := orig.Clone()
	cp.Instructions[0].Sources[0] = "mutated"
	cp.Name = "renamed"

	if orig.Instructions[0].Sources[0] != "x" {
		t.Fatalf("cloned option's instruction mutation leaked into the original")
	}
	if orig.Name != "alt" {
		t.Fatalf("cloned option's Name mutation leaked into the original")
	}
}
