package model

// ActionKind is the closed set of instruction actions (spec §3). It
// replaces the source's reflection-driven "ShouldSerializeX" opt-in
// with a tagged variant: each kind declares which fields are
// meaningful via MeaningfulFields.
type ActionKind string

const (
	ActionExtract      ActionKind = "Extract"
	ActionMove         ActionKind = "Move"
	ActionCopy         ActionKind = "Copy"
	ActionDelete       ActionKind = "Delete"
	ActionRename       ActionKind = "Rename"
	ActionPatcher      ActionKind = "Patcher"
	ActionExecute      ActionKind = "Execute"
	ActionChoose       ActionKind = "Choose"
	ActionDelDuplicate ActionKind = "DelDuplicate"
)

// Instruction is a single planned operation (spec §3). Sources hold
// path patterns for every action except Choose, whose sources hold
// Option ids.
type Instruction struct {
	ID ID

	Action ActionKind

	// Sources holds path patterns (pattern-bearing) for every action
	// except Choose, where it holds Option ids.
	Sources []string

	Destination string
	Arguments   string
	Overwrite   bool

	// Optional means an empty source match is not an issue (spec §4.4).
	Optional bool

	DependsOn    []ID
	RestrictedBy []ID

	// OwnerID is the Component or Option that exclusively owns this
	// instruction (spec §3, §9: arena-of-instructions-by-id, not
	// reciprocal owning pointers).
	OwnerID ID
}

// Clone returns a deep copy safe to mutate independently (used by the
// Validator's snapshot/restore repair protocol, spec §4.6).
func (i Instruction) Clone() Instruction {
	cp := i
	cp.Sources = append([]string(nil), i.Sources...)
	cp.DependsOn = append([]ID(nil), i.DependsOn...)
	cp.RestrictedBy = append([]ID(nil), i.RestrictedBy...)
	return cp
}

// meaningfulFields reports which attributes matter for equivalence
// (spec §4.5) and execution, per action kind.
type meaningfulFields struct {
	Destination bool
	Arguments   bool
	Overwrite   bool
}

var fieldTable = map[ActionKind]meaningfulFields{
	ActionExtract:      {Destination: true, Overwrite: false},
	ActionMove:         {Destination: true, Overwrite: true},
	ActionCopy:         {Destination: true, Overwrite: true},
	ActionDelete:       {},
	ActionRename:       {Arguments: true},
	ActionPatcher:      {Destination: true, Arguments: true},
	ActionExecute:      {},
	ActionChoose:       {},
	ActionDelDuplicate: {},
}

// MeaningfulFields reports which of Destination/Arguments/Overwrite
// participate in equivalence comparisons for this instruction's action.
func (i Instruction) MeaningfulFields() (destination, arguments, overwrite bool) {
	f := fieldTable[i.Action]
	return f.Destination, f.Arguments, f.Overwrite
}
