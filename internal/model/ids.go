// Package model holds the planning core's data model: Component,
// Instruction, Option, and the supporting value types shared by the
// path engine, VFS, executor, auto-generator, validator, and cache
// (spec §3).
package model

import "github.com/google/uuid"

// ID is an opaque identifier for a Component, Instruction, or Option.
// Parent back-references are modeled by id, never by reciprocal
// pointers, so instructions can be looked up from an arena without a
// Component<->Instruction ownership cycle.
type ID string

// NewID generates a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}
