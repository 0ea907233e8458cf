// Copyright 2026 The Evochora Authors
// This file is part of the evochora-sub007 runtime.
//
// The evochora-sub007 runtime is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evochora-sub007 runtime is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evochora-sub007 runtime. If not, see <http://www.gnu.org/licenses/>.

// Package isa implements instruction decoding, operand resolution, and
// execution for the ~80-opcode instruction set, organized into families
// (spec §4.4). Rather than subclass polymorphism per opcode, each
// instruction is a tagged Descriptor plus a pair of function-table entries
// (Targets, Execute); the registry is built once at init and never mutated
// afterward (spec §9 "immutable registry built by a builder").
package isa

import (
	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/organism"
)

// OperandSource tags where an operand's value comes from.
type OperandSource int

const (
	REGISTER OperandSource = iota
	IMMEDIATE
	VECTOR
	STACK
	LABEL
	LOCATION_REGISTER
)

// SlotCount reports how many grid slots an operand of this kind occupies,
// given the environment's dimensionality. STACK operands are never encoded
// in the instruction stream; LABEL is fixed at exactly one slot (spec
// §4.4/§9 — the LABEL/VECTOR length bug is deliberately NOT reproduced
// here).
func (s OperandSource) SlotCount(dims int) int {
	switch s {
	case STACK:
		return 0
	case VECTOR:
		return dims
	default:
		return 1
	}
}

// FamilyID groups opcodes the way the reference families are organized
// (spec §4.4). The Stack family shares an id with Data per spec.
type FamilyID int

const (
	FamilyNOP FamilyID = iota
	FamilyData
	FamilyArithmetic
	FamilyBitwise
	FamilyConditional
	FamilyVector
	FamilyEnvironment
	FamilyControlFlow
	FamilyLocation
)

// Descriptor fully describes one opcode: its family, numeric opcode id
// within the family, a human variant tag (operand-pattern, e.g. "RR"),
// mnemonic, and declared operand sources. Targets and Execute are the
// function-table entries dispatched by the VM; Targets is nil for
// instructions that never write the environment.
type Descriptor struct {
	Family   FamilyID
	OpcodeID int
	Variant  string
	Mnemonic string
	Operands []OperandSource

	Targets func(ctx *Context) []environment.Coord
	Execute func(ctx *Context) *Fault
}

// Length returns the total grid footprint of d: the opcode slot plus every
// operand's slot count (spec §4.4: "1 + Σ slot_count(source_i)").
func (d Descriptor) Length(dims int) int {
	n := 1
	for _, op := range d.Operands {
		n += op.SlotCount(dims)
	}
	return n
}

// ResolvedOperand is one operand after Plan has fetched it: its declared
// source, the raw register id if it came from a register bank (-1
// otherwise), and the value it carried at resolution time.
type ResolvedOperand struct {
	Source OperandSource
	RawID  int32
	Value  organism.Value
}

// ConflictStatus is the outcome the resolver assigns a planned instruction
// (spec §4.7/glossary).
type ConflictStatus int

const (
	NotApplicable ConflictStatus = iota
	WonExecution
	LostConflict
	LostTargetOccupied
)

// Context is the per-instruction execution environment handed to a
// Descriptor's Targets/Execute functions: the organism and environment
// being mutated, the resolved operand list, and the conflict outcome. It
// is constructed fresh by the VM for each planned instruction and never
// shared across organisms.
type Context struct {
	Org        *organism.Organism
	Env        *environment.Environment
	Descriptor *Descriptor
	Operands   []ResolvedOperand
	Status     ConflictStatus

	StrictTyping bool

	// IFERPrev is the organism's "did the previous instruction fail" flag,
	// read by IFER/INER (spec §4.4).
	IFERPrev bool

	// LabelResolve resolves a 19-bit hash to a coordinate, injected so isa
	// does not import the label package (which itself scans the
	// environment isa already depends on — resolving the same
	// circular-dependency shape organism solves with LengthFunc).
	LabelResolve func(hash uint32, seeking environment.Coord, seekerID organism.ID) (environment.Coord, bool)
}

// Operand returns the i-th resolved operand, or the zero ResolvedOperand
// if i is out of range (callers are expected to only index operands a
// Descriptor actually declares).
func (c *Context) Operand(i int) ResolvedOperand {
	if i < 0 || i >= len(c.Operands) {
		return ResolvedOperand{RawID: -1}
	}
	return c.Operands[i]
}
