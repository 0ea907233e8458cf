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

// Package molecule implements the packed 32-bit cell representation shared
// by every layer of the runtime: a molecule is a (type, value, marker)
// triple packed into a single word so the environment can store one grid
// cell per machine word instead of a struct.
package molecule

import "fmt"

// Word is a packed molecule: low VALUE_BITS bits hold the signed value,
// the next MARKER_BITS bits hold the marker, and the remaining high bits
// hold the type tag. The layout is total: every 32-bit pattern decodes to
// some (Type, value, marker).
type Word uint32

// Bit widths of the packed layout. These match the reference runtime's
// defaults and are compile-time constants rather than configuration
// because changing them changes the wire format of every program artifact.
const (
	ValueBits  = 20
	MarkerBits = 4
	TypeBits   = 32 - ValueBits - MarkerBits

	valueMask  = Word(1)<<ValueBits - 1
	markerMask = Word(1)<<MarkerBits - 1
	typeMask   = Word(1)<<TypeBits - 1

	// MaxValue and MinValue bound the signed range representable in
	// ValueBits bits.
	MaxValue = int32(1)<<(ValueBits-1) - 1
	MinValue = -(int32(1) << (ValueBits - 1))
)

// Type tags a molecule's family. Values are small and dense so they fit
// comfortably in TypeBits.
type Type byte

const (
	CODE     Type = 0
	DATA     Type = 1
	ENERGY   Type = 2
	STRUCTURE Type = 3
	LABEL    Type = 4
	LABELREF Type = 5
	REGISTER Type = 6
)

var typeNames = [...]string{
	CODE:      "CODE",
	DATA:      "DATA",
	ENERGY:    "ENERGY",
	STRUCTURE: "STRUCTURE",
	LABEL:     "LABEL",
	LABELREF:  "LABELREF",
	REGISTER:  "REGISTER",
}

// String renders the type tag. Unknown tags (reachable only if TypeBits is
// ever widened beyond the declared families) print numerically rather than
// panicking, matching the "never fails" contract of the codec.
func (t Type) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", byte(t))
}

// IsKnown reports whether t is one of the seven declared families.
func (t Type) IsKnown() bool {
	return t <= REGISTER
}

// Pack assembles a molecule word from its fields. value is masked to
// ValueBits (sign information is recoverable via Scalar/unpack, never via
// raw field access), marker to MarkerBits, and the type tag to TypeBits.
// Pack never fails: the layout is total.
func Pack(t Type, value int32, marker byte) Word {
	v := Word(uint32(value)) & valueMask
	m := Word(marker) & markerMask
	ty := Word(t) & typeMask
	return v | (m << ValueBits) | (ty << (ValueBits + MarkerBits))
}

// Unpack decomposes a molecule word into its type, signed value, and
// marker. It is the exact inverse of Pack: Pack(Unpack(w)) == w for every
// w, and Unpack(Pack(t, v, m)) == (t, v, m) for every v in range and t, m
// within their bit widths.
func Unpack(w Word) (t Type, value int32, marker byte) {
	value = signExtend(w & valueMask)
	marker = byte((w >> ValueBits) & markerMask)
	t = Type((w >> (ValueBits + MarkerBits)) & typeMask)
	return
}

func signExtend(v Word) int32 {
	raw := uint32(v)
	if raw&(uint32(1)<<(ValueBits-1)) != 0 {
		raw |= ^uint32(0) << ValueBits
	}
	return int32(raw)
}

// Scalar returns the sign-extended value field of w, the view every
// arithmetic instruction operates on.
func (w Word) Scalar() int32 {
	return signExtend(w & valueMask)
}

// Type returns the type tag of w without touching the other fields.
func (w Word) Type() Type {
	return Type((w >> (ValueBits + MarkerBits)) & typeMask)
}

// Marker returns the marker field of w.
func (w Word) Marker() byte {
	return byte((w >> ValueBits) & markerMask)
}

// Empty is the canonical empty cell: CODE type, value zero. Per the
// environment invariant, an empty cell's marker and owner must both be
// zero; molecule.Empty already satisfies the marker half of that.
var Empty = Pack(CODE, 0, 0)

// IsEmpty reports whether w is the empty molecule (CODE, value 0), without
// regard to its marker field — callers that also need the marker-zero
// invariant should check Marker() == 0 separately, since the environment
// is responsible for maintaining that invariant on write, not the codec.
func (w Word) IsEmpty() bool {
	return w.Type() == CODE && w.Scalar() == 0
}

// WithMarker returns a copy of w with its marker field replaced.
func (w Word) WithMarker(marker byte) Word {
	t, v, _ := Unpack(w)
	return Pack(t, v, marker)
}

// String renders a molecule for diagnostics as "TYPE:value@marker".
func (w Word) String() string {
	t, v, m := Unpack(w)
	return fmt.Sprintf("%s:%d@%d", t, v, m)
}
