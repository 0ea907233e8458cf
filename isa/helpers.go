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

package isa

import (
	"math/bits"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

// writeTo stores v into the destination named by the operand at index
// destIdx: a REGISTER operand writes the addressed register, a STACK
// operand pushes, and a LOCATION_REGISTER operand writes the addressed
// location register. Any other source returns an InvalidOperandType fault.
func writeTo(ctx *Context, destIdx int, v organism.Value) *Fault {
	op := ctx.Operand(destIdx)
	switch op.Source {
	case REGISTER:
		if err := ctx.Org.WriteRegister(op.RawID, v); err != nil {
			return Faultf(InvalidOperandType, "%v", err)
		}
		return nil
	case STACK:
		if err := ctx.Org.PushData(v); err != nil {
			return Faultf(StackOverflow, "%v", err)
		}
		return nil
	case LOCATION_REGISTER:
		idx := int(op.RawID)
		if idx < 0 || idx >= len(ctx.Org.LR) {
			return Faultf(InvalidLR, "location register %d out of range", idx)
		}
		ctx.Org.LR[idx] = v.AsVector()
		return nil
	default:
		return Faultf(InvalidOperandType, "destination operand %d is not writable (%v)", destIdx, op.Source)
	}
}

// scalarAndType extracts the scalar molecule word and its type from a
// resolved operand, failing if the operand unexpectedly holds a vector.
func scalarAndType(v organism.Value) (molecule.Word, *Fault) {
	if v.IsVector() {
		return 0, Faultf(InvalidOperandType, "expected a scalar operand, got a vector")
	}
	return v.AsScalar(), nil
}

// binaryOperandTypes resolves the result type for a two-scalar-operand
// instruction under STRICT_TYPING: if strict, mismatched types fault
// TypeMismatchStrict; otherwise the result inherits the first operand's
// type (spec §4.4 arithmetic family).
func binaryOperandTypes(ctx *Context, a, b molecule.Word) (molecule.Type, *Fault) {
	ta, tb := a.Type(), b.Type()
	if ctx.StrictTyping && ta != tb {
		return 0, Faultf(TypeMismatchStrict, "types must match: %s vs %s", ta, tb)
	}
	return ta, nil
}

// skipFollowingInstruction advances past ctx's own instruction, then past
// the one immediately following it, leaving SkipIPAdvance set so the VM's
// normal post-execute advance is suppressed (spec §4.4: "every condition
// that evaluates false calls skip_next_instruction").
func skipFollowingInstruction(ctx *Context) {
	ownLen := 1
	if ctx.Descriptor != nil {
		ownLen = ctx.Descriptor.Length(ctx.Env.Dims())
	}
	ip := ctx.Org.IP
	for i := 0; i < ownLen; i++ {
		ip = ctx.Env.NextPosition(ip, ctx.Org.DV)
	}
	ctx.Org.IP = ip
	ctx.Org.SkipNextInstruction(ctx.Env, LengthAt)
}

// requireUnitVector validates that c is a unit vector (exactly one nonzero
// component, magnitude 1) per spec §4.4's "unit-vector input MUST be
// validated".
func requireUnitVector(c environment.Coord) (axis int, sign int32, fault *Fault) {
	if !c.IsUnitVector() {
		return 0, 0, &Fault{Code: UnitVectorRequired, Reason: "expected a unit vector"}
	}
	ax, val := c.Axis()
	return ax, val, nil
}

// popcountValue returns the number of set bits in the low VALUE_BITS of w.
func popcountValue(w molecule.Word) int {
	mask := uint32(1)<<molecule.ValueBits - 1
	return bits.OnesCount32(uint32(w) & mask)
}
