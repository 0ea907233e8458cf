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
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

const (
	OpAnd Opcode = 3000 + iota
	OpOr
	OpXor
	OpNad
	OpNor
	OpEqu
	OpAdn
	OpOrn
	OpNot
	OpShl
	OpShr
	OpBitRot
	OpPcn
	OpBsn
)

// valueBitsMask masks a value to the low VALUE_BITS bits, the domain every
// bitwise opcode operates within.
const valueBitsMask = int32(1)<<molecule.ValueBits - 1

func init() {
	registerBitwiseBinary(OpAnd, "AND", func(a, b int32) int32 { return a & b })
	registerBitwiseBinary(OpOr, "OR", func(a, b int32) int32 { return a | b })
	registerBitwiseBinary(OpXor, "XOR", func(a, b int32) int32 { return a ^ b })
	registerBitwiseBinary(OpNad, "NAD", func(a, b int32) int32 { return ^(a & b) & valueBitsMask })
	registerBitwiseBinary(OpNor, "NOR", func(a, b int32) int32 { return ^(a | b) & valueBitsMask })
	registerBitwiseBinary(OpEqu, "EQU", func(a, b int32) int32 { return ^(a ^ b) & valueBitsMask })
	registerBitwiseBinary(OpAdn, "ADN", func(a, b int32) int32 { return a &^ b })
	registerBitwiseBinary(OpOrn, "ORN", func(a, b int32) int32 { return a | (^b & valueBitsMask) })

	register(OpNot, Descriptor{
		Family: FamilyBitwise, Mnemonic: "NOT",
		Operands: []OperandSource{REGISTER},
		Execute: func(ctx *Context) *Fault {
			w, f := scalarAndType(ctx.Operand(0).Value)
			if f != nil {
				return f
			}
			result := ^w.Scalar() & valueBitsMask
			return writeTo(ctx, 0, organism.ScalarValue(molecule.Pack(w.Type(), result, w.Marker())))
		},
	})

	register(OpShl, Descriptor{
		Family: FamilyBitwise, Mnemonic: "SHL",
		Operands: []OperandSource{REGISTER, REGISTER},
		Execute:  shiftExecute(func(v int32, n uint) int32 { return (v << n) & valueBitsMask }),
	})
	register(OpShr, Descriptor{
		Family: FamilyBitwise, Mnemonic: "SHR",
		Operands: []OperandSource{REGISTER, REGISTER},
		Execute:  shiftExecute(func(v int32, n uint) int32 { return v >> n }),
	})
	register(OpBitRot, Descriptor{
		Family: FamilyBitwise, Mnemonic: "ROT",
		Operands: []OperandSource{REGISTER, REGISTER},
		Execute: shiftExecute(func(v int32, n uint) int32 {
			bits := uint(molecule.ValueBits)
			n %= bits
			uv := uint32(v) & uint32(valueBitsMask)
			rotated := (uv<<n | uv>>(bits-n)) & uint32(valueBitsMask)
			return int32(rotated)
		}),
	})

	register(OpPcn, Descriptor{
		Family: FamilyBitwise, Mnemonic: "PCN",
		Operands: []OperandSource{REGISTER},
		Execute: func(ctx *Context) *Fault {
			w, f := scalarAndType(ctx.Operand(0).Value)
			if f != nil {
				return f
			}
			count := popcountValue(w)
			return writeTo(ctx, 0, organism.ScalarValue(molecule.Pack(w.Type(), int32(count), w.Marker())))
		},
	})

	register(OpBsn, Descriptor{
		Family: FamilyBitwise, Mnemonic: "BSN",
		Operands: []OperandSource{REGISTER, REGISTER},
		Execute: func(ctx *Context) *Fault {
			w, f := scalarAndType(ctx.Operand(0).Value)
			if f != nil {
				return f
			}
			nw, f := scalarAndType(ctx.Operand(1).Value)
			if f != nil {
				return f
			}
			n := nw.Scalar()
			mask, ok := nthSetBitMask(w.Scalar(), n)
			if !ok {
				return Faultf(InvalidOperandType, "no %d-th set bit", n)
			}
			return writeTo(ctx, 0, organism.ScalarValue(molecule.Pack(w.Type(), mask, w.Marker())))
		},
	})
}

func registerBitwiseBinary(op Opcode, mnemonic string, fn func(a, b int32) int32) {
	register(op, Descriptor{
		Family: FamilyBitwise, Mnemonic: mnemonic,
		Operands: []OperandSource{REGISTER, REGISTER},
		Execute: func(ctx *Context) *Fault {
			aw, f := scalarAndType(ctx.Operand(0).Value)
			if f != nil {
				return f
			}
			bw, f := scalarAndType(ctx.Operand(1).Value)
			if f != nil {
				return f
			}
			resultType, f := binaryOperandTypes(ctx, aw, bw)
			if f != nil {
				return f
			}
			result := fn(aw.Scalar(), bw.Scalar())
			return writeTo(ctx, 0, organism.ScalarValue(molecule.Pack(resultType, result, aw.Marker())))
		},
	})
}

// shiftExecute builds a SHL/SHR/ROT executor: operand 1 (the shift amount)
// MUST be of type DATA (spec §4.4).
func shiftExecute(fn func(v int32, n uint) int32) func(ctx *Context) *Fault {
	return func(ctx *Context) *Fault {
		w, f := scalarAndType(ctx.Operand(0).Value)
		if f != nil {
			return f
		}
		nw, f := scalarAndType(ctx.Operand(1).Value)
		if f != nil {
			return f
		}
		if nw.Type() != molecule.DATA {
			return Faultf(InvalidOperandType, "shift amount must be of type DATA, got %s", nw.Type())
		}
		n := uint(((nw.Scalar() % int32(molecule.ValueBits)) + int32(molecule.ValueBits)) % int32(molecule.ValueBits))
		result := fn(w.Scalar(), n)
		return writeTo(ctx, 0, organism.ScalarValue(molecule.Pack(w.Type(), result&valueBitsMask, w.Marker())))
	}
}

// nthSetBitMask returns a one-hot mask of the n-th set bit of w's low
// VALUE_BITS bits: LSB->MSB for n>0, MSB->LSB for n<0 (spec §4.4 BSN). ok
// is false for n==0 or when w has fewer than |n| set bits.
func nthSetBitMask(w int32, n int32) (int32, bool) {
	if n == 0 {
		return 0, false
	}
	uv := uint32(w) & uint32(valueBitsMask)
	count := int32(0)
	if n > 0 {
		for i := 0; i < molecule.ValueBits; i++ {
			if uv&(1<<uint(i)) != 0 {
				count++
				if count == n {
					return int32(1) << uint(i), true
				}
			}
		}
		return 0, false
	}
	for i := molecule.ValueBits - 1; i >= 0; i-- {
		if uv&(1<<uint(i)) != 0 {
			count--
			if count == n {
				return int32(1) << uint(i), true
			}
		}
	}
	return 0, false
}
