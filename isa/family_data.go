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

// Data and Stack families share a family id per spec §4.4: SET/PUSH/POP
// move values between registers, immediates, vectors and the data stack;
// DUP/SWAP/DROP/ROT rearrange the top of the data stack in place.
package isa

const (
	OpSetRR Opcode = 1000 + iota
	OpSetRI
	OpSetRV
	OpPushR
	OpPushI
	OpPushV
	OpPopR
	OpDup
	OpSwap
	OpDrop
	OpRot
)

func init() {
	register(OpSetRR, Descriptor{
		Family: FamilyData, OpcodeID: 0, Variant: "RR", Mnemonic: "SET",
		Operands: []OperandSource{REGISTER, REGISTER},
		Execute: func(ctx *Context) *Fault {
			return writeTo(ctx, 0, ctx.Operand(1).Value)
		},
	})
	register(OpSetRI, Descriptor{
		Family: FamilyData, OpcodeID: 0, Variant: "RI", Mnemonic: "SET",
		Operands: []OperandSource{REGISTER, IMMEDIATE},
		Execute: func(ctx *Context) *Fault {
			return writeTo(ctx, 0, ctx.Operand(1).Value)
		},
	})
	register(OpSetRV, Descriptor{
		Family: FamilyData, OpcodeID: 0, Variant: "RV", Mnemonic: "SET",
		Operands: []OperandSource{REGISTER, VECTOR},
		Execute: func(ctx *Context) *Fault {
			return writeTo(ctx, 0, ctx.Operand(1).Value)
		},
	})

	register(OpPushR, Descriptor{
		Family: FamilyData, OpcodeID: 1, Variant: "R", Mnemonic: "PUSH",
		Operands: []OperandSource{REGISTER},
		Execute: func(ctx *Context) *Fault { return pushOperand(ctx, 0) },
	})
	register(OpPushI, Descriptor{
		Family: FamilyData, OpcodeID: 1, Variant: "I", Mnemonic: "PUSH",
		Operands: []OperandSource{IMMEDIATE},
		Execute: func(ctx *Context) *Fault { return pushOperand(ctx, 0) },
	})
	register(OpPushV, Descriptor{
		Family: FamilyData, OpcodeID: 1, Variant: "V", Mnemonic: "PUSH",
		Operands: []OperandSource{VECTOR},
		Execute: func(ctx *Context) *Fault { return pushOperand(ctx, 0) },
	})

	register(OpPopR, Descriptor{
		Family: FamilyData, OpcodeID: 2, Variant: "R", Mnemonic: "POP",
		Operands: []OperandSource{REGISTER},
		Execute: func(ctx *Context) *Fault {
			v, err := ctx.Org.PopData()
			if err != nil {
				return Faultf(StackUnderflow, "%v", err)
			}
			return writeTo(ctx, 0, v)
		},
	})

	register(OpDup, Descriptor{
		Family: FamilyData, OpcodeID: 3, Mnemonic: "DUP",
		Execute: func(ctx *Context) *Fault {
			v, err := ctx.Org.PeekData(0)
			if err != nil {
				return Faultf(StackUnderflow, "%v", err)
			}
			if err := ctx.Org.PushData(v); err != nil {
				return Faultf(StackOverflow, "%v", err)
			}
			return nil
		},
	})
	register(OpSwap, Descriptor{
		Family: FamilyData, OpcodeID: 4, Mnemonic: "SWAP",
		Execute: func(ctx *Context) *Fault {
			a, err := ctx.Org.PopData()
			if err != nil {
				return Faultf(StackUnderflow, "%v", err)
			}
			b, err := ctx.Org.PopData()
			if err != nil {
				ctx.Org.PushData(a)
				return Faultf(StackUnderflow, "%v", err)
			}
			ctx.Org.PushData(a)
			ctx.Org.PushData(b)
			return nil
		},
	})
	register(OpDrop, Descriptor{
		Family: FamilyData, OpcodeID: 5, Mnemonic: "DROP",
		Execute: func(ctx *Context) *Fault {
			if _, err := ctx.Org.PopData(); err != nil {
				return Faultf(StackUnderflow, "%v", err)
			}
			return nil
		},
	})
	register(OpRot, Descriptor{
		Family: FamilyData, OpcodeID: 6, Mnemonic: "ROT",
		Execute: func(ctx *Context) *Fault {
			// [A,B,C] -> [B,C,A]; top of stack is C (index 0 from the top).
			c, err := ctx.Org.PopData()
			if err != nil {
				return Faultf(StackUnderflow, "%v", err)
			}
			b, err := ctx.Org.PopData()
			if err != nil {
				ctx.Org.PushData(c)
				return Faultf(StackUnderflow, "%v", err)
			}
			a, err := ctx.Org.PopData()
			if err != nil {
				ctx.Org.PushData(b)
				ctx.Org.PushData(c)
				return Faultf(StackUnderflow, "%v", err)
			}
			ctx.Org.PushData(b)
			ctx.Org.PushData(c)
			ctx.Org.PushData(a)
			return nil
		},
	})
}

func pushOperand(ctx *Context, idx int) *Fault {
	v := ctx.Operand(idx).Value
	if !v.Valid() {
		return Faultf(InvalidOperandType, "cannot push a null value")
	}
	if err := ctx.Org.PushData(v); err != nil {
		return Faultf(StackOverflow, "%v", err)
	}
	return nil
}
