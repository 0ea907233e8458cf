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

// Location family instructions manipulate the per-organism location stack
// and location registers; SKJ performs a fuzzy seek-jump that relocates
// the active data pointer instead of the instruction pointer (spec §4.4).
package isa

import "github.com/evochora/evochora-sub007/organism"

const (
	OpLpush Opcode = 8000 + iota
	OpLpop
	OpLset
	OpLget
	OpSkj
)

func init() {
	register(OpLpush, Descriptor{
		Family: FamilyLocation, Mnemonic: "LPUSH",
		Execute: func(ctx *Context) *Fault {
			ctx.Org.PushLocation(ctx.Org.ActiveDP())
			return nil
		},
	})

	register(OpLpop, Descriptor{
		Family: FamilyLocation, Mnemonic: "LPOP",
		Operands: []OperandSource{LOCATION_REGISTER},
		Execute: func(ctx *Context) *Fault {
			c, err := ctx.Org.PopLocation()
			if err != nil {
				return Faultf(StackUnderflow, "%v", err)
			}
			return writeTo(ctx, 0, organism.VectorValue(c))
		},
	})

	register(OpLset, Descriptor{
		Family: FamilyLocation, Mnemonic: "LSET",
		Operands: []OperandSource{LOCATION_REGISTER, VECTOR},
		Execute: func(ctx *Context) *Fault {
			v := ctx.Operand(1).Value
			if !v.IsVector() {
				return Faultf(InvalidOperandType, "LSET source must be a vector")
			}
			return writeTo(ctx, 0, v)
		},
	})

	register(OpLget, Descriptor{
		Family: FamilyLocation, Mnemonic: "LGET",
		Operands: []OperandSource{REGISTER, LOCATION_REGISTER},
		Execute: func(ctx *Context) *Fault {
			v := ctx.Operand(1).Value
			if !v.IsVector() {
				return Faultf(InvalidLR, "location register did not resolve to a vector")
			}
			return writeTo(ctx, 0, v)
		},
	})

	register(OpSkj, Descriptor{
		Family: FamilyLocation, Mnemonic: "SKJ",
		Operands: []OperandSource{LABEL},
		Execute: func(ctx *Context) *Fault {
			hash := hashOf(ctx.Operand(0).Value)
			coord, ok := ctx.LabelResolve(hash, ctx.Org.ActiveDP(), ctx.Org.ID)
			if !ok {
				return &Fault{Code: InvalidLabelHash, Reason: "no matching label within tolerance"}
			}
			owner, err := ctx.Env.GetOwner(coord)
			if err != nil {
				return Faultf(OutOfBounds, "%v", err)
			}
			if owner != 0 && owner != ctx.Org.ID {
				return Faultf(InvalidLabelHash, "seek-jump target is foreign")
			}
			ctx.Org.SetActiveDP(coord)
			return nil
		},
	})
}
