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
	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

const (
	OpJmpi Opcode = 7000 + iota
	OpJmpr
	OpJmps
	OpCall
	OpRet
)

func init() {
	register(OpJmpi, Descriptor{
		Family: FamilyControlFlow, Mnemonic: "JMPI",
		Operands: []OperandSource{LABEL},
		Execute: func(ctx *Context) *Fault {
			return jumpTo(ctx, hashOf(ctx.Operand(0).Value))
		},
	})
	register(OpJmpr, Descriptor{
		Family: FamilyControlFlow, Mnemonic: "JMPR",
		Operands: []OperandSource{REGISTER},
		Execute: func(ctx *Context) *Fault {
			return jumpTo(ctx, hashOf(ctx.Operand(0).Value))
		},
	})
	register(OpJmps, Descriptor{
		Family: FamilyControlFlow, Mnemonic: "JMPS",
		Operands: []OperandSource{STACK},
		Execute: func(ctx *Context) *Fault {
			return jumpTo(ctx, hashOf(ctx.Operand(0).Value))
		},
	})

	register(OpCall, Descriptor{
		Family: FamilyControlFlow, Mnemonic: "CALL",
		Operands: []OperandSource{LABEL},
		Execute: func(ctx *Context) *Fault {
			hash := hashOf(ctx.Operand(0).Value)
			coord, ok := ctx.LabelResolve(hash, ctx.Org.IP, ctx.Org.ID)
			if !ok {
				return &Fault{Code: InvalidLabelHash, Reason: "no matching label within tolerance"}
			}
			ownLen := 1
			if ctx.Descriptor != nil {
				ownLen = ctx.Descriptor.Length(ctx.Env.Dims())
			}
			returnIP := ctx.Org.IP
			for i := 0; i < ownLen; i++ {
				returnIP = ctx.Env.NextPosition(returnIP, ctx.Org.DV)
			}
			ctx.Org.PushCall(organism.Frame{
				ReturnIP: returnIP,
				CallIP:   ctx.Org.IP,
				SavedPR:  append([]environment.Coord{}, ctx.Org.PR...),
				SavedFPR: append([]molecule.Word{}, ctx.Org.FPR...),
			})
			return enterLabel(ctx, coord)
		},
	})

	register(OpRet, Descriptor{
		Family: FamilyControlFlow, Mnemonic: "RET",
		Execute: func(ctx *Context) *Fault {
			frame, err := ctx.Org.PopCall()
			if err != nil {
				return Faultf(StackUnderflow, "%v", err)
			}
			ctx.Org.PR = frame.SavedPR
			ctx.Org.FPR = frame.SavedFPR
			ctx.Org.IP = frame.ReturnIP
			ctx.Org.SkipIPAdvance = true
			return nil
		},
	})
}

func hashOf(v organism.Value) uint32 {
	return uint32(v.AsScalar().Scalar())
}

// jumpTo resolves hash to a label coordinate and positions the IP at the
// first code molecule following it along DV (spec §4.4: "the IP is set to
// the first code molecule following the LABEL molecule along DV").
func jumpTo(ctx *Context, hash uint32) *Fault {
	coord, ok := ctx.LabelResolve(hash, ctx.Org.IP, ctx.Org.ID)
	if !ok {
		return &Fault{Code: InvalidLabelHash, Reason: "no matching label within tolerance"}
	}
	return enterLabel(ctx, coord)
}

func enterLabel(ctx *Context, labelCoord environment.Coord) *Fault {
	next := ctx.Env.NextPosition(labelCoord, ctx.Org.DV)
	ctx.Org.IP = next
	ctx.Org.SkipIPAdvance = true
	return nil
}
