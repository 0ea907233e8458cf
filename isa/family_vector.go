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
	OpVgt Opcode = 5000 + iota
	OpVst
	OpVbld
	OpVbls
	OpB2v
	OpV2b
	OpRtr
)

func init() {
	register(OpVgt, Descriptor{
		Family: FamilyVector, Mnemonic: "VGT",
		Operands: []OperandSource{REGISTER, REGISTER, REGISTER},
		Execute: func(ctx *Context) *Fault {
			src := ctx.Operand(1).Value
			if !src.IsVector() {
				return Faultf(InvalidOperandType, "VGT source must be a vector")
			}
			idxW, f := scalarAndType(ctx.Operand(2).Value)
			if f != nil {
				return f
			}
			idx := int(idxW.Scalar())
			vec := src.AsVector()
			if idx < 0 || idx >= vec.Dims() {
				return Faultf(AxisOutOfBounds, "component index %d out of range", idx)
			}
			return writeTo(ctx, 0, organism.ScalarValue(molecule.Pack(molecule.DATA, vec.At(idx), 0)))
		},
	})

	register(OpVst, Descriptor{
		Family: FamilyVector, Mnemonic: "VST",
		Operands: []OperandSource{REGISTER, REGISTER, REGISTER},
		Execute: func(ctx *Context) *Fault {
			dst := ctx.Operand(0).Value
			if !dst.IsVector() {
				return Faultf(InvalidOperandType, "VST destination must be a vector")
			}
			idxW, f := scalarAndType(ctx.Operand(1).Value)
			if f != nil {
				return f
			}
			valW, f := scalarAndType(ctx.Operand(2).Value)
			if f != nil {
				return f
			}
			idx := int(idxW.Scalar())
			vec := dst.AsVector()
			if idx < 0 || idx >= vec.Dims() {
				return Faultf(AxisOutOfBounds, "component index %d out of range", idx)
			}
			updated := vec.Set(idx, valW.Scalar())
			return writeTo(ctx, 0, organism.VectorValue(updated))
		},
	})

	register(OpVbld, Descriptor{
		Family: FamilyVector, Mnemonic: "VBLD",
		Operands: []OperandSource{REGISTER},
		// VBLD pops ctx.Env.Dims() scalars directly rather than declaring
		// that many STACK operands, since the operand count depends on
		// the environment's dimensionality, not the opcode.
		Execute: func(ctx *Context) *Fault {
			vec, f := buildVectorFromStack(ctx)
			if f != nil {
				return f
			}
			return writeTo(ctx, 0, organism.VectorValue(vec))
		},
	})
	register(OpVbls, Descriptor{
		Family: FamilyVector, Mnemonic: "VBLS",
		Execute: func(ctx *Context) *Fault {
			vec, f := buildVectorFromStack(ctx)
			if f != nil {
				return f
			}
			if err := ctx.Org.PushData(organism.VectorValue(vec)); err != nil {
				return Faultf(StackOverflow, "%v", err)
			}
			return nil
		},
	})

	register(OpB2v, Descriptor{
		Family: FamilyVector, Mnemonic: "B2V",
		Operands: []OperandSource{REGISTER, REGISTER},
		Execute: func(ctx *Context) *Fault {
			w, f := scalarAndType(ctx.Operand(1).Value)
			if f != nil {
				return f
			}
			v := w.Scalar()
			if v == 0 {
				return Faultf(UnitVectorRequired, "direction mask must be nonzero")
			}
			axis := v
			sign := int32(1)
			if axis < 0 {
				axis = -axis
				sign = -1
			}
			axis--
			if axis < 0 || axis >= ctx.Env.Dims() {
				return Faultf(AxisOutOfBounds, "axis %d out of range", axis)
			}
			dv := make([]int32, ctx.Env.Dims())
			dv[axis] = sign
			return writeTo(ctx, 0, organism.VectorValue(environment.NewCoord(dv...)))
		},
	})

	register(OpV2b, Descriptor{
		Family: FamilyVector, Mnemonic: "V2B",
		Operands: []OperandSource{REGISTER, REGISTER},
		Execute: func(ctx *Context) *Fault {
			src := ctx.Operand(1).Value
			if !src.IsVector() {
				return Faultf(InvalidOperandType, "V2B source must be a vector")
			}
			axis, sign, f := requireUnitVector(src.AsVector())
			if f != nil {
				return f
			}
			encoded := int32(axis+1) * sign
			return writeTo(ctx, 0, organism.ScalarValue(molecule.Pack(molecule.DATA, encoded, 0)))
		},
	})

	register(OpRtr, Descriptor{
		Family: FamilyVector, Mnemonic: "RTR",
		Operands: []OperandSource{REGISTER, REGISTER, REGISTER},
		Execute: func(ctx *Context) *Fault {
			dst := ctx.Operand(0).Value
			if !dst.IsVector() {
				return Faultf(InvalidOperandType, "RTR operand must be a vector")
			}
			iw, f := scalarAndType(ctx.Operand(1).Value)
			if f != nil {
				return f
			}
			jw, f := scalarAndType(ctx.Operand(2).Value)
			if f != nil {
				return f
			}
			i, j := int(iw.Scalar()), int(jw.Scalar())
			vec := dst.AsVector()
			if i < 0 || i >= vec.Dims() || j < 0 || j >= vec.Dims() {
				return Faultf(AxisOutOfBounds, "axes %d,%d out of range", i, j)
			}
			if i == j {
				return Faultf(AxesNotDistinct, "axes must be distinct")
			}
			vi, vj := vec.At(i), vec.At(j)
			updated := vec.Set(i, vj).Set(j, -vi)
			return writeTo(ctx, 0, organism.VectorValue(updated))
		},
	})
}

func buildVectorFromStack(ctx *Context) (environment.Coord, *Fault) {
	dims := ctx.Env.Dims()
	vals := make([]int32, dims)
	for i := 0; i < dims; i++ {
		v, err := ctx.Org.PopData()
		if err != nil {
			return environment.Coord{}, Faultf(StackUnderflow, "%v", err)
		}
		if v.IsVector() {
			return environment.Coord{}, Faultf(InvalidOperandType, "VBLD expects scalars on the stack")
		}
		vals[i] = v.AsScalar().Scalar()
	}
	return environment.NewCoord(vals...), nil
}
