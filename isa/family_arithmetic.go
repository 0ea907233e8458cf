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

// ADD/SUB/MUL/DIV/MOD each come in three operand-pattern variants: RR
// (register op= register), RI (register op= immediate), and SS (pop two
// from the data stack, push the result). All arithmetic acts on the
// VALUE_BITS signed-scalar view of a molecule (spec §4.4).
package isa

import (
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

const (
	OpAddRR Opcode = 2000 + iota
	OpAddRI
	OpAddSS
	OpSubRR
	OpSubRI
	OpSubSS
	OpMulRR
	OpMulRI
	OpMulSS
	OpDivRR
	OpDivRI
	OpDivSS
	OpModRR
	OpModRI
	OpModSS
)

type combineFn func(a, b int32) (int32, *Fault)

func addFn(a, b int32) (int32, *Fault) { return a + b, nil }
func subFn(a, b int32) (int32, *Fault) { return a - b, nil }
func mulFn(a, b int32) (int32, *Fault) { return a * b, nil }

func divFn(a, b int32) (int32, *Fault) {
	if b == 0 {
		return 0, &Fault{Code: DivideByZero, Reason: "division by zero"}
	}
	return a / b, nil
}

func modFn(a, b int32) (int32, *Fault) {
	if b == 0 {
		return 0, &Fault{Code: DivideByZero, Reason: "modulo by zero"}
	}
	return a % b, nil
}

func init() {
	registerArithmeticTrio(OpAddRR, "ADD", addFn)
	registerArithmeticTrio(OpSubRR, "SUB", subFn)
	registerArithmeticTrio(OpMulRR, "MUL", mulFn)
	registerArithmeticTrio(OpDivRR, "DIV", divFn)
	registerArithmeticTrio(OpModRR, "MOD", modFn)
}

// registerArithmeticTrio installs the RR/RI/SS variants of one arithmetic
// mnemonic starting at base (base=RR, base+1=RI, base+2=SS).
func registerArithmeticTrio(base Opcode, mnemonic string, fn combineFn) {
	register(base, Descriptor{
		Family: FamilyArithmetic, Variant: "RR", Mnemonic: mnemonic,
		Operands: []OperandSource{REGISTER, REGISTER},
		Execute:  arithmeticRegisterExecute(fn),
	})
	register(base+1, Descriptor{
		Family: FamilyArithmetic, Variant: "RI", Mnemonic: mnemonic,
		Operands: []OperandSource{REGISTER, IMMEDIATE},
		Execute:  arithmeticRegisterExecute(fn),
	})
	register(base+2, Descriptor{
		Family: FamilyArithmetic, Variant: "SS", Mnemonic: mnemonic,
		Operands: []OperandSource{STACK, STACK},
		Execute:  arithmeticStackExecute(fn),
	})
}

func arithmeticRegisterExecute(fn combineFn) func(ctx *Context) *Fault {
	return func(ctx *Context) *Fault {
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
		result, f := fn(aw.Scalar(), bw.Scalar())
		if f != nil {
			return f
		}
		return writeTo(ctx, 0, organism.ScalarValue(molecule.Pack(resultType, result, aw.Marker())))
	}
}

func arithmeticStackExecute(fn combineFn) func(ctx *Context) *Fault {
	return func(ctx *Context) *Fault {
		top, f := scalarAndType(ctx.Operand(0).Value)
		if f != nil {
			return f
		}
		next, f := scalarAndType(ctx.Operand(1).Value)
		if f != nil {
			return f
		}
		resultType, f := binaryOperandTypes(ctx, top, next)
		if f != nil {
			return f
		}
		result, f := fn(top.Scalar(), next.Scalar())
		if f != nil {
			return f
		}
		v := organism.ScalarValue(molecule.Pack(resultType, result, top.Marker()))
		if err := ctx.Org.PushData(v); err != nil {
			return Faultf(StackOverflow, "%v", err)
		}
		return nil
	}
}
