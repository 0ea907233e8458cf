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

// Conditionals never branch by jumping; a false evaluation instead skips
// the following instruction whole (spec §4.4: "the following instruction
// is skipped, not executed-with-no-effect").
package isa

const (
	OpIfEq Opcode = 4000 + iota
	OpIfNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpIfType
	OpInType
	OpIfMine
	OpInMine
	OpIfPassable
	OpInPassable
	OpIfForeign
	OpInForeign
	OpIfVacant
	OpInVacant
	OpIfErr
	OpInErr
)

type predicate func(ctx *Context) (bool, *Fault)

func condExecute(p predicate) func(ctx *Context) *Fault {
	return func(ctx *Context) *Fault {
		ok, f := p(ctx)
		if f != nil {
			return f
		}
		if !ok {
			skipFollowingInstruction(ctx)
		}
		return nil
	}
}

func negate(p predicate) predicate {
	return func(ctx *Context) (bool, *Fault) {
		ok, f := p(ctx)
		if f != nil {
			return false, f
		}
		return !ok, nil
	}
}

func twoScalar(ctx *Context) (a, b int32, fault *Fault) {
	aw, f := scalarAndType(ctx.Operand(0).Value)
	if f != nil {
		return 0, 0, f
	}
	bw, f := scalarAndType(ctx.Operand(1).Value)
	if f != nil {
		return 0, 0, f
	}
	return aw.Scalar(), bw.Scalar(), nil
}

func init() {
	register(OpIfEq, Descriptor{
		Family: FamilyConditional, Mnemonic: "IF", Operands: []OperandSource{REGISTER, REGISTER},
		Execute: condExecute(func(ctx *Context) (bool, *Fault) {
			a, b, f := twoScalar(ctx)
			return a == b, f
		}),
	})
	register(OpIfNe, Descriptor{
		Family: FamilyConditional, Mnemonic: "IN", Operands: []OperandSource{REGISTER, REGISTER},
		Execute: condExecute(func(ctx *Context) (bool, *Fault) {
			a, b, f := twoScalar(ctx)
			return a != b, f
		}),
	})
	register(OpLt, Descriptor{
		Family: FamilyConditional, Mnemonic: "LT", Operands: []OperandSource{REGISTER, REGISTER},
		Execute: condExecute(func(ctx *Context) (bool, *Fault) {
			a, b, f := twoScalar(ctx)
			return a < b, f
		}),
	})
	register(OpGt, Descriptor{
		Family: FamilyConditional, Mnemonic: "GT", Operands: []OperandSource{REGISTER, REGISTER},
		Execute: condExecute(func(ctx *Context) (bool, *Fault) {
			a, b, f := twoScalar(ctx)
			return a > b, f
		}),
	})
	register(OpLe, Descriptor{
		Family: FamilyConditional, Mnemonic: "LE", Operands: []OperandSource{REGISTER, REGISTER},
		Execute: condExecute(func(ctx *Context) (bool, *Fault) {
			a, b, f := twoScalar(ctx)
			return a <= b, f
		}),
	})
	register(OpGe, Descriptor{
		Family: FamilyConditional, Mnemonic: "GE", Operands: []OperandSource{REGISTER, REGISTER},
		Execute: condExecute(func(ctx *Context) (bool, *Fault) {
			a, b, f := twoScalar(ctx)
			return a >= b, f
		}),
	})

	typePredicate := func(ctx *Context) (bool, *Fault) {
		aw, f := scalarAndType(ctx.Operand(0).Value)
		if f != nil {
			return false, f
		}
		bw, f := scalarAndType(ctx.Operand(1).Value)
		if f != nil {
			return false, f
		}
		return aw.Type() == bw.Type(), nil
	}
	register(OpIfType, Descriptor{
		Family: FamilyConditional, Mnemonic: "IFT", Operands: []OperandSource{REGISTER, REGISTER},
		Execute: condExecute(typePredicate),
	})
	register(OpInType, Descriptor{
		Family: FamilyConditional, Mnemonic: "INT", Operands: []OperandSource{REGISTER, REGISTER},
		Execute: condExecute(negate(typePredicate)),
	})

	minePredicate := func(ctx *Context) (bool, *Fault) {
		v := ctx.Operand(0).Value
		if !v.IsVector() {
			return false, &Fault{Code: UnitVectorRequired, Reason: "operand must be a unit vector"}
		}
		_, _, f := requireUnitVector(v.AsVector())
		if f != nil {
			return false, f
		}
		target := ctx.Org.ActiveDP().Add(v.AsVector())
		owner, err := ctx.Env.GetOwner(target)
		if err != nil {
			return false, Faultf(OutOfBounds, "%v", err)
		}
		return owner == ctx.Org.ID, nil
	}
	register(OpIfMine, Descriptor{
		Family: FamilyConditional, Mnemonic: "IFM", Operands: []OperandSource{VECTOR},
		Execute: condExecute(minePredicate),
	})
	register(OpInMine, Descriptor{
		Family: FamilyConditional, Mnemonic: "INM", Operands: []OperandSource{VECTOR},
		Execute: condExecute(negate(minePredicate)),
	})

	passablePredicate := func(ctx *Context) (bool, *Fault) {
		v := ctx.Operand(0).Value
		if !v.IsVector() {
			return false, &Fault{Code: UnitVectorRequired, Reason: "operand must be a unit vector"}
		}
		if _, _, f := requireUnitVector(v.AsVector()); f != nil {
			return false, f
		}
		target := ctx.Org.ActiveDP().Add(v.AsVector())
		m, err := ctx.Env.Get(target)
		if err != nil {
			return false, Faultf(OutOfBounds, "%v", err)
		}
		owner, _ := ctx.Env.GetOwner(target)
		return m.IsEmpty() || owner == ctx.Org.ID, nil
	}
	register(OpIfPassable, Descriptor{
		Family: FamilyConditional, Mnemonic: "IFP", Operands: []OperandSource{VECTOR},
		Execute: condExecute(passablePredicate),
	})
	register(OpInPassable, Descriptor{
		Family: FamilyConditional, Mnemonic: "INP", Operands: []OperandSource{VECTOR},
		Execute: condExecute(negate(passablePredicate)),
	})

	foreignPredicate := func(ctx *Context) (bool, *Fault) {
		v := ctx.Operand(0).Value
		if !v.IsVector() {
			return false, &Fault{Code: UnitVectorRequired, Reason: "operand must be a unit vector"}
		}
		if _, _, f := requireUnitVector(v.AsVector()); f != nil {
			return false, f
		}
		target := ctx.Org.ActiveDP().Add(v.AsVector())
		owner, err := ctx.Env.GetOwner(target)
		if err != nil {
			return false, Faultf(OutOfBounds, "%v", err)
		}
		return owner != 0 && owner != ctx.Org.ID, nil
	}
	register(OpIfForeign, Descriptor{
		Family: FamilyConditional, Mnemonic: "IFF", Operands: []OperandSource{VECTOR},
		Execute: condExecute(foreignPredicate),
	})
	register(OpInForeign, Descriptor{
		Family: FamilyConditional, Mnemonic: "INF", Operands: []OperandSource{VECTOR},
		Execute: condExecute(negate(foreignPredicate)),
	})

	vacantPredicate := func(ctx *Context) (bool, *Fault) {
		v := ctx.Operand(0).Value
		if !v.IsVector() {
			return false, &Fault{Code: UnitVectorRequired, Reason: "operand must be a unit vector"}
		}
		if _, _, f := requireUnitVector(v.AsVector()); f != nil {
			return false, f
		}
		target := ctx.Org.ActiveDP().Add(v.AsVector())
		owner, err := ctx.Env.GetOwner(target)
		if err != nil {
			return false, Faultf(OutOfBounds, "%v", err)
		}
		return owner == 0, nil
	}
	register(OpIfVacant, Descriptor{
		Family: FamilyConditional, Mnemonic: "IFV", Operands: []OperandSource{VECTOR},
		Execute: condExecute(vacantPredicate),
	})
	register(OpInVacant, Descriptor{
		Family: FamilyConditional, Mnemonic: "INV", Operands: []OperandSource{VECTOR},
		Execute: condExecute(negate(vacantPredicate)),
	})

	errPredicate := func(ctx *Context) (bool, *Fault) { return ctx.IFERPrev, nil }
	register(OpIfErr, Descriptor{
		Family: FamilyConditional, Mnemonic: "IFER",
		Execute: condExecute(errPredicate),
	})
	register(OpInErr, Descriptor{
		Family: FamilyConditional, Mnemonic: "INER",
		Execute: condExecute(negate(errPredicate)),
	})
}
