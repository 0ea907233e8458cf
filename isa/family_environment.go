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

// PEEK/POKE/PPK are the only instructions that may mutate a cell other
// than the organism's own IP-adjacent code (spec §4.4): targets are
// `active_DP + unit_vector_operand`, validated, and resolved through the
// conflict resolver before Execute runs.
package isa

import (
	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

const (
	OpPeek Opcode = 6000 + iota
	OpPoke
	OpPpk
)

func targetFrom(ctx *Context, vecOperandIdx int) (environment.Coord, *Fault) {
	v := ctx.Operand(vecOperandIdx).Value
	if !v.IsVector() {
		return environment.Coord{}, &Fault{Code: UnitVectorRequired, Reason: "operand must be a unit vector"}
	}
	if _, _, f := requireUnitVector(v.AsVector()); f != nil {
		return environment.Coord{}, f
	}
	return ctx.Env.NextPosition(ctx.Org.ActiveDP(), v.AsVector()), nil
}

// isLoser reports whether the conflict resolver already decided this
// instruction must be a no-op (spec §4.7: "losers MUST be no-ops but still
// incur base energy cost").
func isLoser(ctx *Context) bool {
	return ctx.Status == LostConflict || ctx.Status == LostTargetOccupied
}

func init() {
	register(OpPeek, Descriptor{
		Family: FamilyEnvironment, Mnemonic: "PEEK",
		Operands: []OperandSource{REGISTER, VECTOR},
		Targets: func(ctx *Context) []environment.Coord {
			t, f := targetFrom(ctx, 1)
			if f != nil {
				return nil
			}
			return []environment.Coord{t}
		},
		Execute: func(ctx *Context) *Fault {
			if isLoser(ctx) {
				return nil
			}
			target, f := targetFrom(ctx, 1)
			if f != nil {
				return f
			}
			m, err := ctx.Env.Get(target)
			if err != nil {
				return Faultf(OutOfBounds, "%v", err)
			}
			if err := ctx.Env.Set(target, molecule.Empty, 0); err != nil {
				return Faultf(OutOfBounds, "%v", err)
			}
			return writeTo(ctx, 0, organism.ScalarValue(m))
		},
	})

	register(OpPoke, Descriptor{
		Family: FamilyEnvironment, Mnemonic: "POKE",
		Operands: []OperandSource{REGISTER, VECTOR},
		Targets: func(ctx *Context) []environment.Coord {
			t, f := targetFrom(ctx, 1)
			if f != nil {
				return nil
			}
			return []environment.Coord{t}
		},
		Execute: func(ctx *Context) *Fault {
			if isLoser(ctx) {
				return nil
			}
			value := ctx.Operand(0).Value
			if value.IsVector() {
				return Faultf(InvalidOperandType, "POKE cannot write a vector")
			}
			target, f := targetFrom(ctx, 1)
			if f != nil {
				return f
			}
			return pokeCell(ctx, target, value.AsScalar())
		},
	})

	register(OpPpk, Descriptor{
		Family: FamilyEnvironment, Mnemonic: "PPK",
		Operands: []OperandSource{VECTOR, VECTOR},
		Targets: func(ctx *Context) []environment.Coord {
			src, f1 := targetFrom(ctx, 0)
			dst, f2 := targetFrom(ctx, 1)
			if f1 != nil || f2 != nil {
				return nil
			}
			return []environment.Coord{src, dst}
		},
		Execute: func(ctx *Context) *Fault {
			if isLoser(ctx) {
				return nil
			}
			src, f := targetFrom(ctx, 0)
			if f != nil {
				return f
			}
			dst, f := targetFrom(ctx, 1)
			if f != nil {
				return f
			}
			dstM, err := ctx.Env.Get(dst)
			if err != nil {
				return Faultf(OutOfBounds, "%v", err)
			}
			if !dstM.IsEmpty() {
				return Faultf(CellOccupied, "PPK target is occupied")
			}
			srcM, err := ctx.Env.Get(src)
			if err != nil {
				return Faultf(OutOfBounds, "%v", err)
			}
			if err := ctx.Env.Set(src, molecule.Empty, 0); err != nil {
				return Faultf(OutOfBounds, "%v", err)
			}
			return pokeCell(ctx, dst, srcM)
		},
	})
}

// pokeCell writes value into target, failing CellOccupied if target is
// non-empty. An empty write (CODE:0) clears ownership; any other write
// inherits the organism's marker register (spec §4.4).
func pokeCell(ctx *Context, target environment.Coord, value molecule.Word) *Fault {
	existing, err := ctx.Env.Get(target)
	if err != nil {
		return Faultf(OutOfBounds, "%v", err)
	}
	if !existing.IsEmpty() {
		return Faultf(CellOccupied, "target cell is occupied")
	}
	if value.IsEmpty() {
		if err := ctx.Env.Set(target, value, 0); err != nil {
			return Faultf(OutOfBounds, "%v", err)
		}
		return nil
	}
	written := value.WithMarker(ctx.Org.MR)
	if err := ctx.Env.Set(target, written, ctx.Org.ID); err != nil {
		return Faultf(OutOfBounds, "%v", err)
	}
	return nil
}
