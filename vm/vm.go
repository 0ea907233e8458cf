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

// Package vm implements the per-organism Plan -> Intercept -> Execute
// pipeline (spec §4.5). It owns none of the organism/environment state; it
// only orchestrates reads and writes against them for one instruction at a
// time.
package vm

import (
	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/isa"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

// LabelResolver resolves a 19-bit hash to a coordinate, as implemented by
// package label.
type LabelResolver func(hash uint32, seeking environment.Coord, seekerID organism.ID) (environment.Coord, bool)

// PlannedInstruction is the output of Plan: everything the conflict
// resolver and Execute need, cached so neither re-derives it (spec §4.5
// "operand resolution is idempotent").
type PlannedInstruction struct {
	Org               *organism.Organism
	RegistrationIndex int
	Ctx               *isa.Context

	// Stalled is set when decodeAt landed on a run of NOP/empty cells and
	// Organism.SkipNopCells exhausted MaxSkips without finding a real
	// instruction (spec §7 "stall recovery"). The scheduler charges the
	// extra error-penalty-cost only when this is set, never for an
	// ordinary instruction fault.
	Stalled bool

	// cachedTargets memoizes Descriptor.Targets(Ctx); nil until first
	// queried, matching the "resolver's target query is cached per
	// instruction instance" contract (spec §4.7).
	cachedTargets   []environment.Coord
	targetsResolved bool
}

// Plan reads the opcode at org.IP, resolves its operands, and returns a
// PlannedInstruction. A non-CODE or empty cell runs skip_nop_cells (spec
// §4.4), which may land the organism on a real instruction further along
// DV, or stall it; an unrecognized opcode value produces an UNKNOWN
// placeholder that sets the organism's failure flag (spec §4.5).
func Plan(org *organism.Organism, env *environment.Environment, strictTyping bool, resolve LabelResolver) *PlannedInstruction {
	d, stalled := decodeAt(org, env)
	ctx := &isa.Context{
		Org:          org,
		Env:          env,
		Descriptor:   d,
		StrictTyping: strictTyping,
		IFERPrev:     org.PrevInstructionFailed,
		LabelResolve: func(h uint32, seeking environment.Coord, id organism.ID) (environment.Coord, bool) {
			if resolve == nil {
				return environment.Coord{}, false
			}
			return resolve(h, seeking, id)
		},
	}
	ctx.Operands = resolveOperands(org, env, d)
	return &PlannedInstruction{Org: org, Ctx: ctx, Stalled: stalled}
}

func decodeAt(org *organism.Organism, env *environment.Environment) (*isa.Descriptor, bool) {
	m, err := env.Get(org.IP)
	if err != nil || m.IsEmpty() || m.Type() != molecule.CODE {
		if org.SkipNopCells(env, isa.LengthAt) {
			return stallDescriptor, true
		}
		// SkipNopCells left the IP on a real instruction; re-fetch it
		// there instead of decoding the cell we started on.
		m, err = env.Get(org.IP)
	}
	if err != nil || m.IsEmpty() || m.Type() != molecule.CODE {
		return nopDescriptor, false
	}
	d, ok := isa.Lookup(isa.Opcode(m.Scalar()))
	if !ok {
		org.Fail("Unknown opcode")
		return unknownDescriptor, false
	}
	return d, false
}

var nopDescriptor = &isa.Descriptor{Family: isa.FamilyNOP, Mnemonic: "NOP", Execute: func(*isa.Context) *isa.Fault { return nil }}
var unknownDescriptor = &isa.Descriptor{Family: isa.FamilyNOP, Mnemonic: "UNKNOWN", Execute: func(*isa.Context) *isa.Fault {
	return &isa.Fault{Code: isa.UnknownOpcode, Reason: "Unknown opcode"}
}}

// stallDescriptor is planned in place of a decoded instruction once
// Organism.SkipNopCells has already performed the stall recovery (pop
// frame/reset IP, set the failure flag); its Execute only needs to surface
// the fault so Execute's normal bookkeeping (PrevInstructionFailed,
// FailureReason) stays consistent with what SkipNopCells already set.
var stallDescriptor = &isa.Descriptor{Family: isa.FamilyNOP, Mnemonic: "STALL", Execute: func(*isa.Context) *isa.Fault {
	return &isa.Fault{Code: isa.MaxSkipsExceeded, Reason: "Max skips exceeded"}
}}

// resolveOperands walks d's declared operand sources, consuming grid slots
// along DV starting just after org.IP (spec §4.5). STACK operands instead
// pop from the data stack, in declaration order.
func resolveOperands(org *organism.Organism, env *environment.Environment, d *isa.Descriptor) []isa.ResolvedOperand {
	if d == nil || len(d.Operands) == 0 {
		return nil
	}
	out := make([]isa.ResolvedOperand, 0, len(d.Operands))
	cursor := org.IP
	for _, src := range d.Operands {
		switch src {
		case isa.STACK:
			v, err := org.PopData()
			if err != nil {
				out = append(out, isa.ResolvedOperand{Source: src, RawID: -1})
				continue
			}
			out = append(out, isa.ResolvedOperand{Source: src, RawID: -1, Value: v})
		case isa.VECTOR:
			dims := env.Dims()
			vals := make([]int32, dims)
			for i := 0; i < dims; i++ {
				cursor = env.NextPosition(cursor, org.DV)
				m, _ := env.Get(cursor)
				vals[i] = m.Scalar()
			}
			out = append(out, isa.ResolvedOperand{Source: src, RawID: -1, Value: organism.VectorValue(environment.NewCoord(vals...))})
		case isa.LABEL:
			cursor = env.NextPosition(cursor, org.DV)
			m, _ := env.Get(cursor)
			out = append(out, isa.ResolvedOperand{Source: src, RawID: -1, Value: organism.ScalarValue(m)})
		case isa.IMMEDIATE:
			cursor = env.NextPosition(cursor, org.DV)
			m, _ := env.Get(cursor)
			out = append(out, isa.ResolvedOperand{Source: src, RawID: -1, Value: organism.ScalarValue(m)})
		case isa.REGISTER:
			cursor = env.NextPosition(cursor, org.DV)
			m, _ := env.Get(cursor)
			rawID := m.Scalar()
			v, err := org.ReadRegister(rawID)
			if err != nil {
				out = append(out, isa.ResolvedOperand{Source: src, RawID: rawID})
				continue
			}
			out = append(out, isa.ResolvedOperand{Source: src, RawID: rawID, Value: v})
		case isa.LOCATION_REGISTER:
			cursor = env.NextPosition(cursor, org.DV)
			m, _ := env.Get(cursor)
			idx := m.Scalar()
			var v organism.Value
			if idx >= 0 && int(idx) < len(org.LR) {
				v = organism.VectorValue(org.LR[idx])
			}
			out = append(out, isa.ResolvedOperand{Source: src, RawID: idx, Value: v})
		}
	}
	return out
}

// Interceptor may replace the planned descriptor (subsequent interceptors
// see the replacement) or mutate pi.Ctx.Operands in place.
type Interceptor func(pi *PlannedInstruction)

// Intercept runs chain in registration order, recovering from any panic so
// a single misbehaving interceptor cannot abort the tick (spec §4.5:
// "Exceptions from interceptors MUST be caught, logged, and not abort the
// tick").
func Intercept(pi *PlannedInstruction, chain []Interceptor, onPanic func(recovered any)) {
	for _, ic := range chain {
		func() {
			defer func() {
				if r := recover(); r != nil && onPanic != nil {
					onPanic(r)
				}
			}()
			ic(pi)
		}()
	}
}

// Targets returns (and caches) the set of cells pi's instruction intends
// to write, per the descriptor's Targets function. Called by the conflict
// resolver after Intercept.
func (pi *PlannedInstruction) Targets() []environment.Coord {
	if pi.targetsResolved {
		return pi.cachedTargets
	}
	pi.targetsResolved = true
	if pi.Ctx.Descriptor == nil || pi.Ctx.Descriptor.Targets == nil {
		return nil
	}
	pi.cachedTargets = pi.Ctx.Descriptor.Targets(pi.Ctx)
	return pi.cachedTargets
}

// Execute runs pi's descriptor against the live environment, then advances
// the organism's IP by the descriptor's full grid length (unless the
// instruction itself already repositioned the IP and set SkipIPAdvance).
// It returns the fault, if any, for the caller to apply thermodynamic
// bookkeeping against.
func Execute(pi *PlannedInstruction, env *environment.Environment) *isa.Fault {
	org := pi.Org
	d := pi.Ctx.Descriptor
	fault := d.Execute(pi.Ctx)
	org.PrevInstructionFailed = fault != nil
	if fault != nil {
		org.Fail(fault.Reason)
	} else {
		org.ClearFailure()
	}
	org.AdvanceIPBy(env, d.Length(env.Dims()))
	return fault
}
