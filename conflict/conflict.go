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

// Package conflict elects at most one writer per contested cell among a
// tick's planned instructions (spec §4.7), grounded on the journal-style
// dirty-tracking idiom: a small per-cell list of write-intents resolved
// once and discarded, never replayed.
package conflict

import (
	"sort"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/isa"
	"github.com/evochora/evochora-sub007/vm"
)

// Resolve groups planned by target cell (via pi.Targets(), called after
// Intercept so any operand modification is reflected) and assigns each a
// ConflictStatus. Ties break by lower organism id, then earlier
// registration index (spec §4.7).
//
// A multi-target instruction (PPK targets both its source and destination
// cell) is all-or-nothing: it must win the per-cell election on every one
// of its targets to execute at all. Winning some and losing others still
// loses overall, so it never partially executes a write to a cell another
// organism won (spec §8: "for every cell, at most one organism executes a
// write").
func Resolve(planned []*vm.PlannedInstruction) {
	contenders := make(map[environment.Coord][]*vm.PlannedInstruction)
	for _, pi := range planned {
		targets := pi.Targets()
		if len(targets) == 0 {
			pi.Ctx.Status = isa.NotApplicable
			continue
		}
		for _, t := range targets {
			contenders[t] = append(contenders[t], pi)
		}
	}

	participated := make(map[*vm.PlannedInstruction]bool)
	lostAny := make(map[*vm.PlannedInstruction]bool)
	for _, group := range contenders {
		winner := electWinner(group)
		for _, pi := range group {
			participated[pi] = true
			if pi != winner {
				lostAny[pi] = true
			}
		}
	}
	for pi := range participated {
		if lostAny[pi] {
			pi.Ctx.Status = isa.LostConflict
		} else {
			pi.Ctx.Status = isa.WonExecution
		}
	}
}

// electWinner picks the lowest organism id, breaking remaining ties by
// earlier registration index. group is never empty.
func electWinner(group []*vm.PlannedInstruction) *vm.PlannedInstruction {
	sorted := append([]*vm.PlannedInstruction(nil), group...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Org.ID != sorted[j].Org.ID {
			return sorted[i].Org.ID < sorted[j].Org.ID
		}
		return sorted[i].RegistrationIndex < sorted[j].RegistrationIndex
	})
	return sorted[0]
}
