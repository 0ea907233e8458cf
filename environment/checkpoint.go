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

package environment

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/evochora/evochora-sub007/molecule"
)

// Snapshot is the persistent-state contract for an environment (spec §6):
// shape, every cell's molecule word, and its owner. It intentionally does
// not diff against a previous snapshot — the grid is dense and small
// relative to a blockchain state trie, so a full enumeration is the
// simplest correct checkpoint format.
type Snapshot struct {
	Shape    []int32
	Topology Topology
	Cells    []molecule.Word
	Owners   []uint32
}

// Checkpoint captures the full state of e.
func (e *Environment) Checkpoint() Snapshot {
	return Snapshot{
		Shape:    e.Shape(),
		Topology: e.topology,
		Cells:    append([]molecule.Word(nil), e.cells...),
		Owners:   append([]uint32(nil), e.owners...),
	}
}

// Restore rebuilds an Environment from a Snapshot, reconstructing the owner
// index from the flat owner array.
func Restore(s Snapshot) *Environment {
	e := New(s.Shape, s.Topology)
	copy(e.cells, s.Cells)
	for flat, owner := range s.Owners {
		if owner == 0 {
			continue
		}
		e.owners[flat] = owner
		set, ok := e.index[owner]
		if !ok {
			set = mapset.NewThreadUnsafeSet[int]()
			e.index[owner] = set
		}
		set.Add(flat)
	}
	return e
}
