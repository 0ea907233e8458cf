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

package birth

import (
	"math/rand"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/label"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

// LabelRewrite XORs a single random nonzero mask across every LABEL and
// LABELREF hash the newborn owns, privatizing its label namespace while
// preserving every Hamming distance between its own labels and labelrefs
// (the fuzzy resolver in package label only ever cares about relative
// distance, so this is observationally transparent to it; spec §4.10).
type LabelRewrite struct {
	Rate float64
}

// OnBirth implements scheduler.BirthHandler.
func (r *LabelRewrite) OnBirth(env *environment.Environment, _, child *organism.Organism, rng *rand.Rand) {
	if rng.Float64() >= r.Rate {
		return
	}
	mask := uint32(0)
	for mask == 0 {
		mask = uint32(rng.Intn(1<<label.HashBits)) & (uint32(1)<<label.HashBits - 1)
	}

	for _, flat := range env.CellsOwnedBy(child.ID).ToSlice() {
		w := env.GetFlat(flat)
		if w.Type() != molecule.LABEL && w.Type() != molecule.LABELREF {
			continue
		}
		newHash := int32(uint32(w.Scalar()) ^ mask)
		env.SetFlat(flat, molecule.Pack(w.Type(), newHash, w.Marker()), child.ID)
	}
}
