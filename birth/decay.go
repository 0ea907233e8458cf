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
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

// Decay is a death handler that replaces every cell owned by the dying
// organism with Replacement, turning a corpse's genome into inert
// environment matter rather than leaving it behind intact (spec §4.10).
// The scheduler clears ownership of these cells immediately afterward, so
// Decay only ever needs to touch molecule contents.
type Decay struct {
	Replacement molecule.Word
}

// OnDeath implements scheduler.DeathHandler. Decay never needs randomness
// but keeps the parameter to satisfy the interface.
func (d *Decay) OnDeath(env *environment.Environment, org *organism.Organism, _ *rand.Rand) {
	for _, flat := range env.CellsOwnedBy(org.ID).ToSlice() {
		if env.GetFlat(flat).IsEmpty() {
			continue
		}
		_ = env.SetFlat(flat, d.Replacement, org.ID)
	}
}
