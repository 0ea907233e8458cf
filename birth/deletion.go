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
	"math"
	"math/rand"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

// GeneDeletion clears a run of molecules following a weighted-randomly
// chosen LABEL, modeling quadratic tandem-repeat instability: labels
// whose hash recurs often (count(hash)) are disproportionately likely to
// be chosen, weighted by count(hash)^CountExponent (spec §4.10, reference
// exponent 2.0).
type GeneDeletion struct {
	Rate          float64
	CountExponent float64
}

// OnBirth implements scheduler.BirthHandler.
func (g *GeneDeletion) OnBirth(env *environment.Environment, _, child *organism.Organism, rng *rand.Rand) {
	if rng.Float64() >= g.Rate {
		return
	}
	if !child.DV.IsUnitVector() {
		return
	}

	counts := labelCount(env, child.ID)
	labels := ownedLabelCoords(env, child.ID)
	if len(labels) == 0 {
		return
	}
	exponent := g.CountExponent
	if exponent == 0 {
		exponent = 2.0
	}

	chosen, ok := weightedReservoirPick(rng, labels, func(c environment.Coord) float64 {
		w, err := env.Get(c)
		if err != nil {
			return 0
		}
		return math.Pow(float64(counts[w.Scalar()]), exponent)
	})
	if !ok {
		return
	}

	axis, sign := child.DV.Axis()
	length := env.Shape()[axis]
	pos := chosen.At(axis)

	for i := int32(1); i <= length; i++ {
		p := wrapPos(pos+sign*i, length)
		c := chosen.Set(axis, p)
		w, err := env.Get(c)
		if err != nil {
			break
		}
		if w.Type() == molecule.LABEL || w.Type() == molecule.STRUCTURE {
			break
		}
		owner, err := env.GetOwner(c)
		if err != nil || (owner != 0 && owner != child.ID) {
			break
		}
		_ = env.Set(c, molecule.Empty, 0)
	}
}
