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

// GeneDuplication copies a contiguous stretch of the newborn's own owned
// cells, starting at a randomly chosen LABEL, into the largest NOP region
// of a randomly chosen scan line (spec §4.10).
type GeneDuplication struct {
	Rate       float64
	MinNopSize int

	scratch []molecule.Word // pooled per handler instance, reused across OnBirth calls
}

// OnBirth implements scheduler.BirthHandler.
func (g *GeneDuplication) OnBirth(env *environment.Environment, _, child *organism.Organism, rng *rand.Rand) {
	if rng.Float64() >= g.Rate {
		return
	}
	if !child.DV.IsUnitVector() {
		return
	}
	axis, sign := child.DV.Axis()

	labels := ownedLabelCoords(env, child.ID)
	labelCoord, ok := reservoirPick(rng, labels)
	if !ok {
		return
	}

	srcLine := line{env: env, dvAxis: axis, fixed: labelCoord.Slice()}
	end, ok := arcEnd(srcLine, child.ID)
	if !ok {
		return
	}

	startPos := labelCoord.At(axis)
	avail := arcDistance(startPos, end, srcLine.length(), sign)
	if avail <= 0 {
		return
	}

	dstLine := pickScanLine(env, axis, rng)
	nopStart, nopLen, ok := longestNopRun(dstLine)
	if !ok || nopLen < int32(g.MinNopSize) {
		return
	}

	copyLen := avail
	if nopLen < copyLen {
		copyLen = nopLen
	}

	if cap(g.scratch) < int(copyLen) {
		g.scratch = make([]molecule.Word, copyLen)
	}
	buf := g.scratch[:copyLen]
	for i := int32(0); i < copyLen; i++ {
		srcPos := wrapPos(startPos+sign*i, srcLine.length())
		w, err := env.Get(srcLine.coordAt(srcPos))
		if err != nil {
			return
		}
		buf[i] = w
	}
	for i := int32(0); i < copyLen; i++ {
		dstPos := wrapPos(nopStart+sign*i, dstLine.length())
		target := dstLine.coordAt(dstPos)
		if w, err := env.Get(target); err != nil || !w.IsEmpty() {
			break // another write already claimed this slot; stop rather than overwrite foreign state
		}
		_ = env.Set(target, buf[i], child.ID)
	}
}

// arcDistance returns how many cells lie between startPos and end,
// walking in the direction of sign, on a ring of the given length.
func arcDistance(startPos, end, length, sign int32) int32 {
	if sign >= 0 {
		d := end - startPos
		if d < 0 {
			d += length
		}
		return d + 1
	}
	d := startPos - end
	if d < 0 {
		d += length
	}
	return d + 1
}

func wrapPos(p, length int32) int32 {
	p %= length
	if p < 0 {
		p += length
	}
	return p
}

func ownedLabelCoords(env *environment.Environment, ownerID organism.ID) []environment.Coord {
	var out []environment.Coord
	for _, flat := range env.CellsOwnedBy(ownerID).ToSlice() {
		if env.GetFlat(flat).Type() == molecule.LABEL {
			out = append(out, env.CoordFromFlat(flat))
		}
	}
	return out
}
