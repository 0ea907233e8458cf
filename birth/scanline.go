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
	"sort"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

// line is a 1-D ring of cells through the grid, varying only dvAxis while
// every other axis stays at fixed's value. It models one "scan line
// perpendicular to DV" (spec §4.10): the coordinates orthogonal to DV
// pick the line, DV's own axis sweeps along it.
type line struct {
	env    *environment.Environment
	dvAxis int
	fixed  []int32 // length env.Dims(); fixed[dvAxis] is ignored
}

func (l line) length() int32 {
	return l.env.Shape()[l.dvAxis]
}

func (l line) coordAt(pos int32) environment.Coord {
	vals := append([]int32(nil), l.fixed...)
	vals[l.dvAxis] = pos
	return environment.NewCoord(vals...)
}

// pickScanLine reservoir-samples one line uniformly among all scan lines
// perpendicular to dvAxis, never materializing the full (potentially
// grid-volume-sized) set of lines (spec §4.10: "reservoir sampling
// uniform over scan lines, NOT over owned cells" — this walks the other
// axes' coordinate space the same way, one line at a time).
func pickScanLine(env *environment.Environment, dvAxis int, rng *rand.Rand) line {
	dims := env.Dims()
	shape := env.Shape()
	fixed := make([]int32, dims)

	count := 0
	best := make([]int32, dims)
	var walk func(axis int)
	walk = func(axis int) {
		if axis == dims {
			count++
			if rng.Intn(count) == 0 {
				copy(best, fixed)
			}
			return
		}
		if axis == dvAxis {
			walk(axis + 1)
			return
		}
		for v := int32(0); v < shape[axis]; v++ {
			fixed[axis] = v
			walk(axis + 1)
		}
	}
	walk(0)
	return line{env: env, dvAxis: dvAxis, fixed: best}
}

// longestNopRun finds the longest contiguous run of empty cells on l,
// treating it as a ring in every topology: positions stay within the
// line's length, so a run may continue from the last cell to the first
// in a bounded environment as well as on a torus. Returns
// the starting position and length of the best run; ok is false if the
// line has no empty cell at all.
func longestNopRun(l line) (start int32, length int32, ok bool) {
	n := l.length()
	empty := make([]bool, n)
	anyEmpty := false
	for p := int32(0); p < n; p++ {
		w, err := l.env.Get(l.coordAt(p))
		empty[p] = err == nil && w.IsEmpty()
		anyEmpty = anyEmpty || empty[p]
	}
	if !anyEmpty {
		return 0, 0, false
	}
	if allTrue(empty) {
		return 0, n, true
	}

	bestStart, bestLen := int32(0), int32(0)
	curStart, curLen := int32(0), int32(0)
	inRun := false
	for p := int32(0); p < 2*n; p++ {
		idx := p % n
		if empty[idx] {
			if !inRun {
				curStart = idx
				curLen = 0
				inRun = true
			}
			curLen++
			if curLen > bestLen {
				bestStart, bestLen = curStart, curLen
			}
		} else {
			inRun = false
		}
		if curLen >= n {
			break
		}
	}
	return bestStart, bestLen, true
}

func allTrue(b []bool) bool {
	for _, v := range b {
		if !v {
			return false
		}
	}
	return true
}

// arcEnd locates where ownerID's contiguous gene arc ends on l, by
// sorting every position on l owned by ownerID and taking the position
// just before the largest circular gap as the "outside" of the arc (spec
// §4.10: "compute the shortest arc by sorting DV coordinates and taking
// the largest inter-coordinate gap as the outside of the arc"). ok is
// false if ownerID owns no cell on this line.
func arcEnd(l line, ownerID organism.ID) (endPos int32, ok bool) {
	n := l.length()
	var positions []int32
	for p := int32(0); p < n; p++ {
		owner, err := l.env.GetOwner(l.coordAt(p))
		if err == nil && owner == ownerID {
			positions = append(positions, p)
		}
	}
	if len(positions) == 0 {
		return 0, false
	}
	if len(positions) == 1 {
		return positions[0], true
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	gapStart := -1
	bestGap := int32(-1)
	for i := range positions {
		next := positions[(i+1)%len(positions)]
		cur := positions[i]
		gap := next - cur
		if gap <= 0 {
			gap += n
		}
		if gap > bestGap {
			bestGap = gap
			gapStart = i
		}
	}
	// The arc ends at the position right before the largest gap begins.
	return positions[gapStart], true
}

// labelCount tallies how many LABEL molecules owned by ownerID carry each
// distinct hash, used by gene deletion's count(hash)^exponent weighting.
func labelCount(env *environment.Environment, ownerID organism.ID) map[int32]int {
	counts := make(map[int32]int)
	for _, flat := range env.CellsOwnedBy(ownerID).ToSlice() {
		w := env.GetFlat(flat)
		if w.Type() == molecule.LABEL {
			counts[w.Scalar()]++
		}
	}
	return counts
}
