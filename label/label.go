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

// Package label implements fuzzy label resolution (spec §4.9): given a
// 19-bit hash, a seeking coordinate, and an organism id, find the best
// matching LABEL molecule by Hamming distance, preferring the seeker's
// own labels and nearer coordinates. The per-organism scan of owned
// LABEL molecules is cached per tick, grounded on the teacher's ARC/LRU
// block-header caches (consensus/greatri/greatri.go) — adapted to the
// generic hashicorp/golang-lru/v2 API the teacher's v1 ARCCache predates.
package label

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
	"github.com/evochora/evochora-sub007/vm"
)

// HashBits is the width of the label-hash domain (spec §6 "LABEL_HASH_BITS=19").
const HashBits = 19

const hashMask = uint32(1)<<HashBits - 1

// DefaultTolerance is the reference maximum Hamming distance accepted.
const DefaultTolerance = 2

// candidate is one LABEL molecule discovered during a scan, narrowed to
// just what scoring needs.
type candidate struct {
	coord environment.Coord
	hash  uint32
	owner organism.ID
}

// selfKey caches one organism's owned-LABEL scan for one tick; including
// the tick number means the entry implicitly invalidates itself without
// any explicit eviction call.
type selfKey struct {
	tick  uint64
	owner organism.ID
}

// Resolver resolves fuzzy label jumps against one environment.
type Resolver struct {
	Env                 *environment.Environment
	Tolerance           int
	ForeignSearchRadius int // bounded Manhattan radius scanned around the seeking coordinate for foreign labels

	selfCache *lru.Cache[selfKey, []candidate]
}

// New builds a Resolver. cacheSize bounds the number of (tick, organism)
// self-label scans retained; a handful of ticks' worth is typically
// enough since entries age out the moment the tick advances.
func New(env *environment.Environment, tolerance, foreignSearchRadius, cacheSize int) *Resolver {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if foreignSearchRadius <= 0 {
		foreignSearchRadius = 4
	}
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	c, _ := lru.New[selfKey, []candidate](cacheSize)
	return &Resolver{Env: env, Tolerance: tolerance, ForeignSearchRadius: foreignSearchRadius, selfCache: c}
}

// Resolve finds the best LABEL match for hash as seen by seekerID at
// tick, searching seekerID's own owned cells (cached per tick) plus a
// bounded foreign neighborhood around seeking (spec §4.9). Deterministic
// given the environment snapshot and tick.
func (r *Resolver) Resolve(tick uint64, hash uint32, seeking environment.Coord, seekerID organism.ID) (environment.Coord, bool) {
	hash &= hashMask

	candidates := r.selfLabels(tick, seekerID)
	candidates = append(candidates, r.foreignLabelsNear(seeking, seekerID)...)

	shape := r.Env.Shape()
	var best candidate
	bestDist := -1
	bestForeignPenalty := 2
	var bestRange int64
	found := false

	for _, cand := range candidates {
		dist := hammingDistance(hash, cand.hash)
		if dist > r.Tolerance {
			continue
		}
		penalty := 0
		if cand.owner != seekerID {
			penalty = 1
		}
		rng := cand.coord.ManhattanDistanceToroidal(seeking, shape)

		if !found ||
			dist < bestDist ||
			(dist == bestDist && penalty < bestForeignPenalty) ||
			(dist == bestDist && penalty == bestForeignPenalty && rng < bestRange) {
			found = true
			best = cand
			bestDist = dist
			bestForeignPenalty = penalty
			bestRange = rng
		}
	}
	if !found {
		return environment.Coord{}, false
	}
	return best.coord, true
}

// AsVMResolver adapts r into a vm.LabelResolver whose tick argument is
// read from tick at call time, so one closure stays valid across the
// scheduler's whole run instead of being rebuilt every tick.
func (r *Resolver) AsVMResolver(tick *uint64) vm.LabelResolver {
	return func(hash uint32, seeking environment.Coord, seekerID organism.ID) (environment.Coord, bool) {
		return r.Resolve(*tick, hash, seeking, seekerID)
	}
}

func hammingDistance(a, b uint32) int {
	x := a ^ b
	count := 0
	for x != 0 {
		count++
		x &= x - 1
	}
	return count
}

func (r *Resolver) selfLabels(tick uint64, owner organism.ID) []candidate {
	key := selfKey{tick: tick, owner: owner}
	if v, ok := r.selfCache.Get(key); ok {
		return v
	}
	var out []candidate
	for _, flat := range r.Env.CellsOwnedBy(owner).ToSlice() {
		w := r.Env.GetFlat(flat)
		if w.Type() != molecule.LABEL {
			continue
		}
		out = append(out, candidate{
			coord: r.Env.CoordFromFlat(flat),
			hash:  uint32(w.Scalar()) & hashMask,
			owner: owner,
		})
	}
	r.selfCache.Add(key, out)
	return out
}

// foreignLabelsNear scans a bounded box around seeking (radius per axis;
// the box is not clamped: coordinates the environment rejects are skipped)
// for LABEL molecules owned by
// someone other than self, skipping the unbounded "scan everything"
// approach spec §4.9 explicitly calls out as impractical.
func (r *Resolver) foreignLabelsNear(seeking environment.Coord, self organism.ID) []candidate {
	dims := r.Env.Dims()
	radius := r.ForeignSearchRadius

	var out []candidate
	offsets := make([]int32, dims)
	var walk func(axis int)
	walk = func(axis int) {
		if axis == dims {
			c := seeking
			for i := 0; i < dims; i++ {
				c = c.Set(i, seeking.At(i)+offsets[i])
			}
			w, err := r.Env.Get(c)
			if err != nil || w.Type() != molecule.LABEL {
				return
			}
			owner, err := r.Env.GetOwner(c)
			if err != nil || owner == self || owner == 0 {
				return
			}
			out = append(out, candidate{coord: c, hash: uint32(w.Scalar()) & hashMask, owner: owner})
			return
		}
		for d := int32(-radius); d <= int32(radius); d++ {
			offsets[axis] = d
			walk(axis + 1)
		}
	}
	walk(0)
	return out
}
