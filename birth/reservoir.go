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

// Package birth implements the ordered newborn/death handler chain (spec
// §4.10): gene duplication, gene deletion, gene insertion, label-space
// rewrite, and decay-on-death. Weighted selection throughout is grounded
// on the teacher's dPosCandidateAccountList deterministic-ordering idiom
// (core/state/dpos_list.go's sort.Stable + Weight.Cmp comparator), adapted
// from a one-shot sort into an online weighted reservoir draw since birth
// handlers consume a single shared *rand.Rand stream per tick rather than
// comparing big.Int weights.
package birth

import "math/rand"

// reservoirPick selects one item from items uniformly at random in a
// single pass (classic reservoir sampling with k=1), so callers never
// need to know the candidate count up front (spec §4.10: "reservoir
// sampling uniform over scan lines, NOT over owned cells").
func reservoirPick[T any](rng *rand.Rand, items []T) (T, bool) {
	var chosen T
	found := false
	for i, it := range items {
		if rng.Intn(i+1) == 0 {
			chosen = it
			found = true
		}
	}
	return chosen, found
}

// weightedReservoirPick selects one item from items with probability
// proportional to weight(item), in a single pass. Non-positive weights
// never win. Used for gene deletion's count(hash)^exponent weighting and
// gene insertion's weighted config-list entries.
func weightedReservoirPick[T any](rng *rand.Rand, items []T, weight func(T) float64) (T, bool) {
	var chosen T
	found := false
	var total float64
	for _, it := range items {
		w := weight(it)
		if w <= 0 {
			continue
		}
		total += w
		if rng.Float64()*total < w {
			chosen = it
			found = true
		}
	}
	return chosen, found
}
