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
	"github.com/evochora/evochora-sub007/isa"
	"github.com/evochora/evochora-sub007/label"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

// InsertionEntry is one weighted choice in a gene-insertion pipeline:
// either a synthesized instruction (Mnemonic names which) or a new LABEL
// derived from an existing one (Bitflips controls how many bits differ).
type InsertionEntry struct {
	Kind     string // "instruction" or "label"
	Weight   float64
	Mnemonic string
	Bitflips int
}

// GeneInsertion synthesizes a well-typed instruction chain or a new LABEL
// molecule and places it into a NOP region on a reservoir-sampled scan
// line (spec §4.10).
type GeneInsertion struct {
	Rate       float64
	MinNopSize int
	ArgMin     int32
	ArgMax     int32
	Entries    []InsertionEntry
}

// OnBirth implements scheduler.BirthHandler.
func (g *GeneInsertion) OnBirth(env *environment.Environment, _, child *organism.Organism, rng *rand.Rand) {
	if rng.Float64() >= g.Rate || len(g.Entries) == 0 {
		return
	}
	if !child.DV.IsUnitVector() {
		return
	}
	entry, ok := weightedReservoirPick(rng, g.Entries, func(e InsertionEntry) float64 { return e.Weight })
	if !ok {
		return
	}

	axis, sign := child.DV.Axis()
	dstLine := pickScanLine(env, axis, rng)
	nopStart, nopLen, ok := longestNopRun(dstLine)
	if !ok || nopLen < int32(g.MinNopSize) {
		return
	}

	var chain []molecule.Word
	switch entry.Kind {
	case "instruction":
		chain = g.synthesizeInstruction(env, child, entry, rng)
	case "label":
		chain = g.synthesizeLabel(env, child, entry, rng)
	}
	if len(chain) == 0 || int32(len(chain)) > nopLen {
		return
	}

	for i, w := range chain {
		pos := wrapPos(nopStart+sign*int32(i), dstLine.length())
		target := dstLine.coordAt(pos)
		if cur, err := env.Get(target); err != nil || !cur.IsEmpty() {
			return // the region turned out not to be fully contiguous/free; abandon rather than partially write
		}
		if err := env.Set(target, w, child.ID); err != nil {
			return
		}
	}
}

func (g *GeneInsertion) synthesizeInstruction(env *environment.Environment, child *organism.Organism, entry InsertionEntry, rng *rand.Rand) []molecule.Word {
	op, d, ok := isa.LookupMnemonicAny(entry.Mnemonic)
	if !ok {
		return nil
	}
	existing := ownedLabelCoords(env, child.ID)

	chain := []molecule.Word{molecule.Pack(molecule.CODE, int32(op), 0)}
	for _, src := range d.Operands {
		switch src {
		case isa.STACK:
			continue
		case isa.VECTOR:
			for i := 0; i < env.Dims(); i++ {
				chain = append(chain, molecule.Pack(molecule.DATA, randRange(rng, g.ArgMin, g.ArgMax), 0))
			}
		case isa.LABEL:
			chain = append(chain, molecule.Pack(molecule.LABELREF, int32(pickLabelHash(env, existing, rng)), 0))
		case isa.LOCATION_REGISTER:
			chain = append(chain, molecule.Pack(molecule.DATA, int32(rng.Intn(maxInt(child.Limits.NumLR, 1))), 0))
		default: // REGISTER, IMMEDIATE
			if src == isa.REGISTER {
				chain = append(chain, molecule.Pack(molecule.DATA, int32(rng.Intn(maxInt(child.Limits.NumDR, 1))), 0))
			} else {
				chain = append(chain, molecule.Pack(molecule.DATA, randRange(rng, g.ArgMin, g.ArgMax), 0))
			}
		}
	}
	return chain
}

func (g *GeneInsertion) synthesizeLabel(env *environment.Environment, child *organism.Organism, entry InsertionEntry, rng *rand.Rand) []molecule.Word {
	labels := ownedLabelCoords(env, child.ID)
	src, ok := reservoirPick(rng, labels)
	if !ok {
		return nil
	}
	w, err := env.Get(src)
	if err != nil {
		return nil
	}
	mask := randomBitmask(rng, entry.Bitflips, label.HashBits)
	newHash := (uint32(w.Scalar()) ^ mask) & (uint32(1)<<label.HashBits - 1)
	return []molecule.Word{molecule.Pack(molecule.LABEL, int32(newHash), 0)}
}

// pickLabelHash draws an existing owned label's hash half the time (so
// new instructions actually reference reachable labels), otherwise a
// fresh random 19-bit hash.
func pickLabelHash(env *environment.Environment, existing []environment.Coord, rng *rand.Rand) uint32 {
	if len(existing) > 0 && rng.Intn(2) == 0 {
		if c, ok := reservoirPick(rng, existing); ok {
			if w, err := env.Get(c); err == nil {
				return uint32(w.Scalar()) & (uint32(1)<<label.HashBits - 1)
			}
		}
	}
	return uint32(rng.Intn(1<<label.HashBits)) & (uint32(1)<<label.HashBits - 1)
}

func randomBitmask(rng *rand.Rand, bitflips, bits int) uint32 {
	if bitflips <= 0 || bits <= 0 {
		return 0
	}
	if bitflips > bits {
		bitflips = bits
	}
	chosen := make(map[int]bool, bitflips)
	var mask uint32
	for len(chosen) < bitflips {
		b := rng.Intn(bits)
		if chosen[b] {
			continue
		}
		chosen[b] = true
		mask |= uint32(1) << b
	}
	return mask
}

func randRange(rng *rand.Rand, min, max int32) int32 {
	if max <= min {
		return min
	}
	return min + int32(rng.Intn(int(max-min+1)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
