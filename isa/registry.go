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

package isa

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
)

// Opcode is the CODE-molecule scalar value identifying a Descriptor. Each
// family reserves a 1000-wide band (family id * 1000 + local index) so the
// numbering stays readable and collision-free without a central enum.
type Opcode int32

var (
	registry    = make(map[Opcode]*Descriptor)
	byMnemonic  = make(map[string]*Descriptor)
)

// register installs d under opcode, panicking on a duplicate — the
// registry is a build-time construct (spec §9: "initialized once at
// startup, process-wide read-only after init"), so a collision is a
// programming error, not a runtime condition.
func register(opcode Opcode, d Descriptor) Opcode {
	if _, exists := registry[opcode]; exists {
		panic(fmt.Sprintf("isa: duplicate opcode registration %d (%s)", opcode, d.Mnemonic))
	}
	registry[opcode] = &d
	byMnemonic[variantKey(d.Mnemonic, d.Variant)] = &d
	return opcode
}

func variantKey(mnemonic, variant string) string {
	if variant == "" {
		return mnemonic
	}
	return mnemonic + "/" + variant
}

// Lookup resolves a raw opcode id to its Descriptor.
func Lookup(opcode Opcode) (*Descriptor, bool) {
	d, ok := registry[opcode]
	return d, ok
}

// LookupMnemonic resolves a (mnemonic, variant) pair to its Descriptor and
// assigned Opcode, for program assembly and tests.
func LookupMnemonic(mnemonic, variant string) (Opcode, *Descriptor, bool) {
	d, ok := byMnemonic[variantKey(mnemonic, variant)]
	if !ok {
		return 0, nil, false
	}
	for op, cand := range registry {
		if cand == d {
			return op, d, true
		}
	}
	return 0, nil, false
}

// LookupMnemonicAny resolves mnemonic to its lowest-sorting variant's
// Opcode and Descriptor, for callers (e.g. gene insertion) that know an
// instruction's name but not which operand-pattern variant to synthesize.
// Picking the lexicographically smallest variant key keeps the choice
// deterministic across runs.
func LookupMnemonicAny(mnemonic string) (Opcode, *Descriptor, bool) {
	var keys []string
	for k := range byMnemonic {
		if k == mnemonic || strings.HasPrefix(k, mnemonic+"/") {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 0, nil, false
	}
	sort.Strings(keys)
	d := byMnemonic[keys[0]]
	for op, cand := range registry {
		if cand == d {
			return op, d, true
		}
	}
	return 0, nil, false
}

// Decode reads the molecule at coord and resolves it to a Descriptor. A
// non-CODE or empty molecule is reported as ok=false so the caller can
// treat it as a NOP placeholder (spec §4.5 plan()).
func Decode(env *environment.Environment, coord environment.Coord) (*Descriptor, bool) {
	m, err := env.Get(coord)
	if err != nil || m.Type() != molecule.CODE || m.IsEmpty() {
		return nil, false
	}
	return Lookup(Opcode(m.Scalar()))
}

// LengthAt is an organism.LengthFunc: it reports the grid footprint of the
// opcode at coord, or 1 if the cell does not decode to a known
// instruction (a bare NOP occupies exactly one slot).
func LengthAt(env *environment.Environment, coord environment.Coord) int {
	d, ok := Decode(env, coord)
	if !ok {
		return 1
	}
	return d.Length(env.Dims())
}
