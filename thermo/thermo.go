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

// Package thermo implements the pluggable energy/entropy cost policy (spec
// §4.6): a per-instruction lookup by name, then family, then default,
// grounded on the teacher's per-tx-type dynamic fee dispatch tables (one
// flat map keyed by the most specific identity available, falling back to
// progressively coarser keys rather than a chain of nested maps).
package thermo

import "github.com/evochora/evochora-sub007/isa"

// Cost is the outcome of a policy lookup: the base energy debit and the
// entropy credited to the organism's entropy register.
type Cost struct {
	Energy  int64
	Entropy int64
}

// Table is a pluggable cost policy. Lookup order is: exact mnemonic/variant
// override, then family default, then the table-wide default.
type Table struct {
	byMnemonic map[string]Cost
	byFamily   map[isa.FamilyID]Cost
	def        Cost
}

// NewTable builds a Table with def as the fallback for every instruction
// that has neither a mnemonic- nor family-level override.
func NewTable(def Cost) *Table {
	return &Table{
		byMnemonic: make(map[string]Cost),
		byFamily:   make(map[isa.FamilyID]Cost),
		def:        def,
	}
}

// SetMnemonic installs an override for one (mnemonic, variant) pair. An
// empty variant matches every variant of that mnemonic not otherwise
// overridden with its own variant-specific entry.
func (t *Table) SetMnemonic(mnemonic, variant string, c Cost) {
	t.byMnemonic[key(mnemonic, variant)] = c
}

// SetFamily installs a fallback for every instruction in family not
// overridden at the mnemonic level.
func (t *Table) SetFamily(family isa.FamilyID, c Cost) {
	t.byFamily[family] = c
}

// Lookup resolves the cost for d, the instruction actually planned (spec
// §4.6 "looked up first by instruction name, then by family, then by
// default"). d may be nil (e.g. a NOP placeholder), in which case the
// table default applies.
func (t *Table) Lookup(d *isa.Descriptor) Cost {
	if d == nil {
		return t.def
	}
	if c, ok := t.byMnemonic[key(d.Mnemonic, d.Variant)]; ok {
		return c
	}
	if c, ok := t.byMnemonic[key(d.Mnemonic, "")]; ok {
		return c
	}
	if c, ok := t.byFamily[d.Family]; ok {
		return c
	}
	return t.def
}

func key(mnemonic, variant string) string {
	if variant == "" {
		return mnemonic
	}
	return mnemonic + "/" + variant
}
