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

// Package config defines the plain, tag-annotated structs a host decodes
// the runtime's tunables from (spec §6), grounded on the teacher's
// naoina/toml-based config loader (cmd/gprobe/config.go): exported struct
// fields with toml tags, no CLI or file-watcher wrapper built here.
package config

import (
	"bufio"
	"os"
	"reflect"

	"github.com/naoina/toml"
)

// Environment configures the grid shape/topology and molecule layout.
type Environment struct {
	Shape      []int  `toml:"shape"`
	Topology   string `toml:"topology"` // "TORUS" or "BOUNDED"
	ValueBits  int    `toml:"value_bits"`
	MarkerBits int    `toml:"marker_bits"`
}

// Organism configures per-organism register/stack sizing and resource caps.
type Organism struct {
	StrictTyping        bool  `toml:"strict_typing"`
	MaxEnergy           int64 `toml:"max_energy"`
	MaxEntropy          int64 `toml:"max_entropy"`
	ErrorPenaltyCost    int64 `toml:"error_penalty_cost"`
	DataStackMaxDepth   int   `toml:"ds_max_depth"`
	MaxSkips            int   `toml:"max_skips"`
	NumLocationRegisters int  `toml:"num_location_registers"`
	NumDR               int   `toml:"num_dr"`
	NumPR               int   `toml:"num_pr"`
	NumFPR              int   `toml:"num_fpr"`
	NumDP               int   `toml:"num_dp"`
	PRBase              int32 `toml:"pr_base"`
	FPRBase             int32 `toml:"fpr_base"`
	LRBase              int32 `toml:"lr_base"`
}

// ThermoOverride is one mnemonic/variant- or family-scoped cost override.
type ThermoOverride struct {
	Mnemonic string `toml:"mnemonic,omitempty"`
	Variant  string `toml:"variant,omitempty"`
	Family   string `toml:"family,omitempty"`
	Energy   int64  `toml:"energy"`
	Entropy  int64  `toml:"entropy"`
}

// Thermo configures the default cost and any per-instruction/family
// overrides of the thermodynamic policy table.
type Thermo struct {
	DefaultEnergy  int64            `toml:"default_energy"`
	DefaultEntropy int64            `toml:"default_entropy"`
	Overrides      []ThermoOverride `toml:"overrides"`
}

// BirthHandlerEntry configures one weighted entry of a gene-insertion
// instruction/label pipeline (spec §4.10).
type BirthHandlerEntry struct {
	Kind     string  `toml:"kind"` // "instruction" or "label"
	Weight   float64 `toml:"weight"`
	Mnemonic string  `toml:"mnemonic,omitempty"`
	Bitflips int     `toml:"bitflips,omitempty"`
}

// BirthHandler configures one stage of the ordered birth-handler chain.
type BirthHandler struct {
	Class           string              `toml:"class"`
	DuplicationRate float64             `toml:"duplication_rate"`
	MinNopSize      int                 `toml:"min_nop_size"`
	DeletionRate    float64             `toml:"deletion_rate"`
	CountExponent   float64             `toml:"count_exponent"`
	MutationRate    float64             `toml:"mutation_rate"`
	Entries         []BirthHandlerEntry `toml:"entries"`
	ArgMin          int32               `toml:"arg_min"`
	ArgMax          int32               `toml:"arg_max"`
	LabelHashBits   int                 `toml:"label_hash_bits"`
}

// Scheduler configures tick-scheduler concurrency.
type Scheduler struct {
	Parallelism int `toml:"parallelism"`
}

// Labels configures fuzzy label resolution (spec §4.9).
type Labels struct {
	Tolerance int `toml:"tolerance"`
	CacheSize int `toml:"cache_size"`
}

// Configuration is the full set of host-supplied tunables (spec §6).
type Configuration struct {
	Environment   Environment    `toml:"environment"`
	Organism      Organism       `toml:"organism"`
	Thermo        Thermo         `toml:"thermo"`
	BirthHandlers []BirthHandler `toml:"birth_handlers"`
	Scheduler     Scheduler      `toml:"scheduler"`
	Labels        Labels         `toml:"labels"`
	RandSeed      int64          `toml:"rand_seed"`
}

// Default returns a Configuration populated with the reference defaults
// named throughout the spec (label tolerance 2, parallelism 4). It
// configures no birth handlers, so handler parameters such as
// count_exponent and label_hash_bits are left for the host to supply.
func Default() Configuration {
	return Configuration{
		Environment: Environment{
			Shape:      []int{64, 64},
			Topology:   "TORUS",
			ValueBits:  20,
			MarkerBits: 4,
		},
		Organism: Organism{
			StrictTyping:         false,
			MaxEnergy:            100000,
			MaxEntropy:           100000,
			ErrorPenaltyCost:     5,
			DataStackMaxDepth:    64,
			MaxSkips:             32,
			NumLocationRegisters: 4,
			NumDR:                8,
			NumPR:                4,
			NumFPR:               4,
			NumDP:                4,
			PRBase:               8,
			FPRBase:              12,
			LRBase:               16,
		},
		Thermo: Thermo{DefaultEnergy: 1, DefaultEntropy: 0},
		Scheduler: Scheduler{Parallelism: 4},
		Labels:    Labels{Tolerance: 2, CacheSize: 4096},
	}
}

// tomlSettings mirrors the teacher's NormFieldName/FieldToKey identity
// mapping so TOML keys match struct tags verbatim instead of naoina's
// default CamelCase folding.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
}

// LoadTOML decodes a Configuration from path, starting from Default() so
// any field absent from the file keeps its reference default.
func LoadTOML(path string) (Configuration, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
	return cfg, err
}
