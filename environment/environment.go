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

// Package environment implements the toroidal N-dimensional cellular grid:
// a row-major packed-molecule array, a parallel ownership array, and a
// per-organism owned-cell index. It is the one place in the runtime that
// exclusively owns the cell and ownership arrays — organisms only ever
// hold ids into this index (spec §3 "Ownership model").
package environment

import (
	"errors"
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/evochora/evochora-sub007/molecule"
)

// Topology selects how out-of-range axis positions behave.
type Topology int

const (
	// Torus wraps every axis independently.
	Torus Topology = iota
	// Bounded fails lookups that fall outside [0, shape[axis]) on any axis.
	Bounded
)

var (
	// ErrOutOfBounds is returned by Get/GetOwner/Set in Bounded topology
	// when a coordinate falls outside the grid.
	ErrOutOfBounds = errors.New("environment: coordinate out of bounds")
	// ErrEmptyMustBeUnowned is returned by Set when the caller attempts to
	// write an empty molecule with a nonzero owner, violating the
	// empty-cell invariant.
	ErrEmptyMustBeUnowned = errors.New("environment: empty molecule must have owner 0")
	// ErrShapeMismatch is returned when a coordinate's dimensionality does
	// not match the environment's shape.
	ErrShapeMismatch = errors.New("environment: coordinate dimensionality mismatch")
	// ErrInvariantViolation flags a detected inconsistency between the
	// owner array and the owner index; per spec §7 this is system-fatal.
	ErrInvariantViolation = errors.New("environment: ownership invariant violated")
)

// Environment is the shared, mutably-owned cellular grid. All exported
// methods are safe to call concurrently from multiple organisms' Execute
// goroutines PROVIDED the caller (the conflict resolver) guarantees no two
// goroutines target the same flat index in the same tick; see package
// scheduler. The owner index itself uses an internal mutex because a Go
// map is not safe for concurrent mutation even across disjoint keys.
type Environment struct {
	shape    []int32
	strides  []int32
	topology Topology

	cells  []molecule.Word
	owners []uint32

	indexMu sync.Mutex
	index   map[uint32]mapset.Set[int]
}

// New allocates an environment of the given shape, every cell initialized
// to molecule.Empty with owner 0.
func New(shape []int32, topology Topology) *Environment {
	if len(shape) == 0 || len(shape) > MaxDims {
		panic(fmt.Sprintf("environment: shape must have 1..%d axes, got %d", MaxDims, len(shape)))
	}
	total := 1
	strides := make([]int32, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] <= 0 {
			panic("environment: axis lengths must be positive")
		}
		strides[i] = int32(total)
		total *= int(shape[i])
	}
	cells := make([]molecule.Word, total)
	for i := range cells {
		cells[i] = molecule.Empty
	}
	return &Environment{
		shape:    append([]int32(nil), shape...),
		strides:  strides,
		topology: topology,
		cells:    cells,
		owners:   make([]uint32, total),
		index:    make(map[uint32]mapset.Set[int]),
	}
}

// Shape returns a copy of the axis lengths.
func (e *Environment) Shape() []int32 {
	return append([]int32(nil), e.shape...)
}

// Dims returns the number of axes.
func (e *Environment) Dims() int { return len(e.shape) }

// Len returns the total number of cells.
func (e *Environment) Len() int { return len(e.cells) }

// FlatIndex computes the row-major flat index of coord, applying wrap in
// Torus topology or returning ErrOutOfBounds in Bounded topology.
func (e *Environment) FlatIndex(coord Coord) (int, error) {
	if coord.Dims() != len(e.shape) {
		return 0, ErrShapeMismatch
	}
	flat := 0
	for i := 0; i < len(e.shape); i++ {
		v := coord.At(i)
		axisLen := e.shape[i]
		if e.topology == Torus {
			v = wrapAxis(v, axisLen)
		} else if v < 0 || v >= axisLen {
			return 0, ErrOutOfBounds
		}
		flat += int(v) * int(e.strides[i])
	}
	return flat, nil
}

func wrapAxis(v, axisLen int32) int32 {
	v %= axisLen
	if v < 0 {
		v += axisLen
	}
	return v
}

// CoordFromFlat decodes a flat index back into a coordinate. Used by birth
// handlers that iterate an owner's cell-index set by flat index (spec
// §4.2).
func (e *Environment) CoordFromFlat(flat int) Coord {
	vals := make([]int32, len(e.shape))
	rem := flat
	for i := 0; i < len(e.shape); i++ {
		stride := int(e.strides[i])
		vals[i] = int32(rem / stride)
		rem %= stride
	}
	return NewCoord(vals...)
}

// NextPosition adds dv to coord componentwise with per-axis wrap,
// regardless of topology (direction-vector stepping always wraps — only
// direct addressed reads/writes honor Bounded topology).
func (e *Environment) NextPosition(coord, dv Coord) Coord {
	out := coord
	for i := 0; i < len(e.shape); i++ {
		out = out.Set(i, wrapAxis(coord.At(i)+dv.At(i), e.shape[i]))
	}
	return out
}

// Get reads the molecule at coord.
func (e *Environment) Get(coord Coord) (molecule.Word, error) {
	flat, err := e.FlatIndex(coord)
	if err != nil {
		return molecule.Empty, err
	}
	return e.cells[flat], nil
}

// GetOwner reads the owner id at coord (0 = unowned).
func (e *Environment) GetOwner(coord Coord) (uint32, error) {
	flat, err := e.FlatIndex(coord)
	if err != nil {
		return 0, err
	}
	return e.owners[flat], nil
}

// GetFlat reads the molecule at a raw flat index without bounds checking
// beyond a slice-index panic; used by hot paths (conflict resolution,
// label scanning) that have already validated the index.
func (e *Environment) GetFlat(flat int) molecule.Word { return e.cells[flat] }

// GetOwnerFlat reads the owner at a raw flat index.
func (e *Environment) GetOwnerFlat(flat int) uint32 { return e.owners[flat] }

// Set writes a molecule and its owner at coord. If m is empty, owner must
// be 0 (ErrEmptyMustBeUnowned otherwise). The owner index is updated to
// remove the cell from its previous owner's set (if any) and insert it
// into the new owner's set (if nonzero).
func (e *Environment) Set(coord Coord, m molecule.Word, owner uint32) error {
	flat, err := e.FlatIndex(coord)
	if err != nil {
		return err
	}
	return e.SetFlat(flat, m, owner)
}

// SetFlat is Set addressed by raw flat index, used by birth/death handlers
// that already iterate flat indices from an owner's index set.
func (e *Environment) SetFlat(flat int, m molecule.Word, owner uint32) error {
	if m.IsEmpty() && owner != 0 {
		return ErrEmptyMustBeUnowned
	}
	prevOwner := e.owners[flat]
	if prevOwner != owner {
		e.reindex(flat, prevOwner, owner)
	}
	e.cells[flat] = m
	e.owners[flat] = owner
	return nil
}

// ClearOwner sets the owner of coord to 0 without touching the molecule.
func (e *Environment) ClearOwner(coord Coord) error {
	flat, err := e.FlatIndex(coord)
	if err != nil {
		return err
	}
	e.ClearOwnerFlat(flat)
	return nil
}

// ClearOwnerFlat is ClearOwner addressed by flat index.
func (e *Environment) ClearOwnerFlat(flat int) {
	prevOwner := e.owners[flat]
	if prevOwner == 0 {
		return
	}
	e.reindex(flat, prevOwner, 0)
	e.owners[flat] = 0
}

// ClearOwnershipOf removes every cell owned by ownerID from the ownership
// array and index, and clears the marker bits of those cells. Molecule
// type and value are preserved (spec §4.2).
func (e *Environment) ClearOwnershipOf(ownerID uint32) {
	e.indexMu.Lock()
	set, ok := e.index[ownerID]
	if !ok {
		e.indexMu.Unlock()
		return
	}
	flats := set.ToSlice()
	delete(e.index, ownerID)
	e.indexMu.Unlock()

	for _, flat := range flats {
		e.owners[flat] = 0
		e.cells[flat] = e.cells[flat].WithMarker(0)
	}
}

// CellsOwnedBy returns a snapshot of the flat indices owned by ownerID, or
// an empty set if it owns nothing.
func (e *Environment) CellsOwnedBy(ownerID uint32) mapset.Set[int] {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()
	set, ok := e.index[ownerID]
	if !ok {
		return mapset.NewThreadUnsafeSet[int]()
	}
	return set.Clone()
}

// OwnedCount reports how many cells ownerID owns, without materializing a
// copy of the set.
func (e *Environment) OwnedCount(ownerID uint32) int {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()
	if set, ok := e.index[ownerID]; ok {
		return set.Cardinality()
	}
	return 0
}

func (e *Environment) reindex(flat int, prevOwner, newOwner uint32) {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()
	if prevOwner != 0 {
		if set, ok := e.index[prevOwner]; ok {
			set.Remove(flat)
			if set.Cardinality() == 0 {
				delete(e.index, prevOwner)
			}
		}
	}
	if newOwner != 0 {
		set, ok := e.index[newOwner]
		if !ok {
			set = mapset.NewThreadUnsafeSet[int]()
			e.index[newOwner] = set
		}
		set.Add(flat)
	}
}

// CheckInvariants walks the owner array and index, returning
// ErrInvariantViolation if they disagree anywhere. This is an expensive
// O(n) diagnostic meant for tests and optional periodic self-checks, not
// the per-tick hot path.
func (e *Environment) CheckInvariants() error {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()
	seen := make(map[int]uint32, len(e.owners))
	for owner, set := range e.index {
		for flat := range set.Iter() {
			if e.owners[flat] != owner {
				return fmt.Errorf("%w: flat %d indexed under owner %d but owners[%d]=%d",
					ErrInvariantViolation, flat, owner, flat, e.owners[flat])
			}
			seen[flat] = owner
		}
	}
	for flat, owner := range e.owners {
		if owner == 0 {
			continue
		}
		if _, ok := seen[flat]; !ok {
			return fmt.Errorf("%w: owners[%d]=%d but not present in owner index", ErrInvariantViolation, flat, owner)
		}
		m := e.cells[flat]
		if m.IsEmpty() && (m.Marker() != 0 || owner != 0) {
			return fmt.Errorf("%w: empty cell at flat %d has marker=%d owner=%d", ErrInvariantViolation, flat, m.Marker(), owner)
		}
	}
	return nil
}
