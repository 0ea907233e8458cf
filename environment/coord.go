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

package environment

import (
	"fmt"
	"strings"
)

// MaxDims bounds the number of axes a grid may have. Coordinates and
// direction vectors are fixed-size arrays under the hood so per-instruction
// operand resolution never touches the heap (spec design note: "use inline
// buffers to avoid per-instruction heap traffic").
const MaxDims = 8

// Coord is a small, copy-by-value N-dimensional coordinate or direction
// vector. Only the first N entries of data are meaningful.
type Coord struct {
	data [MaxDims]int32
	n    int
}

// NewCoord builds a Coord from the given components. Panics if len(vals)
// exceeds MaxDims, which is a programmer error (shape mismatch), not a
// runtime condition instructions can trigger.
func NewCoord(vals ...int32) Coord {
	if len(vals) > MaxDims {
		panic(fmt.Sprintf("environment: coordinate of %d dims exceeds MaxDims=%d", len(vals), MaxDims))
	}
	var c Coord
	c.n = len(vals)
	copy(c.data[:], vals)
	return c
}

// Dims returns the number of axes this coordinate has components for.
func (c Coord) Dims() int { return c.n }

// At returns the i-th component.
func (c Coord) At(i int) int32 { return c.data[i] }

// Set returns a copy of c with the i-th component replaced.
func (c Coord) Set(i int, v int32) Coord {
	c.data[i] = v
	return c
}

// Slice copies the coordinate into a fresh []int32, for callers that need
// to range over components or hand them to external code.
func (c Coord) Slice() []int32 {
	out := make([]int32, c.n)
	copy(out, c.data[:c.n])
	return out
}

// Add returns the componentwise sum of c and other; both must have the
// same Dims().
func (c Coord) Add(other Coord) Coord {
	out := c
	for i := 0; i < c.n; i++ {
		out.data[i] += other.data[i]
	}
	return out
}

// Equal reports whether c and other have identical components.
func (c Coord) Equal(other Coord) bool {
	if c.n != other.n {
		return false
	}
	for i := 0; i < c.n; i++ {
		if c.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether every component is zero.
func (c Coord) IsZero() bool {
	for i := 0; i < c.n; i++ {
		if c.data[i] != 0 {
			return false
		}
	}
	return true
}

// IsUnitVector reports whether exactly one component is +1 or -1 and the
// rest are zero, as required of a direction vector.
func (c Coord) IsUnitVector() bool {
	nonzero := 0
	for i := 0; i < c.n; i++ {
		switch c.data[i] {
		case 0:
		case 1, -1:
			nonzero++
		default:
			return false
		}
	}
	return nonzero == 1
}

// Axis returns the axis index and sign (+1/-1) of a unit vector. Callers
// must check IsUnitVector first; behavior on a non-unit-vector is
// undefined (returns the first nonzero axis and its raw component, or
// axis 0 with sign 0 for the zero vector).
func (c Coord) Axis() (axis int, sign int32) {
	for i := 0; i < c.n; i++ {
		if c.data[i] != 0 {
			return i, c.data[i]
		}
	}
	return 0, 0
}

// ManhattanDistanceToroidal computes the shortest toroidal Manhattan
// distance between c and other given per-axis shape lengths.
func (c Coord) ManhattanDistanceToroidal(other Coord, shape []int32) int64 {
	var total int64
	for i := 0; i < c.n; i++ {
		diff := c.data[i] - other.data[i]
		if diff < 0 {
			diff = -diff
		}
		axisLen := shape[i]
		wrapped := int32(axisLen) - diff
		if wrapped < diff {
			diff = wrapped
		}
		total += int64(diff)
	}
	return total
}

func (c Coord) String() string {
	parts := make([]string, c.n)
	for i := 0; i < c.n; i++ {
		parts[i] = fmt.Sprintf("%d", c.data[i])
	}
	return "[" + strings.Join(parts, ",") + "]"
}
