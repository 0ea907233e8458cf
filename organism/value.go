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

package organism

import (
	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
)

// Value is the sum type shared by the data stack and register reads: a
// slot is either a scalar molecule word or a coordinate vector, never an
// integer doing double duty as both (spec design note: "a sum type
// StackValue = Scalar(i32) | Vector(SmallVec<i32>) is required").
type Value struct {
	valid    bool
	isVector bool
	scalar   molecule.Word
	vector   environment.Coord
}

// ScalarValue wraps a molecule word as a scalar Value.
func ScalarValue(w molecule.Word) Value {
	return Value{valid: true, scalar: w}
}

// VectorValue wraps a coordinate as a vector Value.
func VectorValue(c environment.Coord) Value {
	return Value{valid: true, isVector: true, vector: c}
}

// Valid reports whether v was actually constructed by ScalarValue/VectorValue,
// as opposed to the zero Value{} (used to detect "push null value").
func (v Value) Valid() bool { return v.valid }

// IsVector reports whether v holds a coordinate rather than a scalar.
func (v Value) IsVector() bool { return v.isVector }

// AsScalar returns the scalar word, or molecule.Empty if v is a vector.
func (v Value) AsScalar() molecule.Word {
	if v.isVector {
		return molecule.Empty
	}
	return v.scalar
}

// AsVector returns the coordinate, or a zero Coord if v is a scalar.
func (v Value) AsVector() environment.Coord {
	if !v.isVector {
		return environment.Coord{}
	}
	return v.vector
}
