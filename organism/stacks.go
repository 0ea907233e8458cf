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
	"errors"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
)

var (
	// ErrStackOverflow is returned when a push would exceed the configured
	// maximum data-stack depth.
	ErrStackOverflow = errors.New("organism: data stack overflow")
	// ErrStackUnderflow is returned when a pop is attempted on an empty
	// stack (data, call, or location).
	ErrStackUnderflow = errors.New("organism: stack underflow")
	// ErrPushNullValue is returned when PUSH is asked to push an
	// uninitialized Value (spec §4.4: "PUSH-null-value fails").
	ErrPushNullValue = errors.New("organism: cannot push a null value")
)

// PushData pushes v onto the data stack, failing with ErrStackOverflow if
// the configured depth would be exceeded, or ErrPushNullValue if v was
// never constructed via ScalarValue/VectorValue.
func (o *Organism) PushData(v Value) error {
	if !v.Valid() {
		return ErrPushNullValue
	}
	if len(o.DataStack) >= o.Limits.DataStackMaxDepth {
		return ErrStackOverflow
	}
	o.DataStack = append(o.DataStack, v)
	return nil
}

// PopData pops the top of the data stack.
func (o *Organism) PopData() (Value, error) {
	if len(o.DataStack) == 0 {
		return Value{}, ErrStackUnderflow
	}
	n := len(o.DataStack) - 1
	v := o.DataStack[n]
	o.DataStack = o.DataStack[:n]
	return v, nil
}

// PeekData returns the value at depth (0 = top) without popping it.
func (o *Organism) PeekData(depth int) (Value, error) {
	n := len(o.DataStack)
	if depth < 0 || depth >= n {
		return Value{}, ErrStackUnderflow
	}
	return o.DataStack[n-1-depth], nil
}

// Frame is a single call-stack entry: enough to resume the caller and
// restore the register snapshot CALL took before jumping (spec §4.4 CALL).
type Frame struct {
	ProcName    string
	ReturnIP    environment.Coord
	CallIP      environment.Coord
	SavedPR     []environment.Coord
	SavedFPR    []molecule.Word
	SavedLocals []molecule.Word
}

// PushCall pushes a call frame.
func (o *Organism) PushCall(f Frame) {
	o.CallStack = append(o.CallStack, f)
}

// PopCall pops the top call frame.
func (o *Organism) PopCall() (Frame, error) {
	if len(o.CallStack) == 0 {
		return Frame{}, ErrStackUnderflow
	}
	n := len(o.CallStack) - 1
	f := o.CallStack[n]
	o.CallStack = o.CallStack[:n]
	return f, nil
}

// PushLocation pushes a coordinate onto the location stack.
func (o *Organism) PushLocation(c environment.Coord) {
	o.LocationStack = append(o.LocationStack, c)
}

// PopLocation pops the top of the location stack.
func (o *Organism) PopLocation() (environment.Coord, error) {
	if len(o.LocationStack) == 0 {
		return environment.Coord{}, ErrStackUnderflow
	}
	n := len(o.LocationStack) - 1
	c := o.LocationStack[n]
	o.LocationStack = o.LocationStack[:n]
	return c, nil
}
