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

import "fmt"

// FaultCode enumerates the per-instruction error taxonomy (spec §7). These
// are never system-fatal: an instruction that faults sets the organism's
// failure flag and the tick continues.
type FaultCode int

const (
	InvalidOperandCount FaultCode = iota
	InvalidOperandType
	OutOfBounds
	DivideByZero
	StackUnderflow
	StackOverflow
	TypeMismatchStrict
	UnitVectorRequired
	CellOccupied
	InvalidLabelHash
	AxisOutOfBounds
	AxesNotDistinct
	DegenerateDirectionVector
	InvalidLR
	UnknownOpcode
	MaxSkipsExceeded
)

var faultNames = [...]string{
	InvalidOperandCount:       "InvalidOperandCount",
	InvalidOperandType:        "InvalidOperandType",
	OutOfBounds:               "OutOfBounds",
	DivideByZero:              "DivideByZero",
	StackUnderflow:            "StackUnderflow",
	StackOverflow:             "StackOverflow",
	TypeMismatchStrict:        "TypeMismatchStrict",
	UnitVectorRequired:        "UnitVectorRequired",
	CellOccupied:              "CellOccupied",
	InvalidLabelHash:          "InvalidLabelHash",
	AxisOutOfBounds:           "AxisOutOfBounds",
	AxesNotDistinct:           "AxesNotDistinct",
	DegenerateDirectionVector: "DegenerateDirectionVector",
	InvalidLR:                 "InvalidLR",
	UnknownOpcode:             "UnknownOpcode",
	MaxSkipsExceeded:          "MaxSkipsExceeded",
}

func (c FaultCode) String() string {
	if int(c) < len(faultNames) && faultNames[c] != "" {
		return faultNames[c]
	}
	return fmt.Sprintf("FaultCode(%d)", int(c))
}

// Fault is the structured, non-exceptional failure an instruction reports
// instead of throwing (spec §9 "exception-based control flow... maps to
// explicit Result-shaped returns"). Code identifies the category; Reason
// is the human-readable string surfaced via Organism.FailureReason.
type Fault struct {
	Code   FaultCode
	Reason string
}

func (f *Fault) Error() string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Reason)
}

// Faultf constructs a *Fault with a formatted reason.
func Faultf(code FaultCode, format string, args ...any) *Fault {
	return &Fault{Code: code, Reason: fmt.Sprintf(format, args...)}
}
