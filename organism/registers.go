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
)

// ErrBankOutOfBounds is returned by register access when the converted
// in-bank index falls outside the organism's configured register count.
var ErrBankOutOfBounds = errors.New("organism: register index out of bounds")

// Bank identifies which register file an operand's raw id addresses.
type Bank int

const (
	BankDR Bank = iota
	BankPR
	BankFPR
	BankLR
)

// Limits configures the size of every register bank and stack, handed to
// New so the organism package has no compile-time dependency on a
// global configuration singleton.
type Limits struct {
	NumDR  int
	NumPR  int
	NumFPR int
	NumLR  int
	NumDP  int

	PRBase int32
	FPRBase int32
	LRBase int32

	DataStackMaxDepth int
	MaxEnergy         int64
	MaxEntropy        int64
	MaxSkips          int
}

// BankOf resolves which bank a raw register id belongs to and the
// zero-based index within that bank, using the base offsets declared in
// Limits (spec §4.3: "conversion is index = raw_id - base").
func (l Limits) BankOf(rawID int32) (bank Bank, index int) {
	switch {
	case rawID >= l.LRBase:
		return BankLR, int(rawID - l.LRBase)
	case rawID >= l.FPRBase:
		return BankFPR, int(rawID - l.FPRBase)
	case rawID >= l.PRBase:
		return BankPR, int(rawID - l.PRBase)
	default:
		return BankDR, int(rawID)
	}
}

// ReadRegister fetches the current value of the register addressed by
// rawID, returning ErrBankOutOfBounds if the bank's index is out of range.
func (o *Organism) ReadRegister(rawID int32) (Value, error) {
	bank, idx := o.Limits.BankOf(rawID)
	switch bank {
	case BankDR:
		if idx < 0 || idx >= len(o.DR) {
			return Value{}, ErrBankOutOfBounds
		}
		return ScalarValue(o.DR[idx]), nil
	case BankFPR:
		if idx < 0 || idx >= len(o.FPR) {
			return Value{}, ErrBankOutOfBounds
		}
		return ScalarValue(o.FPR[idx]), nil
	case BankPR:
		if idx < 0 || idx >= len(o.PR) {
			return Value{}, ErrBankOutOfBounds
		}
		return VectorValue(o.PR[idx]), nil
	case BankLR:
		if idx < 0 || idx >= len(o.LR) {
			return Value{}, ErrBankOutOfBounds
		}
		return VectorValue(o.LR[idx]), nil
	default:
		return Value{}, ErrBankOutOfBounds
	}
}

// WriteRegister stores v into the register addressed by rawID. Writing a
// scalar into a vector bank (or vice versa) stores the zero value of the
// wrong kind's accessor rather than failing loudly — callers (the
// instruction family implementations) are responsible for only ever
// writing the kind a bank holds.
func (o *Organism) WriteRegister(rawID int32, v Value) error {
	bank, idx := o.Limits.BankOf(rawID)
	switch bank {
	case BankDR:
		if idx < 0 || idx >= len(o.DR) {
			return ErrBankOutOfBounds
		}
		o.DR[idx] = v.AsScalar()
	case BankFPR:
		if idx < 0 || idx >= len(o.FPR) {
			return ErrBankOutOfBounds
		}
		o.FPR[idx] = v.AsScalar()
	case BankPR:
		if idx < 0 || idx >= len(o.PR) {
			return ErrBankOutOfBounds
		}
		o.PR[idx] = v.AsVector()
	case BankLR:
		if idx < 0 || idx >= len(o.LR) {
			return ErrBankOutOfBounds
		}
		o.LR[idx] = v.AsVector()
	default:
		return ErrBankOutOfBounds
	}
	return nil
}

// ActiveDP returns the organism's currently active data pointer.
func (o *Organism) ActiveDP() environment.Coord {
	return o.DP[o.ActiveDPIndex]
}

// SetActiveDP overwrites the currently active data pointer.
func (o *Organism) SetActiveDP(c environment.Coord) {
	o.DP[o.ActiveDPIndex] = c
}
