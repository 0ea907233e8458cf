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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

func TestBitwiseAndCombinesLowBitsOfBothOperands(t *testing.T) {
	_, d, ok := LookupMnemonic("AND", "")
	require.True(t, ok)
	o := testOrganism(t)

	ctx := &Context{
		Org: o,
		Operands: []ResolvedOperand{
			{Source: REGISTER, RawID: 0, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 0b1100, 0))},
			{Source: REGISTER, RawID: 1, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 0b1010, 0))},
		},
	}
	fault := d.Execute(ctx)
	require.Nil(t, fault)

	got, err := o.ReadRegister(0)
	require.NoError(t, err)
	require.Equal(t, int32(0b1000), got.AsScalar().Scalar())
}

func TestBitwiseShlWrapsShiftAmountModuloValueBits(t *testing.T) {
	_, d, ok := LookupMnemonic("SHL", "")
	require.True(t, ok)
	o := testOrganism(t)

	// A shift amount of exactly VALUE_BITS must behave like a shift of 0,
	// since the decision is to reduce the amount modulo VALUE_BITS.
	ctx := &Context{
		Org: o,
		Operands: []ResolvedOperand{
			{Source: REGISTER, RawID: 0, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 5, 0))},
			{Source: REGISTER, RawID: 1, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, int32(molecule.ValueBits), 0))},
		},
	}
	fault := d.Execute(ctx)
	require.Nil(t, fault)

	got, err := o.ReadRegister(0)
	require.NoError(t, err)
	require.Equal(t, int32(5), got.AsScalar().Scalar())
}

func TestBitwiseShlFaultsWhenShiftAmountIsNotData(t *testing.T) {
	_, d, ok := LookupMnemonic("SHL", "")
	require.True(t, ok)
	o := testOrganism(t)

	ctx := &Context{
		Org: o,
		Operands: []ResolvedOperand{
			{Source: REGISTER, RawID: 0, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 5, 0))},
			{Source: REGISTER, RawID: 1, Value: organism.ScalarValue(molecule.Pack(molecule.ENERGY, 2, 0))},
		},
	}
	fault := d.Execute(ctx)
	require.NotNil(t, fault)
	require.Equal(t, InvalidOperandType, fault.Code)
}

func TestBitwiseRotIsReversibleByRotatingBackTheSameAmount(t *testing.T) {
	_, rot, ok := LookupMnemonic("ROT", "")
	require.True(t, ok)
	o := testOrganism(t)

	require.NoError(t, o.WriteRegister(0, organism.ScalarValue(molecule.Pack(molecule.DATA, 0b1011, 0))))
	ctx := &Context{
		Org: o,
		Operands: []ResolvedOperand{
			{Source: REGISTER, RawID: 0, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 0b1011, 0))},
			{Source: REGISTER, RawID: 1, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 3, 0))},
		},
	}
	require.Nil(t, rot.Execute(ctx))
	rotated, err := o.ReadRegister(0)
	require.NoError(t, err)
	require.NotEqual(t, int32(0b1011), rotated.AsScalar().Scalar())

	back := &Context{
		Org: o,
		Operands: []ResolvedOperand{
			{Source: REGISTER, RawID: 0, Value: rotated},
			{Source: REGISTER, RawID: 1, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, int32(molecule.ValueBits)-3, 0))},
		},
	}
	require.Nil(t, rot.Execute(back))
	restored, err := o.ReadRegister(0)
	require.NoError(t, err)
	require.Equal(t, int32(0b1011), restored.AsScalar().Scalar())
}
