package isa

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

func testOrganism(t *testing.T) *organism.Organism {
	t.Helper()
	env := environment.New([]int32{8}, environment.Torus)
	limits := organism.Limits{
		NumDR: 2, NumPR: 1, NumFPR: 1, NumLR: 1, NumDP: 1,
		PRBase: 100, FPRBase: 200, LRBase: 300,
		DataStackMaxDepth: 4, MaxEnergy: 1000, MaxEntropy: 1000, MaxSkips: 4,
	}
	o, err := organism.New(1, "t", environment.NewCoord(0), environment.NewCoord(1), limits, molecule.Pack(molecule.DATA, 1, 0), env)
	require.NoError(t, err)
	return o
}

func TestArithmeticAddRRWritesSumToDestRegister(t *testing.T) {
	_, d, ok := LookupMnemonic("ADD", "RR")
	require.True(t, ok)
	o := testOrganism(t)
	require.NoError(t, o.WriteRegister(0, organism.ScalarValue(molecule.Pack(molecule.DATA, 3, 0))))
	require.NoError(t, o.WriteRegister(1, organism.ScalarValue(molecule.Pack(molecule.DATA, 4, 0))))

	ctx := &Context{
		Org: o,
		Operands: []ResolvedOperand{
			{Source: REGISTER, RawID: 0, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 3, 0))},
			{Source: REGISTER, RawID: 1, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 4, 0))},
		},
	}
	fault := d.Execute(ctx)
	require.Nil(t, fault)

	got, err := o.ReadRegister(0)
	require.NoError(t, err)
	require.Equal(t, int32(7), got.AsScalar().Scalar())
}

func TestArithmeticDivRRFaultsOnDivideByZero(t *testing.T) {
	_, d, ok := LookupMnemonic("DIV", "RR")
	require.True(t, ok)
	o := testOrganism(t)

	ctx := &Context{
		Org: o,
		Operands: []ResolvedOperand{
			{Source: REGISTER, RawID: 0, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 10, 0))},
			{Source: REGISTER, RawID: 1, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 0, 0))},
		},
	}
	fault := d.Execute(ctx)
	require.NotNil(t, fault)
	require.Equal(t, DivideByZero, fault.Code)
}

func TestArithmeticStrictTypingFaultsOnTypeMismatch(t *testing.T) {
	_, d, ok := LookupMnemonic("ADD", "RR")
	require.True(t, ok)
	o := testOrganism(t)

	ctx := &Context{
		Org:          o,
		StrictTyping: true,
		Operands: []ResolvedOperand{
			{Source: REGISTER, RawID: 0, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 3, 0))},
			{Source: REGISTER, RawID: 1, Value: organism.ScalarValue(molecule.Pack(molecule.ENERGY, 4, 0))},
		},
	}
	fault := d.Execute(ctx)
	require.NotNil(t, fault)
	require.Equal(t, TypeMismatchStrict, fault.Code)
}

func TestArithmeticStackVariantPushesResult(t *testing.T) {
	_, d, ok := LookupMnemonic("MUL", "SS")
	require.True(t, ok)
	o := testOrganism(t)
	require.NoError(t, o.PushData(organism.ScalarValue(molecule.Pack(molecule.DATA, 6, 0))))
	require.NoError(t, o.PushData(organism.ScalarValue(molecule.Pack(molecule.DATA, 7, 0))))

	ctx := &Context{
		Org: o,
		Operands: []ResolvedOperand{
			{Source: STACK, RawID: -1, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 7, 0))},
			{Source: STACK, RawID: -1, Value: organism.ScalarValue(molecule.Pack(molecule.DATA, 6, 0))},
		},
	}
	fault := d.Execute(ctx)
	require.Nil(t, fault)

	top, err := o.PopData()
	require.NoError(t, err)
	require.Equal(t, int32(42), top.AsScalar().Scalar())
}
