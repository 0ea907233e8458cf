package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/isa"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

func testLimits() organism.Limits {
	return organism.Limits{
		NumDR: 4, NumPR: 2, NumFPR: 2, NumLR: 2, NumDP: 1,
		PRBase: 100, FPRBase: 200, LRBase: 300,
		DataStackMaxDepth: 8, MaxEnergy: 1000, MaxEntropy: 1000, MaxSkips: 4,
	}
}

func TestPlanSkipsPastEmptyCellsToRealInstructionWithoutStalling(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	o, err := organism.New(1, "a", environment.NewCoord(0), environment.NewCoord(1), testLimits(), molecule.Pack(molecule.DATA, 1, 0), env)
	require.NoError(t, err)
	// OpNOP (opcode 0) is bit-identical to molecule.Empty, so it can never
	// be the "real instruction" a skip lands on; use DROP instead.
	require.NoError(t, env.Set(environment.NewCoord(5), molecule.Pack(molecule.CODE, int32(isa.OpDrop), 0), 1))
	o.IP = environment.NewCoord(3) // two empty cells before the real instruction at 5

	pi := Plan(o, env, false, nil)
	require.False(t, pi.Stalled)
	require.Equal(t, "DROP", pi.Ctx.Descriptor.Mnemonic)
	require.Empty(t, pi.Ctx.Operands)
	require.True(t, o.IP.Equal(environment.NewCoord(5)))
	require.False(t, o.FailureFlag)
}

func TestPlanStallsAfterExhaustingMaxSkipsOverEmptyCells(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	limits := testLimits()
	limits.MaxSkips = 3
	o, err := organism.New(1, "a", environment.NewCoord(0), environment.NewCoord(1), limits, molecule.Pack(molecule.DATA, 1, 0), env)
	require.NoError(t, err)
	o.IP = environment.NewCoord(3) // no CODE cell anywhere in this ring

	pi := Plan(o, env, false, nil)
	require.True(t, pi.Stalled)
	require.Equal(t, "STALL", pi.Ctx.Descriptor.Mnemonic)
	require.True(t, o.FailureFlag)
	require.Equal(t, "Max skips exceeded", o.FailureReason)
	require.True(t, o.IP.Equal(o.InitialPosition))
}

func TestPlanFailsOrganismOnUnknownOpcode(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	o, err := organism.New(1, "a", environment.NewCoord(0), environment.NewCoord(1), testLimits(), molecule.Pack(molecule.CODE, 9999, 0), env)
	require.NoError(t, err)

	pi := Plan(o, env, false, nil)
	require.Equal(t, "UNKNOWN", pi.Ctx.Descriptor.Mnemonic)
	require.True(t, o.FailureFlag)
}

func TestExecuteAdvancesIPByDescriptorLength(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	// OpNOP (opcode 0) is bit-identical to molecule.Empty and would route
	// through the skip-nop path rather than decode directly; use DROP,
	// primed with a value so it succeeds without a fault.
	o, err := organism.New(1, "a", environment.NewCoord(0), environment.NewCoord(1), testLimits(), molecule.Pack(molecule.CODE, int32(isa.OpDrop), 0), env)
	require.NoError(t, err)
	require.NoError(t, o.PushData(organism.ScalarValue(molecule.Pack(molecule.DATA, 1, 0))))

	pi := Plan(o, env, false, nil)
	fault := Execute(pi, env)
	require.Nil(t, fault)
	require.Equal(t, int32(1), o.IP.At(0))
	require.False(t, o.FailureFlag)
	require.False(t, o.PrevInstructionFailed)
}

func TestExecuteRecordsFaultAndFailureOnUnknownOpcode(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	o, err := organism.New(1, "a", environment.NewCoord(0), environment.NewCoord(1), testLimits(), molecule.Pack(molecule.CODE, 9999, 0), env)
	require.NoError(t, err)

	pi := Plan(o, env, false, nil)
	fault := Execute(pi, env)
	require.NotNil(t, fault)
	require.Equal(t, isa.UnknownOpcode, fault.Code)
	require.True(t, o.PrevInstructionFailed)
}

func TestInterceptRecoversFromPanicAndContinuesChain(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	o, err := organism.New(1, "a", environment.NewCoord(0), environment.NewCoord(1), testLimits(), molecule.Pack(molecule.DATA, 1, 0), env)
	require.NoError(t, err)
	pi := Plan(o, env, false, nil)

	var recoveredCount int
	var secondRan bool
	chain := []Interceptor{
		func(*PlannedInstruction) { panic("boom") },
		func(*PlannedInstruction) { secondRan = true },
	}
	Intercept(pi, chain, func(any) { recoveredCount++ })

	require.Equal(t, 1, recoveredCount)
	require.True(t, secondRan)
}

func TestTargetsIsCachedAfterFirstCall(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	o, err := organism.New(1, "a", environment.NewCoord(0), environment.NewCoord(1), testLimits(), molecule.Pack(molecule.DATA, 1, 0), env)
	require.NoError(t, err)
	pi := Plan(o, env, false, nil)

	calls := 0
	pi.Ctx.Descriptor = &isa.Descriptor{
		Mnemonic: "POKE",
		Targets: func(*isa.Context) []environment.Coord {
			calls++
			return []environment.Coord{environment.NewCoord(5)}
		},
	}

	first := pi.Targets()
	second := pi.Targets()
	require.Equal(t, first, second)
	require.Equal(t, 1, calls)
}
