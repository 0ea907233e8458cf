package organism

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
)

func testLimits() Limits {
	return Limits{
		NumDR: 4, NumPR: 4, NumFPR: 2, NumLR: 2, NumDP: 2,
		PRBase: 100, FPRBase: 200, LRBase: 300,
		DataStackMaxDepth: 8, MaxEnergy: 1000, MaxEntropy: 1000, MaxSkips: 16,
	}
}

func TestNewSeedsOwnedCell(t *testing.T) {
	env := environment.New([]int32{8, 8}, environment.Torus)
	start := environment.NewCoord(2, 2)
	seed := molecule.Pack(molecule.CODE, 1, 0)

	o, err := New(1, "p", start, environment.NewCoord(1, 0), testLimits(), seed, env)
	require.NoError(t, err)
	require.Equal(t, 1, env.OwnedCount(1))
	require.Equal(t, o.ER, o.Limits.MaxEnergy)
}

func TestIsCellAccessibleOwnSelfOnly(t *testing.T) {
	o := &Organism{ID: 7}
	require.True(t, o.IsCellAccessible(7))
	require.False(t, o.IsCellAccessible(1))
	require.False(t, o.IsCellAccessible(0))
}

func TestRegisterBankRouting(t *testing.T) {
	o := &Organism{Limits: testLimits()}
	o.DR = make([]molecule.Word, 4)
	o.PR = make([]environment.Coord, 4)
	o.FPR = make([]molecule.Word, 2)
	o.LR = make([]environment.Coord, 2)

	require.NoError(t, o.WriteRegister(2, ScalarValue(molecule.Pack(molecule.DATA, 9, 0))))
	v, err := o.ReadRegister(2)
	require.NoError(t, err)
	require.Equal(t, int32(9), v.AsScalar().Scalar())

	require.NoError(t, o.WriteRegister(101, VectorValue(environment.NewCoord(1, -1))))
	v, err = o.ReadRegister(101)
	require.NoError(t, err)
	require.True(t, v.IsVector())
	require.True(t, v.AsVector().Equal(environment.NewCoord(1, -1)))

	_, err = o.ReadRegister(9999)
	require.ErrorIs(t, err, ErrBankOutOfBounds)
}

func TestChargeEnergyKillsOnDepletion(t *testing.T) {
	o := &Organism{Limits: testLimits(), ER: 5}
	o.ChargeEnergy(10, 3)
	require.True(t, o.Dead)
	require.Equal(t, int64(0), o.ER)
	require.Equal(t, int64(3), o.Entropy)
}

func TestChargeEnergyCapsAtMax(t *testing.T) {
	o := &Organism{Limits: testLimits(), ER: 990}
	o.ChargeEnergy(-500, 0)
	require.Equal(t, o.Limits.MaxEnergy, o.ER)
}

func TestDataStackOverflowAndUnderflow(t *testing.T) {
	o := &Organism{Limits: Limits{DataStackMaxDepth: 1}}
	require.NoError(t, o.PushData(ScalarValue(molecule.Pack(molecule.DATA, 1, 0))))
	err := o.PushData(ScalarValue(molecule.Pack(molecule.DATA, 2, 0)))
	require.ErrorIs(t, err, ErrStackOverflow)

	_, err = o.PopData()
	require.NoError(t, err)
	_, err = o.PopData()
	require.ErrorIs(t, err, ErrStackUnderflow)
}

func TestPushNullValueRejected(t *testing.T) {
	o := &Organism{Limits: testLimits()}
	err := o.PushData(Value{})
	require.ErrorIs(t, err, ErrPushNullValue)
}

func TestAdvanceIPHonorsSkipFlag(t *testing.T) {
	env := environment.New([]int32{4, 4}, environment.Torus)
	o := &Organism{IP: environment.NewCoord(1, 1), DV: environment.NewCoord(1, 0), SkipIPAdvance: true}
	o.AdvanceIP(env)
	require.True(t, o.IP.Equal(environment.NewCoord(1, 1)))
	require.False(t, o.SkipIPAdvance)

	o.AdvanceIP(env)
	require.True(t, o.IP.Equal(environment.NewCoord(2, 1)))
}

func TestSkipNopCellsStopsOnFirstRealInstruction(t *testing.T) {
	env := environment.New([]int32{4, 4}, environment.Torus)
	require.NoError(t, env.Set(environment.NewCoord(2, 0), molecule.Pack(molecule.CODE, 1, 0), 1))
	o := &Organism{IP: environment.NewCoord(0, 0), DV: environment.NewCoord(1, 0), Limits: testLimits(), InitialPosition: environment.NewCoord(0, 0)}
	lf := func(_ *environment.Environment, _ environment.Coord) int { return 1 }

	stalled := o.SkipNopCells(env, lf)
	require.False(t, stalled)
	require.Equal(t, uint64(0), o.StallCount)
	require.True(t, o.IP.Equal(environment.NewCoord(2, 0)))
	require.False(t, o.FailureFlag)
	require.False(t, o.SkipIPAdvance)
}

func TestSkipNopCellsStallsAndResetsIPWhenCallStackEmpty(t *testing.T) {
	env := environment.New([]int32{4, 4}, environment.Torus)
	limits := testLimits()
	limits.MaxSkips = 4
	o := &Organism{IP: environment.NewCoord(0, 0), DV: environment.NewCoord(1, 0), Limits: limits, InitialPosition: environment.NewCoord(3, 3)}
	lf := func(_ *environment.Environment, _ environment.Coord) int { return 1 }

	stalled := o.SkipNopCells(env, lf)
	require.True(t, stalled)
	require.Equal(t, uint64(1), o.StallCount)
	require.True(t, o.IP.Equal(environment.NewCoord(3, 3)))
	require.True(t, o.FailureFlag)
	require.Equal(t, "Max skips exceeded", o.FailureReason)
	require.True(t, o.SkipIPAdvance)
}

func TestSkipNopCellsStallsAndPopsCallFrameWhenPresent(t *testing.T) {
	env := environment.New([]int32{4, 4}, environment.Torus)
	limits := testLimits()
	limits.MaxSkips = 4
	limits.NumPR = 1
	o := &Organism{
		IP: environment.NewCoord(0, 0), DV: environment.NewCoord(1, 0), Limits: limits,
		InitialPosition: environment.NewCoord(3, 3),
		PR:              make([]environment.Coord, 1),
	}
	o.PushCall(Frame{ReturnIP: environment.NewCoord(1, 1), SavedPR: []environment.Coord{environment.NewCoord(9, 9)}})
	lf := func(_ *environment.Environment, _ environment.Coord) int { return 1 }

	stalled := o.SkipNopCells(env, lf)
	require.True(t, stalled)
	require.Equal(t, uint64(1), o.StallCount)
	require.True(t, o.IP.Equal(environment.NewCoord(1, 1)))
	require.True(t, o.PR[0].Equal(environment.NewCoord(9, 9)))
	require.Empty(t, o.CallStack)
}

func TestGenomeHashStableUnderReorderedOwnership(t *testing.T) {
	env := environment.New([]int32{4, 4}, environment.Torus)
	require.NoError(t, env.Set(environment.NewCoord(0, 0), molecule.Pack(molecule.CODE, 1, 0), 1))
	require.NoError(t, env.Set(environment.NewCoord(1, 1), molecule.Pack(molecule.CODE, 2, 0), 1))

	h1 := GenomeHash(env, 1)
	h2 := GenomeHash(env, 1)
	require.Equal(t, h1, h2)

	empty := GenomeHash(env, 2)
	require.NotEqual(t, h1, empty)
}
