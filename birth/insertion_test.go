package birth

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/isa"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

func TestGeneInsertionSynthesizesInstructionIntoNopRegion(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	child, err := organism.New(4, "child", environment.NewCoord(0), environment.NewCoord(1), testLimits(), molecule.Pack(molecule.DATA, 1, 0), env)
	require.NoError(t, err)
	require.NoError(t, env.Set(environment.NewCoord(0), molecule.Pack(molecule.DATA, 1, 0), child.ID))

	op, _, ok := isa.LookupMnemonicAny("DROP")
	require.True(t, ok)

	g := &GeneInsertion{
		Rate:       1,
		MinNopSize: 1,
		ArgMin:     0,
		ArgMax:     10,
		Entries:    []InsertionEntry{{Kind: "instruction", Weight: 1, Mnemonic: "DROP"}},
	}
	g.OnBirth(env, nil, child, rand.New(rand.NewSource(1)))

	w, err := env.Get(environment.NewCoord(1))
	require.NoError(t, err)
	require.Equal(t, molecule.CODE, w.Type())
	require.Equal(t, int32(op), w.Scalar())

	owner, err := env.GetOwner(environment.NewCoord(1))
	require.NoError(t, err)
	require.Equal(t, child.ID, owner)
}

func TestGeneInsertionSynthesizesLabelDerivedFromExisting(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	child, err := organism.New(4, "child", environment.NewCoord(0), environment.NewCoord(1), testLimits(), molecule.Pack(molecule.DATA, 1, 0), env)
	require.NoError(t, err)
	require.NoError(t, env.Set(environment.NewCoord(0), molecule.Pack(molecule.LABEL, 7, 0), child.ID))

	g := &GeneInsertion{
		Rate:       1,
		MinNopSize: 1,
		Entries:    []InsertionEntry{{Kind: "label", Weight: 1, Bitflips: 1}},
	}
	g.OnBirth(env, nil, child, rand.New(rand.NewSource(1)))

	w, err := env.Get(environment.NewCoord(1))
	require.NoError(t, err)
	require.Equal(t, molecule.LABEL, w.Type())
	require.NotEqual(t, int32(7), w.Scalar())
	require.LessOrEqual(t, hammingDistancePublic(uint32(7), uint32(w.Scalar())), 1)
}

// hammingDistancePublic mirrors package label's internal Hamming distance
// for the narrow purpose of this test, avoiding an unexported cross-package
// reach into label.
func hammingDistancePublic(a, b uint32) int {
	x := a ^ b
	n := 0
	for x != 0 {
		n++
		x &= x - 1
	}
	return n
}
