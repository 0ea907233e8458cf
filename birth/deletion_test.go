package birth

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
	"github.com/evochora/evochora-sub007/organism"
)

func TestGeneDeletionClearsRunAfterLabel(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	child, err := organism.New(3, "child", environment.NewCoord(0), environment.NewCoord(1), testLimits(), molecule.Pack(molecule.DATA, 1, 0), env)
	require.NoError(t, err)

	require.NoError(t, env.Set(environment.NewCoord(0), molecule.Pack(molecule.LABEL, 5, 0), child.ID))
	require.NoError(t, env.Set(environment.NewCoord(1), molecule.Pack(molecule.DATA, 1, 0), child.ID))
	require.NoError(t, env.Set(environment.NewCoord(2), molecule.Pack(molecule.DATA, 2, 0), child.ID))
	require.NoError(t, env.Set(environment.NewCoord(3), molecule.Pack(molecule.DATA, 3, 0), child.ID))

	g := &GeneDeletion{Rate: 1, CountExponent: 2}
	g.OnBirth(env, nil, child, rand.New(rand.NewSource(1)))

	label, err := env.Get(environment.NewCoord(0))
	require.NoError(t, err)
	require.Equal(t, molecule.LABEL, label.Type())

	for p := int32(1); p <= 3; p++ {
		w, err := env.Get(environment.NewCoord(p))
		require.NoError(t, err)
		require.True(t, w.IsEmpty())
	}
}

func TestGeneDeletionStopsAtForeignOwner(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	child, err := organism.New(3, "child", environment.NewCoord(0), environment.NewCoord(1), testLimits(), molecule.Pack(molecule.DATA, 1, 0), env)
	require.NoError(t, err)
	require.NoError(t, env.Set(environment.NewCoord(0), molecule.Pack(molecule.LABEL, 5, 0), child.ID))
	require.NoError(t, env.Set(environment.NewCoord(1), molecule.Pack(molecule.DATA, 1, 0), child.ID))
	require.NoError(t, env.Set(environment.NewCoord(2), molecule.Pack(molecule.DATA, 9, 0), 99))

	g := &GeneDeletion{Rate: 1, CountExponent: 2}
	g.OnBirth(env, nil, child, rand.New(rand.NewSource(1)))

	foreign, err := env.Get(environment.NewCoord(2))
	require.NoError(t, err)
	require.Equal(t, int32(9), foreign.Scalar())
}
