package label

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
)

func TestResolvePrefersOwnLabelOverForeignAtEqualDistance(t *testing.T) {
	env := environment.New([]int32{32, 32}, environment.Torus)
	r := New(env, 0, 3, 16)

	ownLabel := molecule.Pack(molecule.LABEL, 100, 0)
	foreignLabel := molecule.Pack(molecule.LABEL, 100, 0)
	require.NoError(t, env.Set(environment.NewCoord(5, 5), ownLabel, 1))
	require.NoError(t, env.Set(environment.NewCoord(6, 5), foreignLabel, 2))

	coord, ok := r.Resolve(0, 100, environment.NewCoord(6, 5), 1)
	require.True(t, ok)
	require.Equal(t, environment.NewCoord(5, 5), coord)
}

func TestResolveWithinToleranceByHammingDistance(t *testing.T) {
	env := environment.New([]int32{16, 16}, environment.Torus)
	r := New(env, 2, 3, 16)

	// 0b101 vs 0b100: Hamming distance 1, within tolerance 2.
	require.NoError(t, env.Set(environment.NewCoord(2, 2), molecule.Pack(molecule.LABEL, 0b100, 0), 1))

	coord, ok := r.Resolve(0, 0b101, environment.NewCoord(2, 2), 1)
	require.True(t, ok)
	require.Equal(t, environment.NewCoord(2, 2), coord)
}

func TestResolveRejectsBeyondTolerance(t *testing.T) {
	env := environment.New([]int32{16, 16}, environment.Torus)
	r := New(env, 1, 3, 16)

	// 0b11111 vs 0: Hamming distance 5, exceeds tolerance 1.
	require.NoError(t, env.Set(environment.NewCoord(1, 1), molecule.Pack(molecule.LABEL, 0, 0), 1))

	_, ok := r.Resolve(0, 0b11111, environment.NewCoord(1, 1), 1)
	require.False(t, ok)
}

func TestResolveNoMatchReturnsFalse(t *testing.T) {
	env := environment.New([]int32{8, 8}, environment.Torus)
	r := New(env, 2, 3, 16)

	_, ok := r.Resolve(0, 42, environment.NewCoord(0, 0), 1)
	require.False(t, ok)
}

func TestResolveCachesSelfScanPerTick(t *testing.T) {
	env := environment.New([]int32{16, 16}, environment.Torus)
	r := New(env, 0, 3, 16)
	require.NoError(t, env.Set(environment.NewCoord(4, 4), molecule.Pack(molecule.LABEL, 7, 0), 1))

	first := r.selfLabels(3, 1)
	require.Len(t, first, 1)

	// A label added after the scan at tick 3 should not appear on a second
	// lookup within the SAME tick (cache hit), but should appear at a new
	// tick number.
	require.NoError(t, env.Set(environment.NewCoord(5, 5), molecule.Pack(molecule.LABEL, 8, 0), 1))
	cached := r.selfLabels(3, 1)
	require.Len(t, cached, 1)

	fresh := r.selfLabels(4, 1)
	require.Len(t, fresh, 2)
}
