package environment

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/evochora/evochora-sub007/molecule"
)

func TestSetGetRoundTrip(t *testing.T) {
	e := New([]int32{4, 4}, Torus)
	c := NewCoord(1, 2)
	m := molecule.Pack(molecule.DATA, 7, 1)
	require.NoError(t, e.Set(c, m, 42))

	got, err := e.Get(c)
	require.NoError(t, err)
	require.Equal(t, m, got)

	owner, err := e.GetOwner(c)
	require.NoError(t, err)
	require.Equal(t, uint32(42), owner)

	require.True(t, e.CellsOwnedBy(42).Contains(mustFlat(t, e, c)))
}

func mustFlat(t *testing.T, e *Environment, c Coord) int {
	t.Helper()
	f, err := e.FlatIndex(c)
	require.NoError(t, err)
	return f
}

func TestEmptyMustBeUnowned(t *testing.T) {
	e := New([]int32{2, 2}, Torus)
	err := e.Set(NewCoord(0, 0), molecule.Empty, 1)
	require.ErrorIs(t, err, ErrEmptyMustBeUnowned)
}

func TestTorusWrap(t *testing.T) {
	e := New([]int32{4, 4}, Torus)
	flat, err := e.FlatIndex(NewCoord(-1, 5))
	require.NoError(t, err)
	want, _ := e.FlatIndex(NewCoord(3, 1))
	require.Equal(t, want, flat)
}

func TestBoundedOutOfRange(t *testing.T) {
	e := New([]int32{4, 4}, Bounded)
	_, err := e.FlatIndex(NewCoord(-1, 0))
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestOwnershipTransferUpdatesIndex(t *testing.T) {
	e := New([]int32{3, 3}, Torus)
	c := NewCoord(0, 0)
	require.NoError(t, e.Set(c, molecule.Pack(molecule.DATA, 1, 0), 1))
	require.Equal(t, 1, e.OwnedCount(1))

	require.NoError(t, e.Set(c, molecule.Pack(molecule.DATA, 2, 0), 2))
	require.Equal(t, 0, e.OwnedCount(1))
	require.Equal(t, 1, e.OwnedCount(2))
}

func TestClearOwnershipOfClearsMarkerPreservesValue(t *testing.T) {
	e := New([]int32{3, 3}, Torus)
	c := NewCoord(1, 1)
	m := molecule.Pack(molecule.STRUCTURE, 5, 9)
	require.NoError(t, e.Set(c, m, 7))

	e.ClearOwnershipOf(7)

	owner, err := e.GetOwner(c)
	require.NoError(t, err)
	require.Equal(t, uint32(0), owner)

	got, err := e.Get(c)
	require.NoError(t, err)
	require.Equal(t, molecule.STRUCTURE, got.Type())
	require.Equal(t, int32(5), got.Scalar())
	require.Equal(t, byte(0), got.Marker())
	require.Equal(t, 0, e.OwnedCount(7))
}

func TestCoordFromFlatRoundTrip(t *testing.T) {
	e := New([]int32{3, 5, 2}, Torus)
	for x := int32(0); x < 3; x++ {
		for y := int32(0); y < 5; y++ {
			for z := int32(0); z < 2; z++ {
				c := NewCoord(x, y, z)
				flat, err := e.FlatIndex(c)
				require.NoError(t, err)
				require.True(t, c.Equal(e.CoordFromFlat(flat)))
			}
		}
	}
}

func TestCheckInvariantsPasses(t *testing.T) {
	e := New([]int32{4, 4}, Torus)
	require.NoError(t, e.Set(NewCoord(0, 0), molecule.Pack(molecule.DATA, 1, 0), 1))
	require.NoError(t, e.CheckInvariants())
}

func TestCheckpointRestoreRoundTrip(t *testing.T) {
	e := New([]int32{3, 3}, Torus)
	require.NoError(t, e.Set(NewCoord(0, 0), molecule.Pack(molecule.DATA, 1, 0), 1))
	require.NoError(t, e.Set(NewCoord(2, 2), molecule.Pack(molecule.LABEL, 9, 0), 1))

	snap := e.Checkpoint()
	restored := Restore(snap)

	require.NoError(t, restored.CheckInvariants())
	require.Equal(t, e.OwnedCount(1), restored.OwnedCount(1))
	got, _ := restored.Get(NewCoord(2, 2))
	require.Equal(t, int32(9), got.Scalar())
}

func TestCheckpointSnapshotsOfIdenticalEnvironmentsAreDeepEqual(t *testing.T) {
	build := func() *Environment {
		e := New([]int32{3, 3}, Torus)
		if err := e.Set(NewCoord(0, 0), molecule.Pack(molecule.DATA, 1, 0), 1); err != nil {
			t.Fatal(err)
		}
		if err := e.Set(NewCoord(2, 2), molecule.Pack(molecule.LABEL, 9, 0), 1); err != nil {
			t.Fatal(err)
		}
		return e
	}

	snapA := build().Checkpoint()
	snapB := build().Checkpoint()

	if diff := cmp.Diff(snapA, snapB); diff != "" {
		t.Fatalf("checkpoints of identically constructed environments diverged (-want +got):\n%s", diff)
	}

	snapB.Cells[0] = molecule.Pack(molecule.DATA, 2, 0)
	require.NotEmpty(t, cmp.Diff(snapA, snapB))
}

func TestNextPositionWraps(t *testing.T) {
	e := New([]int32{4, 4}, Bounded)
	next := e.NextPosition(NewCoord(3, 3), NewCoord(1, 1))
	require.True(t, next.Equal(NewCoord(0, 0)))
}
