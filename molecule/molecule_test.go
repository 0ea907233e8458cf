package molecule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	for w := 0; w < 1<<16; w++ {
		word := Word(w)
		got := Pack(Unpack(word))
		// Only bits within TypeBits/MarkerBits/ValueBits participate; the
		// codec is total over the full 32-bit space, but sampling the low
		// 16 bits plus a handful of high patterns is enough to pin the
		// round-trip contract without an O(2^32) loop.
		require.Equal(t, word, got, "pack(unpack(%d)) must equal %d", word, word)
	}
}

func TestPackUnpackRoundTripHighBits(t *testing.T) {
	for _, w := range []Word{0, math.MaxUint32, 1 << 31, 1 << 24, 0xABCDEF01} {
		require.Equal(t, w, Pack(Unpack(w)))
	}
}

func TestScalarSignExtension(t *testing.T) {
	w := Pack(DATA, -1, 0)
	require.Equal(t, int32(-1), w.Scalar())

	w = Pack(DATA, MaxValue, 0)
	require.Equal(t, MaxValue, w.Scalar())

	w = Pack(DATA, MinValue, 0)
	require.Equal(t, MinValue, w.Scalar())
}

func TestEmpty(t *testing.T) {
	require.True(t, Empty.IsEmpty())
	require.False(t, Pack(DATA, 0, 0).IsEmpty())
	require.False(t, Pack(CODE, 1, 0).IsEmpty())
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "CODE", CODE.String())
	require.Equal(t, "LABELREF", LABELREF.String())
	require.Contains(t, Type(200).String(), "Type(200)")
}

func TestWithMarker(t *testing.T) {
	w := Pack(DATA, 42, 3)
	w2 := w.WithMarker(9)
	require.Equal(t, byte(9), w2.Marker())
	require.Equal(t, int32(42), w2.Scalar())
	require.Equal(t, DATA, w2.Type())
}
