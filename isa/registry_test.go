package isa

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evochora/evochora-sub007/environment"
	"github.com/evochora/evochora-sub007/molecule"
)

func TestLookupMnemonicResolvesExactVariant(t *testing.T) {
	op, d, ok := LookupMnemonic("SET", "RI")
	require.True(t, ok)
	require.Equal(t, "SET", d.Mnemonic)
	got, ok := Lookup(op)
	require.True(t, ok)
	require.Same(t, d, got)
}

func TestLookupMnemonicUnknownVariantFails(t *testing.T) {
	_, _, ok := LookupMnemonic("SET", "does-not-exist")
	require.False(t, ok)
}

func TestLookupMnemonicAnyPicksLexicographicallySmallestVariant(t *testing.T) {
	op1, d1, ok := LookupMnemonicAny("SET")
	require.True(t, ok)
	op2, d2, ok := LookupMnemonicAny("SET")
	require.True(t, ok)
	require.Equal(t, op1, op2)
	require.Same(t, d1, d2)
	require.Equal(t, OpSetRI, op1)
}

func TestLookupMnemonicAnyNoMnemonicFails(t *testing.T) {
	_, _, ok := LookupMnemonicAny("NOT_A_REAL_MNEMONIC")
	require.False(t, ok)
}

func TestLookupMnemonicAnyMatchesBareMnemonicWithoutVariant(t *testing.T) {
	op, d, ok := LookupMnemonicAny("NOP")
	require.True(t, ok)
	require.Equal(t, "NOP", d.Mnemonic)
	require.Equal(t, OpNOP, op)
}

func TestDecodeReturnsFalseForEmptyCell(t *testing.T) {
	env := environment.New([]int32{4}, environment.Torus)
	_, ok := Decode(env, environment.NewCoord(0))
	require.False(t, ok)
}

func TestDecodeReturnsFalseForNonCodeCell(t *testing.T) {
	env := environment.New([]int32{4}, environment.Torus)
	require.NoError(t, env.Set(environment.NewCoord(0), molecule.Pack(molecule.DATA, 5, 0), 1))
	_, ok := Decode(env, environment.NewCoord(0))
	require.False(t, ok)
}

func TestDecodeResolvesKnownOpcode(t *testing.T) {
	env := environment.New([]int32{4}, environment.Torus)
	op, d, ok := LookupMnemonicAny("DROP")
	require.True(t, ok)
	require.NoError(t, env.Set(environment.NewCoord(0), molecule.Pack(molecule.CODE, int32(op), 0), 1))

	got, ok := Decode(env, environment.NewCoord(0))
	require.True(t, ok)
	require.Same(t, d, got)
}

func TestLengthAtReportsOneForNonInstructionCell(t *testing.T) {
	env := environment.New([]int32{4}, environment.Torus)
	require.Equal(t, 1, LengthAt(env, environment.NewCoord(0)))
}

func TestLengthAtReportsDescriptorFootprint(t *testing.T) {
	env := environment.New([]int32{8}, environment.Torus)
	op, d, ok := LookupMnemonic("PUSH", "I")
	require.True(t, ok)
	require.NoError(t, env.Set(environment.NewCoord(0), molecule.Pack(molecule.CODE, int32(op), 0), 1))

	require.Equal(t, d.Length(env.Dims()), LengthAt(env, environment.NewCoord(0)))
}
