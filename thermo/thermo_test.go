package thermo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evochora/evochora-sub007/isa"
)

func TestLookupFallsBackMnemonicFamilyDefault(t *testing.T) {
	tab := NewTable(Cost{Energy: 1, Entropy: 0})
	tab.SetFamily(isa.FamilyArithmetic, Cost{Energy: 5, Entropy: 1})
	tab.SetMnemonic("ADD", "RR", Cost{Energy: 10, Entropy: 2})

	addRR := &isa.Descriptor{Family: isa.FamilyArithmetic, Mnemonic: "ADD", Variant: "RR"}
	require.Equal(t, Cost{Energy: 10, Entropy: 2}, tab.Lookup(addRR))

	addRI := &isa.Descriptor{Family: isa.FamilyArithmetic, Mnemonic: "ADD", Variant: "RI"}
	require.Equal(t, Cost{Energy: 5, Entropy: 1}, tab.Lookup(addRI))

	sub := &isa.Descriptor{Family: isa.FamilyArithmetic, Mnemonic: "SUB", Variant: "RR"}
	require.Equal(t, Cost{Energy: 5, Entropy: 1}, tab.Lookup(sub))

	nop := &isa.Descriptor{Family: isa.FamilyNOP, Mnemonic: "NOP"}
	require.Equal(t, Cost{Energy: 1, Entropy: 0}, tab.Lookup(nop))

	require.Equal(t, Cost{Energy: 1, Entropy: 0}, tab.Lookup(nil))
}
