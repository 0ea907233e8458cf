package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultHasReferenceValues(t *testing.T) {
	cfg := Default()
	require.Equal(t, "TORUS", cfg.Environment.Topology)
	require.Equal(t, 2, cfg.Labels.Tolerance)
	require.GreaterOrEqual(t, cfg.Scheduler.Parallelism, 2)
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evochora.toml")
	doc := []byte(`
rand_seed = 42

[environment]
shape = [16, 16, 16]
topology = "BOUNDED"
value_bits = 20
marker_bits = 4

[scheduler]
parallelism = 8
`)
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	cfg, err := LoadTOML(path)
	require.NoError(t, err)
	require.Equal(t, []int{16, 16, 16}, cfg.Environment.Shape)
	require.Equal(t, "BOUNDED", cfg.Environment.Topology)
	require.Equal(t, 8, cfg.Scheduler.Parallelism)
	require.Equal(t, int64(42), cfg.RandSeed)
	// Fields absent from the document keep Default()'s values.
	require.Equal(t, int64(100000), cfg.Organism.MaxEnergy)
}

func TestLoadTOMLMissingFile(t *testing.T) {
	_, err := LoadTOML(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}
