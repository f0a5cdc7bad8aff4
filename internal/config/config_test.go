package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasUsableRoots(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.ProjectRoot)
	assert.NotEmpty(t, cfg.ResultsRoot)
	assert.Equal(t, "v1", cfg.SolverVersion)
}

func TestLoad_ReadsEnvOverride(t *testing.T) {
	t.Setenv("LUXERA_SOLVER_VERSION", "v2")
	t.Setenv("LUXERA_DATABASE_URL", "postgres://example")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "v2", cfg.SolverVersion)
	assert.Equal(t, "postgres://example", cfg.DatabaseURL)
}

func TestLoad_MissingEnvFileIsNotAnError(t *testing.T) {
	_, err := Load(os.DevNull + ".does-not-exist")
	assert.NoError(t, err)
}

func TestLoadYAMLPreset_OverridesOnlyNonZeroFields(t *testing.T) {
	base := Default()
	base.HTTPAddr = ":9999"

	preset := []byte("solver_version: v3\ncache_root: /tmp/cache\n")
	merged, err := LoadYAMLPreset(base, preset)
	require.NoError(t, err)

	assert.Equal(t, "v3", merged.SolverVersion)
	assert.Equal(t, "/tmp/cache", merged.CacheRoot)
	assert.Equal(t, ":9999", merged.HTTPAddr)
}
