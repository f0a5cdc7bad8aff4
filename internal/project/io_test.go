package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTripsAndStampsRootDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.luxera.json")

	p := New("demo")
	p.Grids = []CalcGrid{{ID: "g1"}}

	require.NoError(t, Save(p, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Name)
	assert.Len(t, loaded.Grids, 1)
	assert.Equal(t, dir, loaded.RootDir)
}

func TestMigrate_StampsCurrentSchemaVersionWhenUnset(t *testing.T) {
	p := &Project{}
	require.NoError(t, Migrate(p))
	assert.Equal(t, CurrentSchemaVersion, p.SchemaVersion)
}

func TestMigrate_RejectsNewerSchemaVersion(t *testing.T) {
	p := &Project{SchemaVersion: CurrentSchemaVersion + 1}
	assert.Error(t, Migrate(p))
}
