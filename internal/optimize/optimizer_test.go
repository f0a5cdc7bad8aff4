package optimize

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/geom/numeric"
	"luxera/internal/project"
	"luxera/internal/scene"
)

func roomProject(t *testing.T) *project.Project {
	t.Helper()
	p := project.New("demo")
	p.Geometry.Rooms = []scene.Room{{
		ID:   "r1",
		Name: "Office",
		BoundaryPolygon: []numeric.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 6, Y: 0, Z: 0},
			{X: 6, Y: 8, Z: 0},
			{X: 0, Y: 8, Z: 0},
		},
		Height: 3,
	}}
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.ies")
	require.NoError(t, err)
	_, err = f.WriteString("IESNA:LM-63-2019\nTILT=NONE\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	p.PhotometryAssets = []project.PhotometryAsset{{ID: "a1", Path: f.Name(), Lumens: 3000, BeamDeg: 120}}
	p.Jobs = []project.JobSpec{{ID: "j1", Kind: "indoor", SolverVersion: "v1", BackendID: "radiosity"}}
	return p
}

func TestRun_ProducesArtifactsAndPicksBest(t *testing.T) {
	p := roomProject(t)
	dir := t.TempDir()

	artifacts, err := Run(p, "j1", 4, DefaultConstraints(), dir, t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, artifacts.CandidatesCSV)
	assert.FileExists(t, artifacts.TopKCSV)
	assert.FileExists(t, artifacts.BestDiffJSON)
	assert.FileExists(t, artifacts.ManifestJSON)
}

func TestRun_RejectsProjectWithoutRooms(t *testing.T) {
	p := project.New("demo")
	p.PhotometryAssets = []project.PhotometryAsset{{ID: "a1"}}
	_, err := Run(p, "j1", 2, DefaultConstraints(), t.TempDir(), t.TempDir())
	assert.Error(t, err)
}
