package runner

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/project"
)

func singleGridProject(t *testing.T) *project.Project {
	t.Helper()
	p := project.New("demo")
	p.Grids = []project.CalcGrid{{
		ID: "g1", NX: 2, NY: 1,
		SamplePoints: [][3]float64{{0, 0, 0.85}, {2, 0, 0.85}},
		SampleMask:   []bool{true, true},
	}}
	p.Luminaires = []project.LuminaireInstance{{
		ID:                "l1",
		PhotometryAssetID: "a1",
		Transform: project.PlacementTransform{
			Position: [3]float64{1, 0, 2.7},
			Rotation: project.Rotation{Type: project.RotationEuler, EulerDeg: &[3]float64{0, 0, 0}},
		},
		MaintenanceFactor: 1,
		FluxMultiplier:    1,
	}}
	p.PhotometryAssets = []project.PhotometryAsset{{ID: "a1", Path: "", Lumens: 3000, BeamDeg: 120}}
	p.Jobs = []project.JobSpec{{ID: "j1", Kind: "indoor", SolverVersion: "v1", BackendID: "radiosity"}}
	return p
}

func TestRunJob_ProducesArtifactsAndCachesOnSecondRun(t *testing.T) {
	p := singleGridProject(t)
	p.PhotometryAssets[0].Path = writeFixturePhotometryFile(t)

	dir := t.TempDir()

	ref1, err := RunJob(nil, p, "j1", dir)
	require.NoError(t, err)
	assert.NotEmpty(t, ref1.JobHash)
	assert.DirExists(t, ref1.ResultDir)
	assert.FileExists(t, ref1.ResultDir+"/result.json")
	assert.FileExists(t, ref1.ResultDir+"/grid_g1.csv")
	assert.FileExists(t, ref1.ResultDir+"/summary.json")
	assert.FileExists(t, ref1.ResultDir+"/manifest.json")
	assert.FileExists(t, ref1.ResultDir+"/geometry_heal_report.json")
	assert.Len(t, p.Results, 1)

	ref2, err := RunJob(nil, p, "j1", dir)
	require.NoError(t, err)
	assert.Equal(t, ref1.JobHash, ref2.JobHash)
	assert.Len(t, p.Results, 1, "identical job hash must not append a duplicate result ref")
}

func TestRunJob_UnknownGridRejected(t *testing.T) {
	p := singleGridProject(t)
	p.PhotometryAssets[0].Path = writeFixturePhotometryFile(t)
	p.Jobs[0].GridIDs = []string{"does-not-exist"}

	_, err := RunJob(nil, p, "j1", t.TempDir())
	assert.Error(t, err)
}

func TestRunJob_UnknownJobErrors(t *testing.T) {
	p := singleGridProject(t)
	_, err := RunJob(nil, p, "missing", t.TempDir())
	assert.Error(t, err)
}

func writeFixturePhotometryFile(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.ies")
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("IESNA:LM-63-2019\nTILT=NONE\n")
	require.NoError(t, err)
	return f.Name()
}

func TestComputeJobHash_StableAcrossRepeatedCalls(t *testing.T) {
	p := singleGridProject(t)
	p.PhotometryAssets[0].Path = writeFixturePhotometryFile(t)
	job := p.Jobs[0]

	h1, err := ComputeJobHash(p, job, BackendVersion)
	require.NoError(t, err)
	h2, err := ComputeJobHash(p, job, BackendVersion)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	job.SolverVersion = "v2"
	h3, err := ComputeJobHash(p, job, BackendVersion)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestDaylightBackend_SamplesApertureOnly(t *testing.T) {
	p := singleGridProject(t)
	p.PhotometryAssets[0].Path = writeFixturePhotometryFile(t)
	p.Jobs[0].BackendID = "daylight"

	ref, err := RunJob(nil, p, "j1", t.TempDir())
	require.NoError(t, err)
	assert.NotEmpty(t, ref.JobHash)
}
