package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/param"
	"luxera/internal/project"
	"luxera/internal/scene"
)

func writeFixtureProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	p := project.New("demo")
	p.Param.Rooms = []param.Room{{
		ID:   "r1",
		Name: "Office",
		Polygon2D: []geom.Point2{
			{U: 0, V: 0}, {U: 6, V: 0}, {U: 6, V: 8}, {U: 0, V: 8},
		},
		Height: 3,
	}}
	p.Geometry.Rooms = []scene.Room{{
		ID:   "r1",
		Name: "Office",
		BoundaryPolygon: []numeric.Vec3{
			{X: 0, Y: 0, Z: 0}, {X: 6, Y: 0, Z: 0}, {X: 6, Y: 8, Z: 0}, {X: 0, Y: 8, Z: 0},
		},
		Height: 3,
	}}
	p.Grids = []project.CalcGrid{{
		ID: "g1", NX: 2, NY: 1,
		SamplePoints: [][3]float64{{1, 1, 0.85}, {4, 1, 0.85}},
		SampleMask:   []bool{true, true},
	}}
	p.Luminaires = []project.LuminaireInstance{{
		ID:                "l1",
		PhotometryAssetID: "a1",
		Transform: project.PlacementTransform{
			Position: [3]float64{3, 4, 2.7},
			Rotation: project.Rotation{Type: project.RotationEuler, EulerDeg: &[3]float64{0, 0, 0}},
		},
		MaintenanceFactor: 1,
		FluxMultiplier:    1,
	}}
	f, err := os.CreateTemp(dir, "fixture-*.ies")
	require.NoError(t, err)
	_, err = f.WriteString("IESNA:LM-63-2019\nTILT=NONE\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	p.PhotometryAssets = []project.PhotometryAsset{{ID: "a1", Path: f.Name(), Lumens: 3000, BeamDeg: 120}}
	p.Jobs = []project.JobSpec{{ID: "j1", Kind: "indoor", SolverVersion: "v1", BackendID: "radiosity", GridIDs: []string{"g1"}}}

	path := filepath.Join(dir, "demo.luxera.json")
	require.NoError(t, project.Save(p, path))
	return path
}

func TestExecute_GridIntentProposesAndRequiresApproval(t *testing.T) {
	projectPath := writeFixtureProject(t)
	rt := New(filepath.Join(filepath.Dir(projectPath), ".luxera", "results"))

	resp, err := rt.Execute(projectPath, "add a grid at 0.8m spacing 0.5", Approvals{})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Actions)
	assert.Equal(t, "add_grid", resp.Actions[0].Kind)
	assert.True(t, resp.Actions[0].RequiresApproval)

	reloaded, err := project.Load(projectPath)
	require.NoError(t, err)
	assert.Len(t, reloaded.Grids, 1, "unapproved grid action must not mutate the project")
}

func TestExecute_GridIntentAppliesWhenApproved(t *testing.T) {
	projectPath := writeFixtureProject(t)
	rt := New(filepath.Join(filepath.Dir(projectPath), ".luxera", "results"))

	_, err := rt.Execute(projectPath, "add a grid", Approvals{Flags: map[string]bool{"add_grid": true}})
	require.NoError(t, err)

	reloaded, err := project.Load(projectPath)
	require.NoError(t, err)
	assert.Len(t, reloaded.Grids, 2)
}

func TestExecute_RunJobRequiresApproval(t *testing.T) {
	projectPath := writeFixtureProject(t)
	rt := New(filepath.Join(filepath.Dir(projectPath), ".luxera", "results"))

	resp, err := rt.Execute(projectPath, "run the job", Approvals{})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Actions)
	assert.Equal(t, "run_job", resp.Actions[0].Kind)

	reloaded, err := project.Load(projectPath)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Results)
}

func TestExecute_ComplianceGuardrailWarnsWithoutResults(t *testing.T) {
	projectPath := writeFixtureProject(t)
	rt := New(filepath.Join(filepath.Dir(projectPath), ".luxera", "results"))

	resp, err := rt.Execute(projectPath, "check compliance", Approvals{})
	require.NoError(t, err)
	assert.False(t, resp.ComplianceClaimed)
	assert.Contains(t, resp.Warnings[0], "Compliance cannot be declared")
}

func TestExecute_DeferredImportKeywordWarns(t *testing.T) {
	projectPath := writeFixtureProject(t)
	rt := New(filepath.Join(filepath.Dir(projectPath), ".luxera", "results"))

	resp, err := rt.Execute(projectPath, "import fixtures.ifc", Approvals{})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Warnings)
	assert.Contains(t, resp.Warnings[0], "deferred")
}

func TestExecute_WritesSessionArtifact(t *testing.T) {
	projectPath := writeFixtureProject(t)
	rt := New(filepath.Join(filepath.Dir(projectPath), ".luxera", "results"))

	resp, err := rt.Execute(projectPath, "add a grid", Approvals{})
	require.NoError(t, err)

	sessionPath := filepath.Join(filepath.Dir(projectPath), ".luxera", "agent_sessions", resp.RuntimeID+".json")
	_, err = os.Stat(sessionPath)
	assert.NoError(t, err)
}

func TestExecute_IsDeterministicPerIntent(t *testing.T) {
	projectPath := writeFixtureProject(t)
	rt := New(filepath.Join(filepath.Dir(projectPath), ".luxera", "results"))

	resp1, err := rt.Execute(projectPath, "summarize results", Approvals{})
	require.NoError(t, err)
	resp2, err := rt.Execute(projectPath, "summarize results", Approvals{})
	require.NoError(t, err)
	assert.Equal(t, resp1.RuntimeID, resp2.RuntimeID)
}
