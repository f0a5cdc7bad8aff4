package variant

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/project"
)

func baseProject(t *testing.T) *project.Project {
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
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.ies")
	require.NoError(t, err)
	_, err = f.WriteString("IESNA:LM-63-2019\nTILT=NONE\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	p.PhotometryAssets = []project.PhotometryAsset{{ID: "a1", Path: f.Name(), Lumens: 3000, BeamDeg: 120}}
	p.Jobs = []project.JobSpec{{ID: "j1", Kind: "indoor", SolverVersion: "v1", BackendID: "radiosity"}}
	p.Variants = []project.Variant{
		{ID: "baseline", Name: "As designed"},
		{
			ID:   "dimmed",
			Name: "50 percent dimmed",
			DimmingSchemes: map[string]float64{
				"l1": 0.5,
			},
		},
		{
			ID:   "boosted",
			Name: "Flux boosted",
			LuminaireOverrides: map[string]project.LuminaireOverride{
				"l1": {FluxMultiplier: floatPtr(2)},
			},
		},
	}
	return p
}

func floatPtr(f float64) *float64 { return &f }

func TestApply_LuminaireOverridesAndDimmingDoNotMutateBase(t *testing.T) {
	base := baseProject(t)

	dimmed, err := Apply(base, base.Variants[1])
	require.NoError(t, err)
	assert.InDelta(t, 0.5, dimmed.Luminaires[0].FluxMultiplier, 1e-9)
	assert.InDelta(t, 1.0, base.Luminaires[0].FluxMultiplier, 1e-9, "applying a variant must not mutate the base project")

	boosted, err := Apply(base, base.Variants[2])
	require.NoError(t, err)
	assert.InDelta(t, 2.0, boosted.Luminaires[0].FluxMultiplier, 1e-9)
}

func TestApply_DiffOpsAddsLuminaireViaDelta(t *testing.T) {
	base := baseProject(t)
	payload, err := json.Marshal(project.LuminaireInstance{
		ID:                "l2",
		PhotometryAssetID: "a1",
		Transform: project.PlacementTransform{
			Position: [3]float64{3, 0, 2.7},
			Rotation: project.Rotation{Type: project.RotationEuler, EulerDeg: &[3]float64{0, 0, 0}},
		},
		MaintenanceFactor: 1,
		FluxMultiplier:    1,
	})
	require.NoError(t, err)

	v := project.Variant{
		ID:   "extra-fixture",
		Name: "Extra fixture",
		DiffOps: []project.DiffOp{
			{Op: "add", Kind: "luminaire", ID: "l2", Payload: payload},
		},
	}

	out, err := Apply(base, v)
	require.NoError(t, err)
	assert.Len(t, out.Luminaires, 2)
	assert.Len(t, base.Luminaires, 1, "applying a variant must not mutate the base project")
}

func TestRunJobForVariants_ComputesDeltasAgainstBaseline(t *testing.T) {
	base := baseProject(t)
	dir := t.TempDir()

	result, err := RunJobForVariants(nil, base, "j1", []string{"baseline", "dimmed", "boosted"}, "", dir)
	require.NoError(t, err)
	assert.Equal(t, "baseline", result.BaselineVariantID)
	assert.Len(t, result.Rows, 3)
	assert.NotEmpty(t, result.MetricKeys)

	var baselineRow, dimmedRow, boostedRow Row
	for _, r := range result.Rows {
		switch r.VariantID {
		case "baseline":
			baselineRow = r
		case "dimmed":
			dimmedRow = r
		case "boosted":
			boostedRow = r
		}
	}

	for _, k := range result.MetricKeys {
		assert.InDelta(t, 0, baselineRow.Deltas[k], 1e-9, "baseline must delta to zero against itself")
	}
	assert.LessOrEqual(t, dimmedRow.Metrics["worst_min"], baselineRow.Metrics["worst_min"])
	assert.GreaterOrEqual(t, boostedRow.Metrics["worst_min"], baselineRow.Metrics["worst_min"])
}

func TestRunJobForVariants_UnknownVariantIDErrors(t *testing.T) {
	base := baseProject(t)
	_, err := RunJobForVariants(nil, base, "j1", []string{"does-not-exist"}, "", t.TempDir())
	assert.Error(t, err)
}

func TestRunJobForVariants_BaselineNotInSetErrors(t *testing.T) {
	base := baseProject(t)
	_, err := RunJobForVariants(nil, base, "j1", []string{"baseline", "dimmed"}, "boosted", t.TempDir())
	assert.Error(t, err)
}

func TestWriteArtifacts_WritesJSONAndCSV(t *testing.T) {
	base := baseProject(t)
	dir := t.TempDir()

	result, err := RunJobForVariants(nil, base, "j1", []string{"baseline", "dimmed"}, "", dir)
	require.NoError(t, err)

	outDir, err := WriteArtifacts(dir, result)
	require.NoError(t, err)
	assert.FileExists(t, outDir+"/variants_compare.json")
	assert.FileExists(t, outDir+"/variants_compare.csv")
}
