package importpipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/units"
)

func cleanOccluders() []geom.Triangle3 {
	a := numeric.Vec3{X: 0, Y: 0, Z: 0}
	b := numeric.Vec3{X: 4, Y: 0, Z: 0}
	c := numeric.Vec3{X: 4, Y: 4, Z: 0}
	d := numeric.Vec3{X: 0, Y: 4, Z: 0}
	return []geom.Triangle3{{A: a, B: b, C: c}, {A: a, B: c, C: d}}
}

func TestRun_CleanGeometryReachesSceneBuild(t *testing.T) {
	in := Input{
		SourceFile: "plan.dxf",
		Doc: RawDocument{
			Format: "dxf",
			Layers: []string{"A-WALL", "A-DOOR", "MISC"},
			Rooms: []RawRoom{
				{ID: "r1", Footprint: []geom.Point2{{U: 0, V: 0}, {U: 4, V: 0}, {U: 4, V: 4}, {U: 0, V: 4}}, Height: 2.7},
			},
			Occluders:     cleanOccluders(),
			HasRawContent: true,
		},
		SourceAxis: units.CanonicalAxisConvention(),
		TargetAxis: units.CanonicalAxisConvention(),
	}
	res := Run(in)
	require.Len(t, res.Stages, 8)
	assert.Equal(t, "SceneBuild", res.Stages[len(res.Stages)-1].Name)
	assert.Equal(t, "wall", res.LayerMap["A-WALL"])
	assert.Equal(t, "door", res.LayerMap["A-DOOR"])
	assert.Equal(t, "unmapped", res.LayerMap["MISC"])
	assert.NotNil(t, res.BVH)
}

func TestRun_NoGeometryBlocksAtPolicyGate(t *testing.T) {
	in := Input{
		SourceFile: "empty.dxf",
		Doc:        RawDocument{Format: "dxf", HasRawContent: false},
		SourceAxis: units.CanonicalAxisConvention(),
		TargetAxis: units.CanonicalAxisConvention(),
	}
	res := Run(in)
	last := res.Stages[len(res.Stages)-1]
	assert.Equal(t, "PolicyGate", last.Name)
	assert.Equal(t, StatusError, last.Status)
	assert.Nil(t, res.BVH)
}

func TestRun_ForceExtremeContinuesPastPolicyGate(t *testing.T) {
	in := Input{
		SourceFile:   "empty.dxf",
		Doc:          RawDocument{Format: "dxf", HasRawContent: false},
		SourceAxis:   units.CanonicalAxisConvention(),
		TargetAxis:   units.CanonicalAxisConvention(),
		ForceExtreme: true,
	}
	res := Run(in)
	assert.Equal(t, "SceneBuild", res.Stages[len(res.Stages)-1].Name)
}
