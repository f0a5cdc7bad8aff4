package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"luxera/internal/geom/numeric"
)

func TestAnalyzeMesh_CleanClosedTetrahedronHasNoFindings(t *testing.T) {
	a := numeric.Vec3{X: 0, Y: 0, Z: 0}
	b := numeric.Vec3{X: 1, Y: 0, Z: 0}
	c := numeric.Vec3{X: 0, Y: 1, Z: 0}
	d := numeric.Vec3{X: 0, Y: 0, Z: 1}
	tris := []Triangle3{
		{A: a, B: b, C: c},
		{A: a, B: c, C: d},
		{A: a, B: d, C: b},
		{A: b, B: d, C: c},
	}
	report := AnalyzeMesh(tris)
	assert.Equal(t, 0, report.DegenerateTriangles)
	assert.Equal(t, 0, report.NonManifoldEdges)
	assert.Equal(t, 0, report.OpenBoundaryEdges)
	assert.Equal(t, 1, report.DisconnectedComponents)
}

func TestAnalyzeMesh_OpenSingleTriangleHasOpenEdges(t *testing.T) {
	tris := []Triangle3{
		{A: numeric.Vec3{X: 0, Y: 0, Z: 0}, B: numeric.Vec3{X: 1, Y: 0, Z: 0}, C: numeric.Vec3{X: 0, Y: 1, Z: 0}},
	}
	report := AnalyzeMesh(tris)
	assert.Equal(t, 3, report.OpenBoundaryEdges)
}

func TestRepairMesh_DropsDegenerateTriangle(t *testing.T) {
	tris := []Triangle3{
		{A: numeric.Vec3{X: 0, Y: 0, Z: 0}, B: numeric.Vec3{X: 1, Y: 0, Z: 0}, C: numeric.Vec3{X: 0, Y: 1, Z: 0}},
		{A: numeric.Vec3{X: 0, Y: 0, Z: 0}, B: numeric.Vec3{X: 0, Y: 0, Z: 0}, C: numeric.Vec3{X: 0, Y: 0, Z: 0}},
	}
	out, warnings := RepairMesh(tris)
	assert.Len(t, out, 1)
	assert.NotEmpty(t, warnings)
}
