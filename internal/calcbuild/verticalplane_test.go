package calcbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/project"
	"luxera/internal/scene"
)

func TestCreateVerticalPlane_AzimuthOrientedSamplesAreEvenlySpaced(t *testing.T) {
	p := project.New("demo")
	vp, err := CreateVerticalPlane(p, project.VerticalPlane{
		ID: "vp1", Origin: [3]float64{0, 0, 0}, Width: 2, Height: 1, NX: 3, NY: 2,
	})
	require.NoError(t, err)
	assert.Len(t, vp.SamplePoints, 6)
	assert.Equal(t, 0.0, vp.SamplePoints[0][2])
	assert.Equal(t, 1.0, vp.SamplePoints[3][2])
}

func TestCreateVerticalPlane_InvalidDimensionsRejected(t *testing.T) {
	p := project.New("demo")
	_, err := CreateVerticalPlane(p, project.VerticalPlane{ID: "vp1", Width: 0, Height: 1, NX: 2, NY: 2})
	assert.Error(t, err)
}

func TestCreateVerticalPlane_HostSurfaceMasksOpenings(t *testing.T) {
	p := project.New("demo")
	p.Geometry.Surfaces = []scene.Surface{{
		ID: "s1", Kind: scene.SurfaceWall,
		Vertices: []numeric.Vec3{{X: 0, Y: 0, Z: 0}, {X: 4, Y: 0, Z: 0}, {X: 4, Y: 0, Z: 3}, {X: 0, Y: 0, Z: 3}},
	}}
	p.Geometry.Openings = []scene.Opening{{
		ID: "o1", HostSurfaceID: "s1",
		Vertices: []numeric.Vec3{{X: 1.5, Y: 0, Z: 0.8}, {X: 2.5, Y: 0, Z: 0.8}, {X: 2.5, Y: 0, Z: 1.8}, {X: 1.5, Y: 0, Z: 1.8}},
	}}
	vp, err := CreateVerticalPlane(p, project.VerticalPlane{
		ID: "vp1", HostSurfaceID: "s1", Width: 4, Height: 3, NX: 5, NY: 4, MaskOpenings: true,
	})
	require.NoError(t, err)
	assert.Less(t, len(vp.SamplePoints), 20)
}

func TestCreatePointSet_RejectsEmpty(t *testing.T) {
	p := project.New("demo")
	_, err := CreatePointSet(p, project.PointSet{ID: "ps1"})
	assert.Error(t, err)
}

func TestCreateLineGrid_SnapAndClip(t *testing.T) {
	p := project.New("demo")
	lg, err := CreateLineGrid(p, LineGridArgs{
		LineID:   "lg1",
		Polyline: [][3]float64{{0.1, 0.1, 0}, {2, 0, 0}, {4, 0, 0}},
		Spacing:  0.5,
		SnapSegments: [][2]geom.Point2{
			{{U: 0, V: 0}, {U: 5, V: 0}},
		},
		ClipBoundary: []geom.Point2{{U: 0, V: -1}, {U: 3, V: -1}, {U: 3, V: 1}, {U: 0, V: 1}},
	})
	require.NoError(t, err)
	assert.Len(t, lg.Polyline, 2)
	assert.Equal(t, 0.0, lg.Polyline[0][1])
}

func TestCreateLineGrid_CollapsedAfterClipErrors(t *testing.T) {
	p := project.New("demo")
	_, err := CreateLineGrid(p, LineGridArgs{
		LineID:       "lg1",
		Polyline:     [][3]float64{{10, 10, 0}, {11, 10, 0}},
		Spacing:      0.5,
		ClipBoundary: []geom.Point2{{U: 0, V: 0}, {U: 1, V: 0}, {U: 1, V: 1}, {U: 0, V: 1}},
	})
	assert.Error(t, err)
}
