package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/geom/numeric"
)

func floorTriangles() []Triangle3 {
	return []Triangle3{
		{A: numeric.Vec3{X: -5, Y: -5, Z: 0}, B: numeric.Vec3{X: 5, Y: -5, Z: 0}, C: numeric.Vec3{X: 5, Y: 5, Z: 0}, SurfaceID: "floor:1"},
		{A: numeric.Vec3{X: -5, Y: -5, Z: 0}, B: numeric.Vec3{X: 5, Y: 5, Z: 0}, C: numeric.Vec3{X: -5, Y: 5, Z: 0}, SurfaceID: "floor:1"},
	}
}

func TestBVH_NearestHit(t *testing.T) {
	bvh := BuildBVH(floorTriangles())
	origin := numeric.Vec3{X: 0, Y: 0, Z: 5}
	dir := numeric.Vec3{X: 0, Y: 0, Z: -1}
	id, dist, ok := bvh.NearestHit(origin, dir, 100)
	require.True(t, ok)
	assert.Equal(t, "floor:1", id)
	assert.InDelta(t, 5.0, dist, 1e-9)
}

func TestBVH_AnyHit_Miss(t *testing.T) {
	bvh := BuildBVH(floorTriangles())
	origin := numeric.Vec3{X: 100, Y: 100, Z: 5}
	dir := numeric.Vec3{X: 0, Y: 0, Z: -1}
	assert.False(t, bvh.AnyHit(origin, dir, 100))
}

func TestPickNearest(t *testing.T) {
	bvh := BuildBVH(floorTriangles())
	res, ok := PickNearest(bvh, numeric.Vec3{X: 1, Y: 1, Z: 3}, numeric.Vec3{X: 0, Y: 0, Z: -1}, 50)
	require.True(t, ok)
	assert.Equal(t, "floor:1", res.SurfaceID)
	assert.InDelta(t, 0, res.Point.Z, 1e-9)
}
