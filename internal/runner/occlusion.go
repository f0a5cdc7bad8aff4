package runner

import (
	"math"

	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/scene"
)

// surfacesToTriangles fan-triangulates every derived surface's vertex
// ring into a flat triangle list for BVH occlusion tests. Rooms/walls
// come out of internal/rebuild as simple (non-self-intersecting) rings,
// including wall parts already split around openings. Fan
// triangulation from the first vertex is exact for convex rings; a
// non-convex ring (such as an L-shaped floor) is fanned the same way
// and can yield triangles that lie outside it.
func surfacesToTriangles(surfaces []scene.Surface) []geom.Triangle3 {
	var out []geom.Triangle3
	for _, s := range surfaces {
		verts := s.Vertices
		if len(verts) < 3 {
			continue
		}
		for i := 1; i < len(verts)-1; i++ {
			out = append(out, geom.Triangle3{A: verts[0], B: verts[i], C: verts[i+1], SurfaceID: s.ID})
		}
	}
	return out
}

// visible reports whether point can see origin without an intervening
// surface, using bvh.AnyHit along the segment shortened by a small
// epsilon at the far end to avoid a hit on the surface at the target.
func visible(bvh *geom.BVH, from, to numeric.Vec3) bool {
	if bvh == nil {
		return true
	}
	d := to.Sub(from)
	dist := d.LengthSq()
	if dist <= 1e-12 {
		return true
	}
	length := math.Sqrt(dist)
	dir := d.Scale(1.0 / length)
	return !bvh.AnyHit(from, dir, length-1e-4)
}
