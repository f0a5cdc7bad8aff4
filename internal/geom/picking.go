package geom

import "luxera/internal/geom/numeric"

// PickResult is the nearest-surface result of a picking ray (spec §4.2
// "pick_nearest", used by agent tools and the debug viewer).
type PickResult struct {
	SurfaceID string
	Distance  float64
	Point     numeric.Vec3
}

// PickNearest casts a ray from origin in direction dir against bvh and
// returns the nearest hit surface, if any, within maxDist.
func PickNearest(bvh *BVH, origin, dir numeric.Vec3, maxDist float64) (PickResult, bool) {
	id, dist, ok := bvh.NearestHit(origin, dir, maxDist)
	if !ok {
		return PickResult{}, false
	}
	hit := origin.Add(dir.Scale(dist))
	return PickResult{SurfaceID: id, Distance: dist, Point: hit}, true
}
