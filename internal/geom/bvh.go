package geom

import (
	"math"
	"sort"

	"luxera/internal/geom/numeric"
)

// Triangle3 is a 3D triangle with an owning surface id, used by the BVH
// for occlusion queries and picking (spec §4.2 "spatial index").
type Triangle3 struct {
	A, B, C   numeric.Vec3
	SurfaceID string
}

type aabb3 struct {
	Min, Max numeric.Vec3
}

func unionAABB(a, b aabb3) aabb3 {
	return aabb3{
		Min: numeric.Vec3{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: numeric.Vec3{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

func triAABB(t Triangle3) aabb3 {
	b := aabb3{Min: t.A, Max: t.A}
	for _, p := range []numeric.Vec3{t.B, t.C} {
		b.Min = numeric.Vec3{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
		b.Max = numeric.Vec3{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
	}
	return b
}

func (b aabb3) centroid() numeric.Vec3 {
	return numeric.Vec3{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2, Z: (b.Min.Z + b.Max.Z) / 2}
}

func rayAABB(origin, invDir numeric.Vec3, b aabb3, maxT float64) bool {
	tx1 := (b.Min.X - origin.X) * invDir.X
	tx2 := (b.Max.X - origin.X) * invDir.X
	tmin, tmax := math.Min(tx1, tx2), math.Max(tx1, tx2)

	ty1 := (b.Min.Y - origin.Y) * invDir.Y
	ty2 := (b.Max.Y - origin.Y) * invDir.Y
	tmin = math.Max(tmin, math.Min(ty1, ty2))
	tmax = math.Min(tmax, math.Max(ty1, ty2))

	tz1 := (b.Min.Z - origin.Z) * invDir.Z
	tz2 := (b.Max.Z - origin.Z) * invDir.Z
	tmin = math.Max(tmin, math.Min(tz1, tz2))
	tmax = math.Min(tmax, math.Max(tz1, tz2))

	return tmax >= math.Max(tmin, 0) && tmin <= maxT
}

type bvhNode struct {
	bounds      aabb3
	left, right *bvhNode
	triIdx      []int // leaf only
}

// BVH is a median-split bounding volume hierarchy over a static triangle
// set (spec §4.2, used for occlusion any_hit queries and picking).
type BVH struct {
	tris []Triangle3
	root *bvhNode
}

const bvhLeafSize = 4

// BuildBVH constructs a BVH over tris via recursive median-split on the
// longest axis of each node's centroid bounds.
func BuildBVH(tris []Triangle3) *BVH {
	if len(tris) == 0 {
		return &BVH{tris: tris}
	}
	idx := make([]int, len(tris))
	for i := range idx {
		idx[i] = i
	}
	bounds := make([]aabb3, len(tris))
	for i, t := range tris {
		bounds[i] = triAABB(t)
	}
	b := &BVH{tris: tris}
	b.root = buildNode(idx, bounds)
	return b
}

func buildNode(idx []int, bounds []aabb3) *bvhNode {
	node := &bvhNode{}
	node.bounds = bounds[idx[0]]
	for _, i := range idx[1:] {
		node.bounds = unionAABB(node.bounds, bounds[i])
	}
	if len(idx) <= bvhLeafSize {
		node.triIdx = idx
		return node
	}

	cb := aabb3{Min: bounds[idx[0]].centroid(), Max: bounds[idx[0]].centroid()}
	for _, i := range idx[1:] {
		c := bounds[i].centroid()
		cb.Min = numeric.Vec3{X: math.Min(cb.Min.X, c.X), Y: math.Min(cb.Min.Y, c.Y), Z: math.Min(cb.Min.Z, c.Z)}
		cb.Max = numeric.Vec3{X: math.Max(cb.Max.X, c.X), Y: math.Max(cb.Max.Y, c.Y), Z: math.Max(cb.Max.Z, c.Z)}
	}
	dx, dy, dz := cb.Max.X-cb.Min.X, cb.Max.Y-cb.Min.Y, cb.Max.Z-cb.Min.Z
	axis := 0
	if dy > dx && dy >= dz {
		axis = 1
	} else if dz > dx && dz >= dy {
		axis = 2
	}

	sorted := append([]int(nil), idx...)
	sort.Slice(sorted, func(i, j int) bool {
		ci, cj := bounds[sorted[i]].centroid(), bounds[sorted[j]].centroid()
		switch axis {
		case 0:
			return ci.X < cj.X
		case 1:
			return ci.Y < cj.Y
		default:
			return ci.Z < cj.Z
		}
	})
	mid := len(sorted) / 2
	node.left = buildNode(sorted[:mid], bounds)
	node.right = buildNode(sorted[mid:], bounds)
	return node
}

// rayTriangle implements the Möller–Trumbore intersection test, returning
// the hit distance and ok=true if the ray hits the triangle within (0, maxT].
func rayTriangle(origin, dir numeric.Vec3, t Triangle3, maxT float64) (float64, bool) {
	const eps = 1e-9
	e1 := t.B.Sub(t.A)
	e2 := t.C.Sub(t.A)
	h := dir.Cross(e2)
	a := e1.Dot(h)
	if math.Abs(a) < eps {
		return 0, false
	}
	f := 1.0 / a
	s := origin.Sub(t.A)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	dist := f * e2.Dot(q)
	if dist <= eps || dist > maxT {
		return 0, false
	}
	return dist, true
}

// AnyHit reports whether any triangle occludes the segment from origin in
// direction dir up to maxDist, per spec §4.2 occlusion queries. It returns
// on the first hit found (no nearest-hit ordering guarantee).
func (bvh *BVH) AnyHit(origin, dir numeric.Vec3, maxDist float64) bool {
	if bvh == nil || bvh.root == nil {
		return false
	}
	invDir := numeric.Vec3{X: safeInv(dir.X), Y: safeInv(dir.Y), Z: safeInv(dir.Z)}
	return anyHitNode(bvh, bvh.root, origin, dir, invDir, maxDist)
}

func anyHitNode(bvh *BVH, n *bvhNode, origin, dir, invDir numeric.Vec3, maxDist float64) bool {
	if !rayAABB(origin, invDir, n.bounds, maxDist) {
		return false
	}
	if n.triIdx != nil {
		for _, i := range n.triIdx {
			if _, ok := rayTriangle(origin, dir, bvh.tris[i], maxDist); ok {
				return true
			}
		}
		return false
	}
	return anyHitNode(bvh, n.left, origin, dir, invDir, maxDist) || anyHitNode(bvh, n.right, origin, dir, invDir, maxDist)
}

// NearestHit walks the whole tree and returns the closest intersection
// (surface id and distance), used by pick_nearest.
func (bvh *BVH) NearestHit(origin, dir numeric.Vec3, maxDist float64) (surfaceID string, dist float64, ok bool) {
	if bvh == nil || bvh.root == nil {
		return "", 0, false
	}
	invDir := numeric.Vec3{X: safeInv(dir.X), Y: safeInv(dir.Y), Z: safeInv(dir.Z)}
	best := maxDist
	bestIdx := -1
	var walk func(n *bvhNode)
	walk = func(n *bvhNode) {
		if !rayAABB(origin, invDir, n.bounds, best) {
			return
		}
		if n.triIdx != nil {
			for _, i := range n.triIdx {
				if d, ok := rayTriangle(origin, dir, bvh.tris[i], best); ok {
					best = d
					bestIdx = i
				}
			}
			return
		}
		walk(n.left)
		walk(n.right)
	}
	walk(bvh.root)
	if bestIdx < 0 {
		return "", 0, false
	}
	return bvh.tris[bestIdx].SurfaceID, best, true
}

func safeInv(v float64) float64 {
	if v == 0 {
		return math.Inf(1)
	}
	return 1.0 / v
}
