package geom

import (
	"math"
	"sort"

	"luxera/internal/geom/numeric"
)

// MeshHealthReport summarizes the structural quality of a triangle soup,
// the basis for the import pipeline's RepairHeal/PolicyGate stages.
type MeshHealthReport struct {
	DegenerateTriangles      int `json:"degenerate_triangles"`
	NonManifoldEdges         int `json:"non_manifold_edges"`
	SelfIntersectionsApprox  int `json:"self_intersections_approx"`
	OpenBoundaryEdges        int `json:"open_boundary_edges"`
	DisconnectedComponents   int `json:"disconnected_components"`
}

const degenerateAreaEps = 1e-10

type edgeKey struct{ a, b int }

func edgeKeyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// AnalyzeMesh computes a MeshHealthReport over a triangle list addressed
// by shared vertex positions (vertices whose coordinates round to the
// same 1e-6 grid point are treated as the same topological vertex for
// edge/component analysis).
func AnalyzeMesh(tris []Triangle3) MeshHealthReport {
	if len(tris) == 0 {
		return MeshHealthReport{}
	}

	vertIndex := map[[3]int64]int{}
	quant := func(v numeric.Vec3) [3]int64 {
		const scale = 1e6
		return [3]int64{
			int64(math.Round(v.X * scale)),
			int64(math.Round(v.Y * scale)),
			int64(math.Round(v.Z * scale)),
		}
	}
	indexOf := func(v numeric.Vec3) int {
		k := quant(v)
		if i, ok := vertIndex[k]; ok {
			return i
		}
		i := len(vertIndex)
		vertIndex[k] = i
		return i
	}

	type triVerts struct{ a, b, c int }
	triIdx := make([]triVerts, len(tris))
	edgeCount := map[edgeKey]int{}
	degenerate := 0

	for i, t := range tris {
		a, b, c := indexOf(t.A), indexOf(t.B), indexOf(t.C)
		triIdx[i] = triVerts{a, b, c}
		if a == b || b == c || a == c {
			degenerate++
			continue
		}
		area2 := math.Sqrt(t.B.Sub(t.A).Cross(t.C.Sub(t.A)).LengthSq())
		if area2 < degenerateAreaEps {
			degenerate++
		}
		edgeCount[edgeKeyOf(a, b)]++
		edgeCount[edgeKeyOf(b, c)]++
		edgeCount[edgeKeyOf(c, a)]++
	}

	nonManifold, open := 0, 0
	for _, n := range edgeCount {
		switch {
		case n == 1:
			open++
		case n > 2:
			nonManifold++
		}
	}

	parent := make([]int, len(vertIndex))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(x, y int) {
		rx, ry := find(x), find(y)
		if rx != ry {
			parent[rx] = ry
		}
	}
	for _, tv := range triIdx {
		union(tv.a, tv.b)
		union(tv.b, tv.c)
	}
	roots := map[int]struct{}{}
	for v := range vertIndex {
		roots[find(vertIndex[v])] = struct{}{}
	}

	return MeshHealthReport{
		DegenerateTriangles:     degenerate,
		NonManifoldEdges:        nonManifold,
		SelfIntersectionsApprox: approxSelfIntersections(tris),
		OpenBoundaryEdges:       open,
		DisconnectedComponents:  len(roots),
	}
}

// approxSelfIntersections counts triangle-pairs whose bounding boxes
// overlap but that do not share a vertex, a cheap over-approximation of
// true triangle-triangle intersection suitable for a coarse severity
// gate, not a precise CSG predicate.
func approxSelfIntersections(tris []Triangle3) int {
	type box struct {
		min, max numeric.Vec3
		idx      int
	}
	boxes := make([]box, len(tris))
	for i, t := range tris {
		min := numeric.Vec3{X: math.Min(t.A.X, math.Min(t.B.X, t.C.X)), Y: math.Min(t.A.Y, math.Min(t.B.Y, t.C.Y)), Z: math.Min(t.A.Z, math.Min(t.B.Z, t.C.Z))}
		max := numeric.Vec3{X: math.Max(t.A.X, math.Max(t.B.X, t.C.X)), Y: math.Max(t.A.Y, math.Max(t.B.Y, t.C.Y)), Z: math.Max(t.A.Z, math.Max(t.B.Z, t.C.Z))}
		boxes[i] = box{min, max, i}
	}
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].min.X < boxes[j].min.X })

	overlaps := func(b1, b2 box) bool {
		return b1.min.X <= b2.max.X && b2.min.X <= b1.max.X &&
			b1.min.Y <= b2.max.Y && b2.min.Y <= b1.max.Y &&
			b1.min.Z <= b2.max.Z && b2.min.Z <= b1.max.Z
	}
	sharesVertex := func(i, j int) bool {
		ti, tj := tris[i], tris[j]
		for _, p := range []numeric.Vec3{ti.A, ti.B, ti.C} {
			for _, q := range []numeric.Vec3{tj.A, tj.B, tj.C} {
				if math.Abs(p.X-q.X) < EPSPos && math.Abs(p.Y-q.Y) < EPSPos && math.Abs(p.Z-q.Z) < EPSPos {
					return true
				}
			}
		}
		return false
	}

	count := 0
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[j].min.X > boxes[i].max.X {
				break
			}
			if !overlaps(boxes[i], boxes[j]) {
				continue
			}
			if sharesVertex(boxes[i].idx, boxes[j].idx) {
				continue
			}
			count++
		}
	}
	return count
}

// RepairMesh drops degenerate triangles (zero or near-zero area, or
// repeated vertices), the "auto repair" path for low-severity findings.
func RepairMesh(tris []Triangle3) ([]Triangle3, []string) {
	var warnings []string
	out := make([]Triangle3, 0, len(tris))
	dropped := 0
	for _, t := range tris {
		area2 := math.Sqrt(t.B.Sub(t.A).Cross(t.C.Sub(t.A)).LengthSq())
		if area2 < degenerateAreaEps {
			dropped++
			continue
		}
		out = append(out, t)
	}
	if dropped > 0 {
		warnings = append(warnings, "dropped degenerate triangles during repair")
	}
	return out, warnings
}
