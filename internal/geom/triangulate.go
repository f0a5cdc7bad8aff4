package geom

import "math"

// Triangle2 is a flat (i, j, k) index triple into a shared vertex slice.
type Triangle2 struct{ A, B, C int }

// TriangulateResult carries the triangle fan plus degraded-path metadata.
type TriangulateResult struct {
	Vertices  []Point2
	Triangles []Triangle2
	Warning   string
}

// FanTriangulate triangulates a simple convex-ish polygon as a fan from
// vertex 0. This is exact for convex rings and for the common rectangular
// wall-part case; for concave rings it can produce triangles outside the
// polygon, which is accepted here (spec §4.2: "fan triangulation, with a
// warning recorded when holes are present since no CDT library is
// vendored").
func FanTriangulate(poly Polygon2) TriangulateResult {
	n := len(poly)
	if n < 3 {
		return TriangulateResult{Vertices: poly}
	}
	tris := make([]Triangle2, 0, n-2)
	for i := 1; i < n-1; i++ {
		tris = append(tris, Triangle2{0, i, i + 1})
	}
	return TriangulateResult{Vertices: poly, Triangles: tris}
}

// TriangulateWithHoles triangulates a wall-part polygon that may have
// holes left by SubtractOpenings. Without a constrained-Delaunay library,
// holes cannot be carved out of a single triangle fan, so each hole is
// instead treated as a fan-triangulated cutout recorded separately and a
// warning is returned; callers needing exact hole boundaries should prefer
// the disjoint-parts MultiPolygon2 output of SubtractOpenings, which this
// function is not given here.
func TriangulateWithHoles(outer Polygon2, holes []Polygon2) TriangulateResult {
	base := FanTriangulate(outer)
	if len(holes) == 0 {
		return base
	}
	verts := append(Polygon2(nil), outer...)
	tris := append([]Triangle2(nil), base.Triangles...)
	offset := len(verts)
	for _, h := range holes {
		hf := FanTriangulate(h)
		for _, t := range hf.Triangles {
			tris = append(tris, Triangle2{t.A + offset, t.C + offset, t.B + offset})
		}
		verts = append(verts, h...)
		offset = len(verts)
	}
	return TriangulateResult{
		Vertices:  verts,
		Triangles: tris,
		Warning:   "wall part triangulated with fan-per-ring approximation; hole boundaries are not exactly carved (no CDT backend vendored)",
	}
}

// TriangleArea2 returns the unsigned area of a UV triangle.
func TriangleArea2(a, b, c Point2) float64 {
	return math.Abs((b.U-a.U)*(c.V-a.V)-(c.U-a.U)*(b.V-a.V)) * 0.5
}
