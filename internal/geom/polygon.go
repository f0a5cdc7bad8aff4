package geom

import "math"

// Polygon2 is a simple 2D polygon ring; the closing vertex is implicit
// (spec invariant 2).
type Polygon2 []Point2

// SignedArea returns the shoelace signed area: positive for CCW.
func (p Polygon2) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	s := 0.0
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		s += a.U*b.V - b.U*a.V
	}
	return 0.5 * s
}

// IsCCW reports whether the ring winds counter-clockwise.
func (p Polygon2) IsCCW() bool { return p.SignedArea() > 0 }

// EnsureCCW returns p unchanged if already CCW, or reversed otherwise.
func (p Polygon2) EnsureCCW() Polygon2 {
	if p.IsCCW() {
		return p
	}
	out := make(Polygon2, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

func segmentsIntersect(a1, a2, b1, b2 Point2) bool {
	d1 := cross2(sub2(a2, a1), sub2(b1, a1))
	d2 := cross2(sub2(a2, a1), sub2(b2, a1))
	d3 := cross2(sub2(b2, b1), sub2(a1, b1))
	d4 := cross2(sub2(b2, b1), sub2(a2, b1))
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if math.Abs(d1) <= EPSPlane && onSegment(a1, a2, b1) {
		return true
	}
	if math.Abs(d2) <= EPSPlane && onSegment(a1, a2, b2) {
		return true
	}
	if math.Abs(d3) <= EPSPlane && onSegment(b1, b2, a1) {
		return true
	}
	if math.Abs(d4) <= EPSPlane && onSegment(b1, b2, a2) {
		return true
	}
	return false
}

func onSegment(a, b, p Point2) bool {
	minU, maxU := math.Min(a.U, b.U), math.Max(a.U, b.U)
	minV, maxV := math.Min(a.V, b.V), math.Max(a.V, b.V)
	return p.U >= minU-EPSPlane && p.U <= maxU+EPSPlane && p.V >= minV-EPSPlane && p.V <= maxV+EPSPlane
}

func sub2(a, b Point2) Point2   { return Point2{a.U - b.U, a.V - b.V} }
func cross2(a, b Point2) float64 { return a.U*b.V - a.V*b.U }

// SelfIntersects checks pairwise non-adjacent edges for intersection within
// EPSPlane, per spec §4.2.
func (p Polygon2) SelfIntersects() bool {
	n := len(p)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := p[i], p[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges (share a vertex).
			if j == i || (j+1)%n == i || j == (i+1)%n {
				continue
			}
			b1, b2 := p[j], p[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// ConvexHull computes the 2D convex hull of a point set (monotone chain),
// CCW, without a repeated closing vertex.
func ConvexHull(points []Point2) Polygon2 {
	pts := append([]Point2(nil), points...)
	if len(pts) < 3 {
		return Polygon2(pts)
	}
	sortPoints(pts)
	n := len(pts)
	hull := make([]Point2, 0, 2*n)
	for _, p := range pts {
		for len(hull) >= 2 && cross3(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross3(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]
	return Polygon2(hull)
}

func cross3(o, a, b Point2) float64 {
	return (a.U-o.U)*(b.V-o.V) - (a.V-o.V)*(b.U-o.U)
}

func sortPoints(pts []Point2) {
	// Simple insertion sort by (U, V); polygon rings are small (hundreds of
	// vertices at most) so O(n^2) is acceptable and keeps ordering obviously
	// stable/deterministic.
	for i := 1; i < len(pts); i++ {
		j := i
		for j > 0 && less2(pts[j], pts[j-1]) {
			pts[j], pts[j-1] = pts[j-1], pts[j]
			j--
		}
	}
}

func less2(a, b Point2) bool {
	if a.U != b.U {
		return a.U < b.U
	}
	return a.V < b.V
}

// MakePolygonValidResult carries the repaired polygon and whether a
// degraded repair path was used.
type MakePolygonValidResult struct {
	Polygon       Polygon2
	UsedConvexHull bool
	Warning        string
}

// MakePolygonValid repairs a self-intersecting polygon. Orientation is
// normalized to CCW always; self-intersection is repaired via convex-hull
// fallback since no constrained-Delaunay/robust-boolean library is vendored
// here (spec §4.2: "repairs self-intersecting polygons via convex-hull
// fallback when a CDT library is unavailable").
func MakePolygonValid(p Polygon2) MakePolygonValidResult {
	ccw := p.EnsureCCW()
	if !ccw.SelfIntersects() {
		return MakePolygonValidResult{Polygon: ccw}
	}
	hull := ConvexHull(ccw)
	return MakePolygonValidResult{
		Polygon:        hull,
		UsedConvexHull: true,
		Warning:        "self-intersecting polygon repaired via convex-hull fallback; holes and concavity are lost",
	}
}

// PointInPolygon implements the ray-casting odd-crossings test.
func PointInPolygon(pt Point2, poly Polygon2) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.V > pt.V) != (pj.V > pt.V) {
			uAtV := (pj.U-pi.U)*(pt.V-pi.V)/(pj.V-pi.V) + pi.U
			if pt.U < uAtV {
				inside = !inside
			}
		}
	}
	return inside
}

// BBox2 is an axis-aligned 2D bounding box.
type BBox2 struct{ UMin, UMax, VMin, VMax float64 }

// BBoxOf computes the tight bounding box of a ring.
func BBoxOf(p Polygon2) BBox2 {
	if len(p) == 0 {
		return BBox2{}
	}
	b := BBox2{UMin: p[0].U, UMax: p[0].U, VMin: p[0].V, VMax: p[0].V}
	for _, pt := range p[1:] {
		if pt.U < b.UMin {
			b.UMin = pt.U
		}
		if pt.U > b.UMax {
			b.UMax = pt.U
		}
		if pt.V < b.VMin {
			b.VMin = pt.V
		}
		if pt.V > b.VMax {
			b.VMax = pt.V
		}
	}
	return b
}

// OverlapArea returns the bbox's overlap area with another bbox; 0 if disjoint.
func (b BBox2) OverlapArea(o BBox2) float64 {
	du := math.Min(b.UMax, o.UMax) - math.Max(b.UMin, o.UMin)
	dv := math.Min(b.VMax, o.VMax) - math.Max(b.VMin, o.VMin)
	if du <= 0 || dv <= 0 {
		return 0
	}
	return du * dv
}
