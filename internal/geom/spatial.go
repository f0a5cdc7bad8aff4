package geom

import "math"

// Snap rounds a value to the nearest multiple of grid; a grid at or
// below EPSPlane leaves v unchanged.
func Snap(v, grid float64) float64 {
	if grid <= EPSPlane {
		return v
	}
	return math.Round(v/grid) * grid
}

// SnapPoint snaps both coordinates of p to grid.
func SnapPoint(p Point2, grid float64) Point2 {
	return Point2{U: Snap(p.U, grid), V: Snap(p.V, grid)}
}

// ClipPolylineToBBox clips an open polyline against an axis-aligned box,
// returning the runs of consecutive input vertices that lie inside it
// (within EPSPlane). No crossing points are computed where a segment
// enters or leaves the box.
func ClipPolylineToBBox(line []Point2, box BBox2) [][]Point2 {
	if len(line) < 2 {
		return nil
	}
	var segments [][]Point2
	var cur []Point2
	inside := func(p Point2) bool {
		return p.U >= box.UMin-EPSPlane && p.U <= box.UMax+EPSPlane &&
			p.V >= box.VMin-EPSPlane && p.V <= box.VMax+EPSPlane
	}
	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		aIn, bIn := inside(a), inside(b)
		switch {
		case aIn && bIn:
			if cur == nil {
				cur = append(cur, a)
			}
			cur = append(cur, b)
		case aIn && !bIn:
			cur = append(cur, a)
			segments = append(segments, cur)
			cur = nil
		case !aIn && bIn:
			cur = []Point2{b}
		}
	}
	if len(cur) > 1 {
		segments = append(segments, cur)
	}
	return segments
}

// UnionBBox merges two polygons' bounding boxes, a cheap conservative
// stand-in for polygon union where only coverage extent matters.
func UnionBBox(a, b Polygon2) BBox2 {
	ba, bb := BBoxOf(a), BBoxOf(b)
	return BBox2{
		UMin: math.Min(ba.UMin, bb.UMin),
		UMax: math.Max(ba.UMax, bb.UMax),
		VMin: math.Min(ba.VMin, bb.VMin),
		VMax: math.Max(ba.VMax, bb.VMax),
	}
}

// IntersectsBBox reports whether two bounding boxes overlap (inclusive).
func IntersectsBBox(a, b BBox2) bool {
	return a.UMin <= b.UMax && a.UMax >= b.UMin && a.VMin <= b.VMax && a.VMax >= b.VMin
}
