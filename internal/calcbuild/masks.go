// Package calcbuild builds and maintains the calculation objects a
// deterministic run samples: work-plane grids, vertical planes, point
// sets, and line grids (spec §4.13 Calc Objects).
package calcbuild

import "luxera/internal/geom"

func maskPointsByPolygons(points []geom.Point2, polygons [][]geom.Point2) []bool {
	mask := make([]bool, len(points))
	for i, p := range points {
		blocked := false
		for _, poly := range polygons {
			if len(poly) >= 3 && geom.PointInPolygon(p, geom.Polygon2(poly)) {
				blocked = true
				break
			}
		}
		mask[i] = !blocked
	}
	return mask
}

// applyObstacleMasks ANDs baseMask with "not inside any obstacle polygon".
func applyObstacleMasks(baseMask []bool, points []geom.Point2, obstacles [][]geom.Point2) []bool {
	keep := maskPointsByPolygons(points, obstacles)
	n := len(baseMask)
	if len(keep) < n {
		n = len(keep)
	}
	out := make([]bool, len(baseMask))
	for i := 0; i < n; i++ {
		out[i] = baseMask[i] && keep[i]
	}
	for i := n; i < len(baseMask); i++ {
		out[i] = baseMask[i]
	}
	return out
}

// applyOpeningProximityMask drops sample points within margin of any
// opening polygon's bounding box, leaving the rest of baseMask untouched.
func applyOpeningProximityMask(baseMask []bool, points []geom.Point2, openingPolygons [][]geom.Point2, margin float64) []bool {
	out := append([]bool(nil), baseMask...)
	if margin <= 0 || len(openingPolygons) == 0 {
		return out
	}
	type bbox struct{ uMin, vMin, uMax, vMax float64 }
	var boxes []bbox
	for _, poly := range openingPolygons {
		if len(poly) < 2 {
			continue
		}
		b := bbox{poly[0].U, poly[0].V, poly[0].U, poly[0].V}
		for _, p := range poly[1:] {
			if p.U < b.uMin {
				b.uMin = p.U
			}
			if p.U > b.uMax {
				b.uMax = p.U
			}
			if p.V < b.vMin {
				b.vMin = p.V
			}
			if p.V > b.vMax {
				b.vMax = p.V
			}
		}
		b.uMin -= margin
		b.vMin -= margin
		b.uMax += margin
		b.vMax += margin
		boxes = append(boxes, b)
	}
	if len(boxes) == 0 {
		return out
	}
	for i, p := range points {
		if i >= len(out) || !out[i] {
			continue
		}
		for _, b := range boxes {
			if p.U >= b.uMin && p.U <= b.uMax && p.V >= b.vMin && p.V <= b.vMax {
				out[i] = false
				break
			}
		}
	}
	return out
}
