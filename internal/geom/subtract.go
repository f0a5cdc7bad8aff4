package geom

import "math"

// UVPolygonWithHoles is a single outer ring with optional holes.
type UVPolygonWithHoles struct {
	Outer Polygon2
	Holes []Polygon2
}

// MultiPolygon2 is a disjoint set of solid UV polygon parts.
type MultiPolygon2 struct {
	Parts []UVPolygonWithHoles
}

// SubtractResult is either a single polygon-with-holes or a disjoint
// multipolygon, matching spec §4.2's "Opening subtraction" contract.
type SubtractResult struct {
	Single *UVPolygonWithHoles
	Multi  *MultiPolygon2
	Warning string
}

func isAxisAlignedRect(poly Polygon2, eps float64) (bool, BBox2) {
	if len(poly) < 4 {
		return false, BBox2{}
	}
	b := BBoxOf(poly)
	for _, p := range poly {
		onU := math.Abs(p.U-b.UMin) <= eps || math.Abs(p.U-b.UMax) <= eps
		onV := math.Abs(p.V-b.VMin) <= eps || math.Abs(p.V-b.VMax) <= eps
		if !onU || !onV {
			return false, b
		}
	}
	return true, b
}

func rectPoly(b BBox2) Polygon2 {
	return Polygon2{
		{b.UMin, b.VMin}, {b.UMax, b.VMin}, {b.UMax, b.VMax}, {b.UMin, b.VMax},
	}
}

// subtractRectFromRect splits a rectangle by a cutting rectangle into up to
// four remaining axis-aligned rectangles (spec §4.2 "split-into-strips").
func subtractRectFromRect(rect, cut BBox2, eps float64) []Polygon2 {
	ix0, ix1 := math.Max(rect.UMin, cut.UMin), math.Min(rect.UMax, cut.UMax)
	iy0, iy1 := math.Max(rect.VMin, cut.VMin), math.Min(rect.VMax, cut.VMax)
	if (ix1-ix0) <= eps || (iy1-iy0) <= eps {
		return []Polygon2{rectPoly(rect)}
	}
	var out []Polygon2
	if (ix0 - rect.UMin) > eps {
		out = append(out, rectPoly(BBox2{rect.UMin, ix0, rect.VMin, rect.VMax}))
	}
	if (rect.UMax - ix1) > eps {
		out = append(out, rectPoly(BBox2{ix1, rect.UMax, rect.VMin, rect.VMax}))
	}
	if (iy0 - rect.VMin) > eps {
		out = append(out, rectPoly(BBox2{ix0, ix1, rect.VMin, iy0}))
	}
	if (rect.VMax - iy1) > eps {
		out = append(out, rectPoly(BBox2{ix0, ix1, iy1, rect.VMax}))
	}
	return out
}

func polyArea(p Polygon2) float64 { return p.SignedArea() }

// clipHalfPlane is a Sutherland-Hodgman clip against one axis-aligned
// half-plane, used by the general (non-rectangular-wall) native fallback.
func clipHalfPlane(poly Polygon2, axis byte, k float64, keepGE bool, eps float64) Polygon2 {
	if len(poly) == 0 {
		return nil
	}
	val := func(p Point2) float64 {
		if axis == 'x' {
			return p.U
		}
		return p.V
	}
	inside := func(p Point2) bool {
		v := val(p)
		if keepGE {
			return v >= k-eps
		}
		return v <= k+eps
	}
	intersect := func(a, b Point2) Point2 {
		av, bv := val(a), val(b)
		dv := bv - av
		if math.Abs(dv) <= eps {
			return a
		}
		t := (k - av) / dv
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		return Point2{a.U + (b.U-a.U)*t, a.V + (b.V-a.V)*t}
	}
	var out Polygon2
	prev := poly[len(poly)-1]
	prevIn := inside(prev)
	for _, cur := range poly {
		curIn := inside(cur)
		if curIn {
			if !prevIn {
				out = append(out, intersect(prev, cur))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, intersect(prev, cur))
		}
		prev, prevIn = cur, curIn
	}
	return out
}

// subtractAxisAlignedRectFromPoly partitions poly \ rect into disjoint parts
// clipped from poly, for the general-polygon + axis-aligned-opening case.
func subtractAxisAlignedRectFromPoly(poly Polygon2, cut BBox2, eps float64) []Polygon2 {
	if len(poly) < 3 {
		return nil
	}
	left := clipHalfPlane(poly, 'x', cut.UMin, false, eps)
	right := clipHalfPlane(poly, 'x', cut.UMax, true, eps)
	mid := clipHalfPlane(clipHalfPlane(poly, 'x', cut.UMin, true, eps), 'x', cut.UMax, false, eps)
	bottom := clipHalfPlane(mid, 'y', cut.VMin, false, eps)
	top := clipHalfPlane(mid, 'y', cut.VMax, true, eps)

	var parts []Polygon2
	for _, p := range []Polygon2{left, right, bottom, top} {
		if len(p) < 3 {
			continue
		}
		if math.Abs(polyArea(p)) <= eps {
			continue
		}
		parts = append(parts, p)
	}
	return parts
}

// SubtractOpenings subtracts opening UV polygons from a wall UV polygon,
// per spec §4.2. The axis-aligned-rectangle fast path (wall and all
// openings are axis-aligned rectangles) uses split-into-strips; the general
// polygon case with axis-aligned rectangular openings uses half-plane
// clipping; any other combination (general polygon boolean / non-rect
// openings on a non-rect wall) has no robust-geometry library vendored
// here, so it returns the original wall unchanged with a warning, per the
// documented degraded-behavior contract in spec §9 ("No scaffolding").
func SubtractOpenings(wall Polygon2, openings []Polygon2, eps float64) SubtractResult {
	if len(openings) == 0 {
		return SubtractResult{Single: &UVPolygonWithHoles{Outer: wall}}
	}

	isRectWall, wallRect := isAxisAlignedRect(wall, eps)
	if isRectWall {
		allRect := true
		var cuts []BBox2
		for _, op := range openings {
			ok, r := isAxisAlignedRect(op, eps)
			if !ok {
				allRect = false
				break
			}
			cuts = append(cuts, r)
		}
		if allRect {
			parts := []Polygon2{rectPoly(wallRect)}
			for _, cut := range cuts {
				var next []Polygon2
				for _, part := range parts {
					_, r := isAxisAlignedRect(part, eps)
					next = append(next, subtractRectFromRect(r, cut, eps)...)
				}
				parts = next
			}
			return finishParts(parts)
		}
	}

	// General polygon with axis-aligned rectangular openings: half-plane clip.
	allRectOpenings := true
	var cuts []BBox2
	for _, op := range openings {
		ok, r := isAxisAlignedRect(op, eps)
		if !ok {
			allRectOpenings = false
			break
		}
		cuts = append(cuts, r)
	}
	if allRectOpenings {
		parts := []Polygon2{wall}
		for _, cut := range cuts {
			var next []Polygon2
			for _, p := range parts {
				sub := subtractAxisAlignedRectFromPoly(p, cut, eps)
				next = append(next, sub...)
			}
			if len(next) > 0 {
				parts = next
			}
		}
		return finishParts(parts)
	}

	return SubtractResult{
		Single:  &UVPolygonWithHoles{Outer: wall},
		Warning: "opening subtraction fell back to unmodified wall: no robust polygon-boolean backend available for non-rectangular geometry",
	}
}

func finishParts(parts []Polygon2) SubtractResult {
	if len(parts) == 0 {
		return SubtractResult{Multi: &MultiPolygon2{}}
	}
	if len(parts) == 1 {
		return SubtractResult{Single: &UVPolygonWithHoles{Outer: parts[0]}}
	}
	mp := &MultiPolygon2{}
	for _, p := range parts {
		mp.Parts = append(mp.Parts, UVPolygonWithHoles{Outer: p})
	}
	return SubtractResult{Multi: mp}
}
