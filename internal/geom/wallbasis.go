package geom

import (
	"errors"
	"math"

	"luxera/internal/geom/numeric"
)

// ErrInvalidWallBasis is returned when no vertex yields a non-degenerate
// plane normal (spec §4.2).
var ErrInvalidWallBasis = errors.New("geom: invalid wall basis")

// WallBasis is the orthonormal wall-local frame (origin, u, v, n) per spec
// invariant 3: u from the first edge, n = u x secondEdge normalized, v = n x u.
type WallBasis struct {
	Origin numeric.Vec3
	U, V, N numeric.Vec3
}

// ComputeWallBasis derives the wall-local frame from a surface's vertex
// ring, following the first three non-degenerate vertices.
func ComputeWallBasis(verts []numeric.Vec3) (WallBasis, error) {
	if len(verts) < 3 {
		return WallBasis{}, ErrInvalidWallBasis
	}
	origin := verts[0]
	uRaw := verts[1].Sub(origin)
	lu := math.Sqrt(uRaw.LengthSq())
	if lu <= EPSPos {
		return WallBasis{}, ErrInvalidWallBasis
	}
	u := uRaw.Scale(1.0 / lu)

	var n numeric.Vec3
	found := false
	for i := 2; i < len(verts); i++ {
		c := u.Cross(verts[i].Sub(origin))
		ln := math.Sqrt(c.LengthSq())
		if ln > EPSPos {
			n = c.Scale(1.0 / ln)
			found = true
			break
		}
	}
	if !found {
		return WallBasis{}, ErrInvalidWallBasis
	}

	vRaw := n.Cross(u)
	lv := math.Sqrt(vRaw.LengthSq())
	if lv <= EPSPos {
		return WallBasis{}, ErrInvalidWallBasis
	}
	v := vRaw.Scale(1.0 / lv)

	return WallBasis{Origin: origin, U: u, V: v, N: n}, nil
}

// ProjectPointsToUV projects 3D points into the wall-local UV plane.
func ProjectPointsToUV(points []numeric.Vec3, basis WallBasis) []Point2 {
	out := make([]Point2, len(points))
	for i, p := range points {
		d := p.Sub(basis.Origin)
		out[i] = Point2{U: d.Dot(basis.U), V: d.Dot(basis.V)}
	}
	return out
}

// LiftUVToPoints maps UV points back into 3D using the wall basis.
func LiftUVToPoints(points []Point2, basis WallBasis) []numeric.Vec3 {
	out := make([]numeric.Vec3, len(points))
	for i, p := range points {
		out[i] = basis.Origin.Add(basis.U.Scale(p.U)).Add(basis.V.Scale(p.V))
	}
	return out
}
