// Package topology derives room adjacency and zone membership from
// authored param polygons (spec §3 SharedWall, supplemented zone
// resolution from the original implementation).
package topology

import (
	"math"
	"sort"

	"luxera/internal/geom"
	"luxera/internal/param"
)

// SharedEdge records an overlapping, opposite-facing edge segment between
// two room polygons, the geometric basis for inferring a SharedWall.
type SharedEdge struct {
	RoomA, RoomB     string
	EdgeA, EdgeB     int
	OverlapSegment   [2]geom.Point2
}

func edgeAt(poly []geom.Point2, i int) (geom.Point2, geom.Point2) {
	n := len(poly)
	return poly[i], poly[(i+1)%n]
}

func sub(a, b geom.Point2) geom.Point2 { return geom.Point2{U: a.U - b.U, V: a.V - b.V} }
func dot(a, b geom.Point2) float64     { return a.U*b.U + a.V*b.V }
func cross(a, b geom.Point2) float64   { return a.U*b.V - a.V*b.U }
func norm(a geom.Point2) float64       { return math.Sqrt(dot(a, a)) }

func overlapSegment(a0, a1, b0, b1 geom.Point2, tol float64) (geom.Point2, geom.Point2, bool) {
	da := sub(a1, a0)
	la := norm(da)
	if la <= tol {
		return geom.Point2{}, geom.Point2{}, false
	}
	ua := geom.Point2{U: da.U / la, V: da.V / la}
	if math.Abs(cross(da, sub(b0, a0))) > tol*la {
		return geom.Point2{}, geom.Point2{}, false
	}
	if math.Abs(cross(da, sub(b1, a0))) > tol*la {
		return geom.Point2{}, geom.Point2{}, false
	}

	tA0, tA1 := 0.0, la
	tB0 := dot(sub(b0, a0), ua)
	tB1 := dot(sub(b1, a0), ua)
	lo := math.Max(math.Min(tA0, tA1), math.Min(tB0, tB1))
	hi := math.Min(math.Max(tA0, tA1), math.Max(tB0, tB1))
	if hi-lo <= tol {
		return geom.Point2{}, geom.Point2{}, false
	}
	p0 := geom.Point2{U: a0.U + ua.U*lo, V: a0.V + ua.V*lo}
	p1 := geom.Point2{U: a0.U + ua.U*hi, V: a0.V + ua.V*hi}
	return p0, p1, true
}

// EPSWeld is the tolerance for considering two room edges coincident.
const EPSWeld = 1e-4

// FindSharedEdges scans every room-pair edge combination for overlapping,
// opposite-direction segments, the geometric signature of a shared wall
// between adjacent rooms.
func FindSharedEdges(rooms []param.Room, tolerance float64) []SharedEdge {
	var out []SharedEdge
	for i := 0; i < len(rooms); i++ {
		ra := rooms[i]
		if len(ra.Polygon2D) < 3 {
			continue
		}
		for j := i + 1; j < len(rooms); j++ {
			rb := rooms[j]
			if len(rb.Polygon2D) < 3 {
				continue
			}
			for ea := range ra.Polygon2D {
				a0, a1 := edgeAt(ra.Polygon2D, ea)
				da := sub(a1, a0)
				if norm(da) <= tolerance {
					continue
				}
				for eb := range rb.Polygon2D {
					b0, b1 := edgeAt(rb.Polygon2D, eb)
					db := sub(b1, b0)
					if norm(db) <= tolerance {
						continue
					}
					if dot(da, db) >= 0 {
						continue
					}
					p0, p1, ok := overlapSegment(a0, a1, b0, b1, tolerance)
					if !ok {
						continue
					}
					out = append(out, SharedEdge{
						RoomA: ra.ID, EdgeA: ea,
						RoomB: rb.ID, EdgeB: eb,
						OverlapSegment: [2]geom.Point2{p0, p1},
					})
				}
			}
		}
	}
	return out
}

// AdjacencyMap groups, per room id, the set of room ids it shares a wall
// with, sorted for deterministic iteration.
func AdjacencyMap(edges []SharedEdge) map[string][]string {
	set := make(map[string]map[string]struct{})
	add := func(a, b string) {
		if _, ok := set[a]; !ok {
			set[a] = make(map[string]struct{})
		}
		set[a][b] = struct{}{}
	}
	for _, e := range edges {
		add(e.RoomA, e.RoomB)
		add(e.RoomB, e.RoomA)
	}
	out := make(map[string][]string, len(set))
	for room, peers := range set {
		list := make([]string, 0, len(peers))
		for p := range peers {
			list = append(list, p)
		}
		sort.Strings(list)
		out[room] = list
	}
	return out
}
