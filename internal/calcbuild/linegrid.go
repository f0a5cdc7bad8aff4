package calcbuild

import (
	"fmt"

	"luxera/internal/geom"
	"luxera/internal/project"
)

// LineGridArgs are the parameters for CreateLineGrid. SnapSegments and
// ClipBoundary are optional preprocessing steps applied, in order, to
// the polyline's XY projection before it is stored.
type LineGridArgs struct {
	LineID       string
	Name         string
	Polyline     [][3]float64
	Spacing      float64
	RoomID       string
	ZoneID       string
	SnapSegments [][2]geom.Point2
	ClipBoundary []geom.Point2
}

// CreateLineGrid validates, optionally snaps/clips, and appends an
// authored polyline to be sampled at fixed spacing (spec §4.13
// create_line_grid).
func CreateLineGrid(p *project.Project, args LineGridArgs) (project.LineGrid, error) {
	if len(args.Polyline) < 2 {
		return project.LineGrid{}, fmt.Errorf("calcbuild: line grid polyline requires at least two points")
	}
	if args.Spacing <= 0 {
		return project.LineGrid{}, fmt.Errorf("calcbuild: line grid spacing must be > 0")
	}

	pts2 := make([]geom.Point2, len(args.Polyline))
	for i, p3 := range args.Polyline {
		pts2[i] = geom.Point2{U: p3[0], V: p3[1]}
	}

	if len(args.SnapSegments) > 0 {
		segs := make([]segment, len(args.SnapSegments))
		for i, s := range args.SnapSegments {
			segs[i] = segment{A: s[0], B: s[1]}
		}
		pts2 = snapPolylineToSegments(pts2, segs, 0.25)
	}
	if len(args.ClipBoundary) > 0 {
		pts2 = clipPolylineToPolygon(pts2, args.ClipBoundary)
	}
	if len(pts2) < 2 {
		return project.LineGrid{}, fmt.Errorf("calcbuild: line grid collapsed after snapping/clipping")
	}

	z := args.Polyline[0][2]
	polyline := make([][3]float64, len(pts2))
	for i, p2 := range pts2 {
		polyline[i] = [3]float64{p2.U, p2.V, z}
	}

	lg := project.LineGrid{
		ID:       args.LineID,
		Name:     args.Name,
		Polyline: polyline,
		Spacing:  args.Spacing,
		RoomID:   args.RoomID,
		ZoneID:   args.ZoneID,
	}
	p.LineGrids = append(p.LineGrids, lg)
	return lg, nil
}
