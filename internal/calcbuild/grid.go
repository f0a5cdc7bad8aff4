package calcbuild

import (
	"fmt"

	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/geom/topology"
	"luxera/internal/param"
	"luxera/internal/project"
)

func vec3ToPoint2(v numeric.Vec3) geom.Point2 { return geom.Point2{U: v.X, V: v.Y} }

func polygonFromVec3(vs []numeric.Vec3) []geom.Point2 {
	out := make([]geom.Point2, len(vs))
	for i, v := range vs {
		out[i] = vec3ToPoint2(v)
	}
	return out
}

// obstaclePolygonsForRoom collects the derived no-go zone polygons that
// apply to roomID, converting the scene's 3D vertex lists down to the
// XY polygons calc masking operates on.
func obstaclePolygonsForRoom(p *project.Project, roomID string) [][]geom.Point2 {
	zones := make([]topology.NoGoZone, 0, len(p.Geometry.NoGoZones))
	for _, z := range p.Geometry.NoGoZones {
		zones = append(zones, topology.NoGoZone{ID: z.ID, RoomID: z.RoomID, Vertices: polygonFromVec3(z.Vertices)})
	}
	return topology.ObstaclePolygonsForRoom(zones, roomID)
}

// openingPolygonsForWall returns the derived opening polygons hosted on
// surfaceID, used by opening-proximity masking.
func openingPolygonsForWall(p *project.Project, surfaceID string) [][]geom.Point2 {
	var out [][]geom.Point2
	for _, o := range p.Geometry.Openings {
		if o.HostSurfaceID == surfaceID {
			out = append(out, polygonFromVec3(o.Vertices))
		}
	}
	return out
}

// roomBBox returns a room's authored-polygon bounding box as an XY
// origin plus width/height, standing in for the original's explicit
// room.width/room.length/room.origin fields (not modeled here; the Go
// room only carries its polygon and per-room origin_z).
func roomBBox(r param.Room) (origin geom.Point2, width, height float64) {
	box := geom.BBoxOf(geom.Polygon2(r.Polygon2D))
	return geom.Point2{U: box.UMin, V: box.VMin}, box.UMax - box.UMin, box.VMax - box.VMin
}

// CreateWorkplane validates and appends an authored workplane definition.
// It does not sample points; CreateCalcGridFromRoom does that against a
// room or zone footprint.
func CreateWorkplane(p *project.Project, wp project.Workplane) (project.Workplane, error) {
	if wp.Spacing <= 0 {
		return project.Workplane{}, fmt.Errorf("calcbuild: spacing must be > 0")
	}
	for _, existing := range p.Workplanes {
		if existing.ID == wp.ID {
			return project.Workplane{}, fmt.Errorf("calcbuild: workplane already exists: %s", wp.ID)
		}
	}
	p.Workplanes = append(p.Workplanes, wp)
	return wp, nil
}

// CalcGridFromRoomArgs are the parameters for CreateCalcGridFromRoom.
type CalcGridFromRoomArgs struct {
	GridID    string
	RoomID    string
	ZoneID    string
	Elevation float64
	Spacing   float64
	Margin    float64
	MaskNearOpenings  bool
	OpeningMaskMargin float64
}

// CreateCalcGridFromRoom lays a row-major sample grid over a room (or,
// when ZoneID is set, the resolved zone polygon), masking samples that
// fall outside the footprint (samples on a footprint edge count as
// inside) or inside an obstacle/opening-proximity zone (spec §4.13
// create_calc_grid_from_room).
func CreateCalcGridFromRoom(p *project.Project, args CalcGridFromRoomArgs) (project.CalcGrid, error) {
	for _, g := range p.Grids {
		if g.ID == args.GridID {
			return project.CalcGrid{}, fmt.Errorf("calcbuild: grid already exists: %s", args.GridID)
		}
	}
	grid, err := computeCalcGrid(p, args)
	if err != nil {
		return project.CalcGrid{}, err
	}
	p.Grids = append(p.Grids, grid)
	return grid, nil
}

// computeCalcGrid samples a calc grid without touching p.Grids, so
// callers that are re-deriving an existing grid's samples in place
// (ReclipGridsForRoom) never risk a reallocation invalidating a pointer
// into that slice.
func computeCalcGrid(p *project.Project, args CalcGridFromRoomArgs) (project.CalcGrid, error) {
	room, ok := p.Param.RoomByID(args.RoomID)
	if !ok {
		return project.CalcGrid{}, fmt.Errorf("calcbuild: unknown room %q", args.RoomID)
	}
	if args.Spacing <= 0 {
		return project.CalcGrid{}, fmt.Errorf("calcbuild: spacing must be > 0")
	}

	origin2, roomWidth, roomHeight := roomBBox(room)
	width := roomWidth - 2*args.Margin
	if width < args.Spacing {
		width = args.Spacing
	}
	height := roomHeight - 2*args.Margin
	if height < args.Spacing {
		height = args.Spacing
	}
	nx := int(roundHalfAwayFromZero(width/args.Spacing)) + 1
	if nx < 2 {
		nx = 2
	}
	ny := int(roundHalfAwayFromZero(height/args.Spacing)) + 1
	if ny < 2 {
		ny = 2
	}
	originU, originV := origin2.U+args.Margin, origin2.V+args.Margin

	footprint := room.Polygon2D
	if args.ZoneID != "" {
		zone, ok := findZone(p.Param.Zones, args.ZoneID)
		if !ok {
			return project.CalcGrid{}, fmt.Errorf("calcbuild: unknown zone %q", args.ZoneID)
		}
		roomsByID := map[string]param.Room{}
		for _, r := range p.Param.Rooms {
			roomsByID[r.ID] = r
		}
		resolved, err := topology.ResolveZonePolygon(zone, roomsByID)
		if err != nil {
			return project.CalcGrid{}, err
		}
		footprint = resolved
	}

	dx := width / maxInt1(nx-1)
	dy := height / maxInt1(ny-1)

	points := make([]geom.Point2, 0, nx*ny)
	mask := make([]bool, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			pt := geom.Point2{U: originU + float64(i)*dx, V: originV + float64(j)*dy}
			points = append(points, pt)
			inside := len(footprint) >= 3 && geom.PointInPolygon(pt, geom.Polygon2(footprint))
			for k := 0; !inside && len(footprint) >= 3 && k < len(footprint); k++ {
				edge := segment{footprint[k], footprint[(k+1)%len(footprint)]}
				inside = dist2(pt, closestPointOnSegment(pt, edge)) <= geom.EPSPlane*geom.EPSPlane
			}
			mask = append(mask, inside)
		}
	}

	obstacles := obstaclePolygonsForRoom(p, args.RoomID)
	mask = applyObstacleMasks(mask, points, obstacles)
	if args.MaskNearOpenings {
		var openingPolys [][]geom.Point2
		for _, s := range p.Geometry.Surfaces {
			if s.RoomID != args.RoomID || string(s.Kind) != "wall" {
				continue
			}
			openingPolys = append(openingPolys, openingPolygonsForWall(p, s.ID)...)
		}
		mask = applyOpeningProximityMask(mask, points, openingPolys, args.OpeningMaskMargin)
	}

	elevation := room.OriginZ + args.Elevation
	samplePoints := make([][3]float64, 0, len(points))
	for i, pt := range points {
		if mask[i] {
			samplePoints = append(samplePoints, [3]float64{pt.U, pt.V, elevation})
		}
	}

	grid := project.CalcGrid{
		ID:                args.GridID,
		RoomID:            args.RoomID,
		ZoneID:            args.ZoneID,
		Origin:            [2]float64{originU, originV},
		Width:             width,
		Height:            height,
		NX:                nx,
		NY:                ny,
		Margin:            args.Margin,
		Spacing:           args.Spacing,
		Elevation:         elevation,
		MaskNearOpenings:  args.MaskNearOpenings,
		OpeningMaskMargin: args.OpeningMaskMargin,
		SampleMask:        mask,
		SamplePoints:      samplePoints,
	}
	return grid, nil
}

func findZone(zones []param.Zone, id string) (param.Zone, bool) {
	for _, z := range zones {
		if z.ID == id {
			return z, true
		}
	}
	return param.Zone{}, false
}

func maxInt1(n int) float64 {
	if n < 1 {
		return 1
	}
	return float64(n)
}

// roundHalfAwayFromZero rounds width/spacing to the nearest integer,
// ties away from zero. nx/ny are always derived from a non-negative
// ratio here.
func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return -roundHalfAwayFromZero(-v)
	}
	whole := float64(int64(v))
	if v-whole >= 0.5 {
		return whole + 1
	}
	return whole
}
