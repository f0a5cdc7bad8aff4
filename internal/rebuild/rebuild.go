// Package rebuild implements the incremental param->derived-geometry
// rebuild pipeline (spec §4.5): given a set of edited param entity ids,
// it regenerates exactly the affected rooms' floor/ceiling/wall surfaces,
// cutting hosted openings out of the wall surfaces (the opening records
// themselves are not regenerated), while preserving material assignments
// and producing a
// stable-id map so callers (selection sets, vertical planes, openings)
// can follow surfaces across a rebuild.
package rebuild

import (
	"fmt"
	"math"
	"sort"

	"luxera/internal/depgraph"
	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/ids"
	"luxera/internal/param"
	"luxera/internal/project"
	"luxera/internal/scene"
)

// DefaultBulgeSegmentLength is the default arc-sampling chord length in
// meters (Open Question resolution: configurable, 0.5m default, 0.05m
// floor, matching the original implementation's seg_len/0.05 clamp).
const DefaultBulgeSegmentLength = 0.5

// MinBulgeSegmentLength is the minimum allowed chord length.
const MinBulgeSegmentLength = 0.05

// Result carries the regenerated ids and the remap tables produced by one
// rebuild pass (spec §4.5 RebuildResult).
type Result struct {
	Regenerated        map[string]struct{}
	RegeneratedRoomIDs []string
	StableIDMap        map[string][]string
	AttachmentRemap    map[string]string
}

func newResult() *Result {
	return &Result{
		Regenerated:     make(map[string]struct{}),
		StableIDMap:     make(map[string][]string),
		AttachmentRemap: make(map[string]string),
	}
}

func findRoom(p *project.Project, id string) (param.Room, bool) {
	return p.Param.RoomByID(id)
}

// Rebuild regenerates derived geometry for every room transitively
// affected by editedIDs (namespaced ids, e.g. "room:r1", "wall:w1").
func Rebuild(p *project.Project, editedIDs []string) (*Result, error) {
	graph := depgraph.Build(&p.Param)
	affected := graph.Affected(editedIDs)

	roomIDs := make(map[string]struct{})
	for _, aid := range affected {
		switch {
		case hasPrefix(aid, "room:"):
			roomIDs[trimPrefix(aid, "room:")] = struct{}{}
		case hasPrefix(aid, "wall:"):
			wid := trimPrefix(aid, "wall:")
			if w, ok := wallByID(p, wid); ok {
				roomIDs[w.RoomID] = struct{}{}
			}
		case hasPrefix(aid, "footprint:"):
			fid := trimPrefix(aid, "footprint:")
			for _, r := range p.Param.Rooms {
				if r.FootprintID == fid {
					roomIDs[r.ID] = struct{}{}
				}
			}
		case hasPrefix(aid, "zone:"):
			zid := trimPrefix(aid, "zone:")
			if z, ok := zoneByID(p, zid); ok {
				roomIDs[z.RoomID] = struct{}{}
			}
		case hasPrefix(aid, "shared_wall:"):
			swid := trimPrefix(aid, "shared_wall:")
			if sw, ok := sharedWallByID(p, swid); ok {
				roomIDs[sw.RoomA] = struct{}{}
				if sw.RoomB != "" {
					roomIDs[sw.RoomB] = struct{}{}
				}
			}
		}
	}

	sortedRooms := make([]string, 0, len(roomIDs))
	for r := range roomIDs {
		sortedRooms = append(sortedRooms, r)
	}
	sort.Strings(sortedRooms)

	res := newResult()
	for _, roomID := range sortedRooms {
		if err := rebuildRoom(p, roomID, res); err != nil {
			return nil, err
		}
	}
	res.RegeneratedRoomIDs = sortedRooms
	return res, nil
}

func hasPrefix(s, p string) bool { return len(s) >= len(p) && s[:len(p)] == p }
func trimPrefix(s, p string) string { return s[len(p):] }

func wallByID(p *project.Project, id string) (param.Wall, bool) {
	for _, w := range p.Param.Walls {
		if w.ID == id {
			return w, true
		}
	}
	return param.Wall{}, false
}

func sharedWallByID(p *project.Project, id string) (param.SharedWall, bool) {
	for _, w := range p.Param.SharedWalls {
		if w.ID == id {
			return w, true
		}
	}
	return param.SharedWall{}, false
}

func zoneByID(p *project.Project, id string) (param.Zone, bool) {
	for _, z := range p.Param.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return param.Zone{}, false
}

func footprintByID(p *project.Project, id string) (param.Footprint, bool) {
	fp, ok := p.Param.FootprintByID(id)
	return fp, ok
}

// wallVertices builds the 4-vertex rectangle for a straight wall segment.
func wallVertices(a, b geom.Point2, z0, z1 float64) []numeric.Vec3 {
	return []numeric.Vec3{
		{X: a.U, Y: a.V, Z: z0},
		{X: b.U, Y: b.V, Z: z0},
		{X: b.U, Y: b.V, Z: z1},
		{X: a.U, Y: a.V, Z: z1},
	}
}

func rebuildRoom(p *project.Project, roomID string, res *Result) error {
	room, ok := findRoom(p, roomID)
	if !ok {
		return fmt.Errorf("rebuild: room not found: %s", roomID)
	}
	fp, ok := footprintByID(p, room.FootprintID)
	if !ok {
		return fmt.Errorf("rebuild: footprint not found: %s", room.FootprintID)
	}
	if len(fp.Polygon2D) < 3 {
		return fmt.Errorf("rebuild: footprint %s has fewer than 3 points", fp.ID)
	}
	poly := fp.Polygon2D
	z0 := room.OriginZ
	z1 := room.OriginZ + room.Height

	oldSurfaceIDs := make(map[string]struct{})
	for _, s := range p.Geometry.Surfaces {
		if s.RoomID == roomID && (s.Kind == scene.SurfaceWall || s.Kind == scene.SurfaceFloor || s.Kind == scene.SurfaceCeiling) {
			oldSurfaceIDs[s.ID] = struct{}{}
		}
	}
	oldByID := make(map[string]scene.Surface)
	for _, s := range p.Geometry.Surfaces {
		oldByID[s.ID] = s
	}

	floorID, err := ids.SurfaceIDForFloor(roomID)
	if err != nil {
		return err
	}
	ceilingID, err := ids.SurfaceIDForCeiling(roomID)
	if err != nil {
		return err
	}

	ring := facetedRing(fp)
	floorVerts := make([]numeric.Vec3, len(ring))
	for i, pt := range ring {
		floorVerts[i] = numeric.Vec3{X: pt.U, Y: pt.V, Z: z0}
	}
	ceilingVerts := make([]numeric.Vec3, len(ring))
	for i := range ring {
		pt := ring[len(ring)-1-i]
		ceilingVerts[i] = numeric.Vec3{X: pt.U, Y: pt.V, Z: z1}
	}

	newSurfaces := []scene.Surface{
		{ID: floorID, Name: room.Name + " Floor", Kind: scene.SurfaceFloor, RoomID: roomID, Vertices: floorVerts},
		{ID: ceilingID, Name: room.Name + " Ceiling", Kind: scene.SurfaceCeiling, RoomID: roomID, Vertices: ceilingVerts},
	}

	walls := wallsForRoom(p, roomID, poly)
	for _, w := range walls {
		wallSurfaces, err := rebuildWallSurfaces(p, w, fp, z0, z1, roomID)
		if err != nil {
			return err
		}
		newSurfaces = append(newSurfaces, wallSurfaces...)
	}
	for _, sw := range sharedWallsForRoom(p, roomID) {
		swSurfaces, err := rebuildSharedWallSurfaces(p, sw)
		if err != nil {
			return err
		}
		newSurfaces = append(newSurfaces, swSurfaces...)
	}

	newIDs := make(map[string]struct{}, len(newSurfaces))
	for i := range newSurfaces {
		s := &newSurfaces[i]
		newIDs[s.ID] = struct{}{}
		if old, ok := oldByID[s.ID]; ok && s.MaterialID == "" {
			s.MaterialID = old.MaterialID
		}
	}

	// Stable-id map: surfaces that kept their id map to themselves;
	// surfaces that split into parts map to their children (":part"/":tri"
	// suffixed ids), per spec §4.5/§4.9 stable_id_map semantics.
	for oid := range oldSurfaceIDs {
		if _, ok := newIDs[oid]; ok {
			res.StableIDMap[oid] = []string{oid}
			continue
		}
		var children []string
		for nid := range newIDs {
			if hasSplitPrefix(nid, oid) {
				children = append(children, nid)
			}
		}
		sort.Strings(children)
		if len(children) > 0 {
			res.StableIDMap[oid] = children
			for _, c := range children {
				res.AttachmentRemap[c] = oid
			}
			continue
		}
		res.StableIDMap[oid] = nil
	}

	for id := range newIDs {
		res.Regenerated[id] = struct{}{}
	}

	retained := make([]scene.Surface, 0, len(p.Geometry.Surfaces))
	for _, s := range p.Geometry.Surfaces {
		if _, isNew := newIDs[s.ID]; isNew {
			continue
		}
		if _, wasOld := oldSurfaceIDs[s.ID]; wasOld {
			continue
		}
		retained = append(retained, s)
	}
	p.Geometry.Surfaces = append(retained, newSurfaces...)

	remapHostSurfaceReferences(p, res.StableIDMap, res.AttachmentRemap)
	return nil
}

func hasSplitPrefix(id, parent string) bool {
	if len(id) <= len(parent) || id[:len(parent)] != parent {
		return false
	}
	suffix := id[len(parent):]
	return hasPrefix(suffix, ":part") || hasPrefix(suffix, ":tri") || hasPrefix(suffix, ":seg")
}

func wallsForRoom(p *project.Project, roomID string, poly []geom.Point2) []param.Wall {
	var out []param.Wall
	for _, w := range p.Param.Walls {
		if w.RoomID == roomID {
			out = append(out, w)
		}
	}
	if len(out) > 0 {
		return out
	}
	n := len(poly)
	out = make([]param.Wall, n)
	for i := 0; i < n; i++ {
		out[i] = param.Wall{
			ID:      fmt.Sprintf("%s:wall:%d", roomID, i),
			RoomID:  roomID,
			EdgeRef: param.EdgeRef{Start: i, End: (i + 1) % n},
		}
	}
	return out
}

func sharedWallsForRoom(p *project.Project, roomID string) []param.SharedWall {
	var out []param.SharedWall
	for _, sw := range p.Param.SharedWalls {
		if sw.RoomA == roomID || sw.RoomB == roomID {
			out = append(out, sw)
		}
	}
	return out
}

// footprintEdgeBulge returns the authored bulge for the footprint edge
// starting at vertex index i, or 0 (straight) if unset.
func footprintEdgeBulge(fp param.Footprint, edgeIndex int) float64 {
	if fp.Bulge == nil {
		return 0
	}
	return fp.Bulge[edgeIndex]
}

// facetedRing samples every edge of the footprint's outer ring through
// SampleBulgeArc, so floor and ceiling surfaces are built from the
// bulge-faceted boundary rather than the raw authored vertices.
func facetedRing(fp param.Footprint) []geom.Point2 {
	poly := fp.Polygon2D
	n := len(poly)
	out := make([]geom.Point2, 0, n)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		segment := SampleBulgeArc(a, b, footprintEdgeBulge(fp, i), DefaultBulgeSegmentLength)
		out = append(out, segment[:len(segment)-1]...)
	}
	return out
}

func rebuildWallSurfaces(p *project.Project, w param.Wall, fp param.Footprint, z0, z1 float64, roomID string) ([]scene.Surface, error) {
	poly := fp.Polygon2D
	n := len(poly)
	if w.EdgeRef.Start < 0 || w.EdgeRef.Start >= n || w.EdgeRef.End < 0 || w.EdgeRef.End >= n {
		return nil, fmt.Errorf("rebuild: wall %s edge_ref out of range", w.ID)
	}
	height := z1
	if w.Height != nil {
		height = z0 + *w.Height
	}
	a, b := poly[w.EdgeRef.Start], poly[w.EdgeRef.End]
	bulge := footprintEdgeBulge(fp, w.EdgeRef.Start)
	if math.Abs(bulge) <= 1e-12 {
		baseID, err := ids.SurfaceIDForWallSide(w.ID, "A")
		if err != nil {
			return nil, err
		}
		base := scene.Surface{
			ID:       baseID,
			Name:     w.Name,
			Kind:     scene.SurfaceWall,
			RoomID:   roomID,
			Vertices: wallVertices(a, b, z0, height),
		}
		return applyOpenings(p, base, w.ID)
	}

	// Curved edge: sample the bulge arc into polyline segments and extrude
	// each into its own quad, per-segment rather than as a single planar
	// wall surface. Opening subtraction assumes a single planar host
	// surface, so openings on a bulged wall are not cut here.
	points := SampleBulgeArc(a, b, bulge, DefaultBulgeSegmentLength)
	baseID, err := ids.SurfaceIDForWallSide(w.ID, "A")
	if err != nil {
		return nil, err
	}
	out := make([]scene.Surface, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		sid := fmt.Sprintf("%s:seg%d", baseID, i)
		out = append(out, scene.Surface{
			ID:       sid,
			Name:     w.Name,
			Kind:     scene.SurfaceWall,
			RoomID:   roomID,
			Vertices: wallVertices(points[i], points[i+1], z0, height),
		})
	}
	return out, nil
}

func rebuildSharedWallSurfaces(p *project.Project, sw param.SharedWall) ([]scene.Surface, error) {
	room, ok := findRoom(p, sw.RoomA)
	z0 := 0.0
	height := 2.4
	if ok {
		z0 = room.OriginZ
		height = z0 + room.Height
	}
	if sw.Height != nil {
		height = z0 + *sw.Height
	}
	sid, err := ids.SurfaceIDForSharedWall(sw.ID)
	if err != nil {
		return nil, err
	}
	base := scene.Surface{
		ID:                sid,
		Name:              sw.Name,
		Kind:              scene.SurfaceWall,
		Layer:             "shared_wall",
		Vertices:          wallVertices(sw.EdgeGeom[0], sw.EdgeGeom[1], z0, height),
		MaterialID:        firstNonEmpty(sw.WallMaterialSideA, sw.WallMaterialSideB),
		WallRoomSideA:      sw.RoomA,
		WallRoomSideB:      sw.RoomB,
		WallMaterialSideA:  sw.WallMaterialSideA,
		WallMaterialSideB:  sw.WallMaterialSideB,
		Tags:              []string{"room_a=" + sw.RoomA, "room_b=" + sw.RoomB},
	}
	return applyOpenings(p, base, sw.ID)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// applyOpenings subtracts every opening hosted on hostWallID from the wall
// surface, returning one surface per resulting polygon part.
func applyOpenings(p *project.Project, wallSurface scene.Surface, hostWallID string) ([]scene.Surface, error) {
	openings := p.Param.OpeningsForWall(hostWallID)
	if len(openings) == 0 {
		return []scene.Surface{wallSurface}, nil
	}
	basis, err := geom.ComputeWallBasis(wallSurface.Vertices)
	if err != nil {
		return []scene.Surface{wallSurface}, nil
	}
	wallUV := geom.Polygon2(geom.ProjectPointsToUV(wallSurface.Vertices, basis))

	placements := make([]geom.OpeningPlacement, len(openings))
	for i, o := range openings {
		placements[i] = toPlacement(o)
	}

	var openingUVs []geom.Polygon2
	for _, placement := range placements {
		uv, err := geom.OpeningUVPolygon(placement, wallUV, placements)
		if err != nil {
			continue
		}
		openingUVs = append(openingUVs, uv)
	}
	if len(openingUVs) == 0 {
		return []scene.Surface{wallSurface}, nil
	}

	cut := geom.SubtractOpenings(wallUV, openingUVs, geom.EPSPlane)
	var parts []geom.Polygon2
	if cut.Single != nil {
		parts = []geom.Polygon2{cut.Single.Outer}
	} else if cut.Multi != nil {
		for _, part := range cut.Multi.Parts {
			parts = append(parts, part.Outer)
		}
	}
	if len(parts) == 0 {
		return []scene.Surface{wallSurface}, nil
	}

	out := make([]scene.Surface, 0, len(parts))
	for k, part := range parts {
		sid := wallSurface.ID
		if k > 0 {
			sid = fmt.Sprintf("%s:part%d", wallSurface.ID, k)
		}
		s := wallSurface
		s.ID = sid
		s.Vertices = geom.LiftUVToPoints(part, basis)
		out = append(out, s)
	}
	return out, nil
}

func toPlacement(o param.Opening) geom.OpeningPlacement {
	return geom.OpeningPlacement{
		ID:                o.ID,
		WallID:            o.WallID,
		AnchorMode:        defaultAnchorMode(o.AnchorMode),
		Anchor:            o.Anchor,
		FromStartDistance: o.FromStartDistance,
		FromEndDistance:   o.FromEndDistance,
		CenterAtFraction:  o.CenterAtFraction,
		GridlineSpacing:   o.GridlineSpacing,
		SpacingGroupID:    o.SpacingGroupID,
		Width:             o.Width,
		Height:            o.Height,
		Sill:              o.Sill,
	}
}

func defaultAnchorMode(m geom.AnchorMode) geom.AnchorMode {
	if m == "" {
		return geom.AnchorFraction
	}
	return m
}

// remapHostSurfaceReferences rewrites opening host-surface references
// after a wall split, per spec §4.5's attachment remap contract.
func remapHostSurfaceReferences(p *project.Project, stableIDMap map[string][]string, attachmentRemap map[string]string) {
	for i := range p.Geometry.Openings {
		op := &p.Geometry.Openings[i]
		if children, ok := stableIDMap[op.HostSurfaceID]; ok && len(children) > 0 {
			op.HostSurfaceID = children[0]
			attachmentRemap["opening:"+op.ID] = op.HostSurfaceID
		}
	}
}

// SampleBulgeArc linearizes a bulge-curved edge into a polyline of chord
// length no shorter than MinBulgeSegmentLength (spec SUPPLEMENTED
// FEATURES: bulge-edge footprints). bulge 0 means a straight edge.
func SampleBulgeArc(a, b geom.Point2, bulge, segLen float64) []geom.Point2 {
	if math.Abs(bulge) <= 1e-12 {
		return []geom.Point2{a, b}
	}
	if segLen < MinBulgeSegmentLength {
		segLen = MinBulgeSegmentLength
	}
	chord := math.Hypot(b.U-a.U, b.V-a.V)
	theta := 4 * math.Atan(bulge)
	if math.Abs(theta) < 1e-9 {
		return []geom.Point2{a, b}
	}
	radius := chord / (2 * math.Sin(theta/2))
	arcLen := math.Abs(radius * theta)
	n := int(math.Ceil(arcLen/segLen)) + 1
	if n < 2 {
		n = 2
	}
	mx, my := (a.U+b.U)/2, (a.V+b.V)/2
	dx, dy := b.U-a.U, b.V-a.V
	nx, ny := -dy, dx
	nlen := math.Hypot(nx, ny)
	if nlen > 1e-12 {
		nx, ny = nx/nlen, ny/nlen
	}
	offset := radius * math.Cos(theta/2)
	cx, cy := mx+nx*offset, my+ny*offset

	startAngle := math.Atan2(a.V-cy, a.U-cx)
	out := make([]geom.Point2, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		ang := startAngle + theta*t
		out[i] = geom.Point2{U: cx + math.Abs(radius)*math.Cos(ang), V: cy + math.Abs(radius)*math.Sin(ang)}
	}
	out[0] = a
	out[n-1] = b
	return out
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
