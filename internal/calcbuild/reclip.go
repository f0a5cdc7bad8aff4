package calcbuild

import "luxera/internal/project"

// ReclipGridsForRoom re-derives every room-scoped grid's origin,
// dimensions, and sample mask/points against roomID's current footprint
// and obstacles, keeping its id/spacing/margin fixed. Call this after
// internal/rebuild regenerates a room's geometry, for every room id in
// its regenerated-room-id set, so existing grids stay aligned with an
// edited footprint (spec §4.13, deferred from internal/rebuild).
func ReclipGridsForRoom(p *project.Project, roomID string) {
	for i := range p.Grids {
		g := &p.Grids[i]
		if g.RoomID != roomID {
			continue
		}
		reclipGrid(p, g)
	}
}

func reclipGrid(p *project.Project, g *project.CalcGrid) {
	room, ok := p.Param.RoomByID(g.RoomID)
	if !ok {
		return
	}

	refreshed, err := computeCalcGrid(p, CalcGridFromRoomArgs{
		GridID:            g.ID,
		RoomID:            g.RoomID,
		ZoneID:            g.ZoneID,
		Elevation:         g.Elevation - room.OriginZ,
		Spacing:           g.Spacing,
		Margin:            g.Margin,
		MaskNearOpenings:  g.MaskNearOpenings,
		OpeningMaskMargin: g.OpeningMaskMargin,
	})
	if err != nil {
		return
	}
	g.Origin = refreshed.Origin
	g.Width = refreshed.Width
	g.Height = refreshed.Height
	g.NX = refreshed.NX
	g.NY = refreshed.NY
	g.Elevation = refreshed.Elevation
	g.SampleMask = refreshed.SampleMask
	g.SamplePoints = refreshed.SamplePoints
}
