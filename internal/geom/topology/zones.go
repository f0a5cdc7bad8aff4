package topology

import (
	"fmt"

	"luxera/internal/geom"
	"luxera/internal/param"
)

// NoGoZone is a polygonal obstacle that calc-object builders must mask
// out (spec SUPPLEMENTED FEATURES: zones & topology).
type NoGoZone struct {
	ID        string
	RoomID    string // empty means applies to every room
	Vertices  []geom.Point2
}

// RoomPolygon returns a room's authored polygon.
func RoomPolygon(r param.Room) []geom.Point2 {
	return r.Polygon2D
}

// ZoneAppliesToRoom reports whether zone z is scoped to roomID.
func ZoneAppliesToRoom(z param.Zone, roomID string) bool {
	return z.RoomID == roomID
}

// ZonesForRoom filters zones to those scoped to roomID.
func ZonesForRoom(zones []param.Zone, roomID string) []param.Zone {
	var out []param.Zone
	for _, z := range zones {
		if ZoneAppliesToRoom(z, roomID) {
			out = append(out, z)
		}
	}
	return out
}

// ResolveZonePolygon returns a zone's polygon, falling back to its owning
// room's polygon when the zone has none authored directly.
func ResolveZonePolygon(z param.Zone, roomsByID map[string]param.Room) ([]geom.Point2, error) {
	if len(z.Polygon2D) > 0 {
		return z.Polygon2D, nil
	}
	room, ok := roomsByID[z.RoomID]
	if !ok {
		return nil, fmt.Errorf("topology: zone %q references unknown room %q", z.ID, z.RoomID)
	}
	return RoomPolygon(room), nil
}

// ObstaclePolygonsForRoom collects no-go zone polygons applicable to
// roomID (room-scoped or global).
func ObstaclePolygonsForRoom(zones []NoGoZone, roomID string) [][]geom.Point2 {
	var out [][]geom.Point2
	for _, z := range zones {
		if z.RoomID != "" && z.RoomID != roomID {
			continue
		}
		if len(z.Vertices) >= 3 {
			out = append(out, z.Vertices)
		}
	}
	return out
}

// PointInAnyPolygon reports whether pt lies inside any of polys.
func PointInAnyPolygon(pt geom.Point2, polys [][]geom.Point2) bool {
	for _, poly := range polys {
		if len(poly) >= 3 && geom.PointInPolygon(pt, geom.Polygon2(poly)) {
			return true
		}
	}
	return false
}
