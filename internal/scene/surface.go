package scene

import "luxera/internal/geom/numeric"

// SurfaceKind enumerates the derived-surface roles produced by rebuild.
type SurfaceKind string

const (
	SurfaceFloor   SurfaceKind = "floor"
	SurfaceCeiling SurfaceKind = "ceiling"
	SurfaceWall    SurfaceKind = "wall"
	SurfaceCustom  SurfaceKind = "custom"
)

// Surface is a derived, renderable/calculable piece of geometry produced
// by the rebuild pipeline from one or more param entities (spec §3
// Surface (derived)).
type Surface struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Kind       SurfaceKind     `json:"kind"`
	RoomID     string          `json:"room_id,omitempty"`
	MaterialID string          `json:"material_id,omitempty"`
	Vertices   []numeric.Vec3  `json:"vertices"`
	Layer      string          `json:"layer,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	TwoSided   bool            `json:"two_sided,omitempty"`

	WallRoomSideA     string `json:"wall_room_side_a,omitempty"`
	WallRoomSideB     string `json:"wall_room_side_b,omitempty"`
	WallMaterialSideA string `json:"wall_material_side_a,omitempty"`
	WallMaterialSideB string `json:"wall_material_side_b,omitempty"`
}

// OpeningType mirrors param.OpeningType for the derived Opening record.
type OpeningType string

// Opening is the derived geometric placement of a param Opening against
// its resolved host surface.
type Opening struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name"`
	Type                  OpeningType    `json:"type"`
	HostSurfaceID         string         `json:"host_surface_id"`
	Vertices              []numeric.Vec3 `json:"vertices"`
	IsDaylightAperture    bool           `json:"is_daylight_aperture"`
	VisibleTransmittance  float64        `json:"visible_transmittance,omitempty"`
}

// Room is the derived (post-rebuild) room record carrying its resolved
// boundary polygon and surface references.
type Room struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	BoundaryPolygon []numeric.Vec3 `json:"boundary_polygon"`
	Height          float64  `json:"height"`
	SurfaceRefs     []string `json:"surface_refs,omitempty"`
}

// Geometry aggregates every derived entity for a project (spec §3
// Geometry).
type Geometry struct {
	Rooms     []Room    `json:"rooms"`
	Surfaces  []Surface `json:"surfaces"`
	Openings  []Opening `json:"openings"`
	Zones     []Zone    `json:"zones"`
	NoGoZones []NoGoZone `json:"no_go_zones"`
}

// Zone is the derived zone polygon resolved at rebuild time.
type Zone struct {
	ID        string         `json:"id"`
	RoomID    string         `json:"room_id"`
	Polygon2D []numeric.Vec3 `json:"polygon_2d"`
}

// NoGoZone is a derived obstacle polygon.
type NoGoZone struct {
	ID       string         `json:"id"`
	RoomID   string         `json:"room_id,omitempty"`
	Vertices []numeric.Vec3 `json:"vertices"`
}

// SurfaceByID looks up a surface by id.
func (g *Geometry) SurfaceByID(id string) (*Surface, bool) {
	for i := range g.Surfaces {
		if g.Surfaces[i].ID == id {
			return &g.Surfaces[i], true
		}
	}
	return nil, false
}
