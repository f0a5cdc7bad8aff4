// Package param holds the authored parametric entities from which the
// derived scene geometry is rebuilt (spec §3, §4.3).
package param

import "luxera/internal/geom"

// WallAlignMode controls how a wall's centerline sits relative to its
// authored edge reference.
type WallAlignMode string

const (
	AlignInside  WallAlignMode = "inside"
	AlignOutside WallAlignMode = "outside"
	AlignCenter  WallAlignMode = "center"
)

// OpeningType distinguishes windows, doors, and plain voids for compliance
// and reporting purposes.
type OpeningType string

const (
	OpeningWindow OpeningType = "window"
	OpeningDoor   OpeningType = "door"
	OpeningVoid   OpeningType = "void"
)

// Footprint is the authored outer boundary a building's rooms are carved
// from (spec §3 Footprint). Bulge keys the edge starting at vertex i (the
// edge from Polygon2D[i] to Polygon2D[(i+1)%n]) to a sagitta ratio: 0 means
// a straight edge, nonzero bends it into a circular arc. Edges absent from
// the map are straight.
type Footprint struct {
	ID        string          `json:"id" db:"id"`
	Polygon2D []geom.Point2   `json:"polygon_2d" db:"-"`
	Bulge     map[int]float64 `json:"bulge,omitempty" db:"-"`
}

// Room is an authored room polygon plus vertical extrusion parameters.
type Room struct {
	ID            string        `json:"id" db:"id"`
	FootprintID   string        `json:"footprint_id" db:"footprint_id"`
	Height        float64       `json:"height" db:"height"`
	WallThickness float64       `json:"wall_thickness" db:"wall_thickness"`
	WallAlignMode WallAlignMode `json:"wall_align_mode" db:"wall_align_mode"`
	Name          string        `json:"name" db:"name"`
	OriginZ       float64       `json:"origin_z" db:"origin_z"`
	LevelID       string        `json:"level_id,omitempty" db:"level_id"`
	Polygon2D     []geom.Point2 `json:"polygon_2d" db:"-"`
}

// EdgeRef identifies a room polygon edge by (start, end) vertex index.
type EdgeRef struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Wall is an authored wall keyed to one edge of its owning room's polygon.
type Wall struct {
	ID        string        `json:"id" db:"id"`
	RoomID    string        `json:"room_id" db:"room_id"`
	EdgeRef   EdgeRef       `json:"edge_ref" db:"-"`
	Thickness float64       `json:"thickness" db:"thickness"`
	AlignMode WallAlignMode `json:"align_mode" db:"align_mode"`
	Height    *float64      `json:"height,omitempty" db:"height"`
	Name      string        `json:"name" db:"name"`
}

// SharedWall is a wall authored between two adjacent rooms (or one room
// and the exterior, when RoomB is empty), carrying independent materials
// per side.
type SharedWall struct {
	ID                string        `json:"id" db:"id"`
	EdgeGeom          [2]geom.Point2 `json:"edge_geom" db:"-"`
	RoomA             string        `json:"room_a" db:"room_a"`
	RoomB             string        `json:"room_b,omitempty" db:"room_b"`
	Thickness         float64       `json:"thickness" db:"thickness"`
	AlignMode         WallAlignMode `json:"align_mode" db:"align_mode"`
	Height            *float64      `json:"height,omitempty" db:"height"`
	Name              string        `json:"name" db:"name"`
	WallMaterialSideA string        `json:"wall_material_side_a,omitempty" db:"wall_material_side_a"`
	WallMaterialSideB string        `json:"wall_material_side_b,omitempty" db:"wall_material_side_b"`
}

// Opening is a window, door, or void cut into a host wall.
type Opening struct {
	ID     string      `json:"id" db:"id"`
	WallID string      `json:"wall_id" db:"wall_id"`
	Anchor float64     `json:"anchor" db:"anchor"`
	Width  float64     `json:"width" db:"width"`
	Height float64     `json:"height" db:"height"`
	Sill   float64     `json:"sill" db:"sill"`
	Type   OpeningType `json:"type" db:"type"`

	AnchorMode        geom.AnchorMode `json:"anchor_mode,omitempty" db:"anchor_mode"`
	FromStartDistance *float64        `json:"from_start_distance,omitempty" db:"from_start_distance"`
	FromEndDistance   *float64        `json:"from_end_distance,omitempty" db:"from_end_distance"`
	CenterAtFraction  *float64        `json:"center_at_fraction,omitempty" db:"center_at_fraction"`
	GridlineSpacing   *float64        `json:"gridline_spacing,omitempty" db:"gridline_spacing"`
	SpacingGroupID    string          `json:"spacing_group_id,omitempty" db:"spacing_group_id"`
}

// Slab is a floor or ceiling slab attached to a room.
type Slab struct {
	ID        string  `json:"id" db:"id"`
	RoomID    string  `json:"room_id" db:"room_id"`
	Thickness float64 `json:"thickness" db:"thickness"`
	Elevation float64 `json:"elevation" db:"elevation"`
}

// Zone is a named area within (or spanning) a room, used by compliance
// rule packs and reporting.
type Zone struct {
	ID         string        `json:"id" db:"id"`
	RoomID     string        `json:"room_id" db:"room_id"`
	Polygon2D  []geom.Point2 `json:"polygon_2d" db:"-"`
	RulePackID string        `json:"rule_pack_id,omitempty" db:"rule_pack_id"`
}

// Model is the full set of authored parametric entities for a project
// (spec §3, aggregated under Project).
type Model struct {
	Footprints  []Footprint  `json:"footprints"`
	Rooms       []Room       `json:"rooms"`
	Walls       []Wall       `json:"walls"`
	SharedWalls []SharedWall `json:"shared_walls"`
	Openings    []Opening    `json:"openings"`
	Slabs       []Slab       `json:"slabs"`
	Zones       []Zone       `json:"zones"`
}

// FootprintByID returns the footprint with the given id, if present.
func (m *Model) FootprintByID(id string) (Footprint, bool) {
	for _, f := range m.Footprints {
		if f.ID == id {
			return f, true
		}
	}
	return Footprint{}, false
}

// RoomByID returns the room with the given id, if present.
func (m *Model) RoomByID(id string) (Room, bool) {
	for _, r := range m.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// WallByID returns the wall with the given id, if present.
func (m *Model) WallByID(id string) (Wall, bool) {
	for _, w := range m.Walls {
		if w.ID == id {
			return w, true
		}
	}
	return Wall{}, false
}

// OpeningsForWall returns every opening hosted on the given wall id.
func (m *Model) OpeningsForWall(wallID string) []Opening {
	var out []Opening
	for _, o := range m.Openings {
		if o.WallID == wallID {
			out = append(out, o)
		}
	}
	return out
}
