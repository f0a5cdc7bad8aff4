package ops

import (
	"fmt"

	"luxera/internal/calcbuild"
	"luxera/internal/geom"
	"luxera/internal/param"
	"luxera/internal/project"
	"luxera/internal/rebuild"
)

// rebuildResult adapts a *rebuild.Result to the Regenerated interface so
// ExecuteOp can fold its stable-id/attachment remap into the committed
// transaction record.
type rebuildResult struct {
	*rebuild.Result
}

func (r rebuildResult) RegenSummary() (map[string][]string, map[string]string, []string) {
	regen := make([]string, 0, len(r.Regenerated))
	for id := range r.Regenerated {
		regen = append(regen, id)
	}
	return r.StableIDMap, r.AttachmentRemap, regen
}

// reclipAffectedGrids re-masks every calc grid scoped to a room that
// internal/rebuild just regenerated, so edits to a room's footprint
// don't leave stale sample points behind.
func reclipAffectedGrids(p *project.Project, res *rebuild.Result) {
	for _, roomID := range res.RegeneratedRoomIDs {
		calcbuild.ReclipGridsForRoom(p, roomID)
	}
}

// CreateRoomFromFootprint authors a footprint + room param entity and
// triggers an incremental rebuild of its derived floor/ceiling/wall
// surfaces.
func CreateRoomFromFootprint(p *project.Project, roomID, footprintID, name string, polygon []geom.Point2, height float64, ctx *Context) (param.Room, error) {
	args := map[string]any{"room_id": roomID, "footprint_id": footprintID, "name": name, "height": height, "points": len(polygon)}

	validate := func() error {
		if len(polygon) < 3 {
			return fmt.Errorf("ops: footprint must have at least 3 points")
		}
		if height <= 0 {
			return fmt.Errorf("ops: height must be > 0")
		}
		if _, ok := p.Param.RoomByID(roomID); ok {
			return fmt.Errorf("ops: room already exists: %s", roomID)
		}
		if _, ok := p.Param.FootprintByID(footprintID); ok {
			return fmt.Errorf("ops: footprint already exists: %s", footprintID)
		}
		return nil
	}

	mutate := func() (rebuildResult, error) {
		p.Param.Footprints = append(p.Param.Footprints, param.Footprint{ID: footprintID, Polygon2D: polygon})
		room := param.Room{ID: roomID, Name: name, FootprintID: footprintID, Height: height}
		p.Param.Rooms = append(p.Param.Rooms, room)
		res, err := rebuild.Rebuild(p, []string{"room:" + roomID})
		if err != nil {
			return rebuildResult{}, err
		}
		reclipAffectedGrids(p, res)
		return rebuildResult{res}, nil
	}

	if _, err := ExecuteOp(p, "create_room_from_footprint", args, ctx, validate, mutate); err != nil {
		return param.Room{}, err
	}
	room, _ := p.Param.RoomByID(roomID)
	return room, nil
}

// AddOpening authors a param.Opening on an existing wall and rebuilds
// the wall's derived surface to reflect the cut.
func AddOpening(p *project.Project, o param.Opening, ctx *Context) (param.Opening, error) {
	args := map[string]any{"opening_id": o.ID, "wall_id": o.WallID, "width": o.Width, "height": o.Height}

	validate := func() error {
		if o.Width <= 0 || o.Height <= 0 {
			return fmt.Errorf("ops: opening width/height must be > 0")
		}
		if _, ok := p.Param.WallByID(o.WallID); !ok {
			return fmt.Errorf("ops: unknown wall: %s", o.WallID)
		}
		for _, existing := range p.Param.Openings {
			if existing.ID == o.ID {
				return fmt.Errorf("ops: opening already exists: %s", o.ID)
			}
		}
		return nil
	}

	mutate := func() (rebuildResult, error) {
		p.Param.Openings = append(p.Param.Openings, o)
		wall, _ := p.Param.WallByID(o.WallID)
		res, err := rebuild.Rebuild(p, []string{"room:" + wall.RoomID})
		if err != nil {
			return rebuildResult{}, err
		}
		reclipAffectedGrids(p, res)
		return rebuildResult{res}, nil
	}

	if _, err := ExecuteOp(p, "add_opening", args, ctx, validate, mutate); err != nil {
		return param.Opening{}, err
	}
	return o, nil
}

// AssignMaterialToSurfaceSet sets MaterialID on every surface whose id
// is in surfaceIDs, returning the count of surfaces touched.
func AssignMaterialToSurfaceSet(p *project.Project, surfaceIDs []string, materialID string, ctx *Context) (int, error) {
	args := map[string]any{"material_id": materialID, "surface_count": len(surfaceIDs)}
	want := make(map[string]struct{}, len(surfaceIDs))
	for _, id := range surfaceIDs {
		want[id] = struct{}{}
	}

	validate := func() error {
		found := false
		for _, m := range p.Materials {
			if m.ID == materialID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("ops: unknown material: %s", materialID)
		}
		for id := range want {
			ok := false
			for _, s := range p.Geometry.Surfaces {
				if s.ID == id {
					ok = true
					break
				}
			}
			if !ok {
				return fmt.Errorf("ops: unknown surface: %s", id)
			}
		}
		return nil
	}

	mutate := func() (int, error) {
		count := 0
		for i := range p.Geometry.Surfaces {
			if _, ok := want[p.Geometry.Surfaces[i].ID]; ok {
				p.Geometry.Surfaces[i].MaterialID = materialID
				count++
			}
		}
		return count, nil
	}

	return ExecuteOp(p, "assign_material_to_surface_set", args, ctx, validate, mutate)
}

// EnsureMaterial returns the existing material with this id, or creates
// it with the given reflectance/finish.
func EnsureMaterial(p *project.Project, materialID, name string, reflectance float64, finish string, ctx *Context) (project.Material, error) {
	args := map[string]any{"material_id": materialID, "name": name, "reflectance": reflectance}

	validate := func() error {
		if reflectance < 0 || reflectance > 1 {
			return fmt.Errorf("ops: reflectance must be in [0,1]")
		}
		return nil
	}

	mutate := func() (project.Material, error) {
		for _, m := range p.Materials {
			if m.ID == materialID {
				return m, nil
			}
		}
		mat := project.Material{ID: materialID, Name: name, Reflectance: reflectance, Finish: finish}
		p.Materials = append(p.Materials, mat)
		return mat, nil
	}

	return ExecuteOp(p, "ensure_material", args, ctx, validate, mutate)
}
