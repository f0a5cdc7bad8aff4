package delta

import (
	"encoding/json"
	"fmt"

	"luxera/internal/param"
	"luxera/internal/project"
	"luxera/internal/scene"
)

// Kind constants name every collection delta/diff currently understands.
// The original implementation recognizes ~30 kinds spanning calc objects,
// variants, layers and symbols; this registry covers the kinds modeled so
// far in internal/project and internal/scene and is designed to grow
// mechanically (one switch-case per kind) as later components
// (internal/calcbuild, internal/selection, internal/variant) add their
// own collections to Project.
const (
	KindRoom       = "room"
	KindSurface    = "surface"
	KindOpening    = "opening"
	KindMaterial   = "material"
	KindLuminaire  = "luminaire"
	KindGrid       = "grid"
	KindJob        = "job"
	KindAsset      = "asset"
	KindFamily     = "family"

	KindParamFootprint  = "param_footprint"
	KindParamRoom       = "param_room"
	KindParamWall       = "param_wall"
	KindParamSharedWall = "param_shared_wall"
	KindParamOpening    = "param_opening"
	KindParamSlab       = "param_slab"
	KindParamZone       = "param_zone"
)

func deleteItem(p *project.Project, kind, id string) error {
	switch kind {
	case KindRoom:
		p.Geometry.Rooms = removeByID(p.Geometry.Rooms, id, func(r scene.Room) string { return r.ID })
	case KindSurface:
		p.Geometry.Surfaces = removeByID(p.Geometry.Surfaces, id, func(s scene.Surface) string { return s.ID })
	case KindOpening:
		p.Geometry.Openings = removeByID(p.Geometry.Openings, id, func(o scene.Opening) string { return o.ID })
	case KindMaterial:
		p.Materials = removeByID(p.Materials, id, func(m project.Material) string { return m.ID })
	case KindLuminaire:
		p.Luminaires = removeByID(p.Luminaires, id, func(l project.LuminaireInstance) string { return l.ID })
	case KindGrid:
		p.Grids = removeByID(p.Grids, id, func(g project.CalcGrid) string { return g.ID })
	case KindJob:
		p.Jobs = removeByID(p.Jobs, id, func(j project.JobSpec) string { return j.ID })
	case KindAsset:
		p.PhotometryAssets = removeByID(p.PhotometryAssets, id, func(a project.PhotometryAsset) string { return a.ID })
	case KindFamily:
		p.LuminaireFamilies = removeByID(p.LuminaireFamilies, id, func(f project.LuminaireFamily) string { return f.ID })
	case KindParamFootprint:
		p.Param.Footprints = removeByID(p.Param.Footprints, id, func(x param.Footprint) string { return x.ID })
	case KindParamRoom:
		p.Param.Rooms = removeByID(p.Param.Rooms, id, func(x param.Room) string { return x.ID })
	case KindParamWall:
		p.Param.Walls = removeByID(p.Param.Walls, id, func(x param.Wall) string { return x.ID })
	case KindParamSharedWall:
		p.Param.SharedWalls = removeByID(p.Param.SharedWalls, id, func(x param.SharedWall) string { return x.ID })
	case KindParamOpening:
		p.Param.Openings = removeByID(p.Param.Openings, id, func(x param.Opening) string { return x.ID })
	case KindParamSlab:
		p.Param.Slabs = removeByID(p.Param.Slabs, id, func(x param.Slab) string { return x.ID })
	case KindParamZone:
		p.Param.Zones = removeByID(p.Param.Zones, id, func(x param.Zone) string { return x.ID })
	default:
		return fmt.Errorf("delta: unsupported kind %q", kind)
	}
	return nil
}

func upsertItem(p *project.Project, kind, id string, after json.RawMessage, isCreate bool) error {
	switch kind {
	case KindRoom:
		return upsert(&p.Geometry.Rooms, id, after, func(r scene.Room) string { return r.ID })
	case KindSurface:
		return upsert(&p.Geometry.Surfaces, id, after, func(s scene.Surface) string { return s.ID })
	case KindOpening:
		return upsert(&p.Geometry.Openings, id, after, func(o scene.Opening) string { return o.ID })
	case KindMaterial:
		return upsert(&p.Materials, id, after, func(m project.Material) string { return m.ID })
	case KindLuminaire:
		return upsert(&p.Luminaires, id, after, func(l project.LuminaireInstance) string { return l.ID })
	case KindGrid:
		return upsert(&p.Grids, id, after, func(g project.CalcGrid) string { return g.ID })
	case KindJob:
		return upsert(&p.Jobs, id, after, func(j project.JobSpec) string { return j.ID })
	case KindAsset:
		return upsert(&p.PhotometryAssets, id, after, func(a project.PhotometryAsset) string { return a.ID })
	case KindFamily:
		return upsert(&p.LuminaireFamilies, id, after, func(f project.LuminaireFamily) string { return f.ID })
	case KindParamFootprint:
		return upsert(&p.Param.Footprints, id, after, func(x param.Footprint) string { return x.ID })
	case KindParamRoom:
		return upsert(&p.Param.Rooms, id, after, func(x param.Room) string { return x.ID })
	case KindParamWall:
		return upsert(&p.Param.Walls, id, after, func(x param.Wall) string { return x.ID })
	case KindParamSharedWall:
		return upsert(&p.Param.SharedWalls, id, after, func(x param.SharedWall) string { return x.ID })
	case KindParamOpening:
		return upsert(&p.Param.Openings, id, after, func(x param.Opening) string { return x.ID })
	case KindParamSlab:
		return upsert(&p.Param.Slabs, id, after, func(x param.Slab) string { return x.ID })
	case KindParamZone:
		return upsert(&p.Param.Zones, id, after, func(x param.Zone) string { return x.ID })
	default:
		return fmt.Errorf("delta: unsupported kind %q", kind)
	}
}

func removeByID[T any](items []T, id string, getID func(T) string) []T {
	out := items[:0]
	for _, it := range items {
		if getID(it) != id {
			out = append(out, it)
		}
	}
	return out
}

func upsert[T any](items *[]T, id string, after json.RawMessage, getID func(T) string) error {
	var value T
	if err := json.Unmarshal(after, &value); err != nil {
		return fmt.Errorf("delta: decode %T: %w", value, err)
	}
	for i, it := range *items {
		if getID(it) == id {
			(*items)[i] = value
			return nil
		}
	}
	*items = append(*items, value)
	return nil
}
