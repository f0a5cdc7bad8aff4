package project

import "encoding/json"

// Clone returns a deep copy of p via a JSON round-trip, used by
// internal/txn to keep a before-snapshot for diffing and rollback. The
// cached Scene graph is intentionally not carried across (it is tagged
// json:"-") since it is a rebuildable cache, not project state.
func Clone(p *Project) (*Project, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	out := &Project{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Restore overwrites dst's state with src's, field by field, mirroring
// what a transaction rollback restores: the param model, derived
// geometry, and every persisted library/job collection. Identity fields
// (schema version, name, root dir, asset bundle path) and the
// agent-history log are left untouched, matching the original
// implementation's rollback behavior of not reverting those.
func Restore(dst, src *Project) {
	dst.Param = src.Param
	dst.Geometry = src.Geometry
	dst.Materials = src.Materials
	dst.PhotometryAssets = src.PhotometryAssets
	dst.LuminaireFamilies = src.LuminaireFamilies
	dst.Luminaires = src.Luminaires
	dst.Grids = src.Grids
	dst.Workplanes = src.Workplanes
	dst.VerticalPlanes = src.VerticalPlanes
	dst.PointSets = src.PointSets
	dst.LineGrids = src.LineGrids
	dst.Jobs = src.Jobs
	dst.Results = src.Results
	dst.Variants = src.Variants
	dst.ActiveVariantID = src.ActiveVariantID
	dst.Scene = nil
}
