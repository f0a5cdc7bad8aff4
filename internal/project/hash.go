package project

import (
	"encoding/json"

	"luxera/internal/ids"
)

// canonicalView is the subset of Project fields that participate in the
// project hash. agent_history, undo/redo stacks, and job results are
// excluded so re-running a deterministic calculation or chatting with the
// agent never perturbs project identity (spec §4.7, §4.14 job hashing).
type canonicalView struct {
	SchemaVersion     int                 `json:"schema_version"`
	Name              string              `json:"name"`
	Param             json.RawMessage     `json:"param"`
	Geometry          json.RawMessage     `json:"geometry"`
	Materials         []Material          `json:"materials"`
	PhotometryAssets  []PhotometryAsset   `json:"photometry_assets"`
	LuminaireFamilies []LuminaireFamily   `json:"luminaire_families"`
	Luminaires        []LuminaireInstance `json:"luminaires"`
	Grids             []CalcGrid          `json:"grids"`
	Workplanes        []Workplane         `json:"workplanes"`
	VerticalPlanes    []VerticalPlane     `json:"vertical_planes"`
	PointSets         []PointSet          `json:"point_sets"`
	LineGrids         []LineGrid          `json:"line_grids"`
	Variants          []Variant           `json:"variants"`
	Jobs              []JobSpec           `json:"jobs"`
}

// CanonicalBytes returns the canonical (sorted-key, compact) JSON bytes
// used for content-addressed project hashing.
func (p *Project) CanonicalBytes() ([]byte, error) {
	paramBytes, err := json.Marshal(p.Param)
	if err != nil {
		return nil, err
	}
	geomBytes, err := json.Marshal(p.Geometry)
	if err != nil {
		return nil, err
	}
	view := canonicalView{
		SchemaVersion:     p.SchemaVersion,
		Name:              p.Name,
		Param:             paramBytes,
		Geometry:          geomBytes,
		Materials:         p.Materials,
		PhotometryAssets:  p.PhotometryAssets,
		LuminaireFamilies: p.LuminaireFamilies,
		Luminaires:        p.Luminaires,
		Grids:             p.Grids,
		Workplanes:        p.Workplanes,
		VerticalPlanes:    p.VerticalPlanes,
		PointSets:         p.PointSets,
		LineGrids:         p.LineGrids,
		Variants:          p.Variants,
		Jobs:              p.Jobs,
	}
	var asMap map[string]any
	raw, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil, err
	}
	return ids.Canonicalize(asMap)
}

// Hash returns the content hash of the project's canonical state.
func (p *Project) Hash() (string, error) {
	b, err := p.CanonicalBytes()
	if err != nil {
		return "", err
	}
	var payload any
	if err := json.Unmarshal(b, &payload); err != nil {
		return "", err
	}
	return ids.HashPayload(payload)
}
