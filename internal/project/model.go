// Package project aggregates a Luxera project's authored param entities,
// derived scene geometry, photometric library, calc grids, and job
// history into the single persisted document the rest of the system
// operates on (spec §3 Project, §4.7).
package project

import (
	"encoding/json"

	"luxera/internal/param"
	"luxera/internal/scene"
)

// RotationMode enumerates how a luminaire's orientation is authored.
type RotationMode string

const (
	RotationEuler RotationMode = "euler"
	RotationAim   RotationMode = "aim"
	RotationMatrix RotationMode = "matrix"
)

// Rotation is a luminaire orientation, authored in one of three modes.
type Rotation struct {
	Type      RotationMode `json:"type"`
	EulerDeg  *[3]float64  `json:"euler_deg,omitempty"`
	Aim       *[3]float64  `json:"aim,omitempty"`
	Up        *[3]float64  `json:"up,omitempty"`
	Matrix    *[9]float64  `json:"matrix,omitempty"`
}

// PlacementTransform is a luminaire's world placement.
type PlacementTransform struct {
	Position [3]float64 `json:"position"`
	Rotation Rotation   `json:"rotation"`
}

// Material is a surface material/reflectance definition.
type Material struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Reflectance float64 `json:"reflectance"`
	Finish      string  `json:"finish,omitempty"`
}

// PhotometryAsset references an imported photometric file (IES/LDT) by
// content hash, plus the normalized catalog data the import pipeline
// extracts from it. Parsing the file itself is out of scope here; this
// is the data the parser is assumed to have already yielded.
type PhotometryAsset struct {
	ID           string  `json:"id"`
	Path         string  `json:"path"`
	ContentHash  string  `json:"content_hash"`
	Format       string  `json:"format"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	Catalog      string  `json:"catalog,omitempty"`
	CCT          float64 `json:"cct,omitempty"`
	CRI          float64 `json:"cri,omitempty"`
	BeamDeg      float64 `json:"beam_deg,omitempty"`
	Lumens       float64 `json:"lumens,omitempty"`
}

// LuminaireFamily groups luminaire instances sharing a base photometry.
type LuminaireFamily struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	PhotometryAssetID string `json:"photometry_asset_id"`
}

// LuminaireInstance is one placed luminaire.
type LuminaireInstance struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	PhotometryAssetID string             `json:"photometry_asset_id"`
	FamilyID          string             `json:"family_id,omitempty"`
	Transform         PlacementTransform `json:"transform"`
	MaintenanceFactor float64            `json:"maintenance_factor"`
	FluxMultiplier    float64            `json:"flux_multiplier"`
	TiltDeg           float64            `json:"tilt_deg"`
}

// CalcGrid is an authored work-plane/grid calc object (built out fully in
// internal/calcbuild; this is the persisted authoring record).
type CalcGrid struct {
	ID                  string     `json:"id"`
	RoomID              string     `json:"room_id,omitempty"`
	ZoneID              string     `json:"zone_id,omitempty"`
	Origin              [2]float64 `json:"origin"`
	Width, Height       float64    `json:"width"`
	NX, NY              int        `json:"nx"`
	Margin              float64    `json:"margin,omitempty"`
	Spacing             float64    `json:"spacing,omitempty"`
	Elevation           float64    `json:"elevation"`
	MaskNearOpenings    bool       `json:"mask_near_openings,omitempty"`
	OpeningMaskMargin   float64    `json:"opening_mask_margin,omitempty"`
	SampleMask          []bool     `json:"sample_mask,omitempty"`
	SamplePoints        [][3]float64 `json:"sample_points,omitempty"`
}

// Workplane is an authored horizontal calc surface definition, the
// un-sampled counterpart of CalcGrid (spec §4.13).
type Workplane struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Elevation float64 `json:"elevation"`
	Margin    float64 `json:"margin"`
	Spacing   float64 `json:"spacing"`
	RoomID    string  `json:"room_id,omitempty"`
	ZoneID    string  `json:"zone_id,omitempty"`
}

// VerticalPlane is an authored vertical calc surface, optionally hosted
// on a derived wall surface and clipped to a sub-rectangle.
type VerticalPlane struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Origin         [3]float64 `json:"origin"`
	Width, Height  float64  `json:"width"`
	NX, NY         int      `json:"nx"`
	AzimuthDeg     float64  `json:"azimuth_deg"`
	HostSurfaceID  string   `json:"host_surface_id,omitempty"`
	MaskOpenings   bool     `json:"mask_openings"`
	SubrectU0      *float64 `json:"subrect_u0,omitempty"`
	SubrectU1      *float64 `json:"subrect_u1,omitempty"`
	SubrectV0      *float64 `json:"subrect_v0,omitempty"`
	SubrectV1      *float64 `json:"subrect_v1,omitempty"`
	RoomID         string   `json:"room_id,omitempty"`
	ZoneID         string   `json:"zone_id,omitempty"`
	SampleMask     []bool       `json:"sample_mask,omitempty"`
	SamplePoints   [][3]float64 `json:"sample_points,omitempty"`
}

// PointSet is an authored, explicitly-listed set of calc points.
type PointSet struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Points [][3]float64 `json:"points"`
	RoomID string       `json:"room_id,omitempty"`
	ZoneID string       `json:"zone_id,omitempty"`
}

// LineGrid is an authored polyline sampled at fixed spacing, optionally
// snapped to nearby segments and clipped to a boundary at creation time.
type LineGrid struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Polyline [][3]float64 `json:"polyline"`
	Spacing  float64      `json:"spacing"`
	RoomID   string       `json:"room_id,omitempty"`
	ZoneID   string       `json:"zone_id,omitempty"`
}

// DiffOp is one add/update/remove operation within a variant's diff_ops,
// the same shape internal/delta's Delta items carry so a variant's diff
// can be replayed through delta.Apply unchanged.
type DiffOp struct {
	Op      string          `json:"op"` // "add", "update", "remove"
	Kind    string          `json:"kind"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// LuminaireOverride carries the per-variant luminaire overrides spec
// §4.15 names: flux_multiplier, maintenance_factor, tilt_deg. A nil
// pointer field means "leave as authored".
type LuminaireOverride struct {
	FluxMultiplier    *float64 `json:"flux_multiplier,omitempty"`
	MaintenanceFactor *float64 `json:"maintenance_factor,omitempty"`
	TiltDeg           *float64 `json:"tilt_deg,omitempty"`
}

// Variant is an authored named scenario: luminaire overrides, dimming
// factors, and a typed diff replayed over a cloned project (spec
// §4.15).
type Variant struct {
	ID                string                       `json:"id"`
	Name              string                       `json:"name"`
	LuminaireOverrides map[string]LuminaireOverride `json:"luminaire_overrides,omitempty"`
	DimmingSchemes    map[string]float64           `json:"dimming_schemes,omitempty"`
	DiffOps           []DiffOp                     `json:"diff_ops,omitempty"`
}

// JobSpec is an authored deterministic-calculation job request.
type JobSpec struct {
	ID            string         `json:"id"`
	Kind          string         `json:"kind"`
	GridIDs       []string       `json:"grid_ids,omitempty"`
	SolverVersion string         `json:"solver_version"`
	BackendID     string         `json:"backend_id,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
}

// JobResultRef points at a content-addressed result directory for a job.
type JobResultRef struct {
	JobID      string `json:"job_id"`
	JobHash    string `json:"job_hash"`
	ResultDir  string `json:"result_dir"`
	CreatedAt  string `json:"created_at"`
}

// Project is the single root aggregate (spec §3 Project).
type Project struct {
	SchemaVersion int    `json:"schema_version"`
	Name          string `json:"name"`

	Param    param.Model    `json:"param"`
	Geometry scene.Geometry `json:"geometry"`
	Scene    *scene.Graph   `json:"-"`

	Materials         []Material          `json:"materials"`
	PhotometryAssets  []PhotometryAsset   `json:"photometry_assets"`
	LuminaireFamilies []LuminaireFamily   `json:"luminaire_families"`
	Luminaires        []LuminaireInstance `json:"luminaires"`

	Grids          []CalcGrid      `json:"grids"`
	Workplanes     []Workplane     `json:"workplanes,omitempty"`
	VerticalPlanes []VerticalPlane `json:"vertical_planes,omitempty"`
	PointSets      []PointSet      `json:"point_sets,omitempty"`
	LineGrids      []LineGrid      `json:"line_grids,omitempty"`
	Jobs           []JobSpec       `json:"jobs"`
	Results        []JobResultRef  `json:"results"`

	Variants        []Variant `json:"variants,omitempty"`
	ActiveVariantID string    `json:"active_variant_id,omitempty"`

	RootDir         string   `json:"root_dir,omitempty"`
	AssetBundlePath string   `json:"asset_bundle_path,omitempty"`
	AgentHistory    []string `json:"agent_history,omitempty"`
}

// New returns an empty project at the current schema version.
func New(name string) *Project {
	return &Project{SchemaVersion: 5, Name: name}
}
