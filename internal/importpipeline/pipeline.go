// Package importpipeline runs raw CAD/BIM input through the eight-stage
// deterministic pipeline (spec §4.11) that turns it into scene geometry:
// RawImport -> NormalizedGeometry -> SemanticExtraction -> Repair2D ->
// RepairHeal -> PolicyGate -> PostAxisReorient -> SceneBuild.
package importpipeline

import (
	"fmt"
	"strings"

	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/units"
)

// StageStatus is the outcome of a single pipeline stage.
type StageStatus string

const (
	StatusOK    StageStatus = "ok"
	StatusWarn  StageStatus = "warn"
	StatusError StageStatus = "error"
	StatusSkipped StageStatus = "skipped"
)

// Stage is one pipeline step's recorded outcome.
type Stage struct {
	Name     string         `json:"name"`
	Status   StageStatus    `json:"status"`
	Details  map[string]any `json:"details,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
}

// Severity is the PolicyGate's classification of geometry defects.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityLow     Severity = "low"
	SeverityMedium  Severity = "medium"
	SeverityExtreme Severity = "extreme"
)

// RawDocument is the neutral container RawImport produces, format-agnostic
// enough to cover DXF/IFC/generic-mesh sources without this package
// depending on any concrete parser (parsers are out of scope per spec.md).
type RawDocument struct {
	Format        string
	Layers        []string
	BlockInserts  []string
	LayerOverride map[string]string
	Rooms         []RawRoom
	Occluders     []geom.Triangle3
	HasRawContent bool
}

// RawRoom is a room footprint as extracted from the raw document, before
// semantic/param conversion.
type RawRoom struct {
	ID        string
	Name      string
	Footprint []geom.Point2
	Height    float64
}

// Input bundles the parameters a caller supplies to Run.
type Input struct {
	SourceFile     string
	Doc            RawDocument
	SourceAxis     units.AxisConvention
	TargetAxis     units.AxisConvention
	ForceExtreme   bool
}

// Result is the full pipeline report plus the normalized rooms/occluders
// SceneBuild produced, ready for internal/rebuild or internal/scene.
type Result struct {
	SourceFile string   `json:"source_file"`
	Format     string   `json:"format"`
	Stages     []Stage  `json:"stages"`
	SceneHealth geom.MeshHealthReport `json:"scene_health"`
	LayerMap   map[string]string     `json:"layer_map"`

	Rooms     []RawRoom
	Occluders []geom.Triangle3
	BVH       *geom.BVH
	AxisMatrix numeric.Mat4
}

func dxfLayerMap(layers []string) map[string]string {
	seen := map[string]struct{}{}
	var sorted []string
	for _, l := range layers {
		u := strings.ToUpper(l)
		if _, ok := seen[u]; !ok {
			seen[u] = struct{}{}
			sorted = append(sorted, u)
		}
	}
	mapping := make(map[string]string, len(sorted))
	for _, l := range sorted {
		switch {
		case strings.Contains(l, "WALL"):
			mapping[l] = "wall"
		case strings.Contains(l, "DOOR"):
			mapping[l] = "door"
		case strings.Contains(l, "WINDOW"):
			mapping[l] = "window"
		case strings.Contains(l, "ROOM"), strings.Contains(l, "SPACE"):
			mapping[l] = "room"
		case strings.Contains(l, "GRID"):
			mapping[l] = "grid"
		default:
			mapping[l] = "unmapped"
		}
	}
	return mapping
}

// Run executes all eight stages in order, halting after the first stage
// that records an error (spec §4.11: "If any stage errors, subsequent
// stages are skipped").
func Run(in Input) Result {
	res := Result{SourceFile: in.SourceFile, Format: in.Doc.Format}

	layerMap := map[string]string{}
	if in.Doc.Format == "dxf" {
		layerMap = dxfLayerMap(in.Doc.Layers)
		for k, v := range in.Doc.LayerOverride {
			layerMap[strings.ToUpper(k)] = v
		}
	}
	res.LayerMap = layerMap
	res.Stages = append(res.Stages, Stage{
		Name:   "RawImport",
		Status: StatusOK,
		Details: map[string]any{
			"format":        in.Doc.Format,
			"layer_count":    len(in.Doc.Layers),
			"block_inserts":  len(in.Doc.BlockInserts),
		},
	})

	axisMatrix := units.AxisConversionMatrix(in.SourceAxis, units.CanonicalAxisConvention())
	res.AxisMatrix = axisMatrix
	rooms := make([]RawRoom, len(in.Doc.Rooms))
	for i, r := range in.Doc.Rooms {
		rooms[i] = RawRoom{ID: r.ID, Name: r.Name, Height: r.Height, Footprint: transformFootprint(r.Footprint, axisMatrix)}
	}
	res.Stages = append(res.Stages, Stage{
		Name:   "NormalizedGeometry",
		Status: StatusOK,
		Details: map[string]any{
			"axis_transform_applied": describeAxis(in.SourceAxis, units.CanonicalAxisConvention()),
		},
	})

	res.Stages = append(res.Stages, Stage{
		Name:   "SemanticExtraction",
		Status: StatusOK,
		Details: map[string]any{
			"rooms":      len(rooms),
			"occluders":  len(in.Doc.Occluders),
		},
	})

	var repair2DWarnings []string
	repairedRooms := make([]RawRoom, len(rooms))
	for i, r := range rooms {
		repaired := geom.MakePolygonValid(geom.Polygon2(r.Footprint))
		if repaired.Warning != "" {
			repair2DWarnings = append(repair2DWarnings, fmt.Sprintf("repaired invalid footprint %s: %s", r.ID, repaired.Warning))
		}
		repairedRooms[i] = RawRoom{ID: r.ID, Name: r.Name, Height: r.Height, Footprint: []geom.Point2(repaired.Polygon)}
	}
	rooms = repairedRooms
	res.Stages = append(res.Stages, Stage{
		Name:     "Repair2D",
		Status:   statusFor(repair2DWarnings, nil),
		Warnings: repair2DWarnings,
	})

	occluders, repairWarnings := geom.RepairMesh(in.Doc.Occluders)
	health := geom.AnalyzeMesh(occluders)
	res.SceneHealth = health
	res.Stages = append(res.Stages, Stage{
		Name:   "RepairHeal",
		Status: statusFor(repairWarnings, nil),
		Details: map[string]any{
			"degenerate_triangles":      health.DegenerateTriangles,
			"non_manifold_edges":        health.NonManifoldEdges,
			"self_intersections_approx": health.SelfIntersectionsApprox,
			"open_boundary_edges":       health.OpenBoundaryEdges,
			"disconnected_components":   health.DisconnectedComponents,
		},
		Warnings: repairWarnings,
	})

	decision := classifySeverity(health, len(rooms), len(occluders), in.Doc.HasRawContent)
	switch {
	case decision.Severity == SeverityExtreme && !in.ForceExtreme:
		res.Stages = append(res.Stages, Stage{
			Name:   "PolicyGate",
			Status: StatusError,
			Details: map[string]any{"severity": string(decision.Severity), "reasons": decision.Reasons},
			Errors: []string{"geometry blocked: extreme severity"},
		})
		return res
	default:
		status := StatusOK
		if decision.Severity == SeverityMedium {
			status = StatusWarn
		}
		res.Stages = append(res.Stages, Stage{
			Name:    "PolicyGate",
			Status:  status,
			Details: map[string]any{"severity": string(decision.Severity), "reasons": decision.Reasons},
		})
	}

	if in.TargetAxis != units.CanonicalAxisConvention() {
		postMatrix := units.AxisConversionMatrix(units.CanonicalAxisConvention(), in.TargetAxis)
		for i := range rooms {
			rooms[i].Footprint = transformFootprint(rooms[i].Footprint, postMatrix)
		}
		for i := range occluders {
			occluders[i].A = postMatrix.Apply(occluders[i].A)
			occluders[i].B = postMatrix.Apply(occluders[i].B)
			occluders[i].C = postMatrix.Apply(occluders[i].C)
		}
		res.AxisMatrix = axisMatrix.Mul(postMatrix)
		res.Stages = append(res.Stages, Stage{
			Name:   "PostAxisReorient",
			Status: StatusOK,
			Details: map[string]any{"axis_transform_applied": describeAxis(units.CanonicalAxisConvention(), in.TargetAxis)},
		})
	} else {
		res.Stages = append(res.Stages, Stage{Name: "PostAxisReorient", Status: StatusSkipped})
	}

	res.Rooms = rooms
	res.Occluders = occluders
	res.BVH = geom.BuildBVH(occluders)
	res.Stages = append(res.Stages, Stage{
		Name:   "SceneBuild",
		Status: StatusOK,
		Details: map[string]any{"triangle_count": len(occluders)},
	})

	return res
}

func transformFootprint(pts []geom.Point2, m numeric.Mat4) []geom.Point2 {
	out := make([]geom.Point2, len(pts))
	for i, p := range pts {
		v := m.Apply(numeric.Vec3{X: p.U, Y: p.V, Z: 0})
		out[i] = geom.Point2{U: v.X, V: v.Y}
	}
	return out
}

func describeAxis(source, target units.AxisConvention) string {
	return units.DescribeAxisConversion(source, target).AxisTransformApplied
}

func statusFor(warnings, errs []string) StageStatus {
	switch {
	case len(errs) > 0:
		return StatusError
	case len(warnings) > 0:
		return StatusWarn
	default:
		return StatusOK
	}
}

// PolicyDecision is the PolicyGate's severity classification and the
// reasons that drove it.
type PolicyDecision struct {
	Severity Severity
	Reasons  []string
}

func classifySeverity(health geom.MeshHealthReport, roomCount, triangleCount int, hasRawContent bool) PolicyDecision {
	var reasons []string
	if health.DegenerateTriangles > 0 {
		reasons = append(reasons, fmt.Sprintf("degenerate_triangles=%d", health.DegenerateTriangles))
	}
	if health.NonManifoldEdges > 0 {
		reasons = append(reasons, fmt.Sprintf("non_manifold_edges=%d", health.NonManifoldEdges))
	}
	if health.SelfIntersectionsApprox > 0 {
		reasons = append(reasons, fmt.Sprintf("self_intersections_approx=%d", health.SelfIntersectionsApprox))
	}
	if health.OpenBoundaryEdges > 0 {
		reasons = append(reasons, fmt.Sprintf("open_boundary_edges=%d", health.OpenBoundaryEdges))
	}
	if health.DisconnectedComponents > 1 {
		reasons = append(reasons, fmt.Sprintf("disconnected_components=%d", health.DisconnectedComponents))
	}

	if health.NonManifoldEdges > 512 || health.DegenerateTriangles > 4096 {
		return PolicyDecision{Severity: SeverityExtreme, Reasons: reasons}
	}
	if roomCount <= 0 && triangleCount <= 0 && !hasRawContent {
		return PolicyDecision{Severity: SeverityExtreme, Reasons: append(reasons, "no_semantic_or_mesh_geometry")}
	}
	if health.NonManifoldEdges > 0 || health.SelfIntersectionsApprox > 0 || health.DegenerateTriangles > 0 {
		return PolicyDecision{Severity: SeverityMedium, Reasons: reasons}
	}
	if health.OpenBoundaryEdges > 0 || health.DisconnectedComponents > 1 {
		return PolicyDecision{Severity: SeverityLow, Reasons: reasons}
	}
	return PolicyDecision{Severity: SeverityOK}
}
