package runner

import (
	"math"

	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/project"
)

// sharedSampler is embedded by every concrete Backend so they all
// compute illuminance through the identical deterministic point-source
// model (spec §4.14 Open Question: backends are pluggable interfaces
// over one deterministic contract, not independent solvers). What
// differs between them is which sources contribute and how the result
// is labeled.
type sharedSampler struct {
	backendName string
	solverName  string
	assumptions []string
	unsupported []string
	// includeSource filters which placed luminaires participate in this
	// backend's run. Ignored when sourceResolver is set.
	includeSource func(project.LuminaireInstance) bool
	// sourceResolver, when set, replaces resolveLuminaires entirely —
	// used by the daylight backend to treat apertures as sources
	// instead of placed luminaires.
	sourceResolver func(*project.Project) []luminaireSource
}

func buildBVH(p *project.Project) *geom.BVH {
	tris := surfacesToTriangles(p.Geometry.Surfaces)
	if len(tris) == 0 {
		return nil
	}
	return geom.BuildBVH(tris)
}

func (s sharedSampler) run(ctx CancellationToken, in Input) (Output, error) {
	bvh := buildBVH(in.Project)
	resolver := s.sourceResolver
	if resolver == nil {
		resolver = resolveLuminaires
	}
	sources := resolver(in.Project)
	if s.includeSource != nil && s.sourceResolver == nil {
		byID := make(map[string]project.LuminaireInstance, len(in.Project.Luminaires))
		for _, l := range in.Project.Luminaires {
			byID[l.ID] = l
		}
		var filtered []luminaireSource
		for _, src := range sources {
			if lum, ok := byID[src.ID]; ok && s.includeSource(lum) {
				filtered = append(filtered, src)
			}
		}
		sources = filtered
	}

	var objects []ObjectSamples
	gridFilter := map[string]bool(nil)
	if len(in.Job.GridIDs) > 0 {
		gridFilter = make(map[string]bool, len(in.Job.GridIDs))
		for _, id := range in.Job.GridIDs {
			gridFilter[id] = true
		}
	}

	for _, g := range in.Project.Grids {
		if gridFilter != nil && !gridFilter[g.ID] {
			continue
		}
		if err := checkCancel(ctx); err != nil {
			return Output{}, err
		}
		objects = append(objects, sampleHorizontalObject("grid", g.ID, g.SamplePoints, g.SampleMask, bvh, sources))
	}
	for _, vp := range in.Project.VerticalPlanes {
		if err := checkCancel(ctx); err != nil {
			return Output{}, err
		}
		objects = append(objects, sampleVerticalPlane(in.Project, vp, bvh, sources))
	}
	for _, ps := range in.Project.PointSets {
		if err := checkCancel(ctx); err != nil {
			return Output{}, err
		}
		objects = append(objects, sampleHorizontalObject("point_set", ps.ID, ps.Points, nil, bvh, sources))
	}
	for _, lg := range in.Project.LineGrids {
		if err := checkCancel(ctx); err != nil {
			return Output{}, err
		}
		objects = append(objects, sampleHorizontalObject("line_grid", lg.ID, lg.Polyline, nil, bvh, sources))
	}

	return Output{
		Solver:              s.solverName,
		Backend:             s.backendName,
		Assumptions:         s.assumptions,
		UnsupportedFeatures: s.unsupported,
		Objects:             objects,
	}, nil
}

func checkCancel(ctx CancellationToken) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// sampleHorizontalObject evaluates illuminance at every point of an
// object whose receiving normal is always straight up — grids, point
// sets, and line grids (spec §4.14 artifact rows x,y,z,E_lux).
func sampleHorizontalObject(kind, id string, points [][3]float64, mask []bool, bvh *geom.BVH, sources []luminaireSource) ObjectSamples {
	up := numeric.Vec3{X: 0, Y: 0, Z: 1}
	lux := make([]float64, len(points))
	for i, p := range points {
		if mask != nil && i < len(mask) && !mask[i] {
			continue
		}
		pt := numeric.Vec3{X: p[0], Y: p[1], Z: p[2]}
		lux[i] = pointIlluminance(bvh, pt, up, sources)
	}
	return ObjectSamples{Kind: kind, ID: id, Points: points, Lux: lux}
}

// sampleVerticalPlane evaluates illuminance over a vertical plane's
// sample grid using the plane's own outward normal.
func sampleVerticalPlane(p *project.Project, vp project.VerticalPlane, bvh *geom.BVH, sources []luminaireSource) ObjectSamples {
	n := verticalPlaneNormal(p, vp)
	lux := make([]float64, len(vp.SamplePoints))
	for i, pt3 := range vp.SamplePoints {
		if i < len(vp.SampleMask) && !vp.SampleMask[i] {
			continue
		}
		pt := numeric.Vec3{X: pt3[0], Y: pt3[1], Z: pt3[2]}
		lux[i] = pointIlluminance(bvh, pt, n, sources)
	}
	return ObjectSamples{Kind: "vertical_plane", ID: vp.ID, Points: vp.SamplePoints, Lux: lux}
}

// verticalPlaneNormal resolves the outward-facing normal a vertical
// plane receives light on: the host wall's own basis normal when
// hosted, otherwise the normal implied by the authored azimuth (0deg
// facing +Y, increasing clockwise, matching ComputeWallBasis's
// right-handed U/V/N convention).
func verticalPlaneNormal(p *project.Project, vp project.VerticalPlane) numeric.Vec3 {
	if vp.HostSurfaceID != "" {
		if surf, ok := p.Geometry.SurfaceByID(vp.HostSurfaceID); ok {
			if basis, err := geom.ComputeWallBasis(surf.Vertices); err == nil {
				return normalize(basis.N)
			}
		}
	}
	theta := deg2rad(vp.AzimuthDeg)
	return numeric.Vec3{X: math.Sin(theta), Y: math.Cos(theta), Z: 0}
}
