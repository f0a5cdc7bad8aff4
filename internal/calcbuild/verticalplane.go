package calcbuild

import (
	"fmt"
	"math"

	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/project"
)

// CreateVerticalPlane validates and samples a nx*ny vertical grid. When
// HostSurfaceID names a derived wall surface, the plane is oriented to
// that wall's local UV basis and openings hosted on it are masked out
// when MaskOpenings is set; otherwise the plane is oriented by
// AzimuthDeg around the world Z axis (spec §4.13 create_vertical_plane).
func CreateVerticalPlane(p *project.Project, vp project.VerticalPlane) (project.VerticalPlane, error) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return project.VerticalPlane{}, fmt.Errorf("calcbuild: plane dimensions must be > 0")
	}
	if vp.NX < 1 || vp.NY < 1 {
		return project.VerticalPlane{}, fmt.Errorf("calcbuild: plane resolution must be >= 1")
	}

	u0, u1 := 0.0, vp.Width
	if vp.SubrectU0 != nil {
		u0 = *vp.SubrectU0
	}
	if vp.SubrectU1 != nil {
		u1 = *vp.SubrectU1
	}
	v0, v1 := 0.0, vp.Height
	if vp.SubrectV0 != nil {
		v0 = *vp.SubrectV0
	}
	if vp.SubrectV1 != nil {
		v1 = *vp.SubrectV1
	}

	var openingPolys [][]geom.Point2
	var toWorld func(u, v float64) numeric.Vec3

	if vp.HostSurfaceID != "" {
		surf, ok := p.Geometry.SurfaceByID(vp.HostSurfaceID)
		if !ok {
			return project.VerticalPlane{}, fmt.Errorf("calcbuild: unknown host surface %q", vp.HostSurfaceID)
		}
		basis, err := geom.ComputeWallBasis(surf.Vertices)
		if err != nil {
			return project.VerticalPlane{}, err
		}
		toWorld = func(u, v float64) numeric.Vec3 {
			return basis.Origin.Add(basis.U.Scale(u)).Add(basis.V.Scale(v))
		}
		if vp.MaskOpenings {
			for _, o := range p.Geometry.Openings {
				if o.HostSurfaceID != vp.HostSurfaceID {
					continue
				}
				openingPolys = append(openingPolys, geom.ProjectPointsToUV(o.Vertices, basis))
			}
		}
	} else {
		az := vp.AzimuthDeg * math.Pi / 180
		dirU := numeric.Vec3{X: math.Cos(az), Y: math.Sin(az)}
		origin := numeric.Vec3{X: vp.Origin[0], Y: vp.Origin[1], Z: vp.Origin[2]}
		toWorld = func(u, v float64) numeric.Vec3 {
			return origin.Add(dirU.Scale(u)).Add(numeric.Vec3{Z: v})
		}
	}

	dx := (u1 - u0) / maxInt1(vp.NX-1)
	dy := (v1 - v0) / maxInt1(vp.NY-1)

	points2 := make([]geom.Point2, 0, vp.NX*vp.NY)
	samplePoints := make([][3]float64, 0, vp.NX*vp.NY)
	mask := make([]bool, 0, vp.NX*vp.NY)
	for j := 0; j < vp.NY; j++ {
		for i := 0; i < vp.NX; i++ {
			u := u0 + float64(i)*dx
			v := v0 + float64(j)*dy
			points2 = append(points2, geom.Point2{U: u, V: v})
			mask = append(mask, true)
		}
	}
	if len(openingPolys) > 0 {
		mask = applyObstacleMasks(mask, points2, openingPolys)
	}
	for i, pt := range points2 {
		if !mask[i] {
			continue
		}
		w := toWorld(pt.U, pt.V)
		samplePoints = append(samplePoints, [3]float64{w.X, w.Y, w.Z})
	}

	vp.SampleMask = mask
	vp.SamplePoints = samplePoints
	p.VerticalPlanes = append(p.VerticalPlanes, vp)
	return vp, nil
}
