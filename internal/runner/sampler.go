package runner

import (
	"math"

	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/project"
)

// luminaireSource is a resolved, world-space point source ready for
// direct illuminance evaluation.
type luminaireSource struct {
	ID       string
	Position numeric.Vec3
	Aim      numeric.Vec3 // unit vector the luminaire points along
	Lumens   float64
	BeamDeg  float64
}

// aimDirection resolves a luminaire's pointing direction from whichever
// rotation mode it was authored with. Luminaires with no explicit
// orientation point straight down, matching how a ceiling fixture is
// conventionally modeled.
func aimDirection(pos numeric.Vec3, r project.Rotation) numeric.Vec3 {
	down := numeric.Vec3{X: 0, Y: 0, Z: -1}
	switch r.Type {
	case project.RotationAim:
		if r.Aim == nil {
			return down
		}
		target := numeric.Vec3{X: r.Aim[0], Y: r.Aim[1], Z: r.Aim[2]}
		d := target.Sub(pos)
		if d.LengthSq() < 1e-12 {
			return down
		}
		return normalize(d)
	case project.RotationMatrix:
		if r.Matrix == nil {
			return down
		}
		m := *r.Matrix
		return normalize(numeric.Vec3{X: -m[2], Y: -m[5], Z: -m[8]})
	case project.RotationEuler:
		if r.EulerDeg == nil {
			return down
		}
		return normalize(rotateEuler(down, r.EulerDeg[0], r.EulerDeg[1], r.EulerDeg[2]))
	default:
		return down
	}
}

func normalize(v numeric.Vec3) numeric.Vec3 {
	l := math.Sqrt(v.LengthSq())
	if l < 1e-12 {
		return v
	}
	return v.Scale(1.0 / l)
}

// rotateEuler applies intrinsic X-Y-Z rotation (degrees) to v.
func rotateEuler(v numeric.Vec3, xDeg, yDeg, zDeg float64) numeric.Vec3 {
	rx, ry, rz := deg2rad(xDeg), deg2rad(yDeg), deg2rad(zDeg)

	// rotate about X
	v = numeric.Vec3{
		X: v.X,
		Y: v.Y*math.Cos(rx) - v.Z*math.Sin(rx),
		Z: v.Y*math.Sin(rx) + v.Z*math.Cos(rx),
	}
	// rotate about Y
	v = numeric.Vec3{
		X: v.X*math.Cos(ry) + v.Z*math.Sin(ry),
		Y: v.Y,
		Z: -v.X*math.Sin(ry) + v.Z*math.Cos(ry),
	}
	// rotate about Z
	v = numeric.Vec3{
		X: v.X*math.Cos(rz) - v.Y*math.Sin(rz),
		Y: v.X*math.Sin(rz) + v.Y*math.Cos(rz),
		Z: v.Z,
	}
	return v
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }

// resolveLuminaires converts every placed luminaire instance into a
// world-space point source, pulling lumens/beam from its photometry
// asset (falling back to its family's, when the instance itself
// references none).
func resolveLuminaires(p *project.Project) []luminaireSource {
	assetByID := make(map[string]project.PhotometryAsset, len(p.PhotometryAssets))
	for _, a := range p.PhotometryAssets {
		assetByID[a.ID] = a
	}
	familyByID := make(map[string]project.LuminaireFamily, len(p.LuminaireFamilies))
	for _, f := range p.LuminaireFamilies {
		familyByID[f.ID] = f
	}

	out := make([]luminaireSource, 0, len(p.Luminaires))
	for _, lum := range p.Luminaires {
		assetID := lum.PhotometryAssetID
		if assetID == "" {
			if fam, ok := familyByID[lum.FamilyID]; ok {
				assetID = fam.PhotometryAssetID
			}
		}
		asset := assetByID[assetID]

		pos := numeric.Vec3{X: lum.Transform.Position[0], Y: lum.Transform.Position[1], Z: lum.Transform.Position[2]}
		lumens := asset.Lumens * lum.MaintenanceFactor * lum.FluxMultiplier
		beam := asset.BeamDeg
		if beam <= 0 {
			beam = 120 // symmetric near-hemisphere fallback for unspecified photometry
		}
		out = append(out, luminaireSource{
			ID:       lum.ID,
			Position: pos,
			Aim:      aimDirection(pos, lum.Transform.Rotation),
			Lumens:   lumens,
			BeamDeg:  beam,
		})
	}
	return out
}

// resolveDaylightSources treats every daylight aperture opening as a
// point source at its centroid, facing opposite its host wall's basis
// normal,
// with lumens approximated from a fixed overcast-sky luminance scaled
// by the aperture's area and visible transmittance. This stands in for
// a full sky-model solve (see DaylightBackend's reported assumptions).
const overcastSkyLuminance = 5000.0 // lux-equivalent reference luminance, fixed for determinism

func resolveDaylightSources(p *project.Project) []luminaireSource {
	out := make([]luminaireSource, 0, len(p.Geometry.Openings))
	for _, o := range p.Geometry.Openings {
		if !o.IsDaylightAperture || len(o.Vertices) < 3 {
			continue
		}
		centroid := numeric.Vec3{}
		for _, v := range o.Vertices {
			centroid = centroid.Add(v)
		}
		centroid = centroid.Scale(1.0 / float64(len(o.Vertices)))

		area := polygonArea3(o.Vertices)
		vt := o.VisibleTransmittance
		if vt <= 0 {
			vt = 1
		}

		surf, ok := p.Geometry.SurfaceByID(o.HostSurfaceID)
		aim := numeric.Vec3{X: 0, Y: 0, Z: -1}
		if ok {
			if basis, err := geom.ComputeWallBasis(surf.Vertices); err == nil {
				aim = normalize(basis.N.Scale(-1))
			}
		}

		out = append(out, luminaireSource{
			ID:       o.ID,
			Position: centroid,
			Aim:      aim,
			Lumens:   overcastSkyLuminance * area * vt,
			BeamDeg:  180,
		})
	}
	return out
}

// polygonArea3 approximates a planar polygon's area via fan
// triangulation from its first vertex.
func polygonArea3(verts []numeric.Vec3) float64 {
	if len(verts) < 3 {
		return 0
	}
	var sum numeric.Vec3
	for i := 1; i < len(verts)-1; i++ {
		e1 := verts[i].Sub(verts[0])
		e2 := verts[i+1].Sub(verts[0])
		sum = sum.Add(e1.Cross(e2))
	}
	return 0.5 * math.Sqrt(sum.LengthSq())
}

// pointIlluminance evaluates direct illuminance at point (with surface
// normal n) from every source, applying inverse-square falloff, a
// Lambertian beam rolloff bounded by each source's beam angle, the
// receiving surface's cosine law, and BVH occlusion. Contributions are
// summed in luminaire authoring order via Kahan summation so the result
// does not depend on floating-point association order (spec §5).
func pointIlluminance(bvh *geom.BVH, point, n numeric.Vec3, sources []luminaireSource) float64 {
	contributions := make([]float64, 0, len(sources))
	for _, s := range sources {
		d := point.Sub(s.Position)
		distSq := d.LengthSq()
		if distSq < 1e-9 {
			contributions = append(contributions, 0)
			continue
		}
		dist := math.Sqrt(distSq)
		toPoint := d.Scale(1.0 / dist)

		cosBeam := toPoint.Dot(s.Aim)
		halfAngle := deg2rad(s.BeamDeg / 2)
		beamCos := math.Cos(halfAngle)
		if cosBeam < beamCos {
			contributions = append(contributions, 0)
			continue
		}

		cosIncidence := toPoint.Scale(-1).Dot(n)
		if cosIncidence <= 0 {
			contributions = append(contributions, 0)
			continue
		}

		if !visible(bvh, s.Position, point) {
			contributions = append(contributions, 0)
			continue
		}

		// candela approximated as lumens spread uniformly over the beam's
		// solid angle, scaled by the off-axis rolloff within that cone.
		solidAngle := 2 * math.Pi * (1 - beamCos)
		if solidAngle < 1e-9 {
			solidAngle = 1e-9
		}
		candela := s.Lumens / solidAngle
		rolloff := (cosBeam - beamCos) / (1 - beamCos)
		if rolloff < 0 {
			rolloff = 0
		}
		lux := candela * rolloff * cosIncidence / distSq
		contributions = append(contributions, lux)
	}
	return numeric.KahanSum(contributions)
}
