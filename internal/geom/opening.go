package geom

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// AnchorMode enumerates opening placement rules (spec §4.2 anchor-mode table).
type AnchorMode string

const (
	AnchorFraction              AnchorMode = "anchor"
	AnchorFromStartDistance     AnchorMode = "from_start_distance"
	AnchorFromEndDistance       AnchorMode = "from_end_distance"
	AnchorCenterAtFraction      AnchorMode = "center_at_fraction"
	AnchorNearestGridlineCenter AnchorMode = "nearest_gridline_center"
	AnchorEqualSpacing          AnchorMode = "equal_spacing"
)

// OpeningPlacement is the subset of an Opening param entity needed to
// resolve its UV polygon (spec §3 Opening (param), §4.2).
type OpeningPlacement struct {
	ID                string
	WallID            string
	AnchorMode        AnchorMode
	Anchor            float64 // fraction in [0,1], used by AnchorFraction and as default fallback
	FromStartDistance *float64
	FromEndDistance    *float64
	CenterAtFraction   *float64
	GridlineSpacing    *float64
	SpacingGroupID     string
	Width, Height, Sill float64
	AuthoredUV         []Point2 // non-nil overrides anchor resolution entirely
}

// ErrOpeningDoesNotFit is returned when the resolved opening rectangle
// cannot fit within the host wall's UV extent (spec §7: OpeningDoesNotFit).
var ErrOpeningDoesNotFit = errors.New("geom: opening does not fit host wall")

// resolveCenterU implements the anchor-mode table from spec §4.2,
// grounded on original_source luxera/geometry/openings/opening_uv.py.
func resolveCenterU(o OpeningPlacement, uMin, uMax float64, peers []OpeningPlacement) float64 {
	span := math.Max(0, uMax-uMin)
	uc := uMin + span*o.Anchor
	switch o.AnchorMode {
	case AnchorFromStartDistance:
		d := 0.0
		if o.FromStartDistance != nil {
			d = *o.FromStartDistance
		}
		uc = uMin + d + 0.5*o.Width
	case AnchorFromEndDistance:
		d := 0.0
		if o.FromEndDistance != nil {
			d = *o.FromEndDistance
		}
		uc = uMax - d - 0.5*o.Width
	case AnchorCenterAtFraction:
		frac := o.Anchor
		if o.CenterAtFraction != nil {
			frac = *o.CenterAtFraction
		}
		uc = uMin + span*frac
	case AnchorNearestGridlineCenter:
		frac := o.Anchor
		if o.CenterAtFraction != nil {
			frac = *o.CenterAtFraction
		}
		uc = uMin + span*frac
		if o.GridlineSpacing != nil && *o.GridlineSpacing > EPSPlane {
			g := *o.GridlineSpacing
			uc = uMin + math.Round((uc-uMin)/g)*g
		}
	case AnchorEqualSpacing:
		group := o.SpacingGroupID
		var peerGroup []OpeningPlacement
		for _, p := range peers {
			if p.WallID != o.WallID {
				continue
			}
			if group != "" {
				if p.SpacingGroupID == group {
					peerGroup = append(peerGroup, p)
				}
			} else if p.AnchorMode == AnchorEqualSpacing {
				peerGroup = append(peerGroup, p)
			}
		}
		sort.Slice(peerGroup, func(i, j int) bool { return peerGroup[i].ID < peerGroup[j].ID })
		idx := -1
		for i, p := range peerGroup {
			if p.ID == o.ID {
				idx = i
				break
			}
		}
		if idx >= 0 {
			n := len(peerGroup)
			uc = uMin + span*float64(idx+1)/float64(n+1)
		} else {
			frac := o.Anchor
			if o.CenterAtFraction != nil {
				frac = *o.CenterAtFraction
			}
			uc = uMin + span*frac
		}
	}
	return uc
}

// OpeningUVPolygon resolves the opening's rectangle in host-wall UV space
// per spec §4.2. wallUV is the host wall's UV polygon. peers is the set of
// sibling openings on the same host wall, used by equal_spacing.
func OpeningUVPolygon(o OpeningPlacement, wallUV Polygon2, peers []OpeningPlacement) (Polygon2, error) {
	if o.AuthoredUV != nil {
		return Polygon2(o.AuthoredUV), nil
	}
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("geom: opening %s width/height must be > 0", o.ID)
	}
	bbox := BBoxOf(wallUV)
	uMin, uMax := bbox.UMin, bbox.UMax
	vMin, vMax := bbox.VMin, bbox.VMax

	ucRaw := resolveCenterU(o, uMin, uMax, peers)
	legalMin := uMin + 0.5*o.Width
	legalMax := uMax - 0.5*o.Width
	if legalMax < legalMin-EPSPlane {
		return nil, fmt.Errorf("%w: opening %s width=%.4f span=%.4f", ErrOpeningDoesNotFit, o.ID, o.Width, uMax-uMin)
	}
	uc := math.Min(math.Max(ucRaw, legalMin), legalMax)

	ou0 := math.Max(uMin, uc-o.Width*0.5)
	ou1 := math.Min(uMax, ou0+o.Width)
	ov0 := vMin + o.Sill
	ov1 := math.Min(vMax-EPSPlane, ov0+o.Height)
	if ou1-ou0 <= EPSPlane || ov1-ov0 <= EPSPlane {
		return nil, fmt.Errorf("%w: opening %s collapses to zero area", ErrOpeningDoesNotFit, o.ID)
	}
	return Polygon2{{ou0, ov0}, {ou1, ov0}, {ou1, ov1}, {ou0, ov1}}, nil
}
