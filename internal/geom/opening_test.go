package geom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectWallUV() Polygon2 {
	return Polygon2{{0, 0}, {4, 0}, {4, 2.5}, {0, 2.5}}
}

func TestOpeningUVPolygon_FractionAnchor(t *testing.T) {
	o := OpeningPlacement{ID: "op:1", WallID: "wall:1", AnchorMode: AnchorFraction, Anchor: 0.5, Width: 1.0, Height: 1.2, Sill: 0.9}
	poly, err := OpeningUVPolygon(o, rectWallUV(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, poly[0].U, 1e-9)
	assert.InDelta(t, 2.5, poly[1].U, 1e-9)
	assert.InDelta(t, 0.9, poly[0].V, 1e-9)
}

func TestOpeningUVPolygon_FromStartDistance(t *testing.T) {
	o := OpeningPlacement{ID: "op:2", WallID: "wall:1", AnchorMode: AnchorFromStartDistance, Width: 0.9, Height: 2.0, Sill: 0}
	d := 0.5
	o.FromStartDistance = &d
	poly, err := OpeningUVPolygon(o, rectWallUV(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, poly[0].U, 1e-9)
	assert.InDelta(t, 1.4, poly[1].U, 1e-9)
}

func TestOpeningUVPolygon_EqualSpacing(t *testing.T) {
	peers := []OpeningPlacement{
		{ID: "op:a", WallID: "wall:1", AnchorMode: AnchorEqualSpacing, SpacingGroupID: "g", Width: 0.5, Height: 1, Sill: 0},
		{ID: "op:b", WallID: "wall:1", AnchorMode: AnchorEqualSpacing, SpacingGroupID: "g", Width: 0.5, Height: 1, Sill: 0},
		{ID: "op:c", WallID: "wall:1", AnchorMode: AnchorEqualSpacing, SpacingGroupID: "g", Width: 0.5, Height: 1, Sill: 0},
	}
	wall := rectWallUV()
	polyB, err := OpeningUVPolygon(peers[1], wall, peers)
	require.NoError(t, err)
	centerB := (polyB[0].U + polyB[1].U) / 2
	assert.InDelta(t, 2.0, centerB, 1e-9) // middle of 3 openings over span 4 -> uMin + 4*2/4 = 2
}

func TestOpeningUVPolygon_DoesNotFit(t *testing.T) {
	o := OpeningPlacement{ID: "op:big", WallID: "wall:1", AnchorMode: AnchorFraction, Anchor: 0.5, Width: 10, Height: 1, Sill: 0}
	_, err := OpeningUVPolygon(o, rectWallUV(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOpeningDoesNotFit))
}

func TestOpeningUVPolygon_AuthoredOverride(t *testing.T) {
	authored := []Point2{{0.1, 0.1}, {0.9, 0.1}, {0.9, 0.9}, {0.1, 0.9}}
	o := OpeningPlacement{ID: "op:auth", AuthoredUV: authored}
	poly, err := OpeningUVPolygon(o, rectWallUV(), nil)
	require.NoError(t, err)
	assert.Equal(t, Polygon2(authored), poly)
}
