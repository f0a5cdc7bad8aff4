package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtractOpenings_NoOpenings(t *testing.T) {
	wall := rectWallUV()
	res := SubtractOpenings(wall, nil, EPSPlane)
	require.NotNil(t, res.Single)
	assert.Equal(t, wall, res.Single.Outer)
}

func TestSubtractOpenings_RectFastPath(t *testing.T) {
	wall := rectWallUV() // 0..4 x 0..2.5
	opening := Polygon2{{1, 1}, {2, 1}, {2, 2}, {1, 2}}
	res := SubtractOpenings(wall, []Polygon2{opening}, EPSPlane)
	require.NotNil(t, res.Multi)
	assert.Len(t, res.Multi.Parts, 4)
	totalArea := 0.0
	for _, part := range res.Multi.Parts {
		totalArea += math.Abs(part.Outer.SignedArea())
	}
	assert.InDelta(t, 4*2.5-1*1, totalArea, 1e-9)
}

func TestSubtractOpenings_GeneralPolygonRectOpening(t *testing.T) {
	wall := Polygon2{{0, 0}, {4, 0}, {4, 2}, {2, 3}, {0, 2}} // pentagon
	opening := Polygon2{{1, 0.5}, {2, 0.5}, {2, 1.2}, {1, 1.2}}
	res := SubtractOpenings(wall, []Polygon2{opening}, EPSPlane)
	assert.Nil(t, res.Single)
	require.NotNil(t, res.Multi)
	assert.True(t, len(res.Multi.Parts) >= 1)
}

func TestSubtractOpenings_NonRectFallsBackWithWarning(t *testing.T) {
	wall := Polygon2{{0, 0}, {4, 0}, {4, 2}, {2, 3}, {0, 2}}
	triOpening := Polygon2{{1, 0.5}, {2, 0.5}, {1.5, 1.2}}
	res := SubtractOpenings(wall, []Polygon2{triOpening}, EPSPlane)
	require.NotNil(t, res.Single)
	assert.Equal(t, wall, res.Single.Outer)
	assert.NotEmpty(t, res.Warning)
}
