package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolygon2_EnsureCCW(t *testing.T) {
	cw := Polygon2{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	ccw := cw.EnsureCCW()
	assert.True(t, ccw.IsCCW())
}

func TestPolygon2_SelfIntersects(t *testing.T) {
	bowtie := Polygon2{{0, 0}, {1, 1}, {1, 0}, {0, 1}}
	assert.True(t, bowtie.SelfIntersects())
	square := Polygon2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	assert.False(t, square.SelfIntersects())
}

func TestMakePolygonValid_RepairsBowtie(t *testing.T) {
	bowtie := Polygon2{{0, 0}, {1, 1}, {1, 0}, {0, 1}}
	res := MakePolygonValid(bowtie)
	assert.True(t, res.UsedConvexHull)
	assert.NotEmpty(t, res.Warning)
	assert.False(t, res.Polygon.SelfIntersects())
}

func TestPointInPolygon(t *testing.T) {
	square := Polygon2{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
	assert.True(t, PointInPolygon(Point2{1, 1}, square))
	assert.False(t, PointInPolygon(Point2{3, 3}, square))
}

func TestBBoxOf_OverlapArea(t *testing.T) {
	a := BBoxOf(Polygon2{{0, 0}, {2, 0}, {2, 2}, {0, 2}})
	b := BBoxOf(Polygon2{{1, 1}, {3, 1}, {3, 3}, {1, 3}})
	assert.InDelta(t, 1.0, a.OverlapArea(b), 1e-9)
}
