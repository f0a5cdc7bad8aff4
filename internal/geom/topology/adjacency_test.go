package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/geom"
	"luxera/internal/param"
)

func TestFindSharedEdges_AdjacentSquares(t *testing.T) {
	roomA := param.Room{ID: "r1", Polygon2D: []geom.Point2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}}
	roomB := param.Room{ID: "r2", Polygon2D: []geom.Point2{{4, 0}, {8, 0}, {8, 4}, {4, 4}}}
	edges := FindSharedEdges([]param.Room{roomA, roomB}, EPSWeld)
	require.Len(t, edges, 1)
	assert.Equal(t, "r1", edges[0].RoomA)
	assert.Equal(t, "r2", edges[0].RoomB)
}

func TestAdjacencyMap_Symmetric(t *testing.T) {
	roomA := param.Room{ID: "r1", Polygon2D: []geom.Point2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}}
	roomB := param.Room{ID: "r2", Polygon2D: []geom.Point2{{4, 0}, {8, 0}, {8, 4}, {4, 4}}}
	edges := FindSharedEdges([]param.Room{roomA, roomB}, EPSWeld)
	adj := AdjacencyMap(edges)
	assert.Equal(t, []string{"r2"}, adj["r1"])
	assert.Equal(t, []string{"r1"}, adj["r2"])
}

func TestResolveZonePolygon_FallsBackToRoom(t *testing.T) {
	room := param.Room{ID: "r1", Polygon2D: []geom.Point2{{0, 0}, {2, 0}, {2, 2}, {0, 2}}}
	zone := param.Zone{ID: "z1", RoomID: "r1"}
	poly, err := ResolveZonePolygon(zone, map[string]param.Room{"r1": room})
	require.NoError(t, err)
	assert.Equal(t, room.Polygon2D, poly)
}

func TestResolveZonePolygon_UnknownRoom(t *testing.T) {
	zone := param.Zone{ID: "z1", RoomID: "missing"}
	_, err := ResolveZonePolygon(zone, map[string]param.Room{})
	assert.Error(t, err)
}
