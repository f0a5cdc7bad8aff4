package calcbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/geom"
	"luxera/internal/geom/numeric"
	"luxera/internal/param"
	"luxera/internal/project"
	"luxera/internal/scene"
)

func squareRoomProject(roomID string, side float64) *project.Project {
	p := project.New("demo")
	p.Param.Rooms = []param.Room{{
		ID: roomID,
		Polygon2D: []geom.Point2{
			{U: 0, V: 0}, {U: side, V: 0}, {U: side, V: side}, {U: 0, V: side},
		},
	}}
	return p
}

func TestCreateCalcGridFromRoom_SamplesInsideFootprint(t *testing.T) {
	p := squareRoomProject("r1", 4)
	grid, err := CreateCalcGridFromRoom(p, CalcGridFromRoomArgs{
		GridID: "g1", RoomID: "r1", Elevation: 0.85, Spacing: 1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, grid.NX)
	assert.Equal(t, 5, grid.NY)
	assert.Len(t, grid.SampleMask, grid.NX*grid.NY)
	for _, ok := range grid.SampleMask {
		assert.True(t, ok)
	}
	assert.Len(t, grid.SamplePoints, grid.NX*grid.NY)
	assert.Equal(t, 0.85, grid.SamplePoints[0][2])
}

func TestCreateCalcGridFromRoom_DuplicateIDRejected(t *testing.T) {
	p := squareRoomProject("r1", 4)
	_, err := CreateCalcGridFromRoom(p, CalcGridFromRoomArgs{GridID: "g1", RoomID: "r1", Spacing: 1.0})
	require.NoError(t, err)
	_, err = CreateCalcGridFromRoom(p, CalcGridFromRoomArgs{GridID: "g1", RoomID: "r1", Spacing: 1.0})
	assert.Error(t, err)
}

func TestCreateCalcGridFromRoom_ObstacleMasksSamples(t *testing.T) {
	p := squareRoomProject("r1", 4)
	p.Geometry.NoGoZones = []scene.NoGoZone{{
		ID: "z1", RoomID: "r1",
		Vertices: []numeric.Vec3{{X: 1.5, Y: 1.5}, {X: 2.5, Y: 1.5}, {X: 2.5, Y: 2.5}, {X: 1.5, Y: 2.5}},
	}}
	grid, err := CreateCalcGridFromRoom(p, CalcGridFromRoomArgs{
		GridID: "g1", RoomID: "r1", Spacing: 1.0,
	})
	require.NoError(t, err)
	found := false
	for i, pt := range grid.SamplePoints {
		if pt[0] == 2 && pt[1] == 2 {
			found = true
			_ = i
		}
	}
	assert.False(t, found, "center sample should be masked out by the obstacle")
}

func TestCreateCalcGridFromRoom_UnknownRoomErrors(t *testing.T) {
	p := project.New("demo")
	_, err := CreateCalcGridFromRoom(p, CalcGridFromRoomArgs{GridID: "g1", RoomID: "missing", Spacing: 1.0})
	assert.Error(t, err)
}

func TestReclipGridsForRoom_RefreshesMaskAfterPolygonShrinks(t *testing.T) {
	p := squareRoomProject("r1", 4)
	grid, err := CreateCalcGridFromRoom(p, CalcGridFromRoomArgs{GridID: "g1", RoomID: "r1", Spacing: 1.0})
	require.NoError(t, err)
	require.Len(t, grid.SamplePoints, 25)

	room, _ := p.Param.RoomByID("r1")
	room.Polygon2D = []geom.Point2{{U: 0, V: 0}, {U: 2, V: 0}, {U: 2, V: 2}, {U: 0, V: 2}}
	p.Param.Rooms[0] = room

	ReclipGridsForRoom(p, "r1")
	assert.Less(t, countTrue(p.Grids[0].SampleMask), 25)
}

func countTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}
