package rebuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/geom"
	"luxera/internal/param"
	"luxera/internal/project"
	"luxera/internal/scene"
)

func squareProject() *project.Project {
	p := project.New("demo")
	p.Param.Footprints = []param.Footprint{
		{ID: "fp1", Polygon2D: []geom.Point2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}},
	}
	p.Param.Rooms = []param.Room{
		{ID: "r1", FootprintID: "fp1", Height: 2.7},
	}
	return p
}

func TestRebuild_CreatesFloorCeilingAndWalls(t *testing.T) {
	p := squareProject()
	res, err := Rebuild(p, []string{"room:r1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Regenerated)

	var floors, walls int
	for _, s := range p.Geometry.Surfaces {
		switch s.Kind {
		case "floor":
			floors++
		case "wall":
			walls++
		}
	}
	assert.Equal(t, 1, floors)
	assert.Equal(t, 4, walls)
}

func TestRebuild_OpeningSplitsWallAndRemapsStableID(t *testing.T) {
	p := squareProject()
	p.Param.Walls = []param.Wall{{ID: "w0", RoomID: "r1", EdgeRef: param.EdgeRef{Start: 0, End: 1}}}
	p.Param.Openings = []param.Opening{
		{ID: "o1", WallID: "w0", AnchorMode: geom.AnchorFraction, Anchor: 0.5, Width: 1.0, Height: 1.0, Sill: 0.9},
	}
	res, err := Rebuild(p, []string{"room:r1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.StableIDMap)

	var wallParts int
	for _, s := range p.Geometry.Surfaces {
		if s.Kind == "wall" && s.RoomID == "r1" {
			wallParts++
		}
	}
	assert.True(t, wallParts >= 2, "opening should split the wall into multiple parts")
}

func TestRebuild_MaterialPreservedAcrossRebuild(t *testing.T) {
	p := squareProject()
	require.NoError(t, func() error { _, err := Rebuild(p, []string{"room:r1"}); return err }())
	for i := range p.Geometry.Surfaces {
		if p.Geometry.Surfaces[i].Kind == "floor" {
			p.Geometry.Surfaces[i].MaterialID = "mat:oak"
		}
	}
	_, err := Rebuild(p, []string{"room:r1"})
	require.NoError(t, err)
	found := false
	for _, s := range p.Geometry.Surfaces {
		if s.Kind == "floor" {
			assert.Equal(t, "mat:oak", s.MaterialID)
			found = true
		}
	}
	assert.True(t, found)
}

func TestRebuild_BulgedEdgeFacetsFloorAndWall(t *testing.T) {
	p := squareProject()
	p.Param.Footprints[0].Bulge = map[int]float64{0: 0.5}
	p.Param.Walls = []param.Wall{{ID: "w0", RoomID: "r1", EdgeRef: param.EdgeRef{Start: 0, End: 1}}}

	res, err := Rebuild(p, []string{"room:r1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Regenerated)

	var floor scene.Surface
	var wallSegments int
	for _, s := range p.Geometry.Surfaces {
		if s.Kind == scene.SurfaceFloor {
			floor = s
		}
		if s.Kind == scene.SurfaceWall && s.RoomID == "r1" {
			wallSegments++
		}
	}
	assert.True(t, len(floor.Vertices) > 4, "bulged edge should facet the floor ring into more than 4 vertices")
	assert.True(t, wallSegments > 1, "bulged wall edge should extrude into more than one quad")
}
