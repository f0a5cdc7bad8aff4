package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/geom"
	"luxera/internal/param"
	"luxera/internal/project"
)

func TestCreateRoomFromFootprint_BuildsDerivedSurfaces(t *testing.T) {
	p := project.New("demo")
	poly := []geom.Point2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}

	room, err := CreateRoomFromFootprint(p, "r1", "fp1", "Office", poly, 2.7, nil)
	require.NoError(t, err)
	assert.Equal(t, "r1", room.ID)

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
	assert.Len(t, p.AgentHistory, 1)
}

func TestCreateRoomFromFootprint_RejectsDuplicateID(t *testing.T) {
	p := project.New("demo")
	poly := []geom.Point2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}

	_, err := CreateRoomFromFootprint(p, "r1", "fp1", "Office", poly, 2.7, nil)
	require.NoError(t, err)

	_, err = CreateRoomFromFootprint(p, "r1", "fp2", "Office 2", poly, 2.7, nil)
	assert.Error(t, err)
}

func TestAddOpening_SplitsWallSurface(t *testing.T) {
	p := project.New("demo")
	poly := []geom.Point2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	_, err := CreateRoomFromFootprint(p, "r1", "fp1", "Office", poly, 2.7, nil)
	require.NoError(t, err)

	p.Param.Walls = []param.Wall{{ID: "w0", RoomID: "r1", EdgeRef: param.EdgeRef{Start: 0, End: 1}}}
	_, err = AddOpening(p, param.Opening{
		ID: "o1", WallID: "w0", AnchorMode: geom.AnchorFraction, Anchor: 0.5, Width: 1.0, Height: 1.0, Sill: 0.9,
	}, nil)
	require.NoError(t, err)

	var wallParts int
	for _, s := range p.Geometry.Surfaces {
		if s.Kind == "wall" && s.RoomID == "r1" {
			wallParts++
		}
	}
	assert.True(t, wallParts >= 2)
}

func TestEnsureMaterial_IsIdempotent(t *testing.T) {
	p := project.New("demo")
	m1, err := EnsureMaterial(p, "mat:oak", "Oak", 0.6, "matte", nil)
	require.NoError(t, err)
	m2, err := EnsureMaterial(p, "mat:oak", "Oak", 0.6, "matte", nil)
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
	assert.Len(t, p.Materials, 1)
}

func TestAssignMaterialToSurfaceSet_RejectsUnknownMaterial(t *testing.T) {
	p := project.New("demo")
	poly := []geom.Point2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	_, err := CreateRoomFromFootprint(p, "r1", "fp1", "Office", poly, 2.7, nil)
	require.NoError(t, err)

	var ids []string
	for _, s := range p.Geometry.Surfaces {
		ids = append(ids, s.ID)
	}
	_, err = AssignMaterialToSurfaceSet(p, ids, "mat:missing", nil)
	assert.Error(t, err)
}

func TestAssignMaterialToSurfaceSet_AssignsToAllGivenSurfaces(t *testing.T) {
	p := project.New("demo")
	poly := []geom.Point2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	_, err := CreateRoomFromFootprint(p, "r1", "fp1", "Office", poly, 2.7, nil)
	require.NoError(t, err)
	_, err = EnsureMaterial(p, "mat:oak", "Oak", 0.6, "matte", nil)
	require.NoError(t, err)

	var ids []string
	for _, s := range p.Geometry.Surfaces {
		ids = append(ids, s.ID)
	}
	count, err := AssignMaterialToSurfaceSet(p, ids, "mat:oak", nil)
	require.NoError(t, err)
	assert.Equal(t, len(ids), count)
}
