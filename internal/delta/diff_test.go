package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/project"
	"luxera/internal/scene"
)

func TestDiff_DetectsCreatedUpdatedDeleted(t *testing.T) {
	before := project.New("demo")
	before.Geometry.Surfaces = []scene.Surface{
		{ID: "surface:room1:floor", Kind: scene.SurfaceFloor, RoomID: "room1"},
		{ID: "surface:room1:wall:0", Kind: scene.SurfaceWall, RoomID: "room1"},
	}
	before.Materials = []project.Material{{ID: "mat:oak", Name: "Oak"}}

	after := project.New("demo")
	after.Geometry.Surfaces = []scene.Surface{
		{ID: "surface:room1:floor", Kind: scene.SurfaceFloor, RoomID: "room1", MaterialID: "mat:oak"},
		{ID: "surface:room1:wall:1", Kind: scene.SurfaceWall, RoomID: "room1"},
	}
	after.Materials = []project.Material{{ID: "mat:oak", Name: "Oak"}}

	d, err := Diff(before, after)
	require.NoError(t, err)

	var createdIDs, deletedIDs, updatedIDs []string
	for _, it := range d.Created {
		createdIDs = append(createdIDs, it.ID)
	}
	for _, it := range d.Deleted {
		deletedIDs = append(deletedIDs, it.ID)
	}
	for _, it := range d.Updated {
		updatedIDs = append(updatedIDs, it.ID)
	}

	assert.Contains(t, createdIDs, "surface:room1:wall:1")
	assert.Contains(t, deletedIDs, "surface:room1:wall:0")
	assert.Contains(t, updatedIDs, "surface:room1:floor")
	assert.NotContains(t, updatedIDs, "mat:oak")
}

func TestDiff_NoChangesProducesEmptyDelta(t *testing.T) {
	before := project.New("demo")
	after := project.New("demo")
	d, err := Diff(before, after)
	require.NoError(t, err)
	assert.True(t, d.IsEmpty())
}

func TestDiff_ParamChangesSummaryOnlyIncludesParamKinds(t *testing.T) {
	before := project.New("demo")
	after := project.New("demo")
	after.Materials = []project.Material{{ID: "mat:oak", Name: "Oak"}}

	d, err := Diff(before, after)
	require.NoError(t, err)
	assert.NotEmpty(t, d.Created)
	assert.Empty(t, d.ParamChanges["created"])
}
