package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"luxera/internal/param"
	"luxera/internal/project"
	"luxera/internal/scene"
)

func sampleProject() *project.Project {
	p := project.New("demo")
	p.Param.Rooms = []param.Room{{ID: "r1", LevelID: "L0"}, {ID: "r2", LevelID: "L1"}}
	p.Geometry.Surfaces = []scene.Surface{
		{ID: "s1", Kind: scene.SurfaceWall, RoomID: "r1", MaterialID: "mat:oak", Tags: []string{"exterior"}, Layer: "A-WALL"},
		{ID: "s2", Kind: scene.SurfaceCeiling, RoomID: "r1"},
		{ID: "s3", Kind: scene.SurfaceCeiling, RoomID: "r2"},
	}
	return p
}

func TestEvaluate_WallsInRoom(t *testing.T) {
	p := sampleProject()
	ids := Evaluate(p, "walls_in_room:r1")
	assert.Equal(t, []string{"s1"}, ids)
}

func TestEvaluate_CeilingsInStorey(t *testing.T) {
	p := sampleProject()
	ids := Evaluate(p, "ceilings_in_storey:L0")
	assert.Equal(t, []string{"s2"}, ids)
}

func TestEvaluate_MaterialTagLayer(t *testing.T) {
	p := sampleProject()
	assert.Equal(t, []string{"s1"}, Evaluate(p, "material:mat:oak"))
	assert.Equal(t, []string{"s1"}, Evaluate(p, "tag:exterior"))
	assert.Equal(t, []string{"s1"}, Evaluate(p, "layer:A-WALL"))
}

func TestEvaluate_UnknownPrefixReturnsEmpty(t *testing.T) {
	p := sampleProject()
	assert.Nil(t, Evaluate(p, "bogus:x"))
}

func TestRefreshAll_ReevaluatesQueryBackedSets(t *testing.T) {
	p := sampleProject()
	sets := []Set{{ID: "exterior-walls", Query: "tag:exterior"}}
	RefreshAll(p, sets)
	assert.Equal(t, []string{"s1"}, sets[0].ObjectIDs)
}

func TestRemap_FollowsStableIDMapAndAttachmentRemap(t *testing.T) {
	p := sampleProject()
	sets := []Set{{ID: "set1", ObjectIDs: []string{"s1", "s2"}}}

	stableIDMap := map[string][]string{"s1": {"s1:part0", "s1:part1"}}
	attachmentRemap := map[string]string{}
	Remap(p, sets, stableIDMap, attachmentRemap)

	assert.Equal(t, []string{"s1:part0", "s1:part1", "s2"}, sets[0].ObjectIDs)
}
