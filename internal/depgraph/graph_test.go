package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"luxera/internal/param"
)

func sampleModel() *param.Model {
	return &param.Model{
		Footprints: []param.Footprint{{ID: "fp1"}},
		Rooms:      []param.Room{{ID: "r1", FootprintID: "fp1"}},
		Walls:      []param.Wall{{ID: "w1", RoomID: "r1"}},
		Openings:   []param.Opening{{ID: "o1", WallID: "w1"}},
	}
}

func TestBuild_Affected(t *testing.T) {
	g := Build(sampleModel())
	affected := g.Affected([]string{"footprint:fp1"})
	assert.Contains(t, affected, "room:r1")
	assert.Contains(t, affected, "wall:w1")
	assert.Contains(t, affected, "opening:o1")
	assert.Contains(t, affected, "surface:wall:w1")
	assert.Contains(t, affected, "surface:floor:r1")
}

func TestAffected_IsolatedNodeUnaffectedByUnrelatedEdit(t *testing.T) {
	g := Build(sampleModel())
	affected := g.Affected([]string{"opening:o1"})
	assert.NotContains(t, affected, "room:r1")
	assert.Contains(t, affected, "surface:wall:w1")
}
