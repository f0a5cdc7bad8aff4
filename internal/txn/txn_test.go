package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/project"
)

func TestCommit_RecordsDeltaAndPushesUndo(t *testing.T) {
	p := project.New("demo")
	mgr := New(p)

	require.NoError(t, mgr.Begin("add_material", map[string]any{"id": "mat:oak"}))
	p.Materials = append(p.Materials, project.Material{ID: "mat:oak", Name: "Oak"})
	rec, err := mgr.Commit(CommitOpts{BeforeHash: "h0", AfterHash: "h1"})
	require.NoError(t, err)

	assert.Equal(t, "add_material", rec.OpName)
	assert.Len(t, rec.Delta.Created, 1)
	assert.Equal(t, 1, mgr.UndoDepth())
	assert.Equal(t, 0, mgr.RedoDepth())
}

func TestUndoRedo_RoundTrips(t *testing.T) {
	p := project.New("demo")
	mgr := New(p)

	require.NoError(t, mgr.Begin("add_material", nil))
	p.Materials = append(p.Materials, project.Material{ID: "mat:oak", Name: "Oak"})
	_, err := mgr.Commit(CommitOpts{})
	require.NoError(t, err)
	require.Len(t, p.Materials, 1)

	ok, err := mgr.Undo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, p.Materials)
	assert.Equal(t, 1, mgr.RedoDepth())

	ok, err = mgr.Redo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, p.Materials, 1)
	assert.Equal(t, 0, mgr.RedoDepth())
}

func TestRollback_DiscardsUncommittedChanges(t *testing.T) {
	p := project.New("demo")
	mgr := New(p)

	require.NoError(t, mgr.Begin("add_material", nil))
	p.Materials = append(p.Materials, project.Material{ID: "mat:temp"})
	require.NoError(t, mgr.Rollback())

	assert.Empty(t, p.Materials)
	assert.False(t, mgr.Active())
}

func TestBeginGroup_MergesRecordsIntoSingleUndoEntry(t *testing.T) {
	p := project.New("demo")
	mgr := New(p)

	require.NoError(t, mgr.BeginGroup("bulk_materials", nil))

	require.NoError(t, mgr.Begin("add_material_1", nil))
	p.Materials = append(p.Materials, project.Material{ID: "mat:oak"})
	_, err := mgr.Commit(CommitOpts{})
	require.NoError(t, err)

	require.NoError(t, mgr.Begin("add_material_2", nil))
	p.Materials = append(p.Materials, project.Material{ID: "mat:pine"})
	_, err = mgr.Commit(CommitOpts{})
	require.NoError(t, err)

	rec, ok, err := mgr.EndGroup("h0", "h1")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "bulk_materials", rec.OpName)
	assert.Equal(t, []string{"add_material_1", "add_material_2"}, rec.GroupedOps)
	assert.Len(t, rec.Delta.Created, 2)
	assert.Equal(t, 1, mgr.UndoDepth())
}

func TestManagerFor_ReturnsSameInstancePerProject(t *testing.T) {
	p := project.New("demo")
	a := ManagerFor(p)
	b := ManagerFor(p)
	assert.Same(t, a, b)

	other := project.New("other")
	c := ManagerFor(other)
	assert.NotSame(t, a, c)
}
