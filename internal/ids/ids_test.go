package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableID_Deterministic(t *testing.T) {
	payload := map[string]any{"b": 2, "a": 1.00000000001}
	id1, err := StableID("room", payload)
	require.NoError(t, err)
	id2, err := StableID("room", payload)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Contains(t, id1, "room:")
}

func TestStableID_FloatRoundingCollapsesNoise(t *testing.T) {
	a := map[string]any{"x": 1.0000000000001}
	b := map[string]any{"x": 1.0000000000002}
	idA, err := StableID("p", a)
	require.NoError(t, err)
	idB, err := StableID("p", b)
	require.NoError(t, err)
	assert.Equal(t, idA, idB, "values differing beyond 12 decimals must hash identically")
}

func TestDerivedID_SameInputsSameID(t *testing.T) {
	id1, err := DerivedID("wall:abc", "surface.wall.side", map[string]any{"side": "A"})
	require.NoError(t, err)
	id2, err := DerivedID("wall:abc", "surface.wall.side", map[string]any{"side": "A"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := DerivedID("wall:abc", "surface.wall.side", map[string]any{"side": "B"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestSurfaceIDForWallSide_RejectsBadSide(t *testing.T) {
	_, err := SurfaceIDForWallSide("wall:1", "C")
	assert.Error(t, err)
}

func TestSurfaceIDForWallPart(t *testing.T) {
	assert.Equal(t, "wall:abc:part0", SurfaceIDForWallPart("wall:abc", 0))
	assert.Equal(t, "wall:abc:tri2", SurfaceIDForWallTriangle("wall:abc", 2))
}
