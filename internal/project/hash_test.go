package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectHash_DeterministicAndExcludesAgentHistory(t *testing.T) {
	p := New("demo")
	p.Materials = append(p.Materials, Material{ID: "m1", Name: "paint", Reflectance: 0.7})
	h1, err := p.Hash()
	require.NoError(t, err)

	p.AgentHistory = append(p.AgentHistory, "user: hello")
	h2, err := p.Hash()
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestProjectHash_ChangesWithMaterialEdit(t *testing.T) {
	p := New("demo")
	p.Materials = append(p.Materials, Material{ID: "m1", Reflectance: 0.7})
	h1, err := p.Hash()
	require.NoError(t, err)

	p.Materials[0].Reflectance = 0.8
	h2, err := p.Hash()
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
