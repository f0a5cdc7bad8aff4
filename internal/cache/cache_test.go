package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultDirFor_MemoryOnlyMiss(t *testing.T) {
	c := New(DefaultConfig())
	_, ok := c.ResultDirFor(context.Background(), "abc123")
	assert.False(t, ok)
}

func TestSetResultDir_ThenResultDirForHits(t *testing.T) {
	c := New(DefaultConfig())
	ctx := context.Background()

	require.NoError(t, c.SetResultDir(ctx, "abc123", "/results/abc123"))

	dir, ok := c.ResultDirFor(ctx, "abc123")
	assert.True(t, ok)
	assert.Equal(t, "/results/abc123", dir)
}

func TestAgentMemory_RoundTrips(t *testing.T) {
	c := New(DefaultConfig())
	ctx := context.Background()

	memory := map[string]any{"preferred_target_lux": 500.0}
	require.NoError(t, c.SetAgentMemory(ctx, "demo", memory))

	got, ok := c.AgentMemory(ctx, "demo")
	assert.True(t, ok)
	assert.Equal(t, 500.0, got["preferred_target_lux"])
}

func TestInvalidate_RemovesMemoryEntry(t *testing.T) {
	c := New(DefaultConfig())
	ctx := context.Background()

	require.NoError(t, c.SetResultDir(ctx, "abc123", "/results/abc123"))
	require.NoError(t, c.Invalidate(ctx, resultKey("abc123")))

	_, ok := c.ResultDirFor(ctx, "abc123")
	assert.False(t, ok)
}

func TestClose_NoopWithoutRedisClient(t *testing.T) {
	c := New(DefaultConfig())
	assert.NoError(t, c.Close())
}
