// Package cache fronts the content-addressed result filesystem with a
// Redis lookup: job hash to result directory, and agent session
// memory blobs, the same memory-then-Redis layered cache shape as the
// teacher's services/performance.AdvancedCache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Config configures the Redis connection backing the cache. An empty
// Addr means "memory-only", the same fallback AdvancedCache.initRedis
// takes when no RedisURL is configured.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DefaultConfig returns a memory-only configuration with a one-hour TTL.
func DefaultConfig() Config {
	return Config{TTL: time.Hour}
}

// Cache is a layered in-memory + Redis key/value store keyed by job
// hash or agent session id.
type Cache struct {
	config Config
	client *redis.Client
	memory map[string]string
	mu     sync.RWMutex
}

// New constructs a Cache. If cfg.Addr is empty, lookups only ever
// consult the in-memory layer.
func New(cfg Config) *Cache {
	c := &Cache{config: cfg, memory: make(map[string]string)}
	if cfg.Addr != "" {
		c.client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}
	return c
}

// ResultDirFor looks up the result directory cached for a job hash.
// The bool return reports whether the lookup hit.
func (c *Cache) ResultDirFor(ctx context.Context, jobHash string) (string, bool) {
	v, ok := c.get(ctx, resultKey(jobHash))
	return v, ok
}

// SetResultDir caches a job hash's result directory.
func (c *Cache) SetResultDir(ctx context.Context, jobHash, resultDir string) error {
	return c.set(ctx, resultKey(jobHash), resultDir)
}

// AgentMemory looks up the cached agent session memory blob for a
// project, the same JSON document internal/agent also persists to
// .luxera/agent_memory.json, mirrored here for fast cross-process
// reads.
func (c *Cache) AgentMemory(ctx context.Context, projectName string) (map[string]any, bool) {
	v, ok := c.get(ctx, agentMemoryKey(projectName))
	if !ok {
		return nil, false
	}
	var memory map[string]any
	if err := json.Unmarshal([]byte(v), &memory); err != nil {
		return nil, false
	}
	return memory, true
}

// SetAgentMemory caches a project's agent session memory.
func (c *Cache) SetAgentMemory(ctx context.Context, projectName string, memory map[string]any) error {
	data, err := json.Marshal(memory)
	if err != nil {
		return fmt.Errorf("cache: marshal agent memory: %w", err)
	}
	return c.set(ctx, agentMemoryKey(projectName), string(data))
}

// Invalidate removes a key from both cache layers.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.memory, key)
	c.mu.Unlock()

	if c.client != nil {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("cache: delete %s: %w", key, err)
		}
	}
	return nil
}

// Close releases the underlying Redis connection, if any.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) get(ctx context.Context, key string) (string, bool) {
	c.mu.RLock()
	if v, ok := c.memory[key]; ok {
		c.mu.RUnlock()
		return v, true
	}
	c.mu.RUnlock()

	if c.client == nil {
		return "", false
	}
	v, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}

	c.mu.Lock()
	c.memory[key] = v
	c.mu.Unlock()
	return v, true
}

func (c *Cache) set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.memory[key] = value
	c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	ttl := c.config.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

func resultKey(jobHash string) string {
	return "luxera:result:" + jobHash
}

func agentMemoryKey(projectName string) string {
	return "luxera:agent_memory:" + projectName
}
