/**
 * @description
 * Tag-based caching for the catalog read path. Entries carry an invalidation
 * tag ("products" / "product-types") and a maximum staleness; invalidating a
 * tag drops every entry filed under it without touching the rest of the cache.
 *
 * The cache is a pure optimization: callers must treat a miss or a cache fault
 * as "fetch from origin", never as an error, so a broken cache can only make
 * the catalog slower, not wrong.
 *
 * This file holds the interface and the in-process implementation; redis.go
 * holds the Redis-backed one used when a REDIS_URL is configured.
 */
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// TagCache stores JSON-serializable values under a key, filed by tag.
type TagCache interface {
	// Get unmarshals the cached value into dest, reporting whether a live
	// entry was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set stores value under key with the given tag and TTL.
	Set(ctx context.Context, key, tag string, value interface{}, ttl time.Duration) error
	// Invalidate drops every entry filed under tag.
	Invalidate(ctx context.Context, tag string) error
}

type memoryEntry struct {
	data      []byte
	tag       string
	expiresAt time.Time
}

// Memory is the in-process TagCache. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}
}

// Get returns a live entry, expiring stale ones lazily.
func (m *Memory) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return true, nil
}

// Set stores value under key, replacing any previous entry.
func (m *Memory) Set(ctx context.Context, key, tag string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, tag: tag, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Invalidate drops every entry filed under tag.
func (m *Memory) Invalidate(ctx context.Context, tag string) error {
	m.mu.Lock()
	for key, entry := range m.entries {
		if entry.tag == tag {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	return nil
}
