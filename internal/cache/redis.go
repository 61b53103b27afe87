/**
 * @description
 * Redis-backed TagCache. Values are stored as JSON strings with a per-entry
 * TTL; each tag keeps a set of its member keys so invalidation can delete
 * exactly the entries filed under it. Used when the service is deployed with
 * more than one replica and the in-process cache would go stale on peers.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9: The Redis client library.
 */
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the Redis-backed TagCache.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a cache over an existing Redis client. The prefix
// namespaces keys so several services can share one instance.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "savings:catalog"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) entryKey(key string) string {
	return r.prefix + ":entry:" + key
}

func (r *Redis) tagKey(tag string) string {
	return r.prefix + ":tag:" + tag
}

// Get fetches and unmarshals an entry; redis.Nil maps to a plain miss.
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, r.entryKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("cache get error: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return true, nil
}

// Set stores the entry and records its key in the tag's member set. The tag
// set carries the same TTL so abandoned tags do not accumulate.
func (r *Redis) Set(ctx context.Context, key, tag string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.entryKey(key), data, ttl)
	pipe.SAdd(ctx, r.tagKey(tag), r.entryKey(key))
	pipe.Expire(ctx, r.tagKey(tag), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// Invalidate deletes every member of the tag's key set, then the set itself.
func (r *Redis) Invalidate(ctx context.Context, tag string) error {
	members, err := r.client.SMembers(ctx, r.tagKey(tag)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("cache invalidate error: %w", err)
	}

	pipe := r.client.TxPipeline()
	if len(members) > 0 {
		pipe.Del(ctx, members...)
	}
	pipe.Del(ctx, r.tagKey(tag))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache invalidate error: %w", err)
	}
	return nil
}
