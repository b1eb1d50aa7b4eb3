// Package cache provides a redis-backed read-through cache for search and
// comparison results. Every operation degrades to a no-op when redis is
// unreachable; cache failures are never surfaced to callers.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"pricelens/internal/logger"
)

const keyPrefix = "pricelens"

// Stats reports cache health for the health endpoint.
type Stats struct {
	Connected        bool   `json:"connected"`
	UsedMemory       string `json:"used_memory,omitempty"`
	ConnectedClients int64  `json:"connected_clients,omitempty"`
	KeyspaceHits     int64  `json:"keyspace_hits,omitempty"`
	KeyspaceMisses   int64  `json:"keyspace_misses,omitempty"`
}

// ProductCache stores JSON-serialized values under namespaced keys.
type ProductCache interface {
	Get(ctx context.Context, namespace, key string, dest any) bool
	Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) bool
	Delete(ctx context.Context, namespace, key string) bool
	ClearPrefix(ctx context.Context, namespace string) int
	Stats(ctx context.Context) Stats
}

type productCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewProductCache creates a cache over the given redis client.
func NewProductCache(client *redis.Client, log *logger.Logger) ProductCache {
	return &productCache{
		client: client,
		log:    log,
	}
}

func makeKey(namespace, key string) string {
	return keyPrefix + ":" + namespace + ":" + key
}

// Get unmarshals the cached value into dest and reports whether it was found.
func (c *productCache) Get(ctx context.Context, namespace, key string, dest any) bool {
	data, err := c.client.Get(ctx, makeKey(namespace, key)).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.log.Warn("cache get failed", "namespace", namespace, "error", err)
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		c.log.Warn("cache entry is not valid JSON", "namespace", namespace, "error", err)
		return false
	}
	return true
}

// Set stores value under the namespaced key with the given TTL.
func (c *productCache) Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache value not serializable", "namespace", namespace, "error", err)
		return false
	}
	if err := c.client.Set(ctx, makeKey(namespace, key), data, ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "namespace", namespace, "error", err)
		return false
	}
	return true
}

// Delete removes a single cached value.
func (c *productCache) Delete(ctx context.Context, namespace, key string) bool {
	n, err := c.client.Del(ctx, makeKey(namespace, key)).Result()
	if err != nil {
		c.log.Warn("cache delete failed", "namespace", namespace, "error", err)
		return false
	}
	return n > 0
}

// ClearPrefix scans and deletes every key in a namespace, returning the count
// of deleted keys.
func (c *productCache) ClearPrefix(ctx context.Context, namespace string) int {
	pattern := makeKey(namespace, "*")
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cache scan failed", "namespace", namespace, "error", err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	n, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		c.log.Warn("cache clear failed", "namespace", namespace, "error", err)
		return 0
	}
	return int(n)
}

// Stats pings redis and reads the server INFO counters.
func (c *productCache) Stats(ctx context.Context) Stats {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return Stats{Connected: false}
	}

	info, err := c.client.Info(ctx).Result()
	if err != nil {
		return Stats{Connected: true}
	}

	fields := parseInfo(info)
	return Stats{
		Connected:        true,
		UsedMemory:       fields["used_memory_human"],
		ConnectedClients: parseInfoInt(fields, "connected_clients"),
		KeyspaceHits:     parseInfoInt(fields, "keyspace_hits"),
		KeyspaceMisses:   parseInfoInt(fields, "keyspace_misses"),
	}
}

// parseInfo splits a redis INFO payload into key/value pairs.
func parseInfo(info string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, ":"); ok {
			fields[k] = v
		}
	}
	return fields
}

func parseInfoInt(fields map[string]string, key string) int64 {
	n, _ := strconv.ParseInt(fields[key], 10, 64)
	return n
}
