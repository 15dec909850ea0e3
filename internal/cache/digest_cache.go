package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DigestCache stores serialized tag digests in Redis
type DigestCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewDigestCache creates a Redis backed digest cache
func NewDigestCache(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *DigestCache {
	return &DigestCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached digest body, or false on a miss.
// Redis errors count as a miss.
func (c *DigestCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Failed to read cache", zap.Error(err), zap.String("cache_key", key))
		return nil, false
	}

	c.logger.Debug("Cache hit", zap.String("cache_key", key))
	return body, true
}

// Set stores a digest body under key
func (c *DigestCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to set cache", zap.Error(err), zap.String("cache_key", key))
		return
	}

	c.logger.Debug("Cache set", zap.String("cache_key", key), zap.Duration("duration", c.ttl))
}

// Key builds the cache key of a subject digest as seen by a set of groups
func (c *DigestCache) Key(identifier, network string, groups []string) string {
	return DigestKey(c.prefix, identifier, network, groups)
}

// Flush removes every cached digest under the prefix
func (c *DigestCache) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+":*", 500).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// DigestKey hashes subject, network and the sorted visibility groups
func DigestKey(prefix, identifier, network string, groups []string) string {
	sorted := append([]string(nil), groups...)
	sort.Strings(sorted)

	hash := sha256.New()
	io.WriteString(hash, identifier)
	io.WriteString(hash, "\x00")
	io.WriteString(hash, network)
	io.WriteString(hash, "\x00")
	for _, g := range sorted {
		io.WriteString(hash, g)
		io.WriteString(hash, "\x00")
	}

	return prefix + ":" + hex.EncodeToString(hash.Sum(nil))
}
