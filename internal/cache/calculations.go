// Package cache provides an optional Redis-backed cache for finished tax
// calculation responses. Identical requests produce identical results (the
// engine is pure), so responses can be replayed from cache keyed by a digest
// of the request body.
//
// The cache is strictly an optimization: every operation fails open, and a
// nil *Calculations disables caching entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Calculations caches calculation responses in Redis.
type Calculations struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCalculations creates a calculation cache. A nil client yields a cache
// whose operations are all no-ops.
func NewCalculations(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Calculations {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculations{client: client, ttl: ttl, logger: logger}
}

// Key derives a deterministic cache key from the calculator name and the raw
// request payload.
func Key(calculator string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return "calc:" + calculator + ":" + hex.EncodeToString(sum[:])
}

// Get loads a cached response into dest. Returns false on miss, on any Redis
// error, or when caching is disabled.
func (c *Calculations) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("cache entry corrupt, ignoring", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores a response under key with the configured TTL. Failures are
// logged and swallowed.
func (c *Calculations) Set(ctx context.Context, key string, v any) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache marshal failed", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
