// Package rediscache decorates the revocation ledger with a Redis fast path.
// Positive entries are cached with a TTL matching the token's remaining
// lifetime; the PostgreSQL ledger stays the source of truth.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beatx/beatx-server/internal/repository"
)

const keyPrefix = "revoked:"

// RevocationCache wraps a RevocationRepository with a Redis lookaside cache.
// Cache errors fall through to the underlying ledger so a Redis outage can
// never admit a revoked token.
type RevocationCache struct {
	next   repository.RevocationRepository
	client *redis.Client
	logger *slog.Logger
}

// NewRevocationCache decorates next with a Redis cache.
func NewRevocationCache(next repository.RevocationRepository, client *redis.Client, logger *slog.Logger) *RevocationCache {
	return &RevocationCache{
		next:   next,
		client: client,
		logger: logger,
	}
}

// cacheKey hashes the token so raw JWTs never land in Redis.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Insert writes the ledger first, then caches the revocation for the token's
// remaining lifetime. A failed cache write is logged and ignored; the ledger
// already holds the entry.
func (c *RevocationCache) Insert(ctx context.Context, token string, expiresAt time.Time) error {
	if err := c.next.Insert(ctx, token, expiresAt); err != nil {
		return err
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, cacheKey(token), 1, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "failed to cache revocation",
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// IsRevoked checks the cache first. Only a cached positive short-circuits;
// misses and cache errors consult the ledger.
func (c *RevocationCache) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, cacheKey(token)).Result()
	if err != nil && err != redis.Nil {
		c.logger.WarnContext(ctx, "revocation cache unavailable",
			slog.String("error", err.Error()),
		)
	} else if n > 0 {
		return true, nil
	}

	return c.next.IsRevoked(ctx, token)
}

// PurgeExpired delegates to the ledger; cached entries expire on their own
// TTLs.
func (c *RevocationCache) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return c.next.PurgeExpired(ctx, now)
}
