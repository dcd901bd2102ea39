package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const memoryCacheSize = 4096

// CachingProvider memoizes successful exchanges for a short TTL, because the
// surrounding design re-exchanges the token on nearly every request. Only
// positive results are cached; rejections always go back to the provider.
// Backed by Redis when available, otherwise an in-process expirable LRU.
type CachingProvider struct {
	next   Provider
	ttl    time.Duration
	logger *slog.Logger
	redis  *redis.Client
	memory *expirable.LRU[string, string]
}

// NewRedisCache decorates next with a Redis-backed cache.
func NewRedisCache(next Provider, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachingProvider {
	return &CachingProvider{next: next, ttl: ttl, logger: logger, redis: client}
}

// NewMemoryCache decorates next with an in-process cache for deployments
// without Redis.
func NewMemoryCache(next Provider, ttl time.Duration, logger *slog.Logger) *CachingProvider {
	return &CachingProvider{
		next:   next,
		ttl:    ttl,
		logger: logger,
		memory: expirable.NewLRU[string, string](memoryCacheSize, nil, ttl),
	}
}

// Exchange returns a cached identity when present, otherwise delegates and
// stores the result. Cache failures degrade to a provider call, never to a
// request failure.
func (c *CachingProvider) Exchange(ctx context.Context, token string) (Identity, error) {
	key := cacheKey(token)

	if subject, ok := c.lookup(ctx, key); ok {
		return Identity{ExternalID: subject}, nil
	}

	id, err := c.next.Exchange(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	c.store(ctx, key, id.ExternalID)
	return id, nil
}

func (c *CachingProvider) lookup(ctx context.Context, key string) (string, bool) {
	if c.redis != nil {
		subject, err := c.redis.Get(ctx, key).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && c.logger != nil {
				c.logger.Warn("identity cache read", slog.Any("error", err))
			}
			return "", false
		}
		return subject, true
	}
	if c.memory != nil {
		return c.memory.Get(key)
	}
	return "", false
}

func (c *CachingProvider) store(ctx context.Context, key, subject string) {
	if c.redis != nil {
		if err := c.redis.Set(ctx, key, subject, c.ttl).Err(); err != nil && c.logger != nil {
			c.logger.Warn("identity cache write", slog.Any("error", err))
		}
		return
	}
	if c.memory != nil {
		c.memory.Add(key, subject)
	}
}

// cacheKey digests the token so raw bearer tokens never land in the cache.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "bastion:identity:" + hex.EncodeToString(sum[:])
}
