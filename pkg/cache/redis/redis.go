package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/faktura/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrCacheMiss = errors.New("cache_miss")

// Cache is a thin prefixed wrapper over the shared redis connection.
// When no redis address is configured every read is a miss and writes
// are dropped, so callers never branch on availability.
type Cache struct {
	raw    *goredis.Client
	prefix string
}

type Params struct {
	fx.In

	LC  fx.Lifecycle
	Cfg config.Config
	Log *zap.Logger
}

func NewCache(p Params) *Cache {
	cfg := p.Cfg.Redis
	if cfg.Addr == "" {
		return &Cache{}
	}

	raw := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := raw.Ping(ctx).Err(); err != nil {
				p.Log.Warn("redis unavailable, caching disabled", zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return raw.Close()
		},
	})

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "faktura:"
	}
	return &Cache{raw: raw, prefix: prefix}
}

// GetJSON reads a cached value into dest. Returns ErrCacheMiss when the
// key is absent or redis is not configured.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) error {
	if c == nil || c.raw == nil {
		return ErrCacheMiss
	}
	raw, err := c.raw.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// SetJSON stores a value with a TTL. Failures are swallowed; the cache
// is advisory.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.raw == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.raw.Set(ctx, c.prefix+key, raw, ttl).Err()
}

// Delete drops a cached key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil || c.raw == nil {
		return
	}
	_ = c.raw.Del(ctx, c.prefix+key).Err()
}

var Module = fx.Module("cache.redis",
	fx.Provide(NewCache),
)
