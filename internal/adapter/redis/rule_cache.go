package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/bluele/gcache"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/pscheid92/redirector/internal/adapter/metrics"
	"github.com/pscheid92/redirector/internal/domain"
)

const (
	cacheKeyPrefix = "redirect_cache:"

	kindAlias = "alias"
	kindRules = "rules"

	defaultLoadTimeout = 2 * time.Second
)

// CacheOptions configures the two cache layers. A zero MemorySize or MemoryTTL
// disables the in-process layer; a nil Redis client disables the Redis layer.
// LoadTimeout bounds a shared miss, which outlives the request that started it;
// zero means 2s.
type CacheOptions struct {
	TTL         time.Duration
	MemoryTTL   time.Duration
	MemorySize  int
	LoadTimeout time.Duration
	Clock       clockwork.Clock
}

// aliasEntry caches both present and absent aliases.
type aliasEntry struct {
	Alias domain.DomainAlias `json:"alias"`
	Found bool               `json:"found"`
}

// RuleCache is a read-through domain.RuleStore decorator. Lookups go to the
// in-process LRU first, then Redis, then the underlying store. Negative results
// are cached like positive ones, except that empty candidate sets stay out of Redis
// so that scans over random paths do not grow it. Errors are never cached. Redis
// failures are treated as misses.
type RuleCache struct {
	next    domain.RuleStore
	rdb     goredis.Cmdable
	mem     gcache.Cache
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
	metrics *metrics.CacheMetrics
}

var _ domain.RuleStore = (*RuleCache)(nil)

func NewRuleCache(next domain.RuleStore, rdb goredis.Cmdable, opts CacheOptions, m *metrics.CacheMetrics) *RuleCache {
	c := &RuleCache{next: next, rdb: rdb, ttl: opts.TTL, timeout: opts.LoadTimeout, metrics: m}
	if c.timeout <= 0 {
		c.timeout = defaultLoadTimeout
	}

	if opts.MemorySize > 0 && opts.MemoryTTL > 0 {
		clock := opts.Clock
		if clock == nil {
			clock = clockwork.NewRealClock()
		}
		c.mem = gcache.New(opts.MemorySize).
			LRU().
			Expiration(opts.MemoryTTL).
			Clock(clock).
			Build()
	}
	return c
}

func (c *RuleCache) GetAlias(ctx context.Context, d string) (domain.DomainAlias, bool, error) {
	entry, err := lookup(ctx, c, kindAlias, kindAlias+":"+d, func(ctx context.Context) (aliasEntry, error) {
		alias, found, err := c.next.GetAlias(ctx, d)
		return aliasEntry{Alias: alias, Found: found}, err
	}, nil)
	if err != nil {
		return domain.DomainAlias{}, false, err
	}
	return entry.Alias, entry.Found, nil
}

func (c *RuleCache) GetCandidates(ctx context.Context, d, path string) ([]domain.RedirectRule, error) {
	return lookup(ctx, c, kindRules, kindRules+":"+d+":"+path, func(ctx context.Context) ([]domain.RedirectRule, error) {
		return c.next.GetCandidates(ctx, d, path)
	}, func(rules []domain.RedirectRule) bool { return len(rules) > 0 })
}

// lookup resolves key through both cache layers and load. Concurrent misses for
// the same key share one Redis read and one store lookup. The shared work runs
// detached from any single caller, bounded by the load timeout; each caller
// still gives up when its own ctx is done. A nil persist writes every result
// to Redis.
func lookup[T any](ctx context.Context, c *RuleCache, kind, key string, load func(context.Context) (T, error), persist func(T) bool) (T, error) {
	var zero T
	if v, ok := c.memGet(kind, key); ok {
		return v.(T), nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		var cached T
		if c.redisGet(sharedCtx, kind, key, &cached) {
			c.memSet(key, cached)
			return cached, nil
		}

		loaded, err := load(sharedCtx)
		if err != nil {
			return nil, err
		}
		c.memSet(key, loaded)
		if persist == nil || persist(loaded) {
			c.redisSet(sharedCtx, key, loaded)
		}
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *RuleCache) memGet(kind, key string) (any, bool) {
	if c.mem == nil {
		return nil, false
	}
	v, err := c.mem.Get(key)
	if err != nil {
		c.count(false, metrics.LayerMemory, kind)
		return nil, false
	}
	c.count(true, metrics.LayerMemory, kind)
	return v, true
}

func (c *RuleCache) memSet(key string, v any) {
	if c.mem == nil {
		return
	}
	if err := c.mem.Set(key, v); err != nil {
		slog.Debug("Failed to populate memory cache", "key", key, "error", err)
	}
}

func (c *RuleCache) redisGet(ctx context.Context, kind, key string, dst any) bool {
	if c.rdb == nil {
		return false
	}

	data, err := c.rdb.Get(ctx, cacheKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		c.count(false, metrics.LayerRedis, kind)
		return false
	}
	if err != nil {
		c.redisFailed("Redis cache GET failed", key, err)
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.redisFailed("Failed to unmarshal cached entry", key, err)
		return false
	}
	c.count(true, metrics.LayerRedis, kind)
	return true
}

func (c *RuleCache) redisSet(ctx context.Context, key string, v any) {
	if c.rdb == nil {
		return
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		c.redisFailed("Failed to marshal entry for Redis cache", key, err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+key, encoded, c.ttl).Err(); err != nil {
		c.redisFailed("Failed to populate Redis cache", key, err)
	}
}

func (c *RuleCache) redisFailed(msg, key string, err error) {
	if c.metrics != nil {
		c.metrics.Errors.WithLabelValues(metrics.LayerRedis).Inc()
	}
	if errors.Is(err, circuitbreaker.ErrOpen) {
		slog.Debug(msg, "key", key, "error", err)
		return
	}
	slog.Warn(msg, "key", key, "error", err)
}

func (c *RuleCache) count(hit bool, layer, kind string) {
	if c.metrics == nil {
		return
	}
	if hit {
		c.metrics.Hits.WithLabelValues(layer, kind).Inc()
		return
	}
	c.metrics.Misses.WithLabelValues(layer, kind).Inc()
}
