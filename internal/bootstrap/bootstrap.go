// Package bootstrap assembles the configured rule store with its decorators.
// It is shared by the server and the CLI so both resolve against the same stack.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/redirector/internal/adapter/dynamodb"
	"github.com/pscheid92/redirector/internal/adapter/memory"
	"github.com/pscheid92/redirector/internal/adapter/metrics"
	"github.com/pscheid92/redirector/internal/adapter/postgres"
	"github.com/pscheid92/redirector/internal/adapter/redis"
	"github.com/pscheid92/redirector/internal/domain"
	"github.com/pscheid92/redirector/internal/platform/config"
)

const (
	connectTimeout = 10 * time.Second
	breakerDelay   = 5 * time.Second
)

// HealthCheck mirrors httpserver.HealthCheck without importing the transport.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Stack is the assembled read path.
type Stack struct {
	Store        domain.RuleStore
	HealthChecks []HealthCheck

	closers []func()
}

// Close releases connections in reverse order of creation.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Build opens the backend selected by cfg.RuleStore and wraps it with store
// metrics and, when configured, the read-through cache. reg may be nil, in
// which case nothing is registered.
func Build(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, clock clockwork.Clock) (*Stack, error) {
	stack := &Stack{}

	backend, ping, err := openBackend(ctx, cfg, reg, stack)
	if err != nil {
		stack.Close()
		return nil, err
	}
	stack.HealthChecks = append(stack.HealthChecks, HealthCheck{Name: "rule_store", Check: ping})

	var store domain.RuleStore = backend
	if reg != nil {
		store = metrics.NewInstrumentedStore(store, cfg.RuleStore, metrics.NewStoreMetrics(reg))
	}

	if !cfg.CacheEnabled() && !cfg.MemoryCacheEnabled() {
		stack.Store = store
		return stack, nil
	}

	var (
		cacheMetrics   *metrics.CacheMetrics
		breakerMetrics *metrics.CircuitBreakerMetrics
		hooks          []goredis.Hook
	)
	if reg != nil {
		cacheMetrics = metrics.NewCacheMetrics(reg)
	}

	var rdb goredis.Cmdable
	if cfg.CacheEnabled() {
		if reg != nil {
			breakerMetrics = metrics.NewCircuitBreakerMetrics(reg)
			hooks = append(hooks, redis.NewMetricsHook(metrics.NewRedisMetrics(reg)))
		}
		// The breaker is the innermost hook so that rejected commands are still counted.
		hooks = append(hooks, redis.NewCircuitBreakerHook(breakerDelay, breakerMetrics))
		client, err := setupRedis(ctx, cfg.RedisURL, hooks)
		if err != nil {
			stack.Close()
			return nil, err
		}
		stack.closers = append(stack.closers, func() { _ = client.Close() })
		stack.HealthChecks = append(stack.HealthChecks, HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
		rdb = client
	}

	stack.Store = redis.NewRuleCache(store, rdb, redis.CacheOptions{
		TTL:         cfg.CacheTTL,
		MemoryTTL:   cfg.MemoryCacheTTL,
		MemorySize:  cfg.MemoryCacheSize,
		LoadTimeout: cfg.StoreTimeout,
		Clock:       clock,
	}, cacheMetrics)

	slog.Info("Rule cache enabled",
		"redis", cfg.CacheEnabled(),
		"ttl", cfg.CacheTTL,
		"memory_ttl", cfg.MemoryCacheTTL,
		"memory_size", cfg.MemoryCacheSize,
	)
	return stack, nil
}

type pingableStore interface {
	domain.RuleStore
	Ping(ctx context.Context) error
}

func openBackend(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, stack *Stack) (domain.RuleStore, func(context.Context) error, error) {
	var store pingableStore

	switch cfg.RuleStore {
	case config.StorePostgres:
		var tracer pgx.QueryTracer
		if reg != nil {
			tracer = postgres.NewMetricsTracer(metrics.NewDBMetrics(reg))
		}
		pool, err := setupDB(ctx, cfg.DatabaseURL, tracer)
		if err != nil {
			return nil, nil, err
		}
		stack.closers = append(stack.closers, pool.Close)
		store = postgres.NewRuleStore(pool)
	case config.StoreDynamoDB:
		s, err := dynamodb.New(ctx, cfg.DynamoDBTable, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case config.StoreFile:
		s, err := memory.LoadFile(cfg.RulesFile)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Rules file loaded", "path", cfg.RulesFile, "aliases", len(s.Aliases()), "rules", len(s.Rules()))
		store = s
	default:
		return nil, nil, fmt.Errorf("unsupported rule store %q", cfg.RuleStore)
	}

	return store, store.Ping, nil
}

func setupDB(ctx context.Context, databaseURL string, tracer pgx.QueryTracer) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, databaseURL, tracer)
	if err != nil {
		return nil, err
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func setupRedis(ctx context.Context, redisURL string, hooks []goredis.Hook) (*goredis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := redis.NewClient(ctx, redisURL, hooks...)
	if err != nil {
		return nil, fmt.Errorf("failed to set up rule cache: %w", err)
	}
	return client, nil
}
