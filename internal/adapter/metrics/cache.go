package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache layers.
const (
	LayerMemory = "memory"
	LayerRedis  = "redis"
)

// CacheMetrics holds Prometheus metrics for the rule cache.
type CacheMetrics struct {
	Hits   *prometheus.CounterVec
	Misses *prometheus.CounterVec
	Errors *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rule_cache",
			Name:      "hits_total",
			Help:      "Total number of rule cache hits, by layer and record kind.",
		}, []string{"layer", "kind"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rule_cache",
			Name:      "misses_total",
			Help:      "Total number of rule cache misses, by layer and record kind.",
		}, []string{"layer", "kind"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rule_cache",
			Name:      "errors_total",
			Help:      "Total number of failed cache reads or writes, by layer.",
		}, []string{"layer"}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Errors)
	return m
}

// CircuitBreakerMetrics tracks the state of circuit breakers guarding optional
// dependencies.
type CircuitBreakerMetrics struct {
	State        *prometheus.GaugeVec
	StateChanges *prometheus.CounterVec
}

func NewCircuitBreakerMetrics(reg prometheus.Registerer) *CircuitBreakerMetrics {
	m := &CircuitBreakerMetrics{
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "circuit_breaker",
			Name:      "state",
			Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"component"}),
		StateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "circuit_breaker",
			Name:      "state_changes_total",
			Help:      "Total number of circuit breaker state transitions, by new state.",
		}, []string{"component", "state"}),
	}

	reg.MustRegister(m.State, m.StateChanges)
	return m
}
