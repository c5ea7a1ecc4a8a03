package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/redirector/internal/domain"
)

// StoreMetrics holds Prometheus metrics for rule store lookups.
type StoreMetrics struct {
	LookupDuration *prometheus.HistogramVec
	LookupErrors   *prometheus.CounterVec
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		LookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "lookup_duration_seconds",
			Help:      "Duration of rule store lookups in seconds, by backend and operation.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"backend", "operation"}),
		LookupErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "lookup_errors_total",
			Help:      "Total number of failed rule store lookups, by backend and operation.",
		}, []string{"backend", "operation"}),
	}

	reg.MustRegister(m.LookupDuration, m.LookupErrors)
	return m
}

// InstrumentedStore decorates a RuleStore with lookup metrics.
type InstrumentedStore struct {
	next    domain.RuleStore
	backend string
	metrics *StoreMetrics
}

var _ domain.RuleStore = (*InstrumentedStore)(nil)

func NewInstrumentedStore(next domain.RuleStore, backend string, m *StoreMetrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend, metrics: m}
}

func (s *InstrumentedStore) GetAlias(ctx context.Context, d string) (domain.DomainAlias, bool, error) {
	defer s.observe("get_alias", time.Now())()
	alias, ok, err := s.next.GetAlias(ctx, d)
	if err != nil {
		s.metrics.LookupErrors.WithLabelValues(s.backend, "get_alias").Inc()
	}
	return alias, ok, err
}

func (s *InstrumentedStore) GetCandidates(ctx context.Context, d, path string) ([]domain.RedirectRule, error) {
	defer s.observe("get_candidates", time.Now())()
	rules, err := s.next.GetCandidates(ctx, d, path)
	if err != nil {
		s.metrics.LookupErrors.WithLabelValues(s.backend, "get_candidates").Inc()
	}
	return rules, err
}

func (s *InstrumentedStore) observe(operation string, start time.Time) func() {
	return func() {
		s.metrics.LookupDuration.WithLabelValues(s.backend, operation).Observe(time.Since(start).Seconds())
	}
}
