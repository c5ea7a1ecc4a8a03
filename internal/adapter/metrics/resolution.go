package metrics

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/redirector/internal/app"
	"github.com/pscheid92/redirector/internal/domain"
)

// Resolution results.
const (
	ResultRedirect         = "redirect"
	ResultNotFound         = "not_found"
	ResultStoreUnavailable = "store_unavailable"
	ResultDataIntegrity    = "data_integrity"
	ResultError            = "error"
)

// ResolutionMetrics holds Prometheus metrics for redirect resolution.
type ResolutionMetrics struct {
	Resolutions *prometheus.CounterVec
	AliasHits   prometheus.Counter
	Duration    prometheus.Histogram
}

// NewResolutionMetrics creates and registers resolution metrics on the given registry.
func NewResolutionMetrics(reg prometheus.Registerer) *ResolutionMetrics {
	m := &ResolutionMetrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Total number of redirect resolutions, by result.",
		}, []string{"result"}),
		AliasHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alias_hits_total",
			Help:      "Total number of resolutions served through a domain alias.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Duration of redirect resolution in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
	}

	reg.MustRegister(m.Resolutions, m.AliasHits, m.Duration)
	return m
}

// Observe records the outcome of one resolution of requestDomain.
func (m *ResolutionMetrics) Observe(requestDomain string, res app.Resolution, err error, elapsed time.Duration) {
	m.Duration.Observe(elapsed.Seconds())
	m.Resolutions.WithLabelValues(ResultOf(res, err)).Inc()
	if err == nil && res.ResolvedDomain != "" && res.ResolvedDomain != requestDomain {
		m.AliasHits.Inc()
	}
}

// ResultOf maps a resolution outcome to its result label.
func ResultOf(res app.Resolution, err error) string {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		return ResultStoreUnavailable
	case errors.Is(err, domain.ErrDataIntegrity):
		return ResultDataIntegrity
	case err != nil:
		return ResultError
	case res.Found():
		return ResultRedirect
	default:
		return ResultNotFound
	}
}

type handler interface {
	Handle(ctx context.Context, requestDomain, path string, query url.Values) (app.Resolution, error)
}

// InstrumentedHandler records ResolutionMetrics around every Handle call.
type InstrumentedHandler struct {
	next    handler
	metrics *ResolutionMetrics
}

func NewInstrumentedHandler(next handler, m *ResolutionMetrics) *InstrumentedHandler {
	return &InstrumentedHandler{next: next, metrics: m}
}

func (h *InstrumentedHandler) Handle(ctx context.Context, requestDomain, path string, query url.Values) (app.Resolution, error) {
	start := time.Now()
	res, err := h.next.Handle(ctx, requestDomain, path, query)
	h.metrics.Observe(requestDomain, res, err, time.Since(start))
	return res, err
}
