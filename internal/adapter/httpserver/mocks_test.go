package httpserver

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/redirector/internal/app"
	"github.com/pscheid92/redirector/internal/platform/config"
)

// mockRedirectService implements redirectService for tests.
type mockRedirectService struct {
	handleFn func(ctx context.Context, requestDomain, path string, query url.Values) (app.Resolution, error)

	gotDomain string
	gotPath   string
	gotQuery  url.Values
}

func (m *mockRedirectService) Handle(ctx context.Context, requestDomain, path string, query url.Values) (app.Resolution, error) {
	m.gotDomain, m.gotPath, m.gotQuery = requestDomain, path, query
	if m.handleFn != nil {
		return m.handleFn(ctx, requestDomain, path, query)
	}
	return app.Resolution{Status: 404, ResolvedDomain: requestDomain}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           "8080",
		AdminPort:      "9090",
		StoreTimeout:   time.Second,
		RateLimitBurst: 20,
	}
}

func newTestServer(t *testing.T, svc redirectService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := NewServer(testConfig(), svc, nil, prometheus.NewRegistry(), clockwork.NewFakeClock())
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}
