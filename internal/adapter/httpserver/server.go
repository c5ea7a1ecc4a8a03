// Package httpserver exposes redirect resolution over HTTP. The public listener
// answers every request with a redirect decision; the admin listener serves
// health probes, build information and Prometheus metrics.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/redirector/internal/adapter/metrics"
	"github.com/pscheid92/redirector/internal/app"
	"github.com/pscheid92/redirector/internal/platform/config"
)

type redirectService interface {
	Handle(ctx context.Context, requestDomain, path string, query url.Values) (app.Resolution, error)
}

type Server struct {
	public *echo.Echo
	admin  *echo.Echo
	config *config.Config

	redirects    redirectService
	healthChecks []HealthCheck
	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics

	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, redirects redirectService, healthChecks []HealthCheck, registry *prometheus.Registry, clock clockwork.Clock) *Server {
	srv := &Server{
		public:       newEcho(),
		admin:        newEcho(),
		config:       cfg,
		redirects:    redirects,
		healthChecks: healthChecks,
		registry:     registry,
		httpMetrics:  metrics.NewHTTPMetrics(registry),
		clock:        clock,
		startTime:    clock.Now(),
	}

	srv.registerRoutes()
	srv.registerAdminRoutes()
	return srv
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

// Start serves redirect traffic until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("Starting redirect server", "port", s.config.Port)
	return serve(s.public, s.config.Port)
}

// StartAdmin serves the admin endpoints until Shutdown is called.
func (s *Server) StartAdmin() error {
	slog.Info("Starting admin server", "port", s.config.AdminPort)
	return serve(s.admin, s.config.AdminPort)
}

func serve(e *echo.Echo, port string) error {
	err := e.Start(":" + port)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server on port %s: %w", port, err)
	}
	return nil
}

// Shutdown drains both listeners. The public listener goes first so that
// readiness keeps reporting while redirect traffic drains.
func (s *Server) Shutdown(ctx context.Context) error {
	publicErr := s.public.Shutdown(ctx)
	adminErr := s.admin.Shutdown(ctx)
	if err := errors.Join(publicErr, adminErr); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
