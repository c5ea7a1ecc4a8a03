package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/pscheid92/redirector/internal/adapter/httpserver"
	"github.com/pscheid92/redirector/internal/adapter/metrics"
	"github.com/pscheid92/redirector/internal/app"
	"github.com/pscheid92/redirector/internal/bootstrap"
	"github.com/pscheid92/redirector/internal/platform/config"
	"github.com/pscheid92/redirector/internal/platform/logging"
	"github.com/pscheid92/redirector/internal/platform/version"
)

const shutdownTimeout = 10 * time.Second

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func healthChecks(checks []bootstrap.HealthCheck) []httpserver.HealthCheck {
	out := make([]httpserver.HealthCheck, 0, len(checks))
	for _, hc := range checks {
		out = append(out, httpserver.HealthCheck{Name: hc.Name, Check: hc.Check})
	}
	return out
}

func runGracefulShutdown(ctx context.Context, srv *httpserver.Server) error {
	<-ctx.Done()
	slog.Info("Shutdown signal received, draining connections...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "admin_port", cfg.AdminPort, "store", cfg.RuleStore, "version", version.Get().Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := metrics.NewRegistry()

	stack, err := bootstrap.Build(ctx, cfg, registry, clock)
	if err != nil {
		slog.Error("Failed to set up rule store", "error", err)
		os.Exit(1)
	}
	defer stack.Close()

	svc := metrics.NewInstrumentedHandler(app.NewServiceForStore(stack.Store), metrics.NewResolutionMetrics(registry))
	srv := httpserver.NewServer(cfg, svc, healthChecks(stack.HealthChecks), registry, clock)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(srv.StartAdmin)
	g.Go(func() error { return runGracefulShutdown(gctx, srv) })

	if err := g.Wait(); err != nil {
		slog.Error("Server error", "error", err)
		stack.Close()
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
