package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/redirector/internal/platform/version"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second
)

// HealthCheck is a named health check function.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func (s *Server) handleStartup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), startupProbeTimeout)
	defer cancel()

	return s.writeProbe(c, s.runHealthChecks(ctx))
}

func (s *Server) handleLiveness(c echo.Context) error {
	response := map[string]any{
		"status":  "ok",
		"uptime":  s.clock.Since(s.startTime).Seconds(),
		"version": version.Version,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
	defer cancel()

	return s.writeProbe(c, s.runHealthChecks(ctx))
}

// probeResult maps each check name to "ok" or its error. failed lists the
// failing checks in registration order.
type probeResult struct {
	checks map[string]string
	failed []string
}

// runHealthChecks runs every check so that a probe reports all broken
// dependencies at once, not only the first.
func (s *Server) runHealthChecks(ctx context.Context) probeResult {
	res := probeResult{checks: make(map[string]string, len(s.healthChecks))}
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			slog.WarnContext(ctx, "Health check failed", "check", hc.Name, "error", err)
			res.checks[hc.Name] = err.Error()
			res.failed = append(res.failed, hc.Name)
			continue
		}
		res.checks[hc.Name] = "ok"
	}
	return res
}

func (s *Server) writeProbe(c echo.Context, res probeResult) error {
	status, code := "ready", http.StatusOK
	if len(res.failed) > 0 {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	response := map[string]any{
		"status": status,
		"checks": res.checks,
	}
	if len(res.failed) > 0 {
		response["failed_checks"] = res.failed
	}
	if err := c.JSON(code, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
