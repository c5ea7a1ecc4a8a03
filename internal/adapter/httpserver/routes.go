package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pscheid92/redirector/internal/adapter/metrics"
)

func (s *Server) registerRoutes() {
	s.public.Use(correlationMiddleware)
	s.public.Use(s.setupRequestLoggerMiddleware())
	s.public.Use(middleware.Recover())
	s.public.Use(s.httpMetrics.Middleware())
	s.public.Use(ErrorHandlingMiddleware())
	if s.config.RateLimitRPS > 0 {
		s.public.Use(newRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst))
	}

	s.public.Any("/*", s.handleRedirect)
}

func (s *Server) registerAdminRoutes() {
	s.admin.Use(correlationMiddleware)
	s.admin.Use(middleware.Recover())

	s.admin.GET("/health/startup", s.handleStartup)
	s.admin.GET("/health/live", s.handleLiveness)
	s.admin.GET("/health/ready", s.handleReadiness)
	s.admin.GET("/version", s.handleVersion)
	s.admin.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogHost:    true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"host", v.Host,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if location := c.Response().Header().Get(echo.HeaderLocation); location != "" {
				attrs = append(attrs, "location", location)
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
