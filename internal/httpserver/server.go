// Package httpserver runs the echo HTTP server that hosts the sightings API.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wildwatch/sightings/internal/conf"
	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/logger"
	"github.com/wildwatch/sightings/internal/observability/metrics"
)

const readHeaderTimeout = 10 * time.Second

// Server encapsulates the echo instance and its configuration.
type Server struct {
	Echo     *echo.Echo
	address  string
	settings *conf.WebServerSettings
	logger   logger.Logger
	metrics  *metrics.HTTPMetrics // nil disables request metrics
}

// New creates a Server with the middleware stack configured. Routes are
// registered by the caller on s.Echo.
func New(settings *conf.Settings, log logger.Logger, httpMetrics *metrics.HTTPMetrics) *Server {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}

	s := &Server{
		Echo:     echo.New(),
		address:  settings.ListenAddress(),
		settings: &settings.WebServer,
		logger:   log.Module("http"),
		metrics:  httpMetrics,
	}

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()
	s.Echo.Server.ReadHeaderTimeout = readHeaderTimeout

	s.configureMiddleware()
	return s
}

// Mount serves h at path outside the API group, e.g. the Prometheus handler.
func (s *Server) Mount(path string, h http.Handler) {
	s.Echo.GET(path, echo.WrapHandler(h))
}

// Start listens and serves until Shutdown is called. It returns nil after a
// graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", logger.String("address", s.address))

	if err := s.Echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.New(err).
			Component("httpserver").
			Category(errors.CategoryHTTP).
			Context("address", s.address).
			Build()
	}
	return nil
}

// Shutdown gracefully stops the server, waiting at most the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.settings.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.ShutdownTimeout)
		defer cancel()
	}

	s.logger.Info("HTTP server shutting down")
	return s.Echo.Shutdown(ctx)
}
