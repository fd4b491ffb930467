package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	api "github.com/wildwatch/sightings/internal/api/v1"
	"github.com/wildwatch/sightings/internal/logger"
)

const rateLimiterExpiry = 3 * time.Minute

// configureMiddleware sets up middleware for the server.
// Order matters: request ids must exist before anything logs.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.Echo.Use(s.RequestLoggerMiddleware())

	if len(s.settings.AllowOrigins) > 0 {
		s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.settings.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		}))
	}
	if s.settings.BodyLimit != "" {
		s.Echo.Use(middleware.BodyLimit(s.settings.BodyLimit))
	}
	if s.settings.RateLimit > 0 {
		s.Echo.Use(s.RateLimitMiddleware())
	}
	if s.settings.RequestTimeout > 0 {
		s.Echo.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: s.settings.RequestTimeout,
		}))
	}
}

// RateLimitMiddleware limits requests per client IP.
func (s *Server) RateLimitMiddleware() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.settings.RateLimit),
		ExpiresIn: rateLimiterExpiry,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.Debug("rate limit exceeded", logger.String("client_ip", identifier))
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

// RequestLoggerMiddleware logs each request to the http module logger and
// feeds the request metrics.
func (s *Server) RequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:       true,
		LogMethod:       true,
		LogURI:          true,
		LogRoutePath:    true,
		LogLatency:      true,
		LogRequestID:    true,
		LogRemoteIP:     true,
		LogResponseSize: true,
		LogError:        true,
		HandleError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := routeLabel(v.RoutePath)

			if s.metrics != nil {
				s.metrics.RecordHTTPRequest(v.Method, route, v.Status, v.Latency.Seconds())
				s.metrics.RecordHTTPResponseSize(v.Method, route, v.ResponseSize)
				if v.Status >= http.StatusBadRequest {
					s.metrics.RecordHTTPRequestError(v.Method, route, errorType(c, v.Status))
				}
			}

			fields := []logger.Field{
				logger.String("request_id", v.RequestID),
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
				logger.String("client_ip", v.RemoteIP),
			}
			log := s.logger.WithContext(logger.WithTraceID(c.Request().Context(), v.RequestID))
			switch {
			case v.Status >= http.StatusInternalServerError:
				if v.Error != nil {
					fields = append(fields, logger.Error(v.Error))
				}
				log.Error("request failed", fields...)
			case strings.HasPrefix(route, "/api/"):
				log.Info("request", fields...)
			default:
				log.Debug("request", fields...)
			}
			return nil
		},
	})
}

// routeLabel keeps metric cardinality bounded for unmatched paths.
func routeLabel(routePath string) string {
	if routePath == "" {
		return "unmatched"
	}
	return routePath
}

func errorType(c echo.Context, status int) string {
	if kind := api.ErrorType(c); kind != "" {
		return kind
	}
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= http.StatusInternalServerError:
		return "system"
	default:
		return "http"
	}
}
