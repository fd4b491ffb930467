package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wildwatch/sightings/internal/logger"
)

// Status handles GET /api/v1/status, a plain liveness probe.
func (c *Controller) Status(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "OK")
}

// HealthCheck handles GET /api/v1/health
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if c.Build != nil {
		uptime := c.Build.Uptime()
		response["version"] = c.Build.Version()
		response["build_date"] = c.Build.BuildDate()
		response["uptime"] = uptime.Round(time.Second).String()
		response["uptime_seconds"] = uptime.Seconds()
	}

	code := http.StatusOK
	if c.DB != nil {
		if err := c.DB.Ping(ctx.Request().Context()); err != nil {
			c.logger.Warn("health check: database unreachable", logger.Error(err))
			response["status"] = "degraded"
			response["database_status"] = "disconnected"
			response["database_error"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			response["database_status"] = "connected"
		}
	}

	return ctx.JSON(code, response)
}
