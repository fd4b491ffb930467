// Package api implements the /api/v1 JSON endpoints of the sightings service.
package api

import (
	"context"
	"encoding/json"

	"github.com/labstack/echo/v4"

	"github.com/wildwatch/sightings/internal/buildinfo"
	"github.com/wildwatch/sightings/internal/logger"
	"github.com/wildwatch/sightings/internal/sighting"
	"github.com/wildwatch/sightings/internal/species"
)

// SightingService is the ingestion and retrieval pipeline behind the handlers.
type SightingService interface {
	Create(ctx context.Context, in *sighting.CreateInput) (*sighting.Result, error)
	List(ctx context.Context, q sighting.ListQuery) ([]sighting.Sighting, error)
	ListSpecies(ctx context.Context) ([]species.Species, error)
}

// LegacyProxy reads from the legacy service.
type LegacyProxy interface {
	FetchSightings(ctx context.Context) (json.RawMessage, error)
	FetchSpecies(ctx context.Context) (json.RawMessage, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller manages the API routes and handlers
type Controller struct {
	Echo    *echo.Echo
	Group   *echo.Group
	Service SightingService
	Legacy  LegacyProxy // nil when the legacy service is disabled
	DB      Pinger
	Build   buildinfo.BuildInfo
	logger  logger.Logger
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithLegacyProxy enables the legacy proxy endpoints.
func WithLegacyProxy(p LegacyProxy) Option {
	return func(c *Controller) {
		c.Legacy = p
	}
}

// WithHealthCheck sets the database and build metadata reported by /health.
func WithHealthCheck(db Pinger, build buildinfo.BuildInfo) Option {
	return func(c *Controller) {
		c.DB = db
		c.Build = build
	}
}

// New creates the API controller and registers its routes under /api/v1.
func New(e *echo.Echo, svc SightingService, log logger.Logger, opts ...Option) *Controller {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}

	c := &Controller{
		Echo:    e,
		Group:   e.Group("/api/v1"),
		Service: svc,
		logger:  log.Module("api"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initRoutes()
	return c
}

func (c *Controller) initRoutes() {
	c.Group.GET("/status", c.Status)
	c.Group.GET("/health", c.HealthCheck)

	c.Group.POST("/sightings", c.CreateSighting)
	c.Group.GET("/sightings", c.ListSightings)
	c.Group.GET("/species", c.ListSpecies)

	c.Group.GET("/legacy/sightings", c.LegacySightings)
	c.Group.GET("/legacy/species", c.LegacySpecies)
}
