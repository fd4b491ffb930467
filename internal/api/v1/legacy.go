package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

// LegacySightings handles GET /api/v1/legacy/sightings
func (c *Controller) LegacySightings(ctx echo.Context) error {
	if c.Legacy == nil {
		return c.legacyDisabled(ctx)
	}
	return c.proxy(ctx, c.Legacy.FetchSightings)
}

// LegacySpecies handles GET /api/v1/legacy/species
func (c *Controller) LegacySpecies(ctx echo.Context) error {
	if c.Legacy == nil {
		return c.legacyDisabled(ctx)
	}
	return c.proxy(ctx, c.Legacy.FetchSpecies)
}

func (c *Controller) proxy(ctx echo.Context, fetch func(context.Context) (json.RawMessage, error)) error {
	body, err := fetch(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSONBlob(http.StatusOK, body)
}

func (c *Controller) legacyDisabled(ctx echo.Context) error {
	return c.HandleError(ctx, echo.NewHTTPError(http.StatusServiceUnavailable, "legacy service is disabled"))
}
