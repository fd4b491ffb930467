package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wildwatch/sightings/internal/sighting"
)

// CreateSighting handles POST /api/v1/sightings
func (c *Controller) CreateSighting(ctx echo.Context) error {
	var raw sighting.RawCreateInput
	if err := ctx.Bind(&raw); err != nil {
		return c.HandleError(ctx, err)
	}

	in, err := sighting.ParseCreateInput(&raw)
	if err != nil {
		return c.HandleError(ctx, err)
	}

	result, err := c.Service.Create(ctx.Request().Context(), in)
	if err != nil {
		return c.HandleError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, result)
}

// ListSightings handles GET /api/v1/sightings.
// latitude, longitude and distance (km) together select a radius query.
func (c *Controller) ListSightings(ctx echo.Context) error {
	q := sighting.ListQuery{
		Latitude:  queryParam(ctx, "latitude"),
		Longitude: queryParam(ctx, "longitude"),
		Distance:  queryParam(ctx, "distance"),
	}

	sightings, err := c.Service.List(ctx.Request().Context(), q)
	if err != nil {
		return c.HandleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, sightings)
}

// queryParam returns nil for a missing or empty parameter.
func queryParam(ctx echo.Context, name string) *string {
	v := ctx.QueryParam(name)
	if v == "" {
		return nil
	}
	return &v
}
