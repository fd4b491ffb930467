package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListSpecies handles GET /api/v1/species
func (c *Controller) ListSpecies(ctx echo.Context) error {
	list, err := c.Service.ListSpecies(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, list)
}
