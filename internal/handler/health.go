package handler

import (
	"net/http"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	healthService service.HealthService
}

func NewHealthHandler(healthService service.HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

func (h *HealthHandler) Get(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-store, max-age=0")

	res := h.healthService.Check(c.Request().Context())
	status := http.StatusOK
	if res.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, res)
}

func (h *HealthHandler) Head(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-store, max-age=0")

	if err := h.healthService.Ping(c.Request().Context()); err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
