package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether backing components are reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler serves the health endpoint
type HealthHandler struct {
	checker HealthChecker
	service string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker HealthChecker, service string) *HealthHandler {
	return &HealthHandler{checker: checker, service: service}
}

// Health checks the components
// GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	if err := h.checker.Health(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"service": h.service,
			"error":   err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.service,
	})
}
