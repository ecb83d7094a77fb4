package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/opengemeente/klantsync/internal/transport/mw"
)

// NewRouter sets up all Echo routes and middleware.
func NewRouter(h *Handler, apiKey string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())

	// Health (no auth required)
	e.GET("/health", h.Health)

	// Webhook — requires the provisioned API key
	v1 := e.Group("/api/v1")
	v1.Use(mw.APIKeyAuth(apiKey))
	v1.POST("/notificaties", h.Notificatie)

	return e
}
