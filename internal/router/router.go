// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/donation-holds/internal/handler"
)

// RegisterRoutes registers the operational endpoints: the health check and
// the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterDonations registers the availability listing.  It is never
// cached: every call reflects current hold state.
func RegisterDonations(e *echo.Echo, d *handler.DonationHandler) {
	e.GET("/v1/donations", d.List)
}

// RegisterHolds registers the hold lifecycle and history endpoints.
// limit guards the routes that change state.
func RegisterHolds(e *echo.Echo, h *handler.HoldHandler, hist *handler.HistoryHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.POST("/holds", h.Create, limit)
	g.GET("/holds", h.List)
	g.GET("/holds/:id", h.Get)
	g.DELETE("/holds/:id", h.Cancel, limit)
	g.POST("/holds/:id/pickup", h.ConfirmPickup, limit)
	g.GET("/history", hist.List)
}

// RegisterUsers registers the user directory.  Lookups go through the
// response cache.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, limit, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/users")
	g.POST("", u.Create, limit)
	g.GET("/lookup", u.Lookup, cache)
}
