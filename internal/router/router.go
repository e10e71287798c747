// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/transitbook/bus-reservation/internal/config"
	"github.com/transitbook/bus-reservation/internal/handler"
	"github.com/transitbook/bus-reservation/internal/middleware"
)

// Handlers bundles everything RegisterRoutes wires up.
type Handlers struct {
	Trips *handler.TripHandler
	Seats *handler.SeatHandler
	WS    *handler.WSHandler
}

// RegisterRoutes registers all application routes. Every route under
// /v1 and the WebSocket endpoint run the session middleware, so a
// caller identity exists before any seat operation; the seat mutation
// endpoints additionally pass the rate limiter.
func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, limiter echo.MiddlewareFunc) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	// Health check for load balancers and monitoring; no session needed.
	e.GET("/healthz", handler.Health)

	session := middleware.Session(cfg.SessionSecret, cfg.SessionTTL)

	v1 := e.Group("/v1", session)
	v1.GET("/trips", h.Trips.ListTrips)
	v1.GET("/trips/:id", h.Trips.GetTrip)

	seats := v1.Group("/seats", limiter)
	seats.POST("/hold", h.Seats.HoldSeat)
	seats.POST("/release", h.Seats.ReleaseSeat)
	seats.POST("/purchase", h.Seats.PurchaseSeats)

	// Browsers cannot set headers on an upgrade request, so the session
	// token rides in the "session" query parameter here.
	e.GET("/ws", h.WS.Subscribe, session)
}
