// Package router defines how HTTP routes are registered for the API.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/video-rental/internal/handler"
)

// RegisterRoutes registers the operational endpoints: the health check,
// which pings the store, and the Prometheus exposition.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterRental registers the rental API under /v1.  mw is applied to the
// group only, so health checks and scrapes are neither cached nor limited.
func RegisterRental(e *echo.Echo, h *handler.RentalHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)

	g.GET("/films", h.ListFilms)
	g.POST("/films", h.AddFilm)
	g.GET("/films/renters", h.ClientsWhoRented)
	g.GET("/films/history", h.RentalHistory)
	g.GET("/films/:id", h.GetFilm)

	g.PATCH("/clients/:id/email", h.UpdateClientEmail)
	g.DELETE("/clients/:id", h.RemoveClient)
	g.GET("/clients/films", h.FilmsRentedBy)
	g.GET("/clients/:id", h.GetClient)

	g.GET("/rentals/open", h.OpenRentals)
}

// New builds an echo instance with every route registered.
func New(db *sql.DB, h *handler.RentalHandler, mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	RegisterRoutes(e, db)
	RegisterRental(e, h, mw...)
	return e
}
