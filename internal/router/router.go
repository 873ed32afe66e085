// Package router registers HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/court-booking/internal/handler"
	"github.com/iliyamo/court-booking/internal/middleware"
	"github.com/iliyamo/court-booking/internal/repository"
)

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, reg prometheus.Gatherer) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
}

// BookingRoutes carries what RegisterBookings needs.  RateLimit and Cache
// may be nil.
type BookingRoutes struct {
	Handler   *handler.BookingHandler
	Perms     middleware.PermissionChecker
	JWTSecret string
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterBookings mounts /v1/bookings.  Every route requires a bearer
// token; creating bookings additionally requires can_book and the
// statistics endpoint can_view_statistics.
func RegisterBookings(e *echo.Echo, r BookingRoutes) {
	mws := []echo.MiddlewareFunc{middleware.JWTAuth(r.JWTSecret)}
	if r.RateLimit != nil {
		mws = append(mws, r.RateLimit)
	}
	g := e.Group("/v1/bookings", mws...)

	canBook := middleware.RequirePermission(r.Perms, repository.PermCanBook)
	g.POST("", r.Handler.Create, canBook)
	g.POST("/series", r.Handler.CreateSeries, canBook)
	g.DELETE("/:id", r.Handler.Cancel)

	g.GET("/availability/:court_id", r.Handler.Availability)
	g.GET("/available-slots/:court_id", r.Handler.AvailableSlots)
	g.GET("/date/:date", r.Handler.ByDate)
	g.GET("/user/:user_id", r.Handler.ByUser)

	stats := []echo.MiddlewareFunc{middleware.RequirePermission(r.Perms, repository.PermCanViewStatistics)}
	if r.Cache != nil {
		stats = append(stats, r.Cache)
	}
	g.GET("/statistics", r.Handler.Statistics, stats...)
}
