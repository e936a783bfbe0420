package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
)

// RegisterSeatLocks registers the lock and unlock endpoints.  They are
// anonymous, so the token bucket is their only guard.
func RegisterSeatLocks(e *echo.Echo, h *handler.SeatLockHandler, limiter echo.MiddlewareFunc) {
	if limiter == nil {
		limiter = passThrough
	}
	e.POST("/shows/:id/lock-seats", h.LockSeats, limiter)
	e.POST("/shows/:id/unlock-seats", h.UnlockSeats, limiter)
}

// RegisterBookings registers /bookings.  Every route requires a valid
// access token; ownership is enforced by the service.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/bookings", middleware.JWTAuth(jwtSecret))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id/cancel", h.Cancel)
	g.PUT("/:id/payment", h.UpdatePayment)
}
