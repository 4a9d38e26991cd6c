package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/handler"
	"github.com/iliyamo/ticketing-core/internal/middleware"
)

// RegisterReservation mounts the seat-map, lock and booking endpoints.
// Listing tickets is public (the seat map is browseable before login);
// locking and booking require an authenticated user since they mutate
// state tied to a user_id.
func RegisterReservation(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	e.GET("/events/:id/tickets", h.ListTickets)

	authed := e.Group("", middleware.JWTAuth(jwtSecret))
	authed.POST("/seats/lock", h.LockSeats)
	authed.POST("/bookings", h.CreateBookings)
	authed.GET("/bookings/my", h.MyBookings)
}
