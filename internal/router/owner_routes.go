package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/handler"
	"github.com/iliyamo/ticketing-core/internal/middleware"
)

// RegisterOwner mounts the owner's CRUD surface for venues, events,
// schedules and seat grades, plus the read-only sales dashboard. Every
// route requires an authenticated user with the OWNER role.
func RegisterOwner(e *echo.Echo, h *handler.OwnerHandler, jwtSecret string) {
	g := e.Group("/owner", middleware.JWTAuth(jwtSecret), middleware.RequireRole("OWNER"))

	g.POST("/venues", h.CreateVenue)
	g.GET("/venues", h.ListVenues)
	g.GET("/venues/:id", h.GetVenue)
	g.PUT("/venues/:id", h.UpdateVenue)
	g.DELETE("/venues/:id", h.DeleteVenue)

	g.POST("/events", h.CreateEvent)
	g.GET("/events", h.ListOwnedEvents)
	g.GET("/events/:id", h.GetOwnedEvent)
	g.PUT("/events/:id", h.UpdateEvent)
	g.DELETE("/events/:id", h.DeleteEvent)

	g.POST("/events/:id/schedules", h.CreateSchedule)
	g.GET("/events/:id/schedules", h.ListSchedules)
	g.PUT("/events/:id/schedules/:schedule_id", h.UpdateSchedule)
	g.DELETE("/events/:id/schedules/:schedule_id", h.DeleteSchedule)

	g.POST("/events/:id/seat-grades", h.CreateSeatGrade)
	g.GET("/events/:id/seat-grades", h.ListSeatGrades)
	g.PUT("/events/:id/seat-grades/:grade_id", h.UpdateSeatGrade)
	g.DELETE("/events/:id/seat-grades/:grade_id", h.DeleteSeatGrade)

	g.GET("/events/:id/bookings", h.ListEventBookings)
}
