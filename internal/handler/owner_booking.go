package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/ticketing"
)

// ListEventBookings handles GET /owner/events/:id/bookings, the owner's
// sales dashboard. Read-only: cancellation and refunds are out of scope.
func (h *OwnerHandler) ListEventBookings(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	if _, err := h.Events.GetByIDAndOwner(c.Request().Context(), eventID, ownerID); err != nil {
		return ticketing.New(ticketing.KindNotFound, "event not found")
	}
	bookings, err := h.Bookings.ListByEventAndOwner(c.Request().Context(), eventID, ownerID)
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": withReservationNumbers(bookings)})
}
