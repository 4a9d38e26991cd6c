package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/repository"
	"github.com/iliyamo/ticketing-core/internal/reservation"
	"github.com/iliyamo/ticketing-core/internal/ticketing"
)

// ReservationHandler exposes the seat-map, lock and booking endpoints
// backed by the reservation engine.
type ReservationHandler struct {
	Engine   *reservation.Engine
	Bookings *repository.BookingRepo
}

func NewReservationHandler(engine *reservation.Engine, bookings *repository.BookingRepo) *ReservationHandler {
	return &ReservationHandler{Engine: engine, Bookings: bookings}
}

func parseScheduleQuery(c echo.Context) (*uint64, error) {
	raw := c.QueryParam("schedule_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, ticketing.New(ticketing.KindValidation, "invalid schedule_id")
	}
	return &id, nil
}

// ListTickets handles GET /events/:id/tickets.
func (h *ReservationHandler) ListTickets(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	scheduleID, err := parseScheduleQuery(c)
	if err != nil {
		return err
	}

	views, err := h.Engine.ListTickets(c.Request().Context(), eventID, scheduleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

type lockSeatsReq struct {
	EventID    uint64 `json:"event_id"`
	ScheduleID *uint64 `json:"schedule_id"`
	Seats      []struct {
		Row    string `json:"row"`
		Number uint32 `json:"number"`
	} `json:"seats"`
}

// LockSeats handles POST /seats/lock.
func (h *ReservationHandler) LockSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	var req lockSeatsReq
	if err := c.Bind(&req); err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid body")
	}
	if len(req.Seats) == 0 {
		return ticketing.New(ticketing.KindValidation, "at least one seat required")
	}
	positions := make([]reservation.SeatPosition, 0, len(req.Seats))
	for _, s := range req.Seats {
		positions = append(positions, reservation.SeatPosition{Row: s.Row, Number: s.Number})
	}
	queueToken := c.Request().Header.Get("X-Queue-Token")

	result, err := h.Engine.LockSeats(c.Request().Context(), req.EventID, req.ScheduleID, positions, userID, queueToken)
	if err != nil {
		return err
	}
	if !result.Success {
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": result.Message})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      result.Message,
		"locked_seats": result.LockedSeats,
	})
}

type createBookingsReq struct {
	EventID         uint64  `json:"event_id"`
	ScheduleID      *uint64 `json:"schedule_id"`
	TotalPriceCents uint32  `json:"total_price"`
	ReceiptMethod   string  `json:"receipt_method"`
	DeliveryInfo    *string `json:"delivery_info"`
	Seats           []struct {
		Row     string  `json:"row"`
		Number  uint32  `json:"number"`
		Grade   string  `json:"grade"`
		Price   uint32  `json:"price"`
		Section *string `json:"section"`
	} `json:"seats"`
}

// CreateBookings handles POST /bookings.
func (h *ReservationHandler) CreateBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	var req createBookingsReq
	if err := c.Bind(&req); err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid body")
	}
	if len(req.Seats) == 0 {
		return ticketing.New(ticketing.KindValidation, "at least one seat required")
	}

	seats := make([]reservation.BookingSeat, 0, len(req.Seats))
	for _, s := range req.Seats {
		seats = append(seats, reservation.BookingSeat{
			Row: s.Row, Number: s.Number, Grade: s.Grade, Price: s.Price, Section: s.Section,
		})
	}
	queueToken := c.Request().Header.Get("X-Queue-Token")

	bookings, err := h.Engine.CreateBookings(c.Request().Context(), reservation.CreateBookingsRequest{
		EventID:         req.EventID,
		ScheduleID:      req.ScheduleID,
		Seats:           seats,
		TotalPriceCents: req.TotalPriceCents,
		ReceiptMethod:   req.ReceiptMethod,
		DeliveryInfo:    req.DeliveryInfo,
	}, userID, queueToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

// bookingView adds the client-facing reservation number to a stored booking.
type bookingView struct {
	repository.Booking
	ReservationNumber string `json:"reservation_number"`
}

func withReservationNumbers(bookings []repository.Booking) []bookingView {
	out := make([]bookingView, len(bookings))
	for i, b := range bookings {
		out[i] = bookingView{Booking: b, ReservationNumber: fmt.Sprintf("M%09d", b.ID)}
	}
	return out
}

// MyBookings handles GET /bookings/my.
func (h *ReservationHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	bookings, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": withReservationNumbers(bookings)})
}
