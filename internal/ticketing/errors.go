// Package ticketing holds the error taxonomy shared by the reservation
// engine, the admission queue and their HTTP handlers, plus the single
// Echo error mapper that turns a classified error into the right status
// code and JSON body.
package ticketing

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation"
	KindQueueToken     Kind = "queue_token"
	KindSeatHeldByOther Kind = "seat_held_by_other"
	KindSeatBooked     Kind = "seat_already_booked"
	KindForbidden      Kind = "forbidden"
	KindConflict       Kind = "conflict"
	KindRateLimited    Kind = "rate_limited"
	KindInternal       Kind = "internal"
)

// SeatRef names the offending seat in a multi-seat request so the client
// can highlight it without re-deriving position from the request order.
type SeatRef struct {
	Row    string `json:"row"`
	Number uint32 `json:"number"`
}

// Error is the single error type the reservation engine and the HTTP
// handlers raise; the queue engine returns plain errors. Kind drives the HTTP status mapping; Seat is set
// only for per-seat failures during a multi-seat commit.
type Error struct {
	Kind    Kind
	Message string
	Seat    *SeatRef
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NewSeat(kind Kind, message, row string, number uint32) *Error {
	return &Error{Kind: kind, Message: message, Seat: &SeatRef{Row: row, Number: number}}
}

func statusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindSeatBooked:
		return http.StatusBadRequest
	case KindQueueToken, KindForbidden:
		return http.StatusForbidden
	case KindSeatHeldByOther, KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler is installed as the Echo error handler so every handler
// can simply `return ticketing.New(...)` instead of building echo.Map
// literals by hand. Unclassified errors map to 500 and never leak their
// message to the client.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if te, ok := err.(*Error); ok {
		body := echo.Map{"error": string(te.Kind), "message": te.Message}
		if te.Seat != nil {
			body["seat"] = te.Seat
		}
		_ = c.JSON(statusFor(te.Kind), body)
		return
	}

	if he, ok := err.(*echo.HTTPError); ok {
		_ = c.JSON(he.Code, echo.Map{"error": "http_error", "message": he.Message})
		return
	}

	c.Logger().Error(err)
	_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "internal server error"})
}
