package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/repository"
)

// OwnerHandler bundles the repositories an authenticated owner uses to
// manage their own venues, events, schedules and seat grades.
type OwnerHandler struct {
	Venues      *repository.VenueRepo
	Events      *repository.EventRepo
	Schedules   *repository.ScheduleRepo
	SeatGrades  *repository.SeatGradeRepo
	Bookings    *repository.BookingRepo
}

// NewOwnerHandler constructs a new OwnerHandler and panics if any
// dependency is nil, matching the teacher's fail-fast wiring check.
func NewOwnerHandler(venues *repository.VenueRepo, events *repository.EventRepo, schedules *repository.ScheduleRepo, seatGrades *repository.SeatGradeRepo, bookings *repository.BookingRepo) *OwnerHandler {
	if venues == nil || events == nil || schedules == nil || seatGrades == nil || bookings == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{Venues: venues, Events: events, Schedules: schedules, SeatGrades: seatGrades, Bookings: bookings}
}

// getUserID extracts the user_id stashed in the Echo context by the JWT
// middleware and converts it to uint64 regardless of which numeric type
// the claims decoder produced it as.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// normalizeRowLabel strips non-ASCII-letter runes and uppercases what
// remains, so "a", " A ", "a1" all collapse to the same grade-row key.
func normalizeRowLabel(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 32)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}
