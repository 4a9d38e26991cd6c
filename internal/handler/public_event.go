package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/repository"
	"github.com/iliyamo/ticketing-core/internal/ticketing"
)

// PublicHandler serves unauthenticated event browsing, sitting behind the
// rate limiter and response cache middleware in the route chain. It
// delegates to the same repositories the owner handlers use since the
// public views are a strict subset of the owner ones, not a separate
// read model.
type PublicHandler struct {
	Events     *repository.EventRepo
	Venues     *repository.VenueRepo
	Schedules  *repository.ScheduleRepo
	SeatGrades *repository.SeatGradeRepo
}

func NewPublicHandler(events *repository.EventRepo, venues *repository.VenueRepo, schedules *repository.ScheduleRepo, seatGrades *repository.SeatGradeRepo) *PublicHandler {
	return &PublicHandler{Events: events, Venues: venues, Schedules: schedules, SeatGrades: seatGrades}
}

// ListEvents handles GET /events, the cached public listing.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	items, err := h.Events.List(c.Request().Context(), skip, limit)
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEvent handles GET /events/:id.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid id")
	}
	e, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	return c.JSON(http.StatusOK, e)
}

// GetVenues and GetVenue reuse OwnerHandler's ListVenues/GetVenue for the
// public, read-only venue endpoints — see router wiring.

// ListEventSchedules handles GET /events/:id/schedules.
func (h *PublicHandler) ListEventSchedules(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid id")
	}
	items, err := h.Schedules.ListByEvent(c.Request().Context(), id)
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// SearchEvents handles GET /events/search?title=&venue=&genre=&time=&page=&page_size=.
func (h *PublicHandler) SearchEvents(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("title"))
	venue := strings.TrimSpace(c.QueryParam("venue"))
	genre := strings.TrimSpace(c.QueryParam("genre"))
	timeFilter := strings.ToLower(strings.TrimSpace(c.QueryParam("time")))
	if timeFilter == "" {
		timeFilter = "upcoming"
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}

	q := repository.EventSearchQuery{Title: title, Venue: venue, Genre: genre, TimeFilter: timeFilter, Page: page, PageSize: ps}
	items, total, err := h.Events.SearchUpcoming(c.Request().Context(), q)
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "total": total, "page": page, "page_size": ps})
}
