package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/repository"
	"github.com/iliyamo/ticketing-core/internal/ticketing"
)

type eventReq struct {
	VenueID      uint64     `json:"venue_id"`
	Title        string     `json:"title"`
	Genre        string     `json:"genre"`
	IsHot        bool       `json:"is_hot"`
	QueueEnabled bool       `json:"queue_enabled"`
	SalesOpenAt  *time.Time `json:"sales_open_at"`
	SalesEndAt   *time.Time `json:"sales_end_at"`
}

// CreateEvent handles POST /owner/events.
func (h *OwnerHandler) CreateEvent(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	var body eventReq
	if err := c.Bind(&body); err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid request body")
	}
	title := strings.TrimSpace(body.Title)
	if title == "" || body.VenueID == 0 {
		return ticketing.New(ticketing.KindValidation, "title and venue_id are required")
	}
	if _, err := h.Venues.GetByID(c.Request().Context(), body.VenueID); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "venue not found")
		}
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	e := &repository.Event{
		OwnerID: ownerID, VenueID: body.VenueID, Title: title, Genre: body.Genre,
		IsHot: body.IsHot, QueueEnabled: body.QueueEnabled,
		SalesOpenAt: body.SalesOpenAt, SalesEndAt: body.SalesEndAt,
	}
	if err := h.Events.Create(c.Request().Context(), e); err != nil {
		return ticketing.New(ticketing.KindInternal, "could not create event")
	}
	return c.JSON(http.StatusCreated, e)
}

// ListOwnedEvents handles GET /owner/events.
func (h *OwnerHandler) ListOwnedEvents(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	items, err := h.Events.List(c.Request().Context(), 0, 1000)
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	owned := items[:0]
	for _, e := range items {
		if e.OwnerID == ownerID {
			owned = append(owned, e)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": owned})
}

// GetOwnedEvent handles GET /owner/events/:id.
func (h *OwnerHandler) GetOwnedEvent(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid id")
	}
	e, err := h.Events.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	return c.JSON(http.StatusOK, e)
}

// UpdateEvent handles PUT /owner/events/:id.
func (h *OwnerHandler) UpdateEvent(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid id")
	}
	var body eventReq
	if err := c.Bind(&body); err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid request body")
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return ticketing.New(ticketing.KindValidation, "title is required")
	}
	if err := h.Events.UpdateByIDAndOwner(c.Request().Context(), id, ownerID, title, body.Genre, body.IsHot, body.QueueEnabled); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return ticketing.New(ticketing.KindInternal, "update failed")
	}
	updated, _ := h.Events.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	return c.JSON(http.StatusOK, updated)
}

// DeleteEvent handles DELETE /owner/events/:id.
func (h *OwnerHandler) DeleteEvent(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid id")
	}
	if err := h.Events.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return ticketing.New(ticketing.KindNotFound, "event not found")
		case repository.ErrConflict:
			return ticketing.New(ticketing.KindConflict, "event still has active bookings")
		default:
			return ticketing.New(ticketing.KindInternal, "delete failed")
		}
	}
	return c.NoContent(http.StatusNoContent)
}
