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

type venueReq struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
	SeatMap *string `json:"seat_map"`
}

// CreateVenue handles POST /owner/venues.
func (h *OwnerHandler) CreateVenue(c echo.Context) error {
	var body venueReq
	if err := c.Bind(&body); err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return ticketing.New(ticketing.KindValidation, "name is required")
	}
	v := &repository.Venue{Name: name, Address: body.Address, SeatMapJSON: body.SeatMap}
	if err := h.Venues.Create(c.Request().Context(), v); err != nil {
		return ticketing.New(ticketing.KindInternal, "could not create venue")
	}
	return c.JSON(http.StatusCreated, v)
}

// ListVenues handles GET /owner/venues and GET /venues (public, read-only).
func (h *OwnerHandler) ListVenues(c echo.Context) error {
	items, err := h.Venues.List(c.Request().Context())
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetVenue handles GET /owner/venues/:id and GET /venues/:id.
func (h *OwnerHandler) GetVenue(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid id")
	}
	v, err := h.Venues.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "venue not found")
		}
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	return c.JSON(http.StatusOK, v)
}

// UpdateVenue handles PUT /owner/venues/:id.
func (h *OwnerHandler) UpdateVenue(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid id")
	}
	var body venueReq
	if err := c.Bind(&body); err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return ticketing.New(ticketing.KindValidation, "name is required")
	}
	if err := h.Venues.Update(c.Request().Context(), id, name, body.Address, body.SeatMap); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "venue not found")
		}
		return ticketing.New(ticketing.KindInternal, "update failed")
	}
	updated, _ := h.Venues.GetByID(c.Request().Context(), id)
	return c.JSON(http.StatusOK, updated)
}

// DeleteVenue handles DELETE /owner/venues/:id.
func (h *OwnerHandler) DeleteVenue(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid id")
	}
	if err := h.Venues.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case sql.ErrNoRows:
			return ticketing.New(ticketing.KindNotFound, "venue not found")
		case repository.ErrConflict:
			return ticketing.New(ticketing.KindConflict, "venue still has events")
		default:
			return ticketing.New(ticketing.KindInternal, "delete failed")
		}
	}
	return c.NoContent(http.StatusNoContent)
}
