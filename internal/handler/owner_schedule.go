package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/repository"
	"github.com/iliyamo/ticketing-core/internal/ticketing"
)

// scheduleReq expects RFC3339 timestamps, matching encoding/json's default
// time.Time decoding used throughout the rest of the handlers.
type scheduleReq struct {
	StartAt        time.Time  `json:"start_at"`
	EndAt          *time.Time `json:"end_at"`
	RunningMinutes *uint32    `json:"running_minutes"`
}

// CreateSchedule handles POST /owner/events/:id/schedules.
func (h *OwnerHandler) CreateSchedule(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	if _, err := h.Events.GetByIDAndOwner(c.Request().Context(), eventID, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	var body scheduleReq
	if err := c.Bind(&body); err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid request body")
	}
	if body.StartAt.IsZero() {
		return ticketing.New(ticketing.KindValidation, "start_at is required")
	}
	s := &repository.Schedule{EventID: eventID, StartAt: body.StartAt, RunningMinutes: body.RunningMinutes}
	if body.EndAt != nil {
		s.EndAt = body.EndAt
	}
	if err := h.Schedules.Create(c.Request().Context(), s); err != nil {
		return ticketing.New(ticketing.KindInternal, "could not create schedule")
	}
	return c.JSON(http.StatusCreated, s)
}

// ListSchedules handles GET /owner/events/:id/schedules.
func (h *OwnerHandler) ListSchedules(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	items, err := h.Schedules.ListByEvent(c.Request().Context(), eventID)
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateSchedule handles PUT /owner/events/:id/schedules/:schedule_id.
func (h *OwnerHandler) UpdateSchedule(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	scheduleID, err := strconv.ParseUint(c.Param("schedule_id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid schedule id")
	}
	if _, err := h.Events.GetByIDAndOwner(c.Request().Context(), eventID, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	var body scheduleReq
	if err := c.Bind(&body); err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid request body")
	}
	if body.StartAt.IsZero() {
		return ticketing.New(ticketing.KindValidation, "start_at is required")
	}
	endAt := body.EndAt
	if err := h.Schedules.UpdateByIDAndEvent(c.Request().Context(), scheduleID, eventID, body.StartAt, endAt, body.RunningMinutes); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "schedule not found")
		}
		return ticketing.New(ticketing.KindInternal, "update failed")
	}
	updated, _ := h.Schedules.GetByID(c.Request().Context(), scheduleID)
	return c.JSON(http.StatusOK, updated)
}

// DeleteSchedule handles DELETE /owner/events/:id/schedules/:schedule_id.
func (h *OwnerHandler) DeleteSchedule(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	scheduleID, err := strconv.ParseUint(c.Param("schedule_id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid schedule id")
	}
	if _, err := h.Events.GetByIDAndOwner(c.Request().Context(), eventID, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	if err := h.Schedules.DeleteByIDAndEvent(c.Request().Context(), scheduleID, eventID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return ticketing.New(ticketing.KindNotFound, "schedule not found")
		case repository.ErrConflict:
			return ticketing.New(ticketing.KindConflict, "schedule still has active bookings")
		default:
			return ticketing.New(ticketing.KindInternal, "delete failed")
		}
	}
	return c.NoContent(http.StatusNoContent)
}
