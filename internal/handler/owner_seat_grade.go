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

var validGrades = map[string]bool{"VIP": true, "R": true, "S": true, "A": true}

type seatGradeReq struct {
	ScheduleID *uint64 `json:"schedule_id"`
	RowLabel   string  `json:"row_label"`
	Grade      string  `json:"grade"`
	PriceCents uint32  `json:"price_cents"`
}

func validateSeatGradeReq(body seatGradeReq) (string, string, error) {
	row := normalizeRowLabel(body.RowLabel)
	grade := strings.ToUpper(strings.TrimSpace(body.Grade))
	if row == "" {
		return "", "", ticketing.New(ticketing.KindValidation, "row_label is required")
	}
	if !validGrades[grade] {
		return "", "", ticketing.New(ticketing.KindValidation, "grade must be one of VIP, R, S, A")
	}
	return row, grade, nil
}

// CreateSeatGrade handles POST /owner/events/:id/seat-grades. Seat grades
// are the price catalog that the reservation engine's seat-map projection
// reads; no Ticket row is touched here.
func (h *OwnerHandler) CreateSeatGrade(c echo.Context) error {
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
	var body seatGradeReq
	if err := c.Bind(&body); err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid request body")
	}
	row, grade, verr := validateSeatGradeReq(body)
	if verr != nil {
		return verr
	}
	if body.ScheduleID != nil {
		ok, err := h.Schedules.BelongsToEvent(c.Request().Context(), *body.ScheduleID, eventID)
		if err != nil {
			return ticketing.New(ticketing.KindInternal, "db error")
		}
		if !ok {
			return ticketing.New(ticketing.KindValidation, "schedule_id does not belong to event")
		}
	}
	g := &repository.SeatGrade{EventID: eventID, ScheduleID: body.ScheduleID, RowLabel: row, Grade: grade, PriceCents: body.PriceCents}
	if err := h.SeatGrades.Create(c.Request().Context(), g); err != nil {
		return ticketing.New(ticketing.KindInternal, "could not create seat grade")
	}
	return c.JSON(http.StatusCreated, g)
}

// ListSeatGrades handles GET /owner/events/:id/seat-grades and GET
// /events/:id/seat-grades (public, read-only). Optional ?schedule_id filters
// to grades applicable to that schedule, same resolution rule as the
// reservation engine's seat-map projection.
func (h *OwnerHandler) ListSeatGrades(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	scheduleID, err := parseScheduleQuery(c)
	if err != nil {
		return err
	}
	items, err := h.SeatGrades.ListApplicable(c.Request().Context(), eventID, scheduleID)
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateSeatGrade handles PUT /owner/events/:id/seat-grades/:grade_id.
func (h *OwnerHandler) UpdateSeatGrade(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	gradeID, err := strconv.ParseUint(c.Param("grade_id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid grade id")
	}
	if _, err := h.Events.GetByIDAndOwner(c.Request().Context(), eventID, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	var body seatGradeReq
	if err := c.Bind(&body); err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid request body")
	}
	row, grade, verr := validateSeatGradeReq(body)
	if verr != nil {
		return verr
	}
	if err := h.SeatGrades.UpdateByIDAndEvent(c.Request().Context(), gradeID, eventID, body.ScheduleID, row, grade, body.PriceCents); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "seat grade not found")
		}
		return ticketing.New(ticketing.KindInternal, "update failed")
	}
	updated, _ := h.SeatGrades.GetByIDAndEvent(c.Request().Context(), gradeID, eventID)
	return c.JSON(http.StatusOK, updated)
}

// DeleteSeatGrade handles DELETE /owner/events/:id/seat-grades/:grade_id.
func (h *OwnerHandler) DeleteSeatGrade(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	gradeID, err := strconv.ParseUint(c.Param("grade_id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid grade id")
	}
	if _, err := h.Events.GetByIDAndOwner(c.Request().Context(), eventID, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return ticketing.New(ticketing.KindInternal, "db error")
	}
	if err := h.SeatGrades.DeleteByIDAndEvent(c.Request().Context(), gradeID, eventID); err != nil {
		if err == sql.ErrNoRows {
			return ticketing.New(ticketing.KindNotFound, "seat grade not found")
		}
		return ticketing.New(ticketing.KindInternal, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}
