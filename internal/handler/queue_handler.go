package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/queue"
	"github.com/iliyamo/ticketing-core/internal/repository"
	"github.com/iliyamo/ticketing-core/internal/ticketing"
)

// QueueHandler exposes the fair admission queue's entry and polling
// endpoints. It owns the gating decision (is the event hot?) since the
// queue engine itself carries no event metadata.
type QueueHandler struct {
	Engine *queue.Engine
	Events *repository.EventRepo
}

func NewQueueHandler(engine *queue.Engine, events *repository.EventRepo) *QueueHandler {
	return &QueueHandler{Engine: engine, Events: events}
}

func (h *QueueHandler) isGated(ctx echo.Context, eventID uint64) (bool, error) {
	e, err := h.Events.GetByID(ctx.Request().Context(), eventID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return false, ticketing.New(ticketing.KindInternal, "db error")
	}
	return e.IsHot || e.QueueEnabled, nil
}

// statusResponse builds the §6 response shape shared by /queue/enter and
// /queue/status: batch_size and batch_interval are echoed on every
// response (released or still waiting) so polling clients can read the
// admission cadence without a separate call.
func statusResponse(s queue.Status, batchSize int, batchIntervalSecs int64) echo.Map {
	if !s.InQueue {
		return echo.Map{
			"in_queue":       false,
			"queue_token":    s.QueueToken,
			"position":       0,
			"total":          s.Total,
			"batch_size":     batchSize,
			"batch_interval": batchIntervalSecs,
		}
	}
	return echo.Map{
		"in_queue":            true,
		"position":            s.Position,
		"total":               s.Total,
		"estimated_wait_time": s.EstimatedWaitSecs,
		"batch_size":          batchSize,
		"batch_interval":      batchIntervalSecs,
	}
}

// Enter handles POST /queue/enter/:event_id.
func (h *QueueHandler) Enter(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("event_id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	userID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	gated, err := h.isGated(c, eventID)
	if err != nil {
		return err
	}
	if !gated {
		status, err := h.Engine.MintImmediate(c.Request().Context(), eventID, userID)
		if err != nil {
			return ticketing.New(ticketing.KindInternal, "queue store unavailable")
		}
		return c.JSON(http.StatusOK, statusResponse(status, h.Engine.BatchSize(), h.Engine.BatchIntervalSecs()))
	}

	status, err := h.Engine.Enter(c.Request().Context(), eventID, userID, time.Now())
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "queue store unavailable")
	}
	return c.JSON(http.StatusOK, statusResponse(status, h.Engine.BatchSize(), h.Engine.BatchIntervalSecs()))
}

// Status handles GET /queue/status/:event_id.
func (h *QueueHandler) Status(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("event_id"), 10, 64)
	if err != nil {
		return ticketing.New(ticketing.KindValidation, "invalid event id")
	}
	userID, err := getUserID(c)
	if err != nil {
		return ticketing.New(ticketing.KindForbidden, "unauthorized")
	}
	gated, err := h.isGated(c, eventID)
	if err != nil {
		return err
	}
	if !gated {
		status, err := h.Engine.MintImmediate(c.Request().Context(), eventID, userID)
		if err != nil {
			return ticketing.New(ticketing.KindInternal, "queue store unavailable")
		}
		return c.JSON(http.StatusOK, statusResponse(status, h.Engine.BatchSize(), h.Engine.BatchIntervalSecs()))
	}

	status, err := h.Engine.Enter(c.Request().Context(), eventID, userID, time.Now())
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "queue store unavailable")
	}
	return c.JSON(http.StatusOK, statusResponse(status, h.Engine.BatchSize(), h.Engine.BatchIntervalSecs()))
}
