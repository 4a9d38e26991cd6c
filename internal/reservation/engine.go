// Package reservation implements the two public operations of the
// reservation engine — lock_seats and create_bookings — plus the
// read-only seat-map projection that backs both the tickets listing and
// the lock phase's ticket id resolution.
package reservation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ticketing-core/internal/lock"
	"github.com/iliyamo/ticketing-core/internal/model"
	"github.com/iliyamo/ticketing-core/internal/queue"
	"github.com/iliyamo/ticketing-core/internal/repository"
	"github.com/iliyamo/ticketing-core/internal/service"
	"github.com/iliyamo/ticketing-core/internal/ticketing"
	"github.com/iliyamo/ticketing-core/internal/utils"
)

const (
	defaultSection      = "9구역"
	defaultSeatsPerRow  = 20
)

// defaultSeatMapTTL is used when the caller never sets a TTL via
// SetSeatMapTTL, matching the spec's "1 min for seat maps" default.
const defaultSeatMapTTL = time.Minute

// Engine owns every repository and the seat lock manager needed to run
// lock_seats, create_bookings and list_tickets.
type Engine struct {
	db       *sql.DB
	events   *repository.EventRepo
	schedules *repository.ScheduleRepo
	venues   *repository.VenueRepo
	grades   *repository.SeatGradeRepo
	tickets  *repository.TicketRepo
	bookings *repository.BookingRepo
	locks    *lock.Manager
	queue    *queue.Engine
	rdb      *redis.Client
	seatMapTTL time.Duration
}

func NewEngine(
	db *sql.DB,
	events *repository.EventRepo,
	schedules *repository.ScheduleRepo,
	venues *repository.VenueRepo,
	grades *repository.SeatGradeRepo,
	tickets *repository.TicketRepo,
	bookings *repository.BookingRepo,
	locks *lock.Manager,
	queueEngine *queue.Engine,
	rdb *redis.Client,
) *Engine {
	return &Engine{
		db: db, events: events, schedules: schedules, venues: venues,
		grades: grades, tickets: tickets, bookings: bookings,
		locks: locks, queue: queueEngine, rdb: rdb,
		seatMapTTL: defaultSeatMapTTL,
	}
}

// SetSeatMapTTL overrides the read-through seat-map cache's TTL, normally
// sourced from CacheConfig.SeatMapTTL at bootstrap.
func (e *Engine) SetSeatMapTTL(ttl time.Duration) {
	if ttl > 0 {
		e.seatMapTTL = ttl
	}
}

// SeatPosition names a seat by row and number, the only fields needed to
// resolve a ticket id.
type SeatPosition struct {
	Row    string
	Number uint32
}

// checkQueueGate validates the X-Queue-Token header against the event's
// queue-gating policy. Non-gated events pass unconditionally.
func (e *Engine) checkQueueGate(ctx context.Context, ev *repository.Event, userID uint64, token string) error {
	if !ev.IsHot && !ev.QueueEnabled {
		return nil
	}
	if token == "" {
		return ticketing.New(ticketing.KindQueueToken, "queue token required")
	}
	ok, err := e.queue.ValidateToken(ctx, ev.ID, userID, token)
	if err != nil {
		return ticketing.New(ticketing.KindInternal, "queue token validation failed")
	}
	if !ok {
		return ticketing.New(ticketing.KindQueueToken, "queue token invalid or expired")
	}
	return nil
}

// resolveTicketID returns the id of an existing materialized ticket for
// the position, or the deterministic virtual id if none exists yet.
func (e *Engine) resolveTicketID(ctx context.Context, eventID uint64, scheduleID *uint64, pos SeatPosition) (int64, *repository.Ticket, error) {
	t, err := e.tickets.FindByPosition(ctx, eventID, scheduleID, pos.Row, pos.Number)
	if err != nil {
		return 0, nil, err
	}
	if t != nil {
		return int64(t.ID), t, nil
	}
	return utils.VirtualTicketID(eventID, scheduleID, pos.Row, pos.Number), nil, nil
}

// LockResult is the outcome of lock_seats: either every seat in the
// request was locked, or the first offending seat is reported.
type LockResult struct {
	Success     bool
	LockedSeats []LockedSeat
	Message     string
}

type LockedSeat struct {
	Row      string `json:"row"`
	Number   uint32 `json:"number"`
	TicketID int64  `json:"ticket_id"`
}

// LockSeats implements the pre-commit hold for the seat-selection UI: a
// non-blocking distributed lock per seat, idempotent for the same user,
// all-or-nothing across the request.
func (e *Engine) LockSeats(ctx context.Context, eventID uint64, scheduleID *uint64, seats []SeatPosition, userID uint64, queueToken string) (LockResult, error) {
	ev, err := e.events.GetByID(ctx, eventID)
	if err != nil {
		if err == sql.ErrNoRows {
			return LockResult{}, ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return LockResult{}, err
	}
	if err := e.checkQueueGate(ctx, ev, userID, queueToken); err != nil {
		return LockResult{}, err
	}

	var acquired []LockedSeat
	release := func() {
		for _, ls := range acquired {
			_ = e.locks.Unlock(ctx, ls.TicketID, userID)
		}
	}

	for _, pos := range seats {
		ticketID, _, err := e.resolveTicketID(ctx, eventID, scheduleID, pos)
		if err != nil {
			release()
			return LockResult{}, err
		}

		ok, err := e.locks.TryLock(ctx, ticketID, userID)
		if err != nil {
			release()
			return LockResult{}, err
		}
		if !ok {
			owner, found, err := e.locks.Owner(ctx, ticketID)
			if err != nil {
				release()
				return LockResult{}, err
			}
			if found && owner == userID {
				ok = true
			}
		}
		if !ok {
			release()
			return LockResult{
				Success: false,
				Message: fmt.Sprintf("seat %s-%d is being processed by another user", pos.Row, pos.Number),
			}, nil
		}
		acquired = append(acquired, LockedSeat{Row: pos.Row, Number: pos.Number, TicketID: ticketID})
	}

	return LockResult{
		Success:     true,
		LockedSeats: acquired,
		Message:     fmt.Sprintf("%d seat(s) locked", len(acquired)),
	}, nil
}

// BookingSeat is one line item of a create_bookings request: the position,
// its grade/price (used only if the ticket has not been materialized
// yet), and an optional section label.
type BookingSeat struct {
	Row     string
	Number  uint32
	Grade   string
	Price   uint32
	Section *string
}

// CreateBookingsRequest is the full payload of POST /bookings.
type CreateBookingsRequest struct {
	EventID         uint64
	ScheduleID      *uint64
	Seats           []BookingSeat
	TotalPriceCents uint32
	ReceiptMethod   string
	DeliveryInfo    *string
}

// CreateBookings runs the full two-phase commit: a fast Redis lock pass
// that rejects contested seats in O(ms), followed by a single DB
// transaction that re-validates under row-level locks and is the
// authoritative source of truth if the lock store ever loses state.
func (e *Engine) CreateBookings(ctx context.Context, req CreateBookingsRequest, userID uint64, queueToken string) ([]repository.Booking, error) {
	ev, err := e.events.GetByID(ctx, req.EventID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return nil, err
	}
	if err := e.checkQueueGate(ctx, ev, userID, queueToken); err != nil {
		return nil, err
	}
	if req.ScheduleID != nil {
		belongs, err := e.schedules.BelongsToEvent(ctx, *req.ScheduleID, req.EventID)
		if err != nil {
			return nil, err
		}
		if !belongs {
			return nil, ticketing.New(ticketing.KindNotFound, "schedule not found for this event")
		}
	}
	for _, s := range req.Seats {
		if !model.ValidGrade(s.Grade) {
			return nil, ticketing.New(ticketing.KindValidation, fmt.Sprintf("invalid grade: %s", s.Grade))
		}
	}

	// Fast-lock phase.
	type heldSeat struct {
		pos      SeatPosition
		ticketID int64
	}
	var held []heldSeat
	releaseLocks := func() {
		for _, h := range held {
			_ = e.locks.Unlock(ctx, h.ticketID, userID)
		}
	}

	for _, s := range req.Seats {
		pos := SeatPosition{Row: s.Row, Number: s.Number}
		ticketID, _, err := e.resolveTicketID(ctx, req.EventID, req.ScheduleID, pos)
		if err != nil {
			releaseLocks()
			return nil, err
		}

		owner, found, err := e.locks.Owner(ctx, ticketID)
		if err != nil {
			releaseLocks()
			return nil, err
		}
		if found {
			if owner != userID {
				releaseLocks()
				return nil, ticketing.NewSeat(ticketing.KindSeatHeldByOther,
					fmt.Sprintf("seat %s-%d is held by another user", s.Row, s.Number), s.Row, s.Number)
			}
		} else {
			ok, err := e.locks.TryLock(ctx, ticketID, userID)
			if err != nil {
				releaseLocks()
				return nil, err
			}
			if !ok {
				releaseLocks()
				return nil, ticketing.NewSeat(ticketing.KindSeatHeldByOther,
					fmt.Sprintf("seat %s-%d is held by another user", s.Row, s.Number), s.Row, s.Number)
			}
		}
		held = append(held, heldSeat{pos: pos, ticketID: ticketID})
	}
	defer releaseLocks()

	// Transactional commit phase.
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var created []repository.Booking
	var events []queue.BookingConfirmedEvent
	for _, s := range req.Seats {
		t, err := e.tickets.FindByPositionTx(ctx, tx, req.EventID, req.ScheduleID, s.Row, s.Number)
		if err != nil {
			return nil, err
		}
		if t == nil {
			t = &repository.Ticket{
				EventID:    req.EventID,
				ScheduleID: req.ScheduleID,
				Section:    s.Section,
				RowLabel:   &s.Row,
				SeatNumber: &s.Number,
				Grade:      s.Grade,
				PriceCents: s.Price,
			}
			if err := e.tickets.CreateTx(ctx, tx, t); err != nil {
				return nil, err
			}
		}

		booked, err := e.tickets.BookedTicketIDsTx(ctx, tx, []uint64{t.ID})
		if err != nil {
			return nil, err
		}
		if booked[t.ID] {
			return nil, ticketing.NewSeat(ticketing.KindSeatBooked,
				fmt.Sprintf("seat %s-%d is already booked", s.Row, s.Number), s.Row, s.Number)
		}

		b := &repository.Booking{
			UserID:          userID,
			TicketID:        t.ID,
			ScheduleID:      req.ScheduleID,
			Status:          string(model.BookingPending),
			TotalPriceCents: s.Price,
			ReceiptMethod:   req.ReceiptMethod,
			DeliveryInfo:    req.DeliveryInfo,
		}
		if err := e.bookings.CreateTx(ctx, tx, b); err != nil {
			return nil, err
		}
		created = append(created, *b)
		scheduleID := uint64(0)
		if req.ScheduleID != nil {
			scheduleID = *req.ScheduleID
		}
		events = append(events, queue.BookingConfirmedEvent{
			BookingID:       b.ID,
			UserID:          userID,
			EventID:         req.EventID,
			EventTitle:      ev.Title,
			ScheduleID:      scheduleID,
			TicketID:        t.ID,
			SeatLabel:       fmt.Sprintf("%s-%d", s.Row, s.Number),
			Grade:           s.Grade,
			TotalPriceCents: s.Price,
			ReceiptMethod:   req.ReceiptMethod,
			ConfirmedAt:     b.BookedAt.Format(time.RFC3339),
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	e.invalidateSeatCache(ctx, req.EventID, req.ScheduleID)
	e.publishConfirmations(events)
	return created, nil
}

// publishConfirmations fires booking.confirmed events to the async
// notification bus. Failures are logged, never surfaced to the caller:
// the booking itself already committed and is the source of truth.
func (e *Engine) publishConfirmations(events []queue.BookingConfirmedEvent) {
	for _, ev := range events {
		go func(ev queue.BookingConfirmedEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := service.PublishBookingConfirmed(ctx, ev); err != nil {
				log.Printf("publish booking confirmed failed: %v", err)
			}
		}(ev)
	}
}

func seatMapCacheKey(eventID uint64, scheduleID *uint64) string {
	sid := "all"
	if scheduleID != nil {
		sid = fmt.Sprintf("%d", *scheduleID)
	}
	return fmt.Sprintf("event_seats:%d:%s", eventID, sid)
}

func (e *Engine) invalidateSeatCache(ctx context.Context, eventID uint64, scheduleID *uint64) {
	if e.rdb == nil {
		return
	}
	e.rdb.Del(ctx, seatMapCacheKey(eventID, nil))
	if scheduleID != nil {
		e.rdb.Del(ctx, seatMapCacheKey(eventID, scheduleID))
	}
}

// ListTickets projects the full seat map for an event (optionally scoped
// to a schedule), read-through cached for SeatMapTTL under the
// event_seats:{eid}:{sid|all} key the spec names, invalidated by every
// booking commit against the same (event, schedule) pair.
func (e *Engine) ListTickets(ctx context.Context, eventID uint64, scheduleID *uint64) ([]model.TicketView, error) {
	if e.rdb != nil {
		key := seatMapCacheKey(eventID, scheduleID)
		if cached, err := e.rdb.Get(ctx, key).Result(); err == nil {
			var views []model.TicketView
			if jsonErr := json.Unmarshal([]byte(cached), &views); jsonErr == nil {
				return views, nil
			}
		}
	}

	views, err := e.listTicketsUncached(ctx, eventID, scheduleID)
	if err != nil {
		return nil, err
	}

	if e.rdb != nil {
		if payload, err := json.Marshal(views); err == nil {
			key := seatMapCacheKey(eventID, scheduleID)
			if err := e.rdb.SetEx(ctx, key, payload, e.seatMapTTL).Err(); err != nil {
				log.Printf("seat map cache write failed for event %d: %v", eventID, err)
			}
		}
	}
	return views, nil
}

func (e *Engine) listTicketsUncached(ctx context.Context, eventID uint64, scheduleID *uint64) ([]model.TicketView, error) {
	ev, err := e.events.GetByID(ctx, eventID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ticketing.New(ticketing.KindNotFound, "event not found")
		}
		return nil, err
	}
	if scheduleID != nil {
		belongs, err := e.schedules.BelongsToEvent(ctx, *scheduleID, eventID)
		if err != nil {
			return nil, err
		}
		if !belongs {
			return nil, ticketing.New(ticketing.KindNotFound, "schedule not found for this event")
		}
	}

	section, seatsPerRow := defaultSection, defaultSeatsPerRow
	if venue, err := e.venues.GetByID(ctx, ev.VenueID); err == nil && venue.SeatMapJSON != nil {
		var sm model.SeatMap
		if jsonErr := json.Unmarshal([]byte(*venue.SeatMapJSON), &sm); jsonErr == nil {
			if len(sm.Sections) > 0 {
				section = sm.Sections[0]
			} else if sm.Section != "" {
				section = sm.Section
			}
			if sm.SeatsPerRow > 0 {
				seatsPerRow = sm.SeatsPerRow
			}
		}
	}

	tickets, err := e.tickets.ListByEvent(ctx, eventID, scheduleID)
	if err != nil {
		return nil, err
	}
	grades, err := e.grades.ListApplicable(ctx, eventID, scheduleID)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 && len(grades) == 0 {
		return []model.TicketView{}, nil
	}

	type rowMeta struct {
		grade      string
		priceCents uint32
	}
	gradeByRow := make(map[string]rowMeta, len(grades))
	for _, g := range grades {
		gradeByRow[g.RowLabel] = rowMeta{grade: g.Grade, priceCents: g.PriceCents}
	}

	ticketByPos := make(map[string]repository.Ticket, len(tickets))
	rows := make(map[string]struct{})
	var ticketIDs []uint64
	for _, t := range tickets {
		if t.RowLabel != nil && t.SeatNumber != nil {
			ticketByPos[fmt.Sprintf("%s:%d", *t.RowLabel, *t.SeatNumber)] = t
			rows[*t.RowLabel] = struct{}{}
		}
		ticketIDs = append(ticketIDs, t.ID)
	}
	for row := range gradeByRow {
		rows[row] = struct{}{}
	}

	var bookedSet map[uint64]bool
	if len(ticketIDs) > 0 {
		bookedSet, err = e.tickets.BookedTicketIDs(ctx, ticketIDs)
		if err != nil {
			return nil, err
		}
	}

	rowLabels := make([]string, 0, len(rows))
	for row := range rows {
		rowLabels = append(rowLabels, row)
	}
	sort.Strings(rowLabels)

	var out []model.TicketView
	for _, row := range rowLabels {
		meta, hasMeta := gradeByRow[row]
		for n := uint32(1); n <= uint32(seatsPerRow); n++ {
			if existing, ok := ticketByPos[fmt.Sprintf("%s:%d", row, n)]; ok {
				view := model.TicketView{
					EventID:    eventID,
					SeatRow:    row,
					SeatNumber: n,
					Grade:      existing.Grade,
					PriceCents: existing.PriceCents,
					Available:  !bookedSet[existing.ID],
				}
				if existing.Section != nil {
					view.SeatSection = *existing.Section
				} else {
					view.SeatSection = section
				}
				id := int64(existing.ID)
				view.ID = &id
				out = append(out, view)
				continue
			}
			if !hasMeta {
				continue
			}
			out = append(out, model.TicketView{
				EventID:     eventID,
				SeatSection: section,
				SeatRow:     row,
				SeatNumber:  n,
				Grade:       meta.grade,
				PriceCents:  meta.priceCents,
				Available:   true,
			})
		}
	}
	return out, nil
}
