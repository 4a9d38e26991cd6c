package repository

import (
	"context"
	"database/sql"
	"strings"
)

// Ticket mirrors the 'tickets' table. A ticket is lazily materialized:
// the row only exists once a seat reaches the transactional commit
// phase of a booking.
type Ticket struct {
	ID         uint64
	EventID    uint64
	ScheduleID *uint64
	Section    *string
	RowLabel   *string
	SeatNumber *uint32
	Grade      string
	PriceCents uint32
}

// TicketRepo provides data access for tickets.
type TicketRepo struct{ db *sql.DB }

// NewTicketRepo constructs a TicketRepo bound to the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// ListByEvent returns every materialized ticket for the event, optionally
// filtered by schedule.
func (r *TicketRepo) ListByEvent(ctx context.Context, eventID uint64, scheduleID *uint64) ([]Ticket, error) {
	var (
		rows *sql.Rows
		err  error
	)
	const cols = `id, event_id, schedule_id, section, row_label, seat_number, grade, price_cents`
	if scheduleID != nil {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+cols+` FROM tickets WHERE event_id = ? AND schedule_id = ?`, eventID, *scheduleID)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+cols+` FROM tickets WHERE event_id = ?`, eventID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// FindByPosition looks up a materialized ticket for (event, schedule, row,
// number) without locking, for read paths that only need to know whether a
// real ticket id already exists (seat-map projection, the lock phase).
func (r *TicketRepo) FindByPosition(ctx context.Context, eventID uint64, scheduleID *uint64, row string, number uint32) (*Ticket, error) {
	const q = `SELECT id, event_id, schedule_id, section, row_label, seat_number, grade, price_cents
	           FROM tickets
	           WHERE event_id = ? AND row_label = ? AND seat_number = ?
	             AND (schedule_id <=> ?)`
	var sid any
	if scheduleID != nil {
		sid = *scheduleID
	}
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, eventID, row, number, sid))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// FindByPositionTx looks up a materialized ticket for (event, schedule, row,
// number) within tx, with a row-level exclusive lock so concurrent
// commits serialize on this seat.
func (r *TicketRepo) FindByPositionTx(ctx context.Context, tx *sql.Tx, eventID uint64, scheduleID *uint64, row string, number uint32) (*Ticket, error) {
	const q = `SELECT id, event_id, schedule_id, section, row_label, seat_number, grade, price_cents
	           FROM tickets
	           WHERE event_id = ? AND row_label = ? AND seat_number = ?
	             AND (schedule_id <=> ?)
	           FOR UPDATE`
	var sid any
	if scheduleID != nil {
		sid = *scheduleID
	}
	t, err := scanTicket(tx.QueryRowContext(ctx, q, eventID, row, number, sid))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// CreateTx materializes a new ticket row within tx and populates its ID.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *Ticket) error {
	const q = `INSERT INTO tickets (event_id, schedule_id, section, row_label, seat_number, grade, price_cents)
	           VALUES (?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q, t.EventID, t.ScheduleID, t.Section, t.RowLabel, t.SeatNumber, t.Grade, t.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// BookedTicketIDsTx returns the subset of ticketIDs that currently have a
// PENDING or CONFIRMED booking, within tx.
func (r *TicketRepo) BookedTicketIDsTx(ctx context.Context, tx *sql.Tx, ticketIDs []uint64) (map[uint64]bool, error) {
	return bookedTicketIDs(ctx, tx, ticketIDs)
}

// BookedTicketIDs is the non-transactional counterpart, for read paths
// like the seat-map projection that don't need row-level locking.
func (r *TicketRepo) BookedTicketIDs(ctx context.Context, ticketIDs []uint64) (map[uint64]bool, error) {
	return bookedTicketIDs(ctx, r.db, ticketIDs)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func bookedTicketIDs(ctx context.Context, q queryer, ticketIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool)
	if len(ticketIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(ticketIDs))
	args := make([]any, 0, len(ticketIDs))
	for i, id := range ticketIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := `SELECT ticket_id FROM bookings WHERE status IN ('PENDING','CONFIRMED') AND ticket_id IN (` +
		strings.Join(placeholders, ",") + `)`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func scanTicket(row rowScanner) (*Ticket, error) {
	var t Ticket
	var scheduleID sql.NullInt64
	var section, rowLabel sql.NullString
	var seatNumber sql.NullInt64
	if err := row.Scan(&t.ID, &t.EventID, &scheduleID, &section, &rowLabel, &seatNumber, &t.Grade, &t.PriceCents); err != nil {
		return nil, err
	}
	if scheduleID.Valid {
		v := uint64(scheduleID.Int64)
		t.ScheduleID = &v
	}
	if section.Valid {
		t.Section = &section.String
	}
	if rowLabel.Valid {
		t.RowLabel = &rowLabel.String
	}
	if seatNumber.Valid {
		v := uint32(seatNumber.Int64)
		t.SeatNumber = &v
	}
	return &t, nil
}
