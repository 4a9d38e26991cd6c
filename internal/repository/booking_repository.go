package repository

import (
	"context"
	"database/sql"
	"time"
)

// Booking mirrors the 'bookings' table.
type Booking struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user_id"`
	TicketID        uint64    `json:"ticket_id"`
	ScheduleID      *uint64   `json:"schedule_id"`
	Status          string    `json:"status"`
	TotalPriceCents uint32    `json:"total_price"`
	ReceiptMethod   string    `json:"receipt_method"`
	DeliveryInfo    *string   `json:"delivery_info"`
	TransactionID   *string   `json:"transaction_id"`
	BookedAt        time.Time `json:"booked_at"`
}

// BookingRepo provides data access for bookings.
type BookingRepo struct{ db *sql.DB }

// NewBookingRepo constructs a BookingRepo bound to the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking row within tx and populates its ID and
// BookedAt timestamp from the server clock.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *Booking) error {
	const q = `INSERT INTO bookings (user_id, ticket_id, schedule_id, status, total_price_cents, receipt_method, delivery_info, booked_at)
	           VALUES (?,?,?,?,?,?,?, UTC_TIMESTAMP())`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.TicketID, b.ScheduleID, b.Status, b.TotalPriceCents, b.ReceiptMethod, b.DeliveryInfo)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.BookedAt = time.Now().UTC()
	return nil
}

// ListByUser returns all bookings for a user ordered by most recent first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]Booking, error) {
	const q = `SELECT id, user_id, ticket_id, schedule_id, status, total_price_cents, receipt_method, delivery_info, booked_at
	           FROM bookings WHERE user_id = ? ORDER BY booked_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListByEventAndOwner returns every booking against a ticket of the given
// event, scoped to events owned by ownerID. Read-only: the reservation
// lifecycle has no cancel/refund path (§1 Non-goals), so this exists purely
// for the owner's sales dashboard.
func (r *BookingRepo) ListByEventAndOwner(ctx context.Context, eventID, ownerID uint64) ([]Booking, error) {
	const q = `SELECT b.id, b.user_id, b.ticket_id, b.schedule_id, b.status, b.total_price_cents,
	                  b.receipt_method, b.delivery_info, b.booked_at
	           FROM bookings b
	           JOIN tickets t ON t.id = b.ticket_id
	           JOIN events e ON e.id = t.event_id
	           WHERE t.event_id = ? AND e.owner_id = ?
	           ORDER BY b.booked_at DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var scheduleID sql.NullInt64
	var deliveryInfo sql.NullString
	if err := row.Scan(&b.ID, &b.UserID, &b.TicketID, &scheduleID, &b.Status, &b.TotalPriceCents,
		&b.ReceiptMethod, &deliveryInfo, &b.BookedAt); err != nil {
		return nil, err
	}
	if scheduleID.Valid {
		v := uint64(scheduleID.Int64)
		b.ScheduleID = &v
	}
	if deliveryInfo.Valid {
		b.DeliveryInfo = &deliveryInfo.String
	}
	return &b, nil
}
