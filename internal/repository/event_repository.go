package repository

import (
	"context"
	"database/sql"
	"time"
)

// Event mirrors the 'events' table.
type Event struct {
	ID           uint64
	OwnerID      uint64
	VenueID      uint64
	Title        string
	Genre        string
	IsHot        bool
	QueueEnabled bool
	SalesOpenAt  *time.Time
	SalesEndAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EventRepo provides data access for events.
type EventRepo struct{ db *sql.DB }

// NewEventRepo constructs an EventRepo bound to the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Create inserts an event and populates its generated ID.
func (r *EventRepo) Create(ctx context.Context, e *Event) error {
	const q = `INSERT INTO events (owner_id, venue_id, title, genre, is_hot, queue_enabled, sales_open_at, sales_end_at)
	           VALUES (?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, e.OwnerID, e.VenueID, e.Title, e.Genre, e.IsHot, e.QueueEnabled, e.SalesOpenAt, e.SalesEndAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByID fetches an event by id without ownership checks.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*Event, error) {
	const q = `SELECT id, owner_id, venue_id, title, genre, is_hot, queue_enabled, sales_open_at, sales_end_at, created_at, updated_at
	           FROM events WHERE id = ? LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDAndOwner fetches an event ensuring it belongs to ownerID.
func (r *EventRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Event, error) {
	const q = `SELECT id, owner_id, venue_id, title, genre, is_hot, queue_enabled, sales_open_at, sales_end_at, created_at, updated_at
	           FROM events WHERE id = ? AND owner_id = ? LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id, ownerID))
}

func (r *EventRepo) scanOne(row *sql.Row) (*Event, error) {
	var e Event
	var salesOpen, salesEnd sql.NullTime
	err := row.Scan(&e.ID, &e.OwnerID, &e.VenueID, &e.Title, &e.Genre, &e.IsHot, &e.QueueEnabled,
		&salesOpen, &salesEnd, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if salesOpen.Valid {
		e.SalesOpenAt = &salesOpen.Time
	}
	if salesEnd.Valid {
		e.SalesEndAt = &salesEnd.Time
	}
	return &e, nil
}

// List returns events ordered by id, paginated by skip/limit, used by the
// public listing endpoint behind the read-through cache.
func (r *EventRepo) List(ctx context.Context, skip, limit int) ([]Event, error) {
	const q = `SELECT id, owner_id, venue_id, title, genre, is_hot, queue_enabled, sales_open_at, sales_end_at, created_at, updated_at
	           FROM events ORDER BY id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		var salesOpen, salesEnd sql.NullTime
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.VenueID, &e.Title, &e.Genre, &e.IsHot, &e.QueueEnabled,
			&salesOpen, &salesEnd, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if salesOpen.Valid {
			e.SalesOpenAt = &salesOpen.Time
		}
		if salesEnd.Valid {
			e.SalesEndAt = &salesEnd.Time
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateByIDAndOwner updates the mutable fields of an event owned by ownerID.
func (r *EventRepo) UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, title, genre string, isHot, queueEnabled bool) error {
	const q = `UPDATE events SET title=?, genre=?, is_hot=?, queue_enabled=?, updated_at=CURRENT_TIMESTAMP
	           WHERE id=? AND owner_id=?`
	res, err := r.db.ExecContext(ctx, q, title, genre, isHot, queueEnabled, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByIDAndOwner removes an event owned by ownerID, failing with
// ErrConflict if bookings still reference any of its tickets.
func (r *EventRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	const qCount = `SELECT COUNT(*) FROM bookings b
	                JOIN tickets t ON t.id = b.ticket_id
	                WHERE t.event_id = ? AND b.status IN ('PENDING','CONFIRMED')`
	var n int
	if err := r.db.QueryRowContext(ctx, qCount, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
