package repository

import (
	"context"
	"database/sql"
)

// SeatGrade mirrors the 'seat_grades' table.
type SeatGrade struct {
	ID         uint64
	EventID    uint64
	ScheduleID *uint64
	RowLabel   string
	Grade      string
	PriceCents uint32
}

// SeatGradeRepo provides data access for seat grades.
type SeatGradeRepo struct{ db *sql.DB }

// NewSeatGradeRepo constructs a SeatGradeRepo bound to the given DB handle.
func NewSeatGradeRepo(db *sql.DB) *SeatGradeRepo { return &SeatGradeRepo{db: db} }

// Create inserts a seat grade row and populates its generated ID.
func (r *SeatGradeRepo) Create(ctx context.Context, g *SeatGrade) error {
	const q = `INSERT INTO seat_grades (event_id, schedule_id, row_label, grade, price_cents) VALUES (?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, g.EventID, g.ScheduleID, g.RowLabel, g.Grade, g.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// ListApplicable returns seat grades for an event that apply to scheduleID:
// rows with a matching schedule_id plus rows with schedule_id IS NULL
// (event-wide grades), keyed by row_label by the caller. When
// scheduleID is nil, every grade row for the event is returned since
// no specific schedule filter applies.
func (r *SeatGradeRepo) ListApplicable(ctx context.Context, eventID uint64, scheduleID *uint64) ([]SeatGrade, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if scheduleID != nil {
		const q = `SELECT id, event_id, schedule_id, row_label, grade, price_cents
		           FROM seat_grades
		           WHERE event_id = ? AND (schedule_id IS NULL OR schedule_id = ?)`
		rows, err = r.db.QueryContext(ctx, q, eventID, *scheduleID)
	} else {
		const q = `SELECT id, event_id, schedule_id, row_label, grade, price_cents
		           FROM seat_grades WHERE event_id = ?`
		rows, err = r.db.QueryContext(ctx, q, eventID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SeatGrade
	for rows.Next() {
		var g SeatGrade
		var schedID sql.NullInt64
		if err := rows.Scan(&g.ID, &g.EventID, &schedID, &g.RowLabel, &g.Grade, &g.PriceCents); err != nil {
			return nil, err
		}
		if schedID.Valid {
			v := uint64(schedID.Int64)
			g.ScheduleID = &v
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetByIDAndEvent fetches a seat grade scoped to the owning event.
func (r *SeatGradeRepo) GetByIDAndEvent(ctx context.Context, id, eventID uint64) (*SeatGrade, error) {
	const q = `SELECT id, event_id, schedule_id, row_label, grade, price_cents
	           FROM seat_grades WHERE id = ? AND event_id = ? LIMIT 1`
	var g SeatGrade
	var schedID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id, eventID).Scan(&g.ID, &g.EventID, &schedID, &g.RowLabel, &g.Grade, &g.PriceCents)
	if err != nil {
		return nil, err
	}
	if schedID.Valid {
		v := uint64(schedID.Int64)
		g.ScheduleID = &v
	}
	return &g, nil
}

// UpdateByIDAndEvent overwrites a seat grade's mutable fields, scoped to the
// owning event.
func (r *SeatGradeRepo) UpdateByIDAndEvent(ctx context.Context, id, eventID uint64, scheduleID *uint64, rowLabel, grade string, priceCents uint32) error {
	const q = `UPDATE seat_grades SET schedule_id=?, row_label=?, grade=?, price_cents=?
	           WHERE id=? AND event_id=?`
	res, err := r.db.ExecContext(ctx, q, scheduleID, rowLabel, grade, priceCents, id, eventID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByIDAndEvent removes a seat grade, scoped to the owning event. Seat
// grades are a price catalog, not a booking reference, so no conflict check
// is needed: removing one only stops new virtual seats from using it.
func (r *SeatGradeRepo) DeleteByIDAndEvent(ctx context.Context, id, eventID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seat_grades WHERE id=? AND event_id=?`, id, eventID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
