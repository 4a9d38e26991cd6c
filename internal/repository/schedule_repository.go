package repository

import (
	"context"
	"database/sql"
	"time"
)

// Schedule mirrors the 'schedules' table.
type Schedule struct {
	ID             uint64
	EventID        uint64
	StartAt        time.Time
	EndAt          *time.Time
	RunningMinutes *uint32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScheduleRepo provides data access for schedules.
type ScheduleRepo struct{ db *sql.DB }

// NewScheduleRepo constructs a ScheduleRepo bound to the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// Create inserts a schedule and populates its generated ID.
func (r *ScheduleRepo) Create(ctx context.Context, s *Schedule) error {
	const q = `INSERT INTO schedules (event_id, start_at, end_at, running_minutes) VALUES (?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, s.EventID, s.StartAt, s.EndAt, s.RunningMinutes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a schedule by id.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*Schedule, error) {
	const q = `SELECT id, event_id, start_at, end_at, running_minutes, created_at, updated_at
	           FROM schedules WHERE id = ? LIMIT 1`
	return scanScheduleRow(r.db.QueryRowContext(ctx, q, id))
}

// BelongsToEvent reports whether scheduleID is a schedule of eventID.
func (r *ScheduleRepo) BelongsToEvent(ctx context.Context, scheduleID, eventID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM schedules WHERE id=? AND event_id=? LIMIT 1`, scheduleID, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByEvent returns all schedules for an event ordered by start time.
func (r *ScheduleRepo) ListByEvent(ctx context.Context, eventID uint64) ([]Schedule, error) {
	const q = `SELECT id, event_id, start_at, end_at, running_minutes, created_at, updated_at
	           FROM schedules WHERE event_id = ? ORDER BY start_at ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Schedule
	for rows.Next() {
		s, err := scanScheduleRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateByIDAndEvent overwrites a schedule's mutable fields, scoped to the
// given event so an owner cannot edit another owner's schedule by guessing
// an id.
func (r *ScheduleRepo) UpdateByIDAndEvent(ctx context.Context, id, eventID uint64, startAt time.Time, endAt *time.Time, runningMinutes *uint32) error {
	const q = `UPDATE schedules SET start_at=?, end_at=?, running_minutes=?, updated_at=CURRENT_TIMESTAMP
	           WHERE id=? AND event_id=?`
	res, err := r.db.ExecContext(ctx, q, startAt, endAt, runningMinutes, id, eventID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByIDAndEvent removes a schedule, failing with ErrConflict if any
// booking still references a ticket tied to it.
func (r *ScheduleRepo) DeleteByIDAndEvent(ctx context.Context, id, eventID uint64) error {
	const qCount = `SELECT COUNT(*) FROM bookings b
	                JOIN tickets t ON t.id = b.ticket_id
	                WHERE t.schedule_id = ? AND b.status IN ('PENDING','CONFIRMED')`
	var n int
	if err := r.db.QueryRowContext(ctx, qCount, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id=? AND event_id=?`, id, eventID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduleRow(row rowScanner) (*Schedule, error) {
	var s Schedule
	var endAt sql.NullTime
	var runMin sql.NullInt64
	if err := row.Scan(&s.ID, &s.EventID, &s.StartAt, &endAt, &runMin, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if endAt.Valid {
		s.EndAt = &endAt.Time
	}
	if runMin.Valid {
		v := uint32(runMin.Int64)
		s.RunningMinutes = &v
	}
	return &s, nil
}
