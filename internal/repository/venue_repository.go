package repository

import (
	"context"
	"database/sql"
	"time"
)

// Venue mirrors the 'venues' table.
type Venue struct {
	ID          uint64
	Name        string
	Address     *string
	SeatMapJSON *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VenueRepo provides data access for venues.
type VenueRepo struct{ db *sql.DB }

// NewVenueRepo constructs a VenueRepo bound to the given DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// Create inserts a venue and populates its generated ID.
func (r *VenueRepo) Create(ctx context.Context, v *Venue) error {
	const q = `INSERT INTO venues (name, address, seat_map) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.Name, v.Address, v.SeatMapJSON)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID fetches a venue by id.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*Venue, error) {
	const q = `SELECT id, name, address, seat_map, created_at, updated_at FROM venues WHERE id = ? LIMIT 1`
	return scanVenueRow(r.db.QueryRowContext(ctx, q, id))
}

// List returns every venue ordered by id, for the admin venue listing and
// the public venue picker.
func (r *VenueRepo) List(ctx context.Context) ([]Venue, error) {
	const q = `SELECT id, name, address, seat_map, created_at, updated_at FROM venues ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Venue
	for rows.Next() {
		v, err := scanVenueRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Update overwrites a venue's mutable fields.
func (r *VenueRepo) Update(ctx context.Context, id uint64, name string, address, seatMap *string) error {
	const q = `UPDATE venues SET name=?, address=?, seat_map=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`
	res, err := r.db.ExecContext(ctx, q, name, address, seatMap, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a venue, failing with ErrConflict if any event still
// references it.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE venue_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM venues WHERE id=?`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanVenueRow(row rowScanner) (*Venue, error) {
	var v Venue
	var addr, seatMap sql.NullString
	if err := row.Scan(&v.ID, &v.Name, &addr, &seatMap, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if addr.Valid {
		v.Address = &addr.String
	}
	if seatMap.Valid {
		v.SeatMapJSON = &seatMap.String
	}
	return &v, nil
}
