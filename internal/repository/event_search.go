package repository

import (
	"context"
	"strings"
)

// EventSearchQuery defines filters and pagination for the public event
// search endpoint.
type EventSearchQuery struct {
	Title      string
	Venue      string
	Genre      string
	TimeFilter string // "upcoming" (default), "active", "any"
	Page       int
	PageSize   int
}

// PublicEventRow is the flattened, join-denormalized row returned to
// unauthenticated search clients.
type PublicEventRow struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	Genre     string `json:"genre"`
	IsHot     bool   `json:"is_hot"`
	VenueID   uint64 `json:"venue_id"`
	VenueName string `json:"venue_name"`
}

// SearchUpcoming returns events matching q, joined against their venue so
// callers can filter/display without a second round trip.
func (r *EventRepo) SearchUpcoming(ctx context.Context, q EventSearchQuery) ([]PublicEventRow, int64, error) {
	where := []string{}
	args := []any{}

	switch strings.ToLower(q.TimeFilter) {
	case "any":
	case "active":
		where = append(where, "(e.sales_end_at IS NULL OR e.sales_end_at >= NOW())")
	default:
		where = append(where, "(e.sales_open_at IS NULL OR e.sales_open_at <= NOW())",
			"(e.sales_end_at IS NULL OR e.sales_end_at >= NOW())")
	}

	if q.Title != "" {
		where = append(where, "LOWER(e.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Title)+"%")
	}
	if q.Venue != "" {
		where = append(where, "LOWER(v.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Venue)+"%")
	}
	if q.Genre != "" {
		where = append(where, "e.genre = ?")
		args = append(args, q.Genre)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM events e JOIN venues v ON v.id = e.venue_id WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT e.id, e.title, e.genre, e.is_hot, v.id, v.name
	            FROM events e JOIN venues v ON v.id = e.venue_id
	            WHERE ` + cond + `
	            ORDER BY e.id DESC
	            LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicEventRow, 0, limit)
	for rows.Next() {
		var d PublicEventRow
		if err := rows.Scan(&d.ID, &d.Title, &d.Genre, &d.IsHot, &d.VenueID, &d.VenueName); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
