package model

import "time"

// Ticket represents a concrete seat instance for an event, optionally
// scoped to a single schedule. Tickets are lazily materialized: a row
// only exists once a booking attempt actually reaches the
// transactional commit phase. Until then, the seat is represented by
// a virtual (negative, never persisted) id derived by the
// reservation engine.
//
// Fields:
//  ID          – primary key identifier. Always positive once persisted.
//  EventID     – event this ticket belongs to.
//  ScheduleID  – schedule this ticket is scoped to (nullable).
//  Section     – seat-map section label (nullable).
//  RowLabel    – row identifier (nullable).
//  SeatNumber  – seat number within the row (nullable).
//  Grade       – seat class, one of TicketGrade.
//  PriceCents  – price in cents at the time the ticket was materialized.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Ticket struct {
	ID         uint64    // tickets.id
	EventID    uint64    // tickets.event_id
	ScheduleID *uint64   // tickets.schedule_id (nullable)
	Section    *string   // tickets.section (nullable)
	RowLabel   *string   // tickets.row_label (nullable)
	SeatNumber *uint32   // tickets.seat_number (nullable)
	Grade      string    // tickets.grade
	PriceCents uint32    // tickets.price_cents
	CreatedAt  time.Time // tickets.created_at
	UpdatedAt  time.Time // tickets.updated_at
}

// TicketView is the read-only projection returned by the seat-map
// listing endpoint. ID is nil for seats that have not yet been
// materialized into a real Ticket row.
type TicketView struct {
	ID         *int64 `json:"id"`
	EventID    uint64 `json:"event_id"`
	SeatSection string `json:"seat_section,omitempty"`
	SeatRow    string `json:"seat_row,omitempty"`
	SeatNumber uint32 `json:"seat_number,omitempty"`
	Grade      string `json:"grade"`
	PriceCents uint32 `json:"price"`
	Available  bool   `json:"available"`
}
