package model

import "time"

// TicketGrade enumerates the seat classes recognized by the price
// catalog and ticket rows. Any grade string outside this set is
// rejected as a ValidationError when a ticket is materialized.
type TicketGrade string

const (
	GradeVIP TicketGrade = "VIP"
	GradeR   TicketGrade = "R"
	GradeS   TicketGrade = "S"
	GradeA   TicketGrade = "A"
)

// ValidGrade reports whether g is one of the recognized ticket grades.
func ValidGrade(g string) bool {
	switch TicketGrade(g) {
	case GradeVIP, GradeR, GradeS, GradeA:
		return true
	default:
		return false
	}
}

// SeatGrade defines the price and class for a row of a schedule.
// ScheduleID nil means the grade applies to every schedule of the
// event.
//
// Fields:
//  ID         – primary key identifier.
//  EventID    – event this grade belongs to.
//  ScheduleID – schedule this grade is scoped to, or nil for all schedules.
//  RowLabel   – row identifier this grade prices (e.g. "1", "A").
//  Grade      – seat class.
//  PriceCents – price in cents.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type SeatGrade struct {
	ID         uint64    // seat_grades.id
	EventID    uint64    // seat_grades.event_id
	ScheduleID *uint64   // seat_grades.schedule_id (nullable)
	RowLabel   string    // seat_grades.row_label
	Grade      string    // seat_grades.grade
	PriceCents uint32    // seat_grades.price_cents
	CreatedAt  time.Time // seat_grades.created_at
	UpdatedAt  time.Time // seat_grades.updated_at
}
