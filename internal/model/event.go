package model

import "time"

// Event represents a performance offering such as a concert, play
// or musical. A hot event (IsHot true, or QueueEnabled explicitly
// set) gates ticket and booking access behind the admission queue.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user id of the account managing this event.
//  VenueID       – venue hosting the event.
//  Title         – display title.
//  Genre         – one of the canonical genre labels (뮤지컬, 연극, 콘서트)
//                  or an extension value.
//  IsHot         – whether the event is popular enough to require queueing.
//  QueueEnabled  – explicit override forcing queue admission regardless
//                  of IsHot.
//  SalesOpenAt   – when ticket sales open (nullable).
//  SalesEndAt    – when ticket sales close (nullable).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Event struct {
	ID           uint64     // events.id
	OwnerID      uint64     // events.owner_id
	VenueID      uint64     // events.venue_id
	Title        string     // events.title
	Genre        string     // events.genre
	IsHot        bool       // events.is_hot
	QueueEnabled bool       // events.queue_enabled
	SalesOpenAt  *time.Time // events.sales_open_at (nullable)
	SalesEndAt   *time.Time // events.sales_end_at (nullable)
	CreatedAt    time.Time  // events.created_at
	UpdatedAt    time.Time  // events.updated_at
}

// QueueGated reports whether this event requires admission queue
// tokens before tickets or bookings can be accessed.
func (e Event) QueueGated() bool {
	return e.IsHot || e.QueueEnabled
}

// Schedule is a specific performance date/time for an event. An
// event has at least one schedule; a booking is for exactly one
// schedule.
//
// Fields:
//  ID             – primary key identifier.
//  EventID        – event this schedule belongs to.
//  StartAt        – performance start time.
//  EndAt          – performance end time (nullable).
//  RunningMinutes – running time in minutes (nullable).
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Schedule struct {
	ID             uint64     // schedules.id
	EventID        uint64     // schedules.event_id
	StartAt        time.Time  // schedules.start_at
	EndAt          *time.Time // schedules.end_at (nullable)
	RunningMinutes *uint32    // schedules.running_minutes (nullable)
	CreatedAt      time.Time  // schedules.created_at
	UpdatedAt      time.Time  // schedules.updated_at
}
