package model

import (
	"fmt"
	"time"
)

// BookingStatus enumerates the lifecycle states of a Booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// ReceiptMethod enumerates how a confirmed booking's tickets are
// delivered to the user.
type ReceiptMethod string

const (
	ReceiptDelivery ReceiptMethod = "delivery"
	ReceiptOnSite   ReceiptMethod = "on_site"
)

// Booking records a user's claim on one ticket. Multi-seat requests
// produce one Booking row per seat, all created in the same DB
// transaction so the all-or-nothing commit is a single atomic unit.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – user who made the booking.
//  TicketID       – ticket being booked.
//  ScheduleID     – schedule the booking is for (nullable).
//  Status         – lifecycle state.
//  TotalPriceCents – price paid for this single ticket, in cents.
//  ReceiptMethod  – delivery or on_site.
//  DeliveryInfo   – free-form delivery address/notes (nullable).
//  TransactionID  – external payment reference (nullable, unused by this core).
//  BookedAt       – server-clock timestamp of the commit.
type Booking struct {
	ID              uint64     // bookings.id
	UserID          uint64     // bookings.user_id
	TicketID        uint64     // bookings.ticket_id
	ScheduleID      *uint64    // bookings.schedule_id (nullable)
	Status          string     // bookings.status
	TotalPriceCents uint32     // bookings.total_price_cents
	ReceiptMethod   string     // bookings.receipt_method
	DeliveryInfo    *string    // bookings.delivery_info (nullable)
	TransactionID   *string    // bookings.transaction_id (nullable)
	BookedAt        time.Time  // bookings.booked_at
}

// ReservationNumber formats the booking id the way the public API
// presents it: "M" followed by a zero-padded 9-digit booking id.
func (b Booking) ReservationNumber() string {
	return fmt.Sprintf("M%09d", b.ID)
}
