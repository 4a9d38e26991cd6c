// Package queue implements the fair batched admission queue (engine.go)
// and, separately, the fire-and-forget booking notification bus built on
// RabbitMQ (event.go, consumer.go). The two share a package because both
// are "queueing" concerns, but they are otherwise independent: the
// admission queue is Redis-backed and synchronous with the request path,
// the notification bus is AMQP-backed and asynchronous.
package queue

// BookingConfirmedEvent is published when a reservation is successfully
// confirmed. It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64 `json:"booking_id"`
	UserID           uint64 `json:"user_id"`
	EventID          uint64 `json:"event_id"`
	EventTitle       string `json:"event_title"`
	ScheduleID       uint64 `json:"schedule_id,omitempty"`
	TicketID         uint64 `json:"ticket_id"`
	SeatLabel        string `json:"seat_label"`
	Grade            string `json:"grade"`
	TotalPriceCents  uint32 `json:"total_price_cents"`
	ReceiptMethod    string `json:"receipt_method"`
	ConfirmedAt      string `json:"confirmed_at"`
}
