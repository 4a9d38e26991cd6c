package model

import "time"

// Venue represents a physical or virtual location hosting events.
// SeatMapJSON is the raw seat-map document as stored in the database;
// it is a loosely structured JSON blob that may define sections and
// seats_per_row, or may be empty for venues seeded before that
// convention existed.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – venue name.
//  Address     – optional street address.
//  SeatMapJSON – raw JSON seat-map document (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Venue struct {
	ID          uint64    // venues.id
	Name        string    // venues.name
	Address     *string   // venues.address (nullable)
	SeatMapJSON *string   // venues.seat_map (nullable JSON)
	CreatedAt   time.Time // venues.created_at
	UpdatedAt   time.Time // venues.updated_at
}

// SeatMap is the parsed form of Venue.SeatMapJSON used by the
// reservation engine's seat-map projection.
type SeatMap struct {
	Sections     []string `json:"sections"`
	Section      string   `json:"section"`
	SeatsPerRow  int      `json:"seats_per_row"`
}
