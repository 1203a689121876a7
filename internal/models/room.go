package models

import "time"

// Room is a physical room that bookings may occupy. Capacity is advisory;
// a nil capacity means unlimited.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Building  *string   `db:"building" json:"building,omitempty"`
	Floor     *string   `db:"floor" json:"floor,omitempty"`
	Capacity  *int      `db:"capacity" json:"capacity,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomAvailability classifies a room for a candidate batch.
type RoomAvailability string

const (
	RoomAvailableSufficient RoomAvailability = "available_sufficient"
	RoomAvailableTooSmall   RoomAvailability = "available_too_small"
	RoomBooked              RoomAvailability = "booked"
)

// RoomSuggestion pairs a room with its availability for a candidate batch.
// Conflicts is populated only when the room is booked.
type RoomSuggestion struct {
	Room      Room             `json:"room"`
	Status    RoomAvailability `json:"status"`
	Conflicts []Conflict       `json:"conflicts,omitempty"`
}
