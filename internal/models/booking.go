package models

import "time"

// Weekday values accepted for bookings. The cycle covers school days only.
const (
	Monday    = "MONDAY"
	Tuesday   = "TUESDAY"
	Wednesday = "WEDNESDAY"
	Thursday  = "THURSDAY"
	Friday    = "FRIDAY"
)

// Weekdays lists the valid booking days in cycle order.
var Weekdays = []string{Monday, Tuesday, Wednesday, Thursday, Friday}

// Booking commits a class section to a room at one point in the
// weekly/monthly cycle.
type Booking struct {
	ID             string    `db:"id" json:"id"`
	ClassSectionID string    `db:"class_section_id" json:"class_section_id"`
	RoomID         *string   `db:"room_id" json:"room_id,omitempty"`
	PeriodID       string    `db:"period_id" json:"period_id"`
	DayOfWeek      string    `db:"day_of_week" json:"day_of_week"`
	WeekNumber     int       `db:"week_number" json:"week_number"`
	MonthNumber    int       `db:"month_number" json:"month_number"`
	Deleted        bool      `db:"deleted" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// BookingWithDetails joins display fields needed for conflict reporting
// and schedule views. Room fields are nullable because a room may have
// been removed after the booking was made.
type BookingWithDetails struct {
	Booking
	ClassSectionName string  `db:"class_section_name" json:"class_section_name"`
	TeacherID        *string `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherName      *string `db:"teacher_name" json:"teacher_name,omitempty"`
	RoomName         *string `db:"room_name" json:"room_name,omitempty"`
	PeriodNumber     int     `db:"period_number" json:"period_number"`
}

// BookingFilter describes query params for booking lookups.
type BookingFilter struct {
	DaysIn         []string
	WeeksIn        []int
	PeriodID       string
	RoomID         string
	TeacherID      string
	ClassSectionID string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// SlotKey identifies a potential occupancy point in the cycle. RoomID may
// be empty when probing availability across the whole catalog.
type SlotKey struct {
	RoomID       string `json:"room_id,omitempty"`
	DayOfWeek    string `json:"day_of_week"`
	PeriodNumber int    `json:"period_number"`
	WeekNumber   int    `json:"week_number"`
}

// ConflictKind distinguishes why an existing booking collides with a
// candidate slot.
type ConflictKind string

const (
	ConflictRoom    ConflictKind = "ROOM"
	ConflictTeacher ConflictKind = "TEACHER"
)

// Conflict names an existing booking that blocks a candidate slot.
type Conflict struct {
	Slot             SlotKey      `json:"slot"`
	BookingID        string       `json:"booking_id"`
	ClassSectionName string       `json:"class_section_name"`
	RoomName         string       `json:"room_name,omitempty"`
	Kind             ConflictKind `json:"kind"`
}

// ConflictReport aggregates conflicts across one candidate batch.
type ConflictReport struct {
	Conflicts []Conflict `json:"conflicts"`
}

// HasConflicts reports whether any candidate slot collided.
func (r *ConflictReport) HasConflicts() bool {
	return r != nil && len(r.Conflicts) > 0
}

// BookingConflictError is returned when a candidate batch collides with
// existing bookings.
type BookingConflictError struct {
	Message string          `json:"message"`
	Report  *ConflictReport `json:"report"`
}

// Error implements the error interface for conflict errors.
func (e *BookingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
