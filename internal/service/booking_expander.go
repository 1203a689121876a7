package service

import (
	"github.com/walideltayeh/school-booking-api/internal/models"
)

// SchedulingRequest is the expansion input: one class, one room, one period,
// and the day/week/month selection sets. Months may be empty, which means
// every month of the year.
type SchedulingRequest struct {
	ClassSectionID string   `json:"class_section_id" validate:"required"`
	RoomID         string   `json:"room_id" validate:"required"`
	PeriodNumber   int      `json:"period_number" validate:"required,min=1"`
	Days           []string `json:"days" validate:"required,min=1,dive,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY"`
	Weeks          []int    `json:"weeks" validate:"required,min=1,dive,min=1,max=4"`
	Months         []int    `json:"months" validate:"omitempty,dive,min=1,max=12"`

	// ExcludeBookingID removes one booking from conflict consideration when
	// the commit replaces an existing booking.
	ExcludeBookingID string `json:"exclude_booking_id,omitempty"`
}

var allMonths = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

// monthsOrDefault applies the unspecified-month-means-every-month policy.
// Admin forms rely on it to get year-round scheduling without selecting
// months one by one.
func monthsOrDefault(months []int) []int {
	if len(months) == 0 {
		return allMonths
	}
	return months
}

// BookingExpander turns one scheduling request into the full candidate set.
type BookingExpander struct{}

// Expand produces the days × weeks × months cartesian product. No
// deduplication happens here; cardinality is exactly
// len(days) * len(weeks) * len(months). Pure, no I/O.
func (BookingExpander) Expand(req SchedulingRequest) []models.Booking {
	months := monthsOrDefault(req.Months)
	roomID := req.RoomID

	bookings := make([]models.Booking, 0, len(req.Days)*len(req.Weeks)*len(months))
	for _, day := range req.Days {
		for _, week := range req.Weeks {
			for _, month := range months {
				bookings = append(bookings, models.Booking{
					ClassSectionID: req.ClassSectionID,
					RoomID:         &roomID,
					DayOfWeek:      day,
					WeekNumber:     week,
					MonthNumber:    month,
				})
			}
		}
	}
	return bookings
}

// SlotKeys projects the request onto its days × weeks occupancy points.
// Conflict semantics are month-agnostic, so months collapse here.
func (BookingExpander) SlotKeys(req SchedulingRequest) []models.SlotKey {
	keys := make([]models.SlotKey, 0, len(req.Days)*len(req.Weeks))
	for _, day := range req.Days {
		for _, week := range req.Weeks {
			keys = append(keys, models.SlotKey{
				RoomID:       req.RoomID,
				DayOfWeek:    day,
				PeriodNumber: req.PeriodNumber,
				WeekNumber:   week,
			})
		}
	}
	return keys
}
