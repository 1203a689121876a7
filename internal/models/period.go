package models

import "time"

// Period is process-wide reference data: an ordinal period number with its
// time-of-day range. Bookings reference periods by id, forms by number.
type Period struct {
	ID           string    `db:"id" json:"id"`
	PeriodNumber int       `db:"period_number" json:"period_number"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
