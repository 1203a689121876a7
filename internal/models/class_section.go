package models

import (
	"fmt"
	"time"
)

// ClassSection is a (grade, section, subject) combination, optionally owned
// by one teacher. EnrollmentCount feeds room capacity checks.
type ClassSection struct {
	ID              string    `db:"id" json:"id"`
	Grade           string    `db:"grade" json:"grade"`
	Section         string    `db:"section" json:"section"`
	Subject         string    `db:"subject" json:"subject"`
	TeacherID       *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	EnrollmentCount int       `db:"enrollment_count" json:"enrollment_count"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName renders the human-facing section label used in conflict
// messages and schedule views.
func (c ClassSection) DisplayName() string {
	return fmt.Sprintf("%s-%s (%s)", c.Grade, c.Section, c.Subject)
}
