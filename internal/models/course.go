package models

import "time"

// CourseStatusValue represents the application stage of one course enrollment.
type CourseStatusValue string

// Possible course status values.
const (
	CourseStatusProvisional CourseStatusValue = "provisional"
	CourseStatusConfirmed   CourseStatusValue = "confirmed"
	CourseStatusInProgress  CourseStatusValue = "in-progress"
	CourseStatusCompleted   CourseStatusValue = "completed"
)

// Valid reports whether the value belongs to the status enumeration.
func (v CourseStatusValue) Valid() bool {
	switch v {
	case CourseStatusProvisional, CourseStatusConfirmed, CourseStatusInProgress, CourseStatusCompleted:
		return true
	}
	return false
}

// CourseEnrollment captures a student's enrollment in a named course.
// StudentID is set at creation and immutable thereafter; only the course name
// is mutable through the update path. Status is attached in memory by the
// assembler and is nil until a status row is joined.
type CourseEnrollment struct {
	ID         string        `db:"id" json:"id"`
	StudentID  string        `db:"student_id" json:"student_id"`
	CourseName string        `db:"course_name" json:"course_name" validate:"required"`
	StartDate  time.Time     `db:"start_date" json:"start_date"`
	EndDate    time.Time     `db:"end_date" json:"end_date"`
	Status     *CourseStatus `db:"-" json:"status,omitempty"`
}

// CourseStatus is the current application-stage marker for one enrollment.
// Exactly one row is current per enrollment; updates overwrite in place.
type CourseStatus struct {
	ID           string            `db:"id" json:"id"`
	EnrollmentID string            `db:"enrollment_id" json:"enrollment_id"`
	Status       CourseStatusValue `db:"status" json:"status" validate:"required"`
}
