package service

import "github.com/mizuki-dev/student-management-api/internal/models"

// AssembleCourseStatuses attaches to every enrollment its current application
// status, joined in memory by enrollment ID. Enrollments without a matching
// status keep a nil Status. Input order is preserved; when duplicate status
// rows reference the same enrollment the last one wins. The statuses slice is
// never mutated.
func AssembleCourseStatuses(enrollments []models.CourseEnrollment, statuses []models.CourseStatus) []models.CourseEnrollment {
	byEnrollment := make(map[string]models.CourseStatus, len(statuses))
	for _, status := range statuses {
		byEnrollment[status.EnrollmentID] = status
	}

	assembled := make([]models.CourseEnrollment, len(enrollments))
	for i, enrollment := range enrollments {
		if status, ok := byEnrollment[enrollment.ID]; ok {
			enrollment.Status = &status
		} else {
			enrollment.Status = nil
		}
		assembled[i] = enrollment
	}
	return assembled
}
