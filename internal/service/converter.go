package service

import "github.com/mizuki-dev/student-management-api/internal/models"

// ConvertStudentDetails groups enrollments under their owning student,
// producing one StudentDetail per input student in input order. A student's
// enrollment sublist keeps the relative order of the input enrollments;
// students without enrollments get an empty, non-nil slice.
func ConvertStudentDetails(students []models.Student, enrollments []models.CourseEnrollment) []models.StudentDetail {
	details := make([]models.StudentDetail, 0, len(students))
	for _, student := range students {
		owned := make([]models.CourseEnrollment, 0)
		for _, enrollment := range enrollments {
			if enrollment.StudentID == student.ID {
				owned = append(owned, enrollment)
			}
		}
		details = append(details, models.StudentDetail{Student: student, Enrollments: owned})
	}
	return details
}
