package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mizuki-dev/student-management-api/internal/models"
)

const enrollmentColumns = "id, student_id, course_name, start_date, end_date"

// CourseRepository handles persistence of course enrollments.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all course enrollments.
func (r *CourseRepository) List(ctx context.Context) ([]models.CourseEnrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments ORDER BY id", enrollmentColumns)
	enrollments := []models.CourseEnrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudentID returns the enrollments owned by one student.
func (r *CourseRepository) ListByStudentID(ctx context.Context, studentID string) ([]models.CourseEnrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE student_id = $1 ORDER BY id", enrollmentColumns)
	enrollments := []models.CourseEnrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments by student: %w", err)
	}
	return enrollments, nil
}

// CreateWithTx inserts a new enrollment inside the caller's transaction.
func (r *CourseRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, enrollment *models.CourseEnrollment) error {
	const query = `INSERT INTO enrollments (id, student_id, course_name, start_date, end_date)
        VALUES (:id, :student_id, :course_name, :start_date, :end_date)`
	if _, err := tx.NamedExecContext(ctx, query, enrollment); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create enrollment %s: %w", enrollment.ID, ErrDuplicateKey)
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateWithTx modifies the course name of an existing enrollment inside the
// caller's transaction. Only the course name is mutable; identity, owner and
// dates are fixed at creation. Returns sql.ErrNoRows when the ID is unknown.
func (r *CourseRepository) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, enrollment *models.CourseEnrollment) error {
	const query = `UPDATE enrollments SET course_name = $1 WHERE id = $2`
	res, err := tx.ExecContext(ctx, query, enrollment.CourseName, enrollment.ID)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update enrollment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
