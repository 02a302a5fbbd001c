package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mizuki-dev/student-management-api/internal/models"
)

const studentColumns = "id, name, furigana, nickname, email, city, age, gender, remark, is_deleted"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns all students that are not logically deleted.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE is_deleted = false ORDER BY id", studentColumns)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a non-deleted student by ID. Returns sql.ErrNoRows when
// the ID is unknown or the student has been soft-deleted.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1 AND is_deleted = false", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Search returns non-deleted students matching the condition. Present fields
// are ANDed; an empty condition behaves like List.
func (r *StudentRepository) Search(ctx context.Context, cond models.StudentSearchCondition) ([]models.Student, error) {
	conditions := []string{"is_deleted = false"}
	var args []interface{}

	if cond.Name != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(cond.Name)+"%")
	}
	if cond.City != "" {
		conditions = append(conditions, fmt.Sprintf("city = $%d", len(args)+1))
		args = append(args, cond.City)
	}
	if cond.Gender != "" {
		conditions = append(conditions, fmt.Sprintf("gender = $%d", len(args)+1))
		args = append(args, cond.Gender)
	}

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY id", studentColumns, strings.Join(conditions, " AND "))
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return students, nil
}

// CreateWithTx inserts a new student inside the caller's transaction.
func (r *StudentRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	const query = `INSERT INTO students (id, name, furigana, nickname, email, city, age, gender, remark, is_deleted)
        VALUES (:id, :name, :furigana, :nickname, :email, :city, :age, :gender, :remark, :is_deleted)`
	if _, err := tx.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create student %s: %w", student.ID, ErrDuplicateKey)
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateWithTx modifies a student's mutable fields inside the caller's
// transaction. Returns sql.ErrNoRows when the ID does not exist.
func (r *StudentRepository) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	const query = `UPDATE students SET name = :name, furigana = :furigana, nickname = :nickname, email = :email,
        city = :city, age = :age, gender = :gender, remark = :remark, is_deleted = :is_deleted WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete marks a student as logically deleted. Idempotent: deleting an
// already-deleted or unknown student is not an error.
func (r *StudentRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE students SET is_deleted = true WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("soft delete student: %w", err)
	}
	return nil
}
