package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mizuki-dev/student-management-api/internal/models"
)

// StatusRepository handles persistence of course application statuses.
type StatusRepository struct {
	db *sqlx.DB
}

// NewStatusRepository constructs the repository.
func NewStatusRepository(db *sqlx.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// List returns all course statuses.
func (r *StatusRepository) List(ctx context.Context) ([]models.CourseStatus, error) {
	const query = `SELECT id, enrollment_id, status FROM statuses ORDER BY id`
	statuses := []models.CourseStatus{}
	if err := r.db.SelectContext(ctx, &statuses, query); err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	return statuses, nil
}

// FindByEnrollmentID fetches the current status of one enrollment. Returns
// sql.ErrNoRows when no status row exists.
func (r *StatusRepository) FindByEnrollmentID(ctx context.Context, enrollmentID string) (*models.CourseStatus, error) {
	const query = `SELECT id, enrollment_id, status FROM statuses WHERE enrollment_id = $1`
	var status models.CourseStatus
	if err := r.db.GetContext(ctx, &status, query, enrollmentID); err != nil {
		return nil, err
	}
	return &status, nil
}

// CreateWithTx inserts a new status row inside the caller's transaction.
func (r *StatusRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, status *models.CourseStatus) error {
	const query = `INSERT INTO statuses (id, enrollment_id, status) VALUES (:id, :enrollment_id, :status)`
	if _, err := tx.NamedExecContext(ctx, query, status); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create status %s: %w", status.ID, ErrDuplicateKey)
		}
		return fmt.Errorf("create status: %w", err)
	}
	return nil
}

// Update overwrites the status value of an existing row. Returns
// sql.ErrNoRows when the ID is unknown.
func (r *StatusRepository) Update(ctx context.Context, status *models.CourseStatus) error {
	const query = `UPDATE statuses SET status = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status.Status, status.ID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
