package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mizuki-dev/student-management-api/internal/models"
	"github.com/mizuki-dev/student-management-api/internal/repository"
	appErrors "github.com/mizuki-dev/student-management-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Search(ctx context.Context, cond models.StudentSearchCondition) ([]models.Student, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error
	UpdateWithTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error
	SoftDelete(ctx context.Context, id string) error
}

type courseRepository interface {
	List(ctx context.Context) ([]models.CourseEnrollment, error)
	ListByStudentID(ctx context.Context, studentID string) ([]models.CourseEnrollment, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, enrollment *models.CourseEnrollment) error
	UpdateWithTx(ctx context.Context, tx *sqlx.Tx, enrollment *models.CourseEnrollment) error
}

type statusRepository interface {
	List(ctx context.Context) ([]models.CourseStatus, error)
	FindByEnrollmentID(ctx context.Context, enrollmentID string) (*models.CourseStatus, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, status *models.CourseStatus) error
	Update(ctx context.Context, status *models.CourseStatus) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// StudentService orchestrates reads and writes over students, their course
// enrollments and course statuses. It owns identity generation, default
// values and the transactional boundaries of multi-row writes.
type StudentService struct {
	students  studentRepository
	courses   courseRepository
	statuses  statusRepository
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService wires the service dependencies.
func NewStudentService(students studentRepository, courses courseRepository, statuses statusRepository, tx txProvider, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, courses: courses, statuses: statuses, tx: tx, validator: validate, logger: logger}
}

// List returns one StudentDetail per non-deleted student with its
// enrollments, statuses not attached.
func (s *StudentService) List(ctx context.Context) ([]models.StudentDetail, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	enrollments, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return ConvertStudentDetails(students, enrollments), nil
}

// ListWithStatus returns the full aggregate view: every non-deleted student
// with its enrollments, each enrollment carrying its current status.
func (s *StudentService) ListWithStatus(ctx context.Context) ([]models.StudentDetail, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	enrollments, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list statuses")
	}
	return ConvertStudentDetails(students, AssembleCourseStatuses(enrollments, statuses)), nil
}

// Get returns the aggregate for one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	enrollments, err := s.courses.ListByStudentID(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	return &models.StudentDetail{Student: *student, Enrollments: enrollments}, nil
}

// GetWithStatus returns the aggregate for one student with statuses attached
// to its enrollments.
func (s *StudentService) GetWithStatus(ctx context.Context, id string) (*models.StudentDetail, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list statuses")
	}
	detail.Enrollments = AssembleCourseStatuses(detail.Enrollments, statuses)
	return detail, nil
}

// Search returns aggregates for students matching the condition. Only
// students are filtered; their enrollment lists are complete.
func (s *StudentService) Search(ctx context.Context, cond models.StudentSearchCondition) ([]models.StudentDetail, error) {
	students, err := s.students.Search(ctx, cond)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search students")
	}
	enrollments, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return ConvertStudentDetails(students, enrollments), nil
}

// Register persists a new student with its enrollments and default statuses
// as one atomic unit. All identities are generated here; each enrollment is
// bound to the new student, runs from today until one calendar year later
// and starts in the provisional status. The returned detail carries every
// generated field, enrollment order preserved.
func (s *StudentService) Register(ctx context.Context, detail models.StudentDetail) (*models.StudentDetail, error) {
	if err := s.validator.Struct(detail.Student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	for _, enrollment := range detail.Enrollments {
		if err := s.validator.Struct(enrollment); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
		}
	}

	populated := buildRegistration(detail, time.Now().UTC())

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin registration")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.students.CreateWithTx(ctx, tx, &populated.Student); err != nil {
		return nil, s.mapWriteError(err, "failed to register student")
	}
	for i := range populated.Enrollments {
		enrollment := &populated.Enrollments[i]
		if err := s.courses.CreateWithTx(ctx, tx, enrollment); err != nil {
			return nil, s.mapWriteError(err, "failed to register enrollment")
		}
		if err := s.statuses.CreateWithTx(ctx, tx, enrollment.Status); err != nil {
			return nil, s.mapWriteError(err, "failed to register status")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit registration")
	}
	committed = true

	s.logger.Info("student registered",
		zap.String("student_id", populated.Student.ID),
		zap.Int("enrollments", len(populated.Enrollments)))
	return &populated, nil
}

// Update persists the mutable fields of a student and of each enrollment in
// the detail as one atomic unit. Identity, ownership and the soft-delete flag
// flow through unchanged from the input.
func (s *StudentService) Update(ctx context.Context, detail models.StudentDetail) error {
	if err := s.validator.Struct(detail.Student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin update")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.students.UpdateWithTx(ctx, tx, &detail.Student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	for i := range detail.Enrollments {
		if err := s.courses.UpdateWithTx(ctx, tx, &detail.Enrollments[i]); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
		}
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit update")
	}
	committed = true
	return nil
}

// UpdateCourseStatus overwrites the status value of one existing status row.
func (s *StudentService) UpdateCourseStatus(ctx context.Context, status models.CourseStatus) error {
	if !status.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown course status value")
	}
	if err := s.statuses.Update(ctx, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "status not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}
	return nil
}

// SoftDelete marks a student as logically deleted. Enrollments and statuses
// stay untouched and remain addressable by ID. Repeated deletion is a no-op.
func (s *StudentService) SoftDelete(ctx context.Context, id string) error {
	if err := s.students.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

// buildRegistration returns a fully populated copy of the input detail:
// generated identities, enrollment ownership, course dates and the default
// provisional status. Nothing partially initialised escapes this function.
func buildRegistration(detail models.StudentDetail, now time.Time) models.StudentDetail {
	detail.Student.ID = uuid.NewString()
	detail.Student.IsDeleted = false

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	enrollments := make([]models.CourseEnrollment, len(detail.Enrollments))
	for i, enrollment := range detail.Enrollments {
		enrollment.ID = uuid.NewString()
		enrollment.StudentID = detail.Student.ID
		enrollment.StartDate = start
		enrollment.EndDate = start.AddDate(1, 0, 0)
		enrollment.Status = &models.CourseStatus{
			ID:           uuid.NewString(),
			EnrollmentID: enrollment.ID,
			Status:       models.CourseStatusProvisional,
		}
		enrollments[i] = enrollment
	}
	detail.Enrollments = enrollments
	return detail
}

func (s *StudentService) mapWriteError(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
