package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizuki-dev/student-management-api/internal/models"
	"github.com/mizuki-dev/student-management-api/internal/service"
	"github.com/mizuki-dev/student-management-api/pkg/response"
)

type stubStudentRepo struct {
	students []models.Student
}

func (s *stubStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	return s.students, nil
}

func (s *stubStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	for _, st := range s.students {
		if st.ID == id {
			student := st
			return &student, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubStudentRepo) Search(ctx context.Context, cond models.StudentSearchCondition) ([]models.Student, error) {
	matched := []models.Student{}
	for _, st := range s.students {
		if cond.City != "" && st.City != cond.City {
			continue
		}
		matched = append(matched, st)
	}
	return matched, nil
}

func (s *stubStudentRepo) CreateWithTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	return nil
}

func (s *stubStudentRepo) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	return nil
}

func (s *stubStudentRepo) SoftDelete(ctx context.Context, id string) error {
	return nil
}

type stubCourseRepo struct {
	enrollments []models.CourseEnrollment
}

func (s *stubCourseRepo) List(ctx context.Context) ([]models.CourseEnrollment, error) {
	return s.enrollments, nil
}

func (s *stubCourseRepo) ListByStudentID(ctx context.Context, studentID string) ([]models.CourseEnrollment, error) {
	owned := []models.CourseEnrollment{}
	for _, e := range s.enrollments {
		if e.StudentID == studentID {
			owned = append(owned, e)
		}
	}
	return owned, nil
}

func (s *stubCourseRepo) CreateWithTx(ctx context.Context, tx *sqlx.Tx, enrollment *models.CourseEnrollment) error {
	return nil
}

func (s *stubCourseRepo) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, enrollment *models.CourseEnrollment) error {
	return nil
}

type stubStatusRepo struct {
	statuses []models.CourseStatus
}

func (s *stubStatusRepo) List(ctx context.Context) ([]models.CourseStatus, error) {
	return s.statuses, nil
}

func (s *stubStatusRepo) FindByEnrollmentID(ctx context.Context, enrollmentID string) (*models.CourseStatus, error) {
	return nil, sql.ErrNoRows
}

func (s *stubStatusRepo) CreateWithTx(ctx context.Context, tx *sqlx.Tx, status *models.CourseStatus) error {
	return nil
}

func (s *stubStatusRepo) Update(ctx context.Context, status *models.CourseStatus) error {
	for i, st := range s.statuses {
		if st.ID == status.ID {
			s.statuses[i].Status = status.Status
			return nil
		}
	}
	return sql.ErrNoRows
}

func newTestRouter(students *stubStudentRepo, courses *stubCourseRepo, statuses *stubStatusRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewStudentService(students, courses, statuses, nil, nil, nil)
	r := gin.New()
	NewStudentHandler(svc).RegisterRoutes(&r.RouterGroup)
	return r
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestStudentHandlerList(t *testing.T) {
	r := newTestRouter(
		&stubStudentRepo{students: []models.Student{{ID: "s1", Name: "Hanako Sato", City: "Tokyo"}}},
		&stubCourseRepo{enrollments: []models.CourseEnrollment{{ID: "e1", StudentID: "s1", CourseName: "Go Basics"}}},
		&stubStatusRepo{},
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Nil(t, env.Error)
	details, ok := env.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, details, 1)
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	r := newTestRouter(&stubStudentRepo{}, &stubCourseRepo{}, &stubStatusRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/missing", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestStudentHandlerSearchByCity(t *testing.T) {
	r := newTestRouter(
		&stubStudentRepo{students: []models.Student{
			{ID: "s1", Name: "Hanako Sato", City: "Tokyo"},
			{ID: "s2", Name: "Taro Suzuki", City: "Osaka"},
		}},
		&stubCourseRepo{},
		&stubStatusRepo{},
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/search?city=Tokyo", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	details, ok := env.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, details, 1)
}

func TestStudentHandlerUpdateCourseStatusInvalidValue(t *testing.T) {
	r := newTestRouter(&stubStudentRepo{}, &stubCourseRepo{}, &stubStatusRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/course-statuses/st1", jsonBody(`{"enrollment_id":"e1","status":"cancelled"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestStudentHandlerDelete(t *testing.T) {
	r := newTestRouter(
		&stubStudentRepo{students: []models.Student{{ID: "s1", Name: "Hanako Sato"}}},
		&stubCourseRepo{},
		&stubStatusRepo{},
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/students/s1", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
