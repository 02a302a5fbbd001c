package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mizuki-dev/student-management-api/internal/models"
	"github.com/mizuki-dev/student-management-api/internal/service"
	appErrors "github.com/mizuki-dev/student-management-api/pkg/errors"
	"github.com/mizuki-dev/student-management-api/pkg/response"
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List returns every active student with its enrollments.
func (h *StudentHandler) List(c *gin.Context) {
	details, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}

// ListWithStatus returns every active student with enrollments and statuses.
func (h *StudentHandler) ListWithStatus(c *gin.Context) {
	details, err := h.students.ListWithStatus(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}

// Search filters students by name, city and gender query parameters.
func (h *StudentHandler) Search(c *gin.Context) {
	cond := models.StudentSearchCondition{
		Name:   strings.TrimSpace(c.Query("name")),
		City:   strings.TrimSpace(c.Query("city")),
		Gender: strings.TrimSpace(c.Query("gender")),
	}
	details, err := h.students.Search(c.Request.Context(), cond)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}

// Get returns one student aggregate by ID.
func (h *StudentHandler) Get(c *gin.Context) {
	detail, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// GetWithStatus returns one student aggregate with statuses attached.
func (h *StudentHandler) GetWithStatus(c *gin.Context) {
	detail, err := h.students.GetWithStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Register creates a student with its enrollments and default statuses.
func (h *StudentHandler) Register(c *gin.Context) {
	var detail models.StudentDetail
	if err := c.ShouldBindJSON(&detail); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registered, err := h.students.Register(c.Request.Context(), detail)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registered)
}

// Update modifies a student's and its enrollments' mutable fields.
func (h *StudentHandler) Update(c *gin.Context) {
	var detail models.StudentDetail
	if err := c.ShouldBindJSON(&detail); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail.Student.ID = c.Param("id")
	if err := h.students.Update(c.Request.Context(), detail); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// UpdateCourseStatus overwrites the application status of one enrollment.
func (h *StudentHandler) UpdateCourseStatus(c *gin.Context) {
	var status models.CourseStatus
	if err := c.ShouldBindJSON(&status); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	status.ID = c.Param("id")
	if err := h.students.UpdateCourseStatus(c.Request.Context(), status); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// Delete marks a student as logically deleted.
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Register routes under the given router group.
func (h *StudentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/students", h.List)
	rg.GET("/students/with-status", h.ListWithStatus)
	rg.GET("/students/search", h.Search)
	rg.GET("/students/:id", h.Get)
	rg.GET("/students/:id/with-status", h.GetWithStatus)
	rg.POST("/students", h.Register)
	rg.PUT("/students/:id", h.Update)
	rg.DELETE("/students/:id", h.Delete)
	rg.PUT("/course-statuses/:id", h.UpdateCourseStatus)
}
