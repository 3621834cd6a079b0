package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	"github.com/noah-isme/class-record-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, studentID, subject string) (*models.GradeRecord, error)
	UpdateGrades(ctx context.Context, studentID, subject string, req dto.UpdateGradesRequest) (*models.GradeRecord, error)
	SetStatus(ctx context.Context, studentID, subject string, req dto.SetStatusRequest) (*dto.StatusChangeResult, error)
	Unenroll(ctx context.Context, studentID, subject string, session models.Session) (*models.TrashEntry, error)
	ListGrades(ctx context.Context, filter models.GradeFilter) ([]models.GradeSheetRow, error)
	GetGrade(ctx context.Context, studentID, subject string) (*models.GradeRecord, error)
}

// GradeHandler exposes enrollment and grade entry within a subject.
type GradeHandler struct {
	enrollments enrollmentService
}

// NewGradeHandler constructs a GradeHandler.
func NewGradeHandler(enrollments enrollmentService) *GradeHandler {
	return &GradeHandler{enrollments: enrollments}
}

// List godoc
// @Summary Grade sheet for a subject
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param section query string false "Filter by section"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by student name"
// @Success 200 {object} response.Envelope
// @Router /subjects/{subject}/grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter := models.GradeFilter{
		Subject: c.Param("subject"),
		Section: strings.TrimSpace(c.Query("section")),
		Status:  models.GradeStatus(strings.TrimSpace(c.Query("status"))),
		Search:  strings.TrimSpace(c.Query("search")),
	}
	rows, err := h.enrollments.ListGrades(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// Get godoc
// @Summary Grade record of one student in a subject
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /subjects/{subject}/grades/{studentId} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	record, err := h.enrollments.GetGrade(c.Request.Context(), c.Param("studentId"), c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// Enroll godoc
// @Summary Enroll a student in a subject
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param payload body dto.EnrollRequest true "Student"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /subjects/{subject}/enrollments [post]
func (h *GradeHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.enrollments.Enroll(c.Request.Context(), strings.TrimSpace(req.StudentID), c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Record component scores
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param studentId path string true "Student ID"
// @Param payload body dto.UpdateGradesRequest true "Scores"
// @Success 200 {object} response.Envelope
// @Router /subjects/{subject}/grades/{studentId} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	var req dto.UpdateGradesRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.enrollments.UpdateGrades(c.Request.Context(), c.Param("studentId"), c.Param("subject"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// SetStatus godoc
// @Summary Override a student's standing
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param studentId path string true "Student ID"
// @Param payload body dto.SetStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /subjects/{subject}/grades/{studentId}/status [put]
func (h *GradeHandler) SetStatus(c *gin.Context) {
	var req dto.SetStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.enrollments.SetStatus(c.Request.Context(), c.Param("studentId"), c.Param("subject"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Unenroll godoc
// @Summary Move a student's enrollment to trash
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /subjects/{subject}/enrollments/{studentId} [delete]
func (h *GradeHandler) Unenroll(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	entry, err := h.enrollments.Unenroll(c.Request.Context(), c.Param("studentId"), c.Param("subject"), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}
