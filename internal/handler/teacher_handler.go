package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	"github.com/noah-isme/class-record-api/pkg/response"
)

type teacherRegistrar interface {
	CreateTeacher(ctx context.Context, req dto.CreateTeacherRequest) (*models.TeacherProfile, error)
}

// TeacherHandler manages teacher accounts and their subject sets.
type TeacherHandler struct {
	teachers teacherRegistrar
	catalog  catalogService
}

// NewTeacherHandler constructs a TeacherHandler.
func NewTeacherHandler(teachers teacherRegistrar, catalog catalogService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, catalog: catalog}
}

// Create godoc
// @Summary Register a teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTeacherRequest true "Teacher"
// @Success 201 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req dto.CreateTeacherRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.teachers.CreateTeacher(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// AssignSubject godoc
// @Summary Assign a subject to a teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Param payload body dto.AssignSubjectRequest true "Subject"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/subjects [post]
func (h *TeacherHandler) AssignSubject(c *gin.Context) {
	var req dto.AssignSubjectRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.catalog.AssignSubjectToTeacher(c.Request.Context(), c.Param("id"), req.Subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// RemoveSubject godoc
// @Summary Remove a subject from a teacher
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Param subject path string true "Subject name"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/subjects/{subject} [delete]
func (h *TeacherHandler) RemoveSubject(c *gin.Context) {
	result, err := h.catalog.RemoveSubjectFromTeacher(c.Request.Context(), c.Param("id"), c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
