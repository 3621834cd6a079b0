package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	"github.com/noah-isme/class-record-api/pkg/response"
)

type catalogService interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	AddSubject(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, name string) (*dto.SubjectDeleteResult, error)
	ListSections(ctx context.Context) ([]models.SectionSummary, error)
	AddSection(ctx context.Context, req dto.CreateSectionRequest) (*models.Section, error)
	DeleteSection(ctx context.Context, name string, session models.Session) (*dto.SectionDeleteResult, error)
	AssignSubjectToTeacher(ctx context.Context, teacherID, subject string) (*dto.AssignmentResult, error)
	RemoveSubjectFromTeacher(ctx context.Context, teacherID, subject string) (*dto.AssignmentResult, error)
}

// SubjectHandler exposes the subject catalog.
type SubjectHandler struct {
	catalog catalogService
}

// NewSubjectHandler constructs a SubjectHandler.
func NewSubjectHandler(catalog catalogService) *SubjectHandler {
	return &SubjectHandler{catalog: catalog}
}

// List godoc
// @Summary List subjects
// @Tags Subjects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.catalog.ListSubjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, subjects)
}

// Create godoc
// @Summary Add a subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSubjectRequest true "Subject"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.catalog.AddSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Delete godoc
// @Summary Delete a subject with its grades, attendance and teacher links
// @Tags Subjects
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Success 200 {object} response.Envelope
// @Router /subjects/{subject} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	result, err := h.catalog.DeleteSubject(c.Request.Context(), c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
