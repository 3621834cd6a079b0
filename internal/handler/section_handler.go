package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/pkg/response"
)

// SectionHandler exposes section management.
type SectionHandler struct {
	catalog catalogService
}

// NewSectionHandler constructs a SectionHandler.
func NewSectionHandler(catalog catalogService) *SectionHandler {
	return &SectionHandler{catalog: catalog}
}

// List godoc
// @Summary List sections with student counts
// @Tags Sections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *SectionHandler) List(c *gin.Context) {
	sections, err := h.catalog.ListSections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sections)
}

// Create godoc
// @Summary Add a section
// @Tags Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSectionRequest true "Section"
// @Success 201 {object} response.Envelope
// @Router /sections [post]
func (h *SectionHandler) Create(c *gin.Context) {
	var req dto.CreateSectionRequest
	if !bindJSON(c, &req) {
		return
	}
	section, err := h.catalog.AddSection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// Delete godoc
// @Summary Delete a section, moving its students to trash
// @Tags Sections
// @Produce json
// @Security BearerAuth
// @Param section path string true "Section name"
// @Success 200 {object} response.Envelope
// @Router /sections/{section} [delete]
func (h *SectionHandler) Delete(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	result, err := h.catalog.DeleteSection(c.Request.Context(), c.Param("section"), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
