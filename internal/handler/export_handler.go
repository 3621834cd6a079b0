package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/service"
	"github.com/noah-isme/class-record-api/pkg/response"
)

type exportService interface {
	GradeSheet(ctx context.Context, subject, section string, format service.ExportFormat) (*service.ExportFile, error)
	AttendanceSheet(ctx context.Context, subject, date, section string, format service.ExportFormat) (*service.ExportFile, error)
}

// ExportHandler streams class record printouts.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Grades godoc
// @Summary Download the grade sheet of a subject
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param format query string false "csv or pdf" default(csv)
// @Param section query string false "Filter by section"
// @Success 200 {file} file
// @Router /subjects/{subject}/export/grades [get]
func (h *ExportHandler) Grades(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.GradeSheet(c.Request.Context(), c.Param("subject"), strings.TrimSpace(c.Query("section")), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Attendance godoc
// @Summary Download the attendance sheet of a subject for one date
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Param section query string false "Filter by section"
// @Success 200 {file} file
// @Router /subjects/{subject}/export/attendance [get]
func (h *ExportHandler) Attendance(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.AttendanceSheet(c.Request.Context(), c.Param("subject"), strings.TrimSpace(c.Query("date")),
		strings.TrimSpace(c.Query("section")), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
