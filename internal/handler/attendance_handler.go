package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	"github.com/noah-isme/class-record-api/pkg/response"
)

type attendanceService interface {
	Mark(ctx context.Context, subject string, req dto.MarkAttendanceRequest) (*models.Attendance, error)
	BulkMark(ctx context.Context, subject string, req dto.BulkMarkRequest) (*dto.BulkMarkResult, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSheetRow, error)
}

// AttendanceHandler exposes daily attendance for a subject.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// List godoc
// @Summary Attendance sheet for a date
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param section query string false "Filter by section"
// @Success 200 {object} response.Envelope
// @Router /subjects/{subject}/attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	filter := models.AttendanceFilter{
		Subject: c.Param("subject"),
		Date:    strings.TrimSpace(c.Query("date")),
		Section: strings.TrimSpace(c.Query("section")),
	}
	rows, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// Mark godoc
// @Summary Mark one student present or absent
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param payload body dto.MarkAttendanceRequest true "Mark"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /subjects/{subject}/attendance [put]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.attendance.Mark(c.Request.Context(), c.Param("subject"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}

// BulkMark godoc
// @Summary Mark many students with one status
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Param payload body dto.BulkMarkRequest true "Marks"
// @Success 200 {object} response.Envelope
// @Router /subjects/{subject}/attendance/bulk [post]
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	var req dto.BulkMarkRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.attendance.BulkMark(c.Request.Context(), c.Param("subject"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
