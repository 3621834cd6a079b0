package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/middleware"
	"github.com/noah-isme/class-record-api/pkg/response"
)

type dashboardService interface {
	SystemStats(ctx context.Context) (*dto.SystemStats, bool, error)
	SubjectStats(ctx context.Context, subject string) (*dto.SubjectStats, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// System godoc
// @Summary Record counts across the store
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) System(c *gin.Context) {
	stats, hit, err := h.service.SystemStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats, middleware.CacheMeta(c, hit))
}

// Subject godoc
// @Summary Standing and attendance summary for a subject
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param subject path string true "Subject name"
// @Success 200 {object} response.Envelope
// @Router /subjects/{subject}/dashboard [get]
func (h *DashboardHandler) Subject(c *gin.Context) {
	stats, hit, err := h.service.SubjectStats(c.Request.Context(), c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats, middleware.CacheMeta(c, hit))
}
