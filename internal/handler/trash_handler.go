package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/middleware"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
	"github.com/noah-isme/class-record-api/pkg/response"
)

type trashService interface {
	List(ctx context.Context) ([]models.TrashEntry, error)
	Get(ctx context.Context, trashID string) (*dto.TrashDetail, error)
	Restore(ctx context.Context, trashID string) (*dto.RestoreResult, error)
	PurgeOne(ctx context.Context, trashID string) error
	PurgeAll(ctx context.Context) (*dto.PurgeResult, error)
}

// TrashHandler exposes the trash bin. Teachers only see and restore entries
// removed from their assigned subjects; whole-student entries left by a
// section delete are reserved for admins.
type TrashHandler struct {
	trash  trashService
	access middleware.SubjectAccessChecker
}

// NewTrashHandler constructs a TrashHandler.
func NewTrashHandler(trash trashService, access middleware.SubjectAccessChecker) *TrashHandler {
	return &TrashHandler{trash: trash, access: access}
}

func (h *TrashHandler) canAccess(ctx context.Context, session models.Session, subject string) (bool, error) {
	if session.IsAdmin() {
		return true, nil
	}
	if subject == "" {
		return false, nil
	}
	return h.access.CanAccessSubject(ctx, session, subject)
}

// authorizeEntry writes 403 when the caller may not touch entries of subject.
func (h *TrashHandler) authorizeEntry(c *gin.Context, session models.Session, subject string) bool {
	allowed, err := h.canAccess(c.Request.Context(), session, subject)
	if err != nil {
		response.Error(c, err)
		return false
	}
	if !allowed {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "trash entry belongs to a subject not assigned to this teacher"))
		return false
	}
	return true
}

// List godoc
// @Summary List trash entries, newest first
// @Tags Trash
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /trash [get]
func (h *TrashHandler) List(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	entries, err := h.trash.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	visible := make([]models.TrashEntry, 0, len(entries))
	allowed := map[string]bool{}
	for _, entry := range entries {
		ok, seen := allowed[entry.DeletedFromSubject]
		if !seen {
			if ok, err = h.canAccess(c.Request.Context(), session, entry.DeletedFromSubject); err != nil {
				response.Error(c, err)
				return
			}
			allowed[entry.DeletedFromSubject] = ok
		}
		if ok {
			visible = append(visible, entry)
		}
	}
	response.OK(c, visible)
}

// Get godoc
// @Summary Trash entry with its backed-up grades and attendance
// @Tags Trash
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trash ID"
// @Success 200 {object} response.Envelope
// @Router /trash/{id} [get]
func (h *TrashHandler) Get(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	detail, err := h.trash.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.authorizeEntry(c, session, detail.DeletedFromSubject) {
		return
	}
	response.OK(c, detail)
}

// Restore godoc
// @Summary Restore a trash entry
// @Tags Trash
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trash ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /trash/{id}/restore [post]
func (h *TrashHandler) Restore(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	if !session.IsAdmin() {
		detail, err := h.trash.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		if !h.authorizeEntry(c, session, detail.DeletedFromSubject) {
			return
		}
	}
	result, err := h.trash.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Purge godoc
// @Summary Permanently delete one trash entry
// @Tags Trash
// @Security BearerAuth
// @Param id path string true "Trash ID"
// @Success 204
// @Router /trash/{id} [delete]
func (h *TrashHandler) Purge(c *gin.Context) {
	if err := h.trash.PurgeOne(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PurgeAll godoc
// @Summary Empty the trash
// @Tags Trash
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /trash [delete]
func (h *TrashHandler) PurgeAll(c *gin.Context) {
	result, err := h.trash.PurgeAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
