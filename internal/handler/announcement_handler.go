package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/pkg/response"
)

type announcementService interface {
	List(ctx context.Context, city string, page, size int) ([]models.Announcement, *models.Pagination, error)
	ListForCaller(ctx context.Context, claims *models.JWTClaims, page, size int) ([]models.Announcement, *models.Pagination, error)
	Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateAnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, id int64) error
}

// AnnouncementHandler exposes announcement endpoints.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(service announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// List godoc
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Param city query string false "Keep this city's and global announcements"
// @Success 200 {object} response.Envelope
// @Router /api/admin/get-all-announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	page, size := pageQuery(c)
	items, pagination, err := h.service.List(c.Request.Context(), c.Query("city"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// ListMine godoc
// @Summary Announcements for the caller's city
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/mobile/announcements [get]
func (h *AnnouncementHandler) ListMine(c *gin.Context) {
	page, size := pageQuery(c)
	items, pagination, err := h.service.ListForCaller(c.Request.Context(), claimsFromContext(c), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Publish an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /api/admin/create-announcement [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ann, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ann)
}

// Delete godoc
// @Summary Delete an announcement
// @Tags Announcements
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Router /api/admin/delete-announcement/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "announcement deleted")
}
