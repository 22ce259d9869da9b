package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, claims *models.JWTClaims, requested models.Location, page, size int) ([]models.Notification, *models.Pagination, error)
	MarkRead(ctx context.Context, claims *models.JWTClaims, id int64, requested models.Location) (*models.Notification, error)
	Delete(ctx context.Context, claims *models.JWTClaims, id int64, requested models.Location) error
}

// NotificationHandler exposes the staff notification feed.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List godoc
// @Summary List notifications for the caller's scope
// @Tags Notifications
// @Produce json
// @Param region query string false "Region"
// @Param province query string false "Province"
// @Param city query string false "City"
// @Param barangay query string false "Barangay"
// @Success 200 {object} response.Envelope
// @Router /api/brgy/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	page, size := pageQuery(c)
	items, pagination, err := h.service.List(c.Request.Context(), claimsFromContext(c), locationQuery(c), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Envelope
// @Router /api/brgy/notifications/{id}/mark-read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	n, err := h.service.MarkRead(c.Request.Context(), claimsFromContext(c), id, locationQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, n, nil)
}

// Delete godoc
// @Summary Delete a notification
// @Tags Notifications
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Envelope
// @Router /api/brgy/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), id, locationQuery(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "notification deleted")
}
