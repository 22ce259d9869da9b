package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
	"github.com/noah-isme/civic-report-api/pkg/response"
)

type documentRequestService interface {
	Submit(ctx context.Context, claims *models.JWTClaims, req dto.SubmitDocumentRequest) (*models.DocumentRequest, error)
	List(ctx context.Context, claims *models.JWTClaims, q dto.ListQuery) ([]models.DocumentRequest, *models.Pagination, error)
	UpdateStatus(ctx context.Context, claims *models.JWTClaims, id int64, req dto.UpdateDocumentStatusRequest) (*models.DocumentRequest, error)
	Reject(ctx context.Context, claims *models.JWTClaims, id int64, req dto.RejectDocumentRequest) (*models.DocumentRequest, error)
}

// DocumentRequestHandler exposes document request endpoints.
type DocumentRequestHandler struct {
	service documentRequestService
}

// NewDocumentRequestHandler constructs the handler.
func NewDocumentRequestHandler(service documentRequestService) *DocumentRequestHandler {
	return &DocumentRequestHandler{service: service}
}

// Submit godoc
// @Summary Request a barangay document
// @Tags Document Requests
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /api/mobile/document-requests [post]
func (h *DocumentRequestHandler) Submit(c *gin.Context) {
	var req dto.SubmitDocumentRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.service.Submit(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// List godoc
// @Summary List document requests in scope
// @Tags Document Requests
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /api/brgy/document-requests [get]
func (h *DocumentRequestHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	docs, pagination, err := h.service.List(c.Request.Context(), claimsFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination)
}

// UpdateStatus godoc
// @Summary Move a document request along its workflow
// @Tags Document Requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/brgy/update-document-request-status/{id} [patch]
func (h *DocumentRequestHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateDocumentStatusRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.service.UpdateStatus(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Reject godoc
// @Summary Reject a submitted document request
// @Tags Document Requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/brgy/reject-document-request/{id} [patch]
func (h *DocumentRequestHandler) Reject(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RejectDocumentRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.service.Reject(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}
