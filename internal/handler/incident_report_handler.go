package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/service"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
	"github.com/noah-isme/civic-report-api/pkg/response"
)

type incidentReportService interface {
	Submit(ctx context.Context, claims *models.JWTClaims, req dto.SubmitReportRequest, media []service.Upload) (*models.IncidentReport, error)
	List(ctx context.Context, claims *models.JWTClaims, q dto.ListQuery) ([]models.IncidentReport, *models.Pagination, error)
	UpdateStatus(ctx context.Context, claims *models.JWTClaims, id int64, req dto.UpdateReportStatusRequest, proof *service.Upload) (*models.IncidentReport, error)
	Transfer(ctx context.Context, claims *models.JWTClaims, id int64, req dto.TransferReportRequest) (*models.IncidentReport, error)
	Delete(ctx context.Context, claims *models.JWTClaims, id int64) error
	Barangays(ctx context.Context, claims *models.JWTClaims) (*dto.BarangayListResponse, error)
}

// IncidentReportHandler exposes incident report endpoints for every role.
type IncidentReportHandler struct {
	service incidentReportService
}

// NewIncidentReportHandler constructs the handler.
func NewIncidentReportHandler(service incidentReportService) *IncidentReportHandler {
	return &IncidentReportHandler{service: service}
}

// Submit godoc
// @Summary File an incident report
// @Tags Incident Reports
// @Accept multipart/form-data
// @Produce json
// @Param incident_type formData string true "Incident type"
// @Param media formData file false "Photos or videos (repeatable)"
// @Success 201 {object} response.Envelope
// @Router /api/mobile/incident-reports [post]
func (h *IncidentReportHandler) Submit(c *gin.Context) {
	var req dto.SubmitReportRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	media, err := formFiles(c, "media")
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.service.Submit(c.Request.Context(), claimsFromContext(c), req, media)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// List godoc
// @Summary List incident reports in scope
// @Tags Incident Reports
// @Produce json
// @Param status query string false "Status filter"
// @Param barangay query string false "Barangay (LGU and admin only)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /api/brgy/reports [get]
func (h *IncidentReportHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	reports, pagination, err := h.service.List(c.Request.Context(), claimsFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, pagination)
}

// UpdateStatus godoc
// @Summary Move an incident report along its workflow
// @Tags Incident Reports
// @Accept json,multipart/form-data
// @Produce json
// @Param id path int true "Report ID"
// @Param proof formData file false "Proof of action"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/brgy/update-barangay-report-status/{id} [patch]
func (h *IncidentReportHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateReportStatusRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	proof, err := formFile(c, "proof")
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.service.UpdateStatus(c.Request.Context(), claimsFromContext(c), id, req, proof)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Transfer godoc
// @Summary Transfer a report to another barangay
// @Tags Incident Reports
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /api/brgy/transfer-report/{id} [patch]
func (h *IncidentReportHandler) Transfer(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.TransferReportRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.service.Transfer(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Delete godoc
// @Summary Delete an incident report
// @Tags Incident Reports
// @Param id path int true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /api/brgy/barangay-delete-incident-report/{id} [delete]
func (h *IncidentReportHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "incident report deleted")
}

// Barangays godoc
// @Summary List barangays of the caller's city
// @Tags Incident Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/brgy/barangays [get]
func (h *IncidentReportHandler) Barangays(c *gin.Context) {
	list, err := h.service.Barangays(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}
