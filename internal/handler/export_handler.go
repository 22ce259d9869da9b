package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/service"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
	"github.com/noah-isme/civic-report-api/pkg/response"
)

type exportService interface {
	ExportReports(ctx context.Context, claims *models.JWTClaims, req dto.ExportReportsRequest) (*dto.ExportResponse, error)
	Open(token string) (*service.ExportDownload, error)
}

// ExportHandler renders report exports and serves signed downloads.
type ExportHandler struct {
	service exportService
	logger  *zap.Logger
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{service: service, logger: logger}
}

// Export godoc
// @Summary Export incident reports
// @Tags Exports
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /api/admin/reports/export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportReportsRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.ExportReports(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a signed export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export"))
		return
	}
	h.logger.Debug("serving export", zap.String("file", download.Filename), zap.Int64("bytes", info.Size()))
	c.DataFromReader(http.StatusOK, info.Size(), download.ContentType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, download.Filename),
	})
}
