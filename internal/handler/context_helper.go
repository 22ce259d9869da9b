package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-report-api/internal/middleware"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/service"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

// maxMultipartMemory bounds the in-memory part of a parsed multipart form; the rest spills to
// temporary files.
const maxMultipartMemory = 8 << 20

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}

func locationQuery(c *gin.Context) models.Location {
	return models.Location{
		Region:   c.Query("region"),
		Province: c.Query("province"),
		City:     c.Query("city"),
		Barangay: c.Query("barangay"),
	}
}

func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return page, size
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm)
}

// bindBody decodes a JSON or multipart body into dst. Field rules are enforced by the services.
func bindBody(c *gin.Context, dst interface{}) error {
	var err error
	if isMultipart(c) {
		err = c.ShouldBind(dst)
	} else {
		err = c.ShouldBindJSON(dst)
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return appErrors.Clone(appErrors.ErrPayloadTooLarge, "request body too large")
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body")
	}
	return nil
}

func formFiles(c *gin.Context, field string) ([]service.Upload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart form")
	}
	headers := form.File[field]
	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, toUpload(fh))
	}
	return uploads, nil
}

func formFile(c *gin.Context, field string) (*service.Upload, error) {
	files, err := formFiles(c, field)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &files[0], nil
}

func toUpload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
