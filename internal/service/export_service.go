package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
	"github.com/noah-isme/civic-report-api/pkg/export"
	"github.com/noah-isme/civic-report-api/pkg/storage"
)

type reportLister interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.IncidentReport, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	MaxRows   int
}

// ExportDownload is an opened export ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ExportService renders report listings and persists them behind signed URLs.
type ExportService struct {
	reports   reportLister
	storage   fileStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(reports reportLister, store fileStorage, signer *storage.SignedURLSigner, validate *validator.Validate, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 5000
	}
	return &ExportService{
		reports:   reports,
		storage:   store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ExportReports renders the reports matching req and returns a signed download link.
func (s *ExportService) ExportReports(ctx context.Context, claims *models.JWTClaims, req dto.ExportReportsRequest) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	renderer, err := export.ForFormat(req.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	scope, err := ResolveScope(claims, models.Location{City: req.City, Barangay: req.Barangay})
	if err != nil {
		return nil, err
	}
	filter := models.ReportFilter{Location: scope, Page: 1, PageSize: 100}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		st := models.ReportStatus(strings.TrimSpace(*req.Status))
		filter.Status = &st
	}

	reports, err := s.collect(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident reports")
	}
	payload, err := renderer.Render(reportDataset(reports))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("incident_reports_%s_%s.%s", s.now().UTC().Format("20060102_150405"), exportID[:8], renderer.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}
	s.logger.Info("incident report export generated", zap.String("export_id", exportID), zap.String("format", req.Format), zap.Int("rows", len(reports)))
	return &dto.ExportResponse{
		URL:       fmt.Sprintf("%s/exports/%s", prefix, token),
		Token:     token,
		Format:    renderer.Extension(),
		Rows:      len(reports),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ExportService) collect(ctx context.Context, filter models.ReportFilter) ([]models.IncidentReport, error) {
	out := make([]models.IncidentReport, 0)
	for {
		page, total, err := s.reports.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) == 0 || len(out) >= total || len(out) >= s.cfg.MaxRows {
			break
		}
		filter.Page++
	}
	if len(out) > s.cfg.MaxRows {
		out = out[:s.cfg.MaxRows]
	}
	return out, nil
}

func reportDataset(reports []models.IncidentReport) export.Dataset {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		lastBy := ""
		if last, ok := r.StatusHistory.Last(); ok {
			lastBy = last.UpdatedBy
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			r.City,
			r.Barangay,
			r.IncidentType,
			string(r.Status),
			r.ReporterName,
			lastBy,
		})
	}
	return export.Dataset{
		Title:   "Incident reports",
		Headers: []string{"ID", "Filed", "City", "Barangay", "Incident", "Status", "Reporter", "Last updated by"},
		Rows:    rows,
	}
}

// Open validates a download token and opens the stored file.
func (s *ExportService) Open(token string) (*ExportDownload, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	name := filepath.Base(relPath)
	contentType := "application/octet-stream"
	if renderer, err := export.ForFormat(strings.TrimPrefix(filepath.Ext(name), ".")); err == nil {
		contentType = renderer.ContentType()
	}
	return &ExportDownload{File: file, Filename: name, ContentType: contentType}, nil
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// RunCleanup purges expired export files every interval until ctx ends.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := s.Cleanup(0)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
