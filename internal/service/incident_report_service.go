package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/realtime"
	"github.com/noah-isme/civic-report-api/internal/workflow"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
	"github.com/noah-isme/civic-report-api/pkg/storage"
)

type incidentReportRepository interface {
	Create(ctx context.Context, report *models.IncidentReport) error
	GetByID(ctx context.Context, id int64) (*models.IncidentReport, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.IncidentReport, int, error)
	Transition(ctx context.Context, t models.ReportTransition) (*models.IncidentReport, error)
	Transfer(ctx context.Context, t models.ReportTransfer) (*models.IncidentReport, error)
	Delete(ctx context.Context, id int64, scope models.Location) error
}

type barangayDirectory interface {
	ListBarangays(ctx context.Context, city models.Location) ([]string, error)
	BarangayExists(ctx context.Context, loc models.Location) (bool, error)
}

type uploadStore interface {
	SaveUpload(category, originalName string, r io.Reader, maxBytes int64) (string, error)
	Delete(name string) error
}

type notificationPublisher interface {
	Publish(ctx context.Context, n models.Notification)
}

type dashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// Upload is one file received with a multipart request.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

const (
	mediaCategory = "media"
	proofCategory = "proofs"
)

// ReportConfig tunes incident report handling.
type ReportConfig struct {
	UploadURLPrefix string
	MaxUploadBytes  int64
	MaxMediaFiles   int
	RequireProof    bool
}

// IncidentReportService implements the incident report lifecycle.
type IncidentReportService struct {
	repo      incidentReportRepository
	directory barangayDirectory
	uploads   uploadStore
	notifier  notificationPublisher
	emitter   realtime.Emitter
	dashboard dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportConfig
	now       func() time.Time
}

// IncidentReportServiceParams groups constructor dependencies.
type IncidentReportServiceParams struct {
	Repo      incidentReportRepository
	Directory barangayDirectory
	Uploads   uploadStore
	Notifier  notificationPublisher
	Emitter   realtime.Emitter
	Dashboard dashboardInvalidator
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    ReportConfig
}

// NewIncidentReportService constructs the service.
func NewIncidentReportService(params IncidentReportServiceParams) *IncidentReportService {
	cfg := params.Config
	if cfg.UploadURLPrefix == "" {
		cfg.UploadURLPrefix = "/uploads"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.MaxMediaFiles <= 0 {
		cfg.MaxMediaFiles = 5
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentReportService{
		repo:      params.Repo,
		directory: params.Directory,
		uploads:   params.Uploads,
		notifier:  params.Notifier,
		emitter:   params.Emitter,
		dashboard: params.Dashboard,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Submit files a new report for the calling mobile user.
func (s *IncidentReportService) Submit(ctx context.Context, claims *models.JWTClaims, req dto.SubmitReportRequest, media []Upload) (*models.IncidentReport, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid incident report payload")
	}
	if len(media) > s.cfg.MaxMediaFiles {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d media files are accepted", s.cfg.MaxMediaFiles))
	}

	saved := make([]string, 0, len(media))
	for _, upload := range media {
		rel, err := s.store(mediaCategory, upload)
		if err != nil {
			s.discard(saved...)
			return nil, err
		}
		saved = append(saved, rel)
	}

	now := s.now().UTC()
	reporterID := claims.UserID
	report := &models.IncidentReport{
		Location: trimLocation(models.Location{
			Region:   req.Region,
			Province: req.Province,
			City:     req.City,
			Barangay: req.Barangay,
		}),
		IncidentType:  strings.TrimSpace(req.IncidentType),
		Description:   strings.TrimSpace(req.Description),
		Status:        models.ReportPending,
		StatusHistory: models.StatusHistory{{Label: string(models.ReportPending), UpdatedBy: actorName(dto.Actor{}, claims), UpdatedAt: now}},
		MediaURLs:     make([]string, 0, len(saved)),
		ReporterID:    &reporterID,
		ReporterName:  claims.FullName(),
	}
	for _, rel := range saved {
		report.MediaURLs = append(report.MediaURLs, s.publicURL(rel))
	}

	if err := s.repo.Create(ctx, report); err != nil {
		s.discard(saved...)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create incident report")
	}

	s.notifier.Publish(ctx, models.Notification{
		Type: models.NotificationNewBarangayReport,
		Payload: models.NotificationPayload{
			ActorName:    report.ReporterName,
			IncidentType: report.IncidentType,
			EntityID:     report.ID,
		},
		Location: report.Location,
	})
	s.invalidate(ctx)
	return report, nil
}

// List returns reports visible to the caller. Mobile users only see their own.
func (s *IncidentReportService) List(ctx context.Context, claims *models.JWTClaims, q dto.ListQuery) ([]models.IncidentReport, *models.Pagination, error) {
	if claims == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.ReportFilter{Page: q.Page, PageSize: q.PageSize}
	if claims.Role == models.RoleMobile {
		id := claims.UserID
		filter.ReporterID = &id
	} else {
		scope, err := ResolveScope(claims, models.Location{Region: q.Region, Province: q.Province, City: q.City, Barangay: q.Barangay})
		if err != nil {
			return nil, nil, err
		}
		filter.Location = scope
	}
	if status := strings.TrimSpace(q.Status); status != "" {
		if !workflow.Reports.Known(status) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
		}
		st := models.ReportStatus(status)
		filter.Status = &st
	}

	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incident reports")
	}
	return reports, pagination(q.Page, q.PageSize, total), nil
}

// UpdateStatus moves a report along the workflow, optionally attaching a proof file.
func (s *IncidentReportService) UpdateStatus(ctx context.Context, claims *models.JWTClaims, id int64, req dto.UpdateReportStatusRequest, proof *Upload) (*models.IncidentReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	report, err := s.scopedReport(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	target := strings.TrimSpace(req.Status)
	rule, err := workflow.Reports.Check(string(report.Status), target, claims.Role, workflow.OpStatusUpdate)
	if err != nil {
		return nil, workflowError(err)
	}
	if rule.RequiresProof && proof == nil && s.cfg.RequireProof {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("a proof file is required to mark a report %s", target))
	}

	entry := models.StatusHistoryEntry{Label: target, UpdatedBy: actorName(req.Actor, claims), UpdatedAt: s.now().UTC()}
	if err := workflow.Reports.ValidateEntry(entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	var proofURL *string
	var proofPath string
	if proof != nil {
		proofPath, err = s.store(proofCategory, *proof)
		if err != nil {
			return nil, err
		}
		url := s.publicURL(proofPath)
		proofURL = &url
	}

	updated, err := s.repo.Transition(ctx, models.ReportTransition{
		ID:       report.ID,
		From:     report.Status,
		To:       models.ReportStatus(target),
		Entry:    entry,
		ProofURL: proofURL,
	})
	if err != nil {
		if proofPath != "" {
			s.discard(proofPath)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "report status changed, reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report status")
	}

	s.logger.Info("incident report status updated",
		zap.Int64("report_id", updated.ID),
		zap.String("from", string(report.Status)),
		zap.String("to", target),
		zap.String("by", entry.UpdatedBy),
	)
	s.emitStatus(ctx, updated)
	s.invalidate(ctx)
	return updated, nil
}

// Transfer hands a report under review to another barangay of the same city.
func (s *IncidentReportService) Transfer(ctx context.Context, claims *models.JWTClaims, id int64, req dto.TransferReportRequest) (*models.IncidentReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transfer payload")
	}
	report, err := s.scopedReport(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	destination := strings.TrimSpace(req.NewBarangay)
	if strings.EqualFold(destination, strings.TrimSpace(report.Barangay)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report already belongs to this barangay")
	}
	if _, err := workflow.Reports.Check(string(report.Status), string(models.ReportTransferred), claims.Role, workflow.OpTransfer); err != nil {
		return nil, workflowError(err)
	}

	target := report.Location
	target.Barangay = destination
	exists, err := s.directory.BarangayExists(ctx, target)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up barangay")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("barangay %q not found in %s", destination, report.City))
	}

	actor := actorName(req.Actor, claims)
	entry := models.StatusHistoryEntry{Label: string(models.ReportTransferred), UpdatedBy: actor, UpdatedAt: s.now().UTC()}
	updated, err := s.repo.Transfer(ctx, models.ReportTransfer{
		ID:           report.ID,
		FromBarangay: report.Barangay,
		NewBarangay:  destination,
		From:         report.Status,
		Entry:        entry,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "report changed before the transfer, reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to transfer report")
	}

	s.logger.Info("incident report transferred",
		zap.Int64("report_id", updated.ID),
		zap.String("from_barangay", report.Barangay),
		zap.String("to_barangay", updated.Barangay),
	)
	s.emitter.Emit(ctx, realtime.BarangayRoom(report.Location), realtime.EventReportStatusUpdate, statusEvent(updated))
	s.emitStatus(ctx, updated)
	s.notifier.Publish(ctx, models.Notification{
		Type: models.NotificationNewBarangayReport,
		Payload: models.NotificationPayload{
			ActorName:    actor,
			IncidentType: updated.IncidentType,
			EntityID:     updated.ID,
		},
		Location: updated.Location,
	})
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a report inside the caller's scope together with its stored files.
func (s *IncidentReportService) Delete(ctx context.Context, claims *models.JWTClaims, id int64) error {
	report, err := s.scopedReport(ctx, claims, id)
	if err != nil {
		return err
	}
	scope := models.Location{}
	if claims.Role != models.RoleSuperAdmin {
		scope = report.Location
	}
	if err := s.repo.Delete(ctx, id, scope); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "incident report not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete incident report")
	}

	files := make([]string, 0, len(report.MediaURLs)+1)
	for _, url := range report.MediaURLs {
		files = append(files, s.relativePath(url))
	}
	if report.ProofURL != nil {
		files = append(files, s.relativePath(*report.ProofURL))
	}
	s.discard(files...)
	s.invalidate(ctx)
	return nil
}

// Barangays lists the transfer destinations of the caller's city.
func (s *IncidentReportService) Barangays(ctx context.Context, claims *models.JWTClaims) (*dto.BarangayListResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	city := claims.Location()
	city.Barangay = ""
	if city.City == "" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account has no city scope")
	}
	names, err := s.directory.ListBarangays(ctx, city)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list barangays")
	}
	return &dto.BarangayListResponse{City: city.City, Barangays: names}, nil
}

func (s *IncidentReportService) scopedReport(ctx context.Context, claims *models.JWTClaims, id int64) (*models.IncidentReport, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident report")
	}
	if !WithinScope(claims, report.Location) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "incident report is outside your scope")
	}
	return report, nil
}

func (s *IncidentReportService) emitStatus(ctx context.Context, report *models.IncidentReport) {
	event := statusEvent(report)
	if report.ReporterID != nil {
		s.emitter.Emit(ctx, realtime.UserRoom(*report.ReporterID), realtime.EventReportStatusUpdate, event)
	}
	s.emitter.Emit(ctx, realtime.BarangayRoom(report.Location), realtime.EventReportStatusUpdate, event)
	s.emitter.Emit(ctx, realtime.CityRoom(report.Location), realtime.EventReportStatusUpdate, event)
	s.emitter.Emit(ctx, realtime.AdminRoom, realtime.EventReportStatusUpdate, event)
}

func statusEvent(report *models.IncidentReport) realtime.ReportStatusUpdate {
	return realtime.ReportStatusUpdate{
		ReportID:      report.ID,
		Status:        report.Status,
		Barangay:      report.Barangay,
		StatusHistory: report.StatusHistory,
		ProofURL:      report.ProofURL,
	}
}

func (s *IncidentReportService) store(category string, upload Upload) (string, error) {
	if upload.Size > s.cfg.MaxUploadBytes {
		return "", appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("%s exceeds %d bytes", upload.Filename, s.cfg.MaxUploadBytes))
	}
	r, err := upload.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable upload")
	}
	defer r.Close()
	rel, err := s.uploads.SaveUpload(category, upload.Filename, r, s.cfg.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return "", appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("%s exceeds %d bytes", upload.Filename, s.cfg.MaxUploadBytes))
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}
	return rel, nil
}

func (s *IncidentReportService) discard(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.uploads.Delete(p); err != nil {
			s.logger.Warn("remove upload failed", zap.String("path", p), zap.Error(err))
		}
	}
}

func (s *IncidentReportService) publicURL(rel string) string {
	return strings.TrimRight(s.cfg.UploadURLPrefix, "/") + "/" + strings.TrimLeft(rel, "/")
}

func (s *IncidentReportService) relativePath(url string) string {
	prefix := strings.TrimRight(s.cfg.UploadURLPrefix, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func (s *IncidentReportService) invalidate(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
}
