package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/realtime"
	"github.com/noah-isme/civic-report-api/internal/workflow"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

type documentRequestRepository interface {
	Create(ctx context.Context, req *models.DocumentRequest) error
	GetByID(ctx context.Context, id int64) (*models.DocumentRequest, error)
	List(ctx context.Context, filter models.DocumentRequestFilter) ([]models.DocumentRequest, int, error)
	Transition(ctx context.Context, t models.DocumentTransition) (*models.DocumentRequest, error)
}

// DocumentConfig tunes document request handling.
type DocumentConfig struct {
	PickupWindow time.Duration
}

// DocumentRequestService implements the document request lifecycle.
type DocumentRequestService struct {
	repo      documentRequestRepository
	notifier  notificationPublisher
	emitter   realtime.Emitter
	dashboard dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	cfg       DocumentConfig
	now       func() time.Time
}

// NewDocumentRequestService constructs the service.
func NewDocumentRequestService(repo documentRequestRepository, notifier notificationPublisher, emitter realtime.Emitter, dashboard dashboardInvalidator, validate *validator.Validate, logger *zap.Logger, cfg DocumentConfig) *DocumentRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PickupWindow <= 0 {
		cfg.PickupWindow = 72 * time.Hour
	}
	return &DocumentRequestService{
		repo:      repo,
		notifier:  notifier,
		emitter:   emitter,
		dashboard: dashboard,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Submit files a new document request for the calling mobile user.
func (s *DocumentRequestService) Submit(ctx context.Context, claims *models.JWTClaims, req dto.SubmitDocumentRequest) (*models.DocumentRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document request payload")
	}

	requesterID := claims.UserID
	doc := &models.DocumentRequest{
		RequesterID:   &requesterID,
		RequesterName: claims.FullName(),
		Location: trimLocation(models.Location{
			Region:   req.Region,
			Province: req.Province,
			City:     req.City,
			Barangay: req.Barangay,
		}),
		DocumentType:  strings.TrimSpace(req.DocumentType),
		Purpose:       strings.TrimSpace(req.Purpose),
		Status:        models.DocumentSubmitted,
		StatusHistory: models.StatusHistory{{Label: string(models.DocumentSubmitted), UpdatedBy: actorName(dto.Actor{}, claims), UpdatedAt: s.now().UTC()}},
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document request")
	}

	s.notifier.Publish(ctx, models.Notification{
		Type: models.NotificationNewDocumentRequest,
		Payload: models.NotificationPayload{
			ActorName:    doc.RequesterName,
			DocumentType: doc.DocumentType,
			EntityID:     doc.ID,
		},
		Location: doc.Location,
	})
	s.invalidate(ctx)
	return doc, nil
}

// List returns requests visible to the caller. Mobile users only see their own.
func (s *DocumentRequestService) List(ctx context.Context, claims *models.JWTClaims, q dto.ListQuery) ([]models.DocumentRequest, *models.Pagination, error) {
	if claims == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.DocumentRequestFilter{Page: q.Page, PageSize: q.PageSize}
	if claims.Role == models.RoleMobile {
		id := claims.UserID
		filter.RequesterID = &id
	} else {
		scope, err := ResolveScope(claims, models.Location{Region: q.Region, Province: q.Province, City: q.City, Barangay: q.Barangay})
		if err != nil {
			return nil, nil, err
		}
		filter.Location = scope
	}
	if status := strings.TrimSpace(q.Status); status != "" {
		if !workflow.Documents.Known(status) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
		}
		st := models.DocumentStatus(status)
		filter.Status = &st
	}

	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list document requests")
	}
	return docs, pagination(q.Page, q.PageSize, total), nil
}

// UpdateStatus moves a request along the workflow. Rejection has its own operation.
func (s *DocumentRequestService) UpdateStatus(ctx context.Context, claims *models.JWTClaims, id int64, req dto.UpdateDocumentStatusRequest) (*models.DocumentRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	doc, err := s.scopedRequest(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	target := strings.TrimSpace(req.Status)
	if _, err := workflow.Documents.Check(string(doc.Status), target, claims.Role, workflow.OpStatusUpdate); err != nil {
		return nil, workflowError(err)
	}

	now := s.now().UTC()
	t := models.DocumentTransition{
		ID:    doc.ID,
		From:  doc.Status,
		To:    models.DocumentStatus(target),
		Entry: models.StatusHistoryEntry{Label: target, UpdatedBy: actorName(req.Actor, claims), UpdatedAt: now},
	}
	if t.To == models.DocumentReadyForPickup || t.To == models.DocumentReschedule {
		deadline := now.Add(s.cfg.PickupWindow)
		if req.PickupDeadline != nil && !req.PickupDeadline.IsZero() {
			deadline = req.PickupDeadline.UTC()
		}
		t.SetDeadline = true
		t.PickupDeadline = &deadline
	}
	return s.apply(ctx, t)
}

// Reject closes a submitted request and stores the reason exactly as given.
func (s *DocumentRequestService) Reject(ctx context.Context, claims *models.JWTClaims, id int64, req dto.RejectDocumentRequest) (*models.DocumentRequest, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a rejection reason is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rejection payload")
	}
	doc, err := s.scopedRequest(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if _, err := workflow.Documents.Check(string(doc.Status), string(models.DocumentRejected), claims.Role, workflow.OpReject); err != nil {
		return nil, workflowError(err)
	}

	reason := req.Reason
	return s.apply(ctx, models.DocumentTransition{
		ID:              doc.ID,
		From:            doc.Status,
		To:              models.DocumentRejected,
		Entry:           models.StatusHistoryEntry{Label: string(models.DocumentRejected), UpdatedBy: actorName(req.Actor, claims), UpdatedAt: s.now().UTC()},
		RejectionReason: &reason,
	})
}

func (s *DocumentRequestService) apply(ctx context.Context, t models.DocumentTransition) (*models.DocumentRequest, error) {
	if err := workflow.Documents.ValidateEntry(t.Entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	updated, err := s.repo.Transition(ctx, t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "document request status changed, reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document request")
	}
	s.logger.Info("document request status updated",
		zap.Int64("request_id", updated.ID),
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)),
		zap.String("by", t.Entry.UpdatedBy),
	)
	emitDocumentUpdate(ctx, s.emitter, updated)
	s.invalidate(ctx)
	return updated, nil
}

func (s *DocumentRequestService) scopedRequest(ctx context.Context, claims *models.JWTClaims, id int64) (*models.DocumentRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document request")
	}
	if !WithinScope(claims, doc.Location) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "document request is outside your scope")
	}
	return doc, nil
}

func (s *DocumentRequestService) invalidate(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
}

// emitDocumentUpdate notifies the requester and the owning barangay.
func emitDocumentUpdate(ctx context.Context, emitter realtime.Emitter, doc *models.DocumentRequest) {
	event := realtime.DocumentRequestUpdate{
		RequestID:       doc.ID,
		Status:          doc.Status,
		StatusHistory:   doc.StatusHistory,
		RejectionReason: doc.RejectionReason,
		PickupDeadline:  doc.PickupDeadline,
	}
	if doc.RequesterID != nil {
		emitter.Emit(ctx, realtime.UserRoom(*doc.RequesterID), realtime.EventDocumentRequestUpdate, event)
	}
	emitter.Emit(ctx, realtime.BarangayRoom(doc.Location), realtime.EventDocumentRequestUpdate, event)
}
