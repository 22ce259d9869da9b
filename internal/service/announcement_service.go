package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/realtime"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

type announcementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	List(ctx context.Context, city string, page, size int) ([]models.Announcement, int, error)
	Delete(ctx context.Context, id int64) error
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	repo      announcementRepository
	emitter   realtime.Emitter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, emitter realtime.Emitter, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AnnouncementService{repo: repo, emitter: emitter, validator: validate, logger: logger}
	svc.validator.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return svc
}

// List returns announcements newest first. A non-empty city keeps that city's and the global ones.
func (s *AnnouncementService) List(ctx context.Context, city string, page, size int) ([]models.Announcement, *models.Pagination, error) {
	rows, total, err := s.repo.List(ctx, city, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return rows, pagination(page, size, total), nil
}

// ListForCaller scopes the list to the mobile user's city.
func (s *AnnouncementService) ListForCaller(ctx context.Context, claims *models.JWTClaims, page, size int) ([]models.Announcement, *models.Pagination, error) {
	if claims == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	return s.List(ctx, claims.City, page, size)
}

// Create publishes an announcement and broadcasts it to every socket.
func (s *AnnouncementService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	ann := &models.Announcement{
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		CreatedBy: actorName(dto.Actor{}, claims),
	}
	if req.ScopeCity != nil {
		if city := strings.TrimSpace(*req.ScopeCity); city != "" {
			ann.ScopeCity = &city
		}
	}
	if err := s.repo.Create(ctx, ann); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	s.logger.Info("announcement created", zap.Int64("announcement_id", ann.ID), zap.String("by", ann.CreatedBy))
	s.emitter.Broadcast(ctx, realtime.EventNewAnnouncement, ann)
	return ann, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	return nil
}
