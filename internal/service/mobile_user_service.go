package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/realtime"
	"github.com/noah-isme/civic-report-api/internal/repository"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

type mobileUserRepository interface {
	Create(ctx context.Context, u *models.MobileUser) error
	GetByID(ctx context.Context, id int64) (*models.MobileUser, error)
	UpdateVerification(ctx context.Context, id int64, from []models.VerificationStatus, to models.VerificationStatus, scope models.Location) (*models.MobileUser, error)
}

// MobileUserService handles citizen sign-up and ID verification.
type MobileUserService struct {
	repo      mobileUserRepository
	notifier  notificationPublisher
	emitter   realtime.Emitter
	validator *validator.Validate
	logger    *zap.Logger
	hashCost  int
}

// NewMobileUserService constructs a MobileUserService.
func NewMobileUserService(repo mobileUserRepository, notifier notificationPublisher, emitter realtime.Emitter, validate *validator.Validate, logger *zap.Logger) *MobileUserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MobileUserService{repo: repo, notifier: notifier, emitter: emitter, validator: validate, logger: logger, hashCost: bcrypt.DefaultCost}
}

// Register creates an unverified citizen and notifies the home barangay.
func (s *MobileUserService) Register(ctx context.Context, req dto.RegisterMobileUserRequest) (*models.MobileUser, error) {
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.MobileUser{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Location: trimLocation(models.Location{
			Region:   req.Region,
			Province: req.Province,
			City:     req.City,
			Barangay: req.Barangay,
		}),
		VerificationStatus: models.VerificationUnverified,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register user")
	}

	s.notifier.Publish(ctx, models.Notification{
		Type:     models.NotificationMobileRegistered,
		Payload:  models.NotificationPayload{ActorName: user.FullName(), EntityID: user.ID},
		Location: user.Location,
	})
	return user, nil
}

// RequestVerification submits the caller for ID review. Rejected users may resubmit.
func (s *MobileUserService) RequestVerification(ctx context.Context, claims *models.JWTClaims) (*models.MobileUser, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	from := []models.VerificationStatus{models.VerificationUnverified, models.VerificationRejected}
	user, err := s.repo.UpdateVerification(ctx, claims.UserID, from, models.VerificationPending, models.Location{})
	if err != nil {
		return nil, s.verificationError(ctx, claims.UserID, err, "verification is already pending or complete")
	}

	s.notifier.Publish(ctx, models.Notification{
		Type:     models.NotificationVerificationRequest,
		Payload:  models.NotificationPayload{ActorName: user.FullName(), EntityID: user.ID},
		Location: user.Location,
	})
	return user, nil
}

// ReviewVerification settles a pending verification inside the reviewer's scope.
func (s *MobileUserService) ReviewVerification(ctx context.Context, claims *models.JWTClaims, id int64, req dto.ReviewVerificationRequest) (*models.MobileUser, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}
	scope := models.Location{}
	if claims.Role != models.RoleSuperAdmin {
		scope = claims.Location()
		if scope.Barangay == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "account has no barangay scope")
		}
	}

	to := models.VerificationStatus(req.Status)
	user, err := s.repo.UpdateVerification(ctx, id, []models.VerificationStatus{models.VerificationPending}, to, scope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			existing, getErr := s.repo.GetByID(ctx, id)
			if getErr == nil && !WithinScope(claims, existing.Location) {
				return nil, appErrors.Clone(appErrors.ErrForbidden, "user is outside your scope")
			}
		}
		return nil, s.verificationError(ctx, id, err, "user has no pending verification")
	}

	s.logger.Info("mobile user verification reviewed", zap.Int64("user_id", id), zap.String("status", string(to)))
	s.emitter.Emit(ctx, realtime.UserRoom(user.ID), realtime.EventAccountStatusUpdate, user)
	return user, nil
}

func (s *MobileUserService) verificationError(ctx context.Context, id int64, err error, conflict string) error {
	if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update verification")
	}
	if _, getErr := s.repo.GetByID(ctx, id); getErr != nil {
		if errors.Is(getErr, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(getErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return appErrors.Clone(appErrors.ErrConflict, conflict)
}
