package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
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

type accountRepository interface {
	Create(ctx context.Context, a *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.AccountStatus, actionBy string) (*models.Account, error)
}

// AccountService manages LGU and barangay staff sign-ups.
type AccountService struct {
	repo      accountRepository
	emitter   realtime.Emitter
	dashboard dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	hashCost  int
}

// NewAccountService constructs an AccountService.
func NewAccountService(repo accountRepository, emitter realtime.Emitter, dashboard dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		repo:      repo,
		emitter:   emitter,
		dashboard: dashboard,
		validator: validate,
		logger:    logger,
		hashCost:  bcrypt.DefaultCost,
	}
}

// Register stores a pending staff account and alerts the super admins.
func (s *AccountService) Register(ctx context.Context, req dto.RegisterAccountRequest) (*models.Account, error) {
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	account := &models.Account{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         models.UserRole(req.Role),
		Location: trimLocation(models.Location{
			Region:   req.Region,
			Province: req.Province,
			City:     req.City,
			Barangay: req.Barangay,
		}),
		Status: models.AccountPending,
	}
	if account.Role == models.RoleLGU {
		account.Barangay = ""
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register account")
	}

	s.logger.Info("staff account registered", zap.Int64("account_id", account.ID), zap.String("role", string(account.Role)))
	s.emitter.Emit(ctx, realtime.AdminRoom, realtime.EventNewAccountRegistration, account)
	s.invalidate(ctx)
	return account, nil
}

// List returns staff accounts filtered by status and role.
func (s *AccountService) List(ctx context.Context, q dto.AccountListQuery) ([]models.Account, *models.Pagination, error) {
	filter := models.AccountFilter{Page: q.Page, PageSize: q.PageSize}
	if status := strings.TrimSpace(q.Status); status != "" {
		st := models.AccountStatus(status)
		switch st {
		case models.AccountPending, models.AccountApproved, models.AccountRejected:
			filter.Status = &st
		default:
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown account status %q", status))
		}
	}
	if role := strings.TrimSpace(q.Role); role != "" {
		r := models.UserRole(role)
		if r != models.RoleLGU && r != models.RoleBarangay {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown account role %q", role))
		}
		filter.Role = &r
	}

	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accounts")
	}
	return accounts, pagination(q.Page, q.PageSize, total), nil
}

// UpdateStatus approves or rejects a pending account. Decisions are final.
func (s *AccountService) UpdateStatus(ctx context.Context, claims *models.JWTClaims, id int64, req dto.UpdateAccountStatusRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid account status payload")
	}
	actor := actorName(req.Actor, claims)
	account, err := s.repo.UpdateStatus(ctx, id, models.AccountPending, models.AccountStatus(req.Status), actor)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update account")
		}
		if _, getErr := s.repo.GetByID(ctx, id); getErr != nil {
			if errors.Is(getErr, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
			}
			return nil, appErrors.Wrap(getErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "account was already reviewed")
	}

	s.logger.Info("staff account reviewed", zap.Int64("account_id", id), zap.String("status", string(account.Status)), zap.String("by", actor))
	s.emitter.Emit(ctx, realtime.StaffRoom(account.ID), realtime.EventAccountStatusUpdate, account)
	s.emitter.Emit(ctx, realtime.AdminRoom, realtime.EventAccountStatusUpdate, account)
	s.invalidate(ctx)
	return account, nil
}

func (s *AccountService) invalidate(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
}
