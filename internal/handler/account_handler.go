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

type accountService interface {
	Register(ctx context.Context, req dto.RegisterAccountRequest) (*models.Account, error)
	List(ctx context.Context, q dto.AccountListQuery) ([]models.Account, *models.Pagination, error)
	UpdateStatus(ctx context.Context, claims *models.JWTClaims, id int64, req dto.UpdateAccountStatusRequest) (*models.Account, error)
}

type mobileUserService interface {
	Register(ctx context.Context, req dto.RegisterMobileUserRequest) (*models.MobileUser, error)
	RequestVerification(ctx context.Context, claims *models.JWTClaims) (*models.MobileUser, error)
	ReviewVerification(ctx context.Context, claims *models.JWTClaims, id int64, req dto.ReviewVerificationRequest) (*models.MobileUser, error)
}

// AccountHandler exposes staff sign-up and citizen verification endpoints.
type AccountHandler struct {
	accounts accountService
	mobile   mobileUserService
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(accounts accountService, mobile mobileUserService) *AccountHandler {
	return &AccountHandler{accounts: accounts, mobile: mobile}
}

// Register godoc
// @Summary Register an LGU or barangay staff account
// @Tags Accounts
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/accounts/register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterAccountRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	account, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, account)
}

// List godoc
// @Summary List staff accounts
// @Tags Accounts
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Param role query string false "lgu or barangay"
// @Success 200 {object} response.Envelope
// @Router /api/admin/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	var q dto.AccountListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	accounts, pagination, err := h.accounts.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts, pagination)
}

// UpdateStatus godoc
// @Summary Approve or reject a staff account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} response.Envelope
// @Router /api/admin/accounts/{id}/status [patch]
func (h *AccountHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateAccountStatusRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	account, err := h.accounts.UpdateStatus(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account, nil)
}

// RegisterMobile godoc
// @Summary Register a citizen account
// @Tags Mobile Users
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /api/mobile/register [post]
func (h *AccountHandler) RegisterMobile(c *gin.Context) {
	var req dto.RegisterMobileUserRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.mobile.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// RequestVerification godoc
// @Summary Submit the caller for ID verification
// @Tags Mobile Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/mobile/verification-request [post]
func (h *AccountHandler) RequestVerification(c *gin.Context) {
	user, err := h.mobile.RequestVerification(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// ReviewVerification godoc
// @Summary Verify or reject a citizen's ID
// @Tags Mobile Users
// @Accept json
// @Produce json
// @Param id path int true "Mobile user ID"
// @Success 200 {object} response.Envelope
// @Router /api/brgy/mobile-users/{id}/verification [patch]
func (h *AccountHandler) ReviewVerification(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReviewVerificationRequest
	if err := bindBody(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.mobile.ReviewVerification(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
