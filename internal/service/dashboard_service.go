package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/models"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

const dashboardCachePrefix = "dashboard:"

type statusCounter interface {
	CountByStatus(ctx context.Context, scope models.Location) ([]models.StatusCount, error)
}

type pendingAccountCounter interface {
	CountPending(ctx context.Context) (int, error)
}

type unreadCounter interface {
	CountUnread(ctx context.Context, scope models.Location) (int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Reports       statusCounter
	Documents     statusCounter
	Accounts      pendingAccountCounter
	Notifications unreadCounter
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// DashboardService composes per-scope status totals and caches them.
type DashboardService struct {
	reports       statusCounter
	documents     statusCounter
	accounts      pendingAccountCounter
	notifications unreadCounter
	cache         *CacheService
	logger        *zap.Logger
	cfg           DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		reports:       params.Reports,
		documents:     params.Documents,
		accounts:      params.Accounts,
		notifications: params.Notifications,
		cache:         params.Cache,
		logger:        logger,
		cfg:           cfg,
	}
}

// Summary returns status totals for the caller's scope and whether they came from cache.
func (s *DashboardService) Summary(ctx context.Context, claims *models.JWTClaims, requested models.Location) (*models.DashboardSummary, bool, error) {
	scope, err := ResolveScope(claims, requested)
	if err != nil {
		return nil, false, err
	}
	key := dashboardKey(claims.Role, scope)
	return Remember(ctx, s.cache, key, s.cfg.CacheTTL, func() (*models.DashboardSummary, error) {
		return s.compute(ctx, claims.Role, scope)
	})
}

func (s *DashboardService) compute(ctx context.Context, role models.UserRole, scope models.Location) (*models.DashboardSummary, error) {
	var err error
	summary := &models.DashboardSummary{Scope: scope}
	if summary.Reports, err = s.count(ctx, s.reports, scope); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count incident reports")
	}
	if summary.DocumentRequests, err = s.count(ctx, s.documents, scope); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count document requests")
	}
	if summary.UnreadAlerts, err = s.notifications.CountUnread(ctx, scope); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	if role == models.RoleSuperAdmin && s.accounts != nil {
		if summary.PendingAccounts, err = s.accounts.CountPending(ctx); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending accounts")
		}
	}
	return summary, nil
}

// Invalidate drops every cached summary. Called after any status write.
func (s *DashboardService) Invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, dashboardCachePrefix+"*")
}

func (s *DashboardService) count(ctx context.Context, counter statusCounter, scope models.Location) (map[string]int, error) {
	rows, err := counter.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func dashboardKey(role models.UserRole, scope models.Location) string {
	parts := []string{scope.Region, scope.Province, scope.City, scope.Barangay}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return fmt.Sprintf("%s%s:%s", dashboardCachePrefix, role, strings.Join(parts, "|"))
}
