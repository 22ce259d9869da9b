package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/repository"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
)

type fakeCounter struct {
	rows   []models.StatusCount
	err    error
	calls  int
	scopes []models.Location
}

func (f *fakeCounter) CountByStatus(_ context.Context, scope models.Location) ([]models.StatusCount, error) {
	f.calls++
	f.scopes = append(f.scopes, scope)
	return f.rows, f.err
}

type fakePending struct{ n int }

func (f fakePending) CountPending(context.Context) (int, error) { return f.n, nil }

type fakeUnread struct{ n int }

func (f fakeUnread) CountUnread(context.Context, models.Location) (int, error) { return f.n, nil }

func newDashboardForTest(t *testing.T, reports, documents *fakeCounter) (*DashboardService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCacheService(repository.NewCacheRepository(client, "civic"), NewMetricsService(), time.Minute, nil, true)
	svc := NewDashboardService(DashboardServiceParams{
		Reports:       reports,
		Documents:     documents,
		Accounts:      fakePending{n: 3},
		Notifications: fakeUnread{n: 4},
		Cache:         cache,
	})
	return svc, mr
}

func TestDashboardSummaryCachesPerScope(t *testing.T) {
	reports := &fakeCounter{rows: []models.StatusCount{{Status: "pending", Count: 2}, {Status: "resolved", Count: 5}}}
	documents := &fakeCounter{rows: []models.StatusCount{{Status: "submitted", Count: 1}}}
	svc, mr := newDashboardForTest(t, reports, documents)
	ctx := context.Background()

	summary, hit, err := svc.Summary(ctx, barangayStaff(), models.Location{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, summary.Reports["pending"])
	assert.Equal(t, 5, summary.Reports["resolved"])
	assert.Equal(t, 1, summary.DocumentRequests["submitted"])
	assert.Equal(t, 4, summary.UnreadAlerts)
	assert.Zero(t, summary.PendingAccounts)
	assert.Equal(t, "San Isidro", summary.Scope.Barangay)
	assert.True(t, mr.Exists("civic:dashboard:barangay:ncr|metro manila|quezon city|san isidro"))

	cached, hit, err := svc.Summary(ctx, barangayStaff(), models.Location{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, summary.Reports, cached.Reports)
	assert.Equal(t, 1, reports.calls)

	svc.Invalidate(ctx)
	_, hit, err = svc.Summary(ctx, barangayStaff(), models.Location{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, reports.calls)
}

func TestDashboardSummaryPendingAccountsForSuperAdmin(t *testing.T) {
	svc, _ := newDashboardForTest(t, &fakeCounter{}, &fakeCounter{})
	summary, _, err := svc.Summary(context.Background(), superAdmin(), models.Location{City: "Quezon City"})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.PendingAccounts)
	assert.Equal(t, "Quezon City", summary.Scope.City)
}

func TestDashboardSummaryRejectsForeignScope(t *testing.T) {
	reports := &fakeCounter{}
	svc, _ := newDashboardForTest(t, reports, &fakeCounter{})
	_, _, err := svc.Summary(context.Background(), lguStaff(), models.Location{City: "Makati"})
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))
	assert.Zero(t, reports.calls)
}

func TestDashboardSummaryWithoutCache(t *testing.T) {
	reports := &fakeCounter{err: errors.New("boom")}
	svc := NewDashboardService(DashboardServiceParams{
		Reports:       reports,
		Documents:     &fakeCounter{},
		Notifications: fakeUnread{},
	})
	_, _, err := svc.Summary(context.Background(), barangayStaff(), models.Location{})
	assert.Equal(t, appErrors.ErrInternal.Code, errCode(t, err))
	svc.Invalidate(context.Background())
}
