package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/realtime"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
	"github.com/noah-isme/civic-report-api/pkg/jobs"
)

type memNotifications struct {
	mu      sync.Mutex
	nextID  int64
	rows    []models.Notification
	cutoff  time.Time
	failErr error
}

func (m *memNotifications) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.nextID++
	n.ID = m.nextID
	m.rows = append(m.rows, *n)
	return nil
}

func (m *memNotifications) List(_ context.Context, f models.NotificationFilter) ([]models.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range m.rows {
		if f.Barangay != "" && !strings.EqualFold(f.Barangay, n.Barangay) {
			continue
		}
		if f.ReadSince != nil && n.ReadAt != nil && n.ReadAt.Before(*f.ReadSince) {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (m *memNotifications) MarkRead(_ context.Context, id int64, readBy string, at time.Time, scope models.Location) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.rows {
		if n.ID != id || (scope.Barangay != "" && !strings.EqualFold(scope.Barangay, n.Barangay)) {
			continue
		}
		if !n.IsRead {
			n.IsRead = true
			n.ReadBy = &readBy
			n.ReadAt = &at
			m.rows[i] = n
		}
		return &n, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memNotifications) Delete(_ context.Context, id int64, _ models.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.rows {
		if n.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memNotifications) PurgeReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoff = cutoff
	kept := m.rows[:0]
	var purged int64
	for _, n := range m.rows {
		if n.ReadAt != nil && n.ReadAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, n)
	}
	m.rows = kept
	return purged, nil
}

func (m *memNotifications) CountUnread(_ context.Context, _ models.Location) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.rows {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func reportNotification() models.Notification {
	return models.Notification{
		Type:     models.NotificationNewBarangayReport,
		Payload:  models.NotificationPayload{ActorName: "Juan Dela Cruz", IncidentType: "Flooding", EntityID: 1},
		Location: sanIsidro(),
	}
}

func TestPublishDeliversInlineWithoutQueue(t *testing.T) {
	repo := &memNotifications{}
	emitter := &recordingEmitter{}
	svc := NewNotificationService(repo, emitter, nil, NotificationConfig{}, nil)

	svc.Publish(context.Background(), reportNotification())

	require.Len(t, repo.rows, 1)
	assert.False(t, repo.rows[0].CreatedAt.IsZero())
	assert.ElementsMatch(t,
		[]string{realtime.BarangayRoom(sanIsidro()), realtime.CityRoom(sanIsidro())},
		emitter.rooms(realtime.EventNewBarangayReport))
}

func TestPublishRoutesThroughQueue(t *testing.T) {
	repo := &memNotifications{}
	emitter := &recordingEmitter{}
	queue := &recordingQueue{}
	svc := NewNotificationService(repo, emitter, nil, NotificationConfig{}, nil)
	svc.AttachQueue(queue)

	svc.Publish(context.Background(), reportNotification())
	require.Len(t, queue.jobs, 1)
	assert.Empty(t, repo.rows)
	assert.Equal(t, string(models.NotificationNewBarangayReport), queue.jobs[0].Kind)

	require.NoError(t, svc.Handle(context.Background(), queue.jobs[0]))
	assert.Len(t, repo.rows, 1)
	assert.Equal(t, 2, emitter.count(realtime.EventNewBarangayReport))
}

func TestPublishFallsBackWhenQueueStopped(t *testing.T) {
	repo := &memNotifications{}
	svc := NewNotificationService(repo, &recordingEmitter{}, nil, NotificationConfig{}, nil)
	svc.AttachQueue(&recordingQueue{err: jobs.ErrQueueStopped})

	svc.Publish(context.Background(), reportNotification())
	assert.Len(t, repo.rows, 1)
}

func TestPublishSurvivesPersistenceFailure(t *testing.T) {
	repo := &memNotifications{failErr: errors.New("db down")}
	emitter := &recordingEmitter{}
	svc := NewNotificationService(repo, emitter, NewMetricsService(), NotificationConfig{}, nil)

	svc.Publish(context.Background(), reportNotification())
	assert.Zero(t, emitter.count(realtime.EventNewBarangayReport))
}

func TestNotificationRooms(t *testing.T) {
	loc := sanIsidro()
	verification := models.Notification{Type: models.NotificationVerificationRequest, Location: loc}
	assert.Equal(t, []string{realtime.BarangayRoom(loc), realtime.AdminRoom}, notificationRooms(verification))
	assert.Equal(t, realtime.EventNewVerificationRequest, notificationEvent(verification.Type))

	doc := models.Notification{Type: models.NotificationNewDocumentRequest, Location: loc}
	assert.Equal(t, []string{realtime.BarangayRoom(loc)}, notificationRooms(doc))
	assert.Equal(t, realtime.EventNewDocumentRequest, notificationEvent(doc.Type))
}

func TestListHidesLongReadNotifications(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-40 * 24 * time.Hour)
	recent := now.Add(-time.Hour)
	repo := &memNotifications{rows: []models.Notification{
		{ID: 1, Location: sanIsidro(), CreatedAt: old, IsRead: true, ReadAt: &old},
		{ID: 2, Location: sanIsidro(), CreatedAt: recent, IsRead: true, ReadAt: &recent},
		{ID: 3, Location: sanIsidro(), CreatedAt: old},
	}}
	svc := NewNotificationService(repo, &recordingEmitter{}, nil, NotificationConfig{}, nil)
	svc.now = func() time.Time { return now }

	items, page, err := svc.List(context.Background(), barangayStaff(), models.Location{}, 1, 20)
	require.NoError(t, err)
	ids := make([]int64, 0, len(items))
	for _, n := range items {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []int64{2, 3}, ids)
	require.NotNil(t, page)
	assert.Equal(t, 2, page.TotalCount, "expired reads are not counted")
}

func TestMarkRead(t *testing.T) {
	repo := &memNotifications{rows: []models.Notification{{ID: 5, Location: sanIsidro()}}}
	emitter := &recordingEmitter{}
	svc := NewNotificationService(repo, emitter, nil, NotificationConfig{}, nil)

	n, err := svc.MarkRead(context.Background(), barangayStaff(), 5, models.Location{})
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	require.NotNil(t, n.ReadBy)
	assert.Equal(t, "Maria Santos", *n.ReadBy)
	assert.Equal(t, []string{realtime.BarangayRoom(sanIsidro())}, emitter.rooms(realtime.EventNotificationUpdate))

	_, err = svc.MarkRead(context.Background(), barangayStaff(), 99, models.Location{})
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}

func TestPurgeExpiredUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-31 * 24 * time.Hour)
	repo := &memNotifications{rows: []models.Notification{
		{ID: 1, IsRead: true, ReadAt: &old},
		{ID: 2},
	}}
	svc := NewNotificationService(repo, &recordingEmitter{}, NewMetricsService(), NotificationConfig{}, nil)
	svc.now = func() time.Time { return now }

	purged, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, now.Add(-30*24*time.Hour), repo.cutoff)
	require.Len(t, repo.rows, 1)
	assert.Equal(t, int64(2), repo.rows[0].ID)
}
