package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/dto"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/realtime"
	appErrors "github.com/noah-isme/civic-report-api/pkg/errors"
	"github.com/noah-isme/civic-report-api/pkg/feed"
	"github.com/noah-isme/civic-report-api/pkg/jobs"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id int64, readBy string, at time.Time, scope models.Location) (*models.Notification, error)
	Delete(ctx context.Context, id int64, scope models.Location) error
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountUnread(ctx context.Context, scope models.Location) (int, error)
}

type jobQueue interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

// NotificationConfig tunes retention of read notifications.
type NotificationConfig struct {
	Retention     time.Duration
	PurgeInterval time.Duration
}

// NotificationService persists staff notifications and pushes them to the matching rooms.
type NotificationService struct {
	repo    notificationRepository
	emitter realtime.Emitter
	queue   jobQueue
	metrics *MetricsService
	logger  *zap.Logger
	cfg     NotificationConfig
	now     func() time.Time
}

// NewNotificationService constructs the service. Without an attached queue every publish is
// delivered inline.
func NewNotificationService(repo notificationRepository, emitter realtime.Emitter, metrics *MetricsService, cfg NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = feed.DefaultRetention
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = time.Hour
	}
	return &NotificationService{repo: repo, emitter: emitter, metrics: metrics, logger: logger, cfg: cfg, now: time.Now}
}

// AttachQueue routes publishes through q. The queue's handler must be s.Handle.
func (s *NotificationService) AttachQueue(q jobQueue) {
	s.queue = q
}

// Publish schedules n for persistence and realtime delivery.
func (s *NotificationService) Publish(ctx context.Context, n models.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	if s.queue != nil {
		job := jobs.Job{ID: uuid.NewString(), Kind: string(n.Type), Payload: n}
		err := s.queue.Enqueue(ctx, job)
		if err == nil {
			return
		}
		if !errors.Is(err, jobs.ErrQueueStopped) {
			s.logger.Warn("enqueue notification failed, delivering inline", zap.String("type", string(n.Type)), zap.Error(err))
		}
	}
	if err := s.deliver(context.WithoutCancel(ctx), n); err != nil {
		s.metrics.RecordNotificationFailure()
		s.logger.Error("deliver notification", zap.String("type", string(n.Type)), zap.Error(err))
	}
}

// Handle is the job queue handler.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("kind", job.Kind))
		return nil
	}
	return s.deliver(ctx, n)
}

// OnExhausted counts jobs the queue gave up on.
func (s *NotificationService) OnExhausted(job jobs.Job, err error) {
	s.metrics.RecordNotificationFailure()
}

func (s *NotificationService) deliver(ctx context.Context, n models.Notification) error {
	if err := s.repo.Create(ctx, &n); err != nil {
		return fmt.Errorf("persist %s notification: %w", n.Type, err)
	}
	for _, room := range notificationRooms(n) {
		s.emitter.Emit(ctx, room, notificationEvent(n.Type), n)
	}
	return nil
}

func notificationEvent(t models.NotificationType) string {
	switch t {
	case models.NotificationMobileRegistered:
		return realtime.EventMobileUserRegistered
	case models.NotificationVerificationRequest:
		return realtime.EventNewVerificationRequest
	case models.NotificationNewDocumentRequest:
		return realtime.EventNewDocumentRequest
	default:
		return realtime.EventNewBarangayReport
	}
}

func notificationRooms(n models.Notification) []string {
	switch n.Type {
	case models.NotificationNewBarangayReport:
		return []string{realtime.BarangayRoom(n.Location), realtime.CityRoom(n.Location)}
	case models.NotificationVerificationRequest:
		return []string{realtime.BarangayRoom(n.Location), realtime.AdminRoom}
	default:
		return []string{realtime.BarangayRoom(n.Location)}
	}
}

// List returns the caller's notifications, hiding those read longer ago than the retention.
func (s *NotificationService) List(ctx context.Context, claims *models.JWTClaims, requested models.Location, page, size int) ([]models.Notification, *models.Pagination, error) {
	scope, err := ResolveScope(claims, requested)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	cutoff := feed.Cutoff(now, s.cfg.Retention)
	items, total, err := s.repo.List(ctx, models.NotificationFilter{Location: scope, ReadSince: &cutoff, Page: page, PageSize: size})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return feed.Visible(items, now, s.cfg.Retention), pagination(page, size, total), nil
}

// MarkRead flags a notification read. The first reader is kept.
func (s *NotificationService) MarkRead(ctx context.Context, claims *models.JWTClaims, id int64, requested models.Location) (*models.Notification, error) {
	scope, err := ResolveScope(claims, requested)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.MarkRead(ctx, id, actorName(dto.Actor{}, claims), s.now().UTC(), scope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification")
	}
	s.emitter.Emit(ctx, scopeRoom(n.Location), realtime.EventNotificationUpdate, n)
	return n, nil
}

// Delete removes a notification inside the caller's scope.
func (s *NotificationService) Delete(ctx context.Context, claims *models.JWTClaims, id int64, requested models.Location) error {
	scope, err := ResolveScope(claims, requested)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, scope); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	s.emitter.Emit(ctx, scopeRoom(scope), realtime.EventNotificationUpdate, map[string]interface{}{"id": id, "deleted": true})
	return nil
}

// CountUnread returns the number of unread notifications in scope.
func (s *NotificationService) CountUnread(ctx context.Context, scope models.Location) (int, error) {
	return s.repo.CountUnread(ctx, scope)
}

// PurgeExpired deletes notifications read before now minus the retention.
func (s *NotificationService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := feed.Cutoff(s.now(), s.cfg.Retention)
	n, err := s.repo.PurgeReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordPurge(n)
	if n > 0 {
		s.logger.Info("purged read notifications", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}

// RunPurge runs PurgeExpired on the configured interval until ctx ends.
func (s *NotificationService) RunPurge(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("notification purge failed", zap.Error(err))
			}
		}
	}
}

func scopeRoom(loc models.Location) string {
	switch {
	case loc.Barangay != "":
		return realtime.BarangayRoom(loc)
	case loc.City != "":
		return realtime.CityRoom(loc)
	default:
		return realtime.AdminRoom
	}
}
