package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/realtime"
)

type pickupExpirer interface {
	ExpireOverduePickups(ctx context.Context, now time.Time, entry models.StatusHistoryEntry) ([]models.DocumentRequest, error)
}

// SweeperConfig tunes the pickup expiry job.
type SweeperConfig struct {
	Interval     time.Duration
	QueryTimeout time.Duration
}

// PickupExpirySweeper flips overdue "ready for pick-up" requests to unclaimed.
type PickupExpirySweeper struct {
	repo      pickupExpirer
	emitter   realtime.Emitter
	dashboard dashboardInvalidator
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       SweeperConfig
	now       func() time.Time
	mu        sync.Mutex
}

// NewPickupExpirySweeper constructs the sweeper.
func NewPickupExpirySweeper(repo pickupExpirer, emitter realtime.Emitter, dashboard dashboardInvalidator, metrics *MetricsService, cfg SweeperConfig, logger *zap.Logger) *PickupExpirySweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}
	return &PickupExpirySweeper{
		repo:      repo,
		emitter:   emitter,
		dashboard: dashboard,
		metrics:   metrics,
		logger:    logger.With(zap.String("job", "pickup_expiry")),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Sweep runs one tick and returns the number of requests that expired. A tick that finds
// another sweep in progress is skipped.
func (s *PickupExpirySweeper) Sweep(ctx context.Context) (int, error) {
	if !s.mu.TryLock() {
		s.logger.Info("previous sweep still running, skipping tick")
		s.metrics.RecordSweep("skipped", 0)
		return 0, nil
	}
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	now := s.now().UTC()
	entry := models.StatusHistoryEntry{Label: string(models.DocumentUnclaimed), UpdatedBy: models.SystemActor, UpdatedAt: now}
	expired, err := s.repo.ExpireOverduePickups(ctx, now, entry)
	if err != nil {
		s.metrics.RecordSweep("error", 0)
		return 0, err
	}
	s.metrics.RecordSweep("ok", len(expired))

	for i := range expired {
		emitDocumentUpdate(ctx, s.emitter, &expired[i])
	}
	if len(expired) > 0 {
		s.logger.Info("pickup deadlines expired", zap.Int("count", len(expired)))
		if s.dashboard != nil {
			s.dashboard.Invalidate(ctx)
		}
	}
	return len(expired), nil
}

// Run sweeps on the configured interval until ctx ends. Failed ticks are logged and retried
// on the next tick.
func (s *PickupExpirySweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	s.logger.Info("pickup sweeper started", zap.Duration("interval", s.cfg.Interval))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("pickup sweep failed", zap.Error(err))
			}
		}
	}
}
