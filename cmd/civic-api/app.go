package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-report-api/internal/handler"
	"github.com/noah-isme/civic-report-api/internal/realtime"
	"github.com/noah-isme/civic-report-api/internal/repository"
	"github.com/noah-isme/civic-report-api/internal/service"
	"github.com/noah-isme/civic-report-api/pkg/cache"
	"github.com/noah-isme/civic-report-api/pkg/config"
	"github.com/noah-isme/civic-report-api/pkg/database"
	"github.com/noah-isme/civic-report-api/pkg/jobs"
	"github.com/noah-isme/civic-report-api/pkg/logger"
	"github.com/noah-isme/civic-report-api/pkg/storage"
)

const (
	cacheNamespace        = "civic"
	exportCleanupInterval = time.Hour
)

// app holds every long-lived component of a running instance.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sqlx.DB
	redis   *redis.Client
	metrics *service.MetricsService

	hub     *realtime.Hub
	relay   *realtime.RedisRelay
	emitter realtime.Emitter
	queue   *jobs.Queue

	auth          *service.AuthService
	notifications *service.NotificationService
	dashboard     *service.DashboardService
	sweeper       *service.PickupExpirySweeper
	exports       *service.ExportService
	reports       *service.IncidentReportService
	documents     *service.DocumentRequestService
	accounts      *service.AccountService
	mobileUsers   *service.MobileUserService
	announcements *service.AnnouncementService
}

// loadBase reads configuration and builds the logger.
func loadBase() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logr, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, logr, err := loadBase()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logr, metrics: service.NewMetricsService()}

	a.db, err = database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(a.db, logr); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	if cfg.Redis.Enabled {
		a.redis, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache and relay", zap.Error(err))
			a.redis = nil
		}
	}

	a.hub = realtime.NewHub(cfg.Realtime.SendBuffer, a.metrics, logr)
	a.emitter = a.hub
	if cfg.Realtime.RedisRelay && a.redis != nil {
		a.relay = realtime.NewRedisRelay(a.redis, cfg.Realtime.Channel, a.hub, logr)
		a.emitter = a.relay
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		return nil, fmt.Errorf("uploads storage: %w", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("export storage: %w", err)
	}

	validate := validator.New()

	reportRepo := repository.NewIncidentReportRepository(a.db)
	documentRepo := repository.NewDocumentRequestRepository(a.db)
	accountRepo := repository.NewAccountRepository(a.db)
	mobileRepo := repository.NewMobileUserRepository(a.db)
	notificationRepo := repository.NewNotificationRepository(a.db)
	announcementRepo := repository.NewAnnouncementRepository(a.db)

	var cacheRepo service.CacheRepository
	if a.redis != nil {
		cacheRepo = repository.NewCacheRepository(a.redis, cacheNamespace)
	}
	cacheSvc := service.NewCacheService(cacheRepo, a.metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	a.auth = service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret})
	a.dashboard = service.NewDashboardService(service.DashboardServiceParams{
		Reports:       reportRepo,
		Documents:     documentRepo,
		Accounts:      accountRepo,
		Notifications: notificationRepo,
		Cache:         cacheSvc,
		Logger:        logr,
		Config:        service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	a.notifications = service.NewNotificationService(notificationRepo, a.emitter, a.metrics, service.NotificationConfig{
		Retention:     cfg.Notifications.Retention,
		PurgeInterval: cfg.Notifications.PurgeInterval,
	}, logr)
	a.queue = jobs.NewQueue("notifications", a.notifications.Handle, jobs.QueueConfig{
		Workers:     cfg.Notifications.Workers,
		MaxRetries:  cfg.Notifications.Retries,
		Logger:      logr,
		OnExhausted: a.notifications.OnExhausted,
	})
	a.notifications.AttachQueue(a.queue)

	a.reports = service.NewIncidentReportService(service.IncidentReportServiceParams{
		Repo:      reportRepo,
		Directory: accountRepo,
		Uploads:   uploads,
		Notifier:  a.notifications,
		Emitter:   a.emitter,
		Dashboard: a.dashboard,
		Validator: validate,
		Logger:    logr,
		Config: service.ReportConfig{
			MaxUploadBytes: cfg.Uploads.MaxFileBytes,
			RequireProof:   cfg.Workflow.RequireProof,
		},
	})
	a.documents = service.NewDocumentRequestService(documentRepo, a.notifications, a.emitter, a.dashboard, validate, logr,
		service.DocumentConfig{PickupWindow: cfg.Sweeper.PickupWindow})
	a.sweeper = service.NewPickupExpirySweeper(documentRepo, a.emitter, a.dashboard, a.metrics, service.SweeperConfig{
		Interval:     cfg.Sweeper.Interval,
		QueryTimeout: cfg.Sweeper.QueryTimeout,
	}, logr)
	a.accounts = service.NewAccountService(accountRepo, a.emitter, a.dashboard, validate, logr)
	a.mobileUsers = service.NewMobileUserService(mobileRepo, a.notifications, a.emitter, validate, logr)
	a.announcements = service.NewAnnouncementService(announcementRepo, a.emitter, validate, logr)

	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	a.exports = service.NewExportService(reportRepo, exportStore, signer, validate, service.ExportConfig{
		APIPrefix: "/api/exports",
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)

	return a, nil
}

func (a *app) router() *gin.Engine {
	if a.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	return handler.NewRouter(handler.RouterDeps{
		Env:            a.cfg.Env,
		AllowedOrigins: a.cfg.CORS.AllowedOrigins,
		UploadsDir:     a.cfg.Uploads.Dir,
		Logger:         a.logger,
		Tokens:         a.auth,
		MetricsService: a.metrics,
		Socket:         realtime.NewSocketServer(a.hub, a.auth, a.cfg.CORS.AllowedOrigins, a.logger),

		Metrics:       handler.NewMetricsHandler(a.metrics, a.db),
		Reports:       handler.NewIncidentReportHandler(a.reports),
		Documents:     handler.NewDocumentRequestHandler(a.documents),
		Notifications: handler.NewNotificationHandler(a.notifications),
		Accounts:      handler.NewAccountHandler(a.accounts, a.mobileUsers),
		Announcements: handler.NewAnnouncementHandler(a.announcements),
		Dashboard:     handler.NewDashboardHandler(a.dashboard),
		Exports:       handler.NewExportHandler(a.exports, a.logger),
	})
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.logger.Sync()
}
