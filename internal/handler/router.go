package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	internalmiddleware "github.com/noah-isme/civic-report-api/internal/middleware"
	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/service"
	"github.com/noah-isme/civic-report-api/pkg/config"
	"github.com/noah-isme/civic-report-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/civic-report-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/civic-report-api/pkg/middleware/requestid"
)

// RouterDeps carries everything NewRouter mounts. Nil handlers leave their routes unregistered.
type RouterDeps struct {
	Env            string
	AllowedOrigins []string
	UploadsDir     string
	Logger         *zap.Logger
	Tokens         internalmiddleware.TokenValidator
	MetricsService *service.MetricsService
	Socket         http.Handler

	Metrics       *MetricsHandler
	Reports       *IncidentReportHandler
	Documents     *DocumentRequestHandler
	Notifications *NotificationHandler
	Accounts      *AccountHandler
	Announcements *AnnouncementHandler
	Dashboard     *DashboardHandler
	Exports       *ExportHandler
}

// NewRouter builds the gin engine with the public, admin, LGU, barangay and mobile route groups.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetricsHandler(deps.MetricsService, nil)
	}

	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(deps.MetricsService))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", deps.Metrics.Health)
	r.GET("/ready", deps.Metrics.Ready)
	r.GET("/metrics", deps.Metrics.Prometheus)
	if deps.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if deps.UploadsDir != "" {
		r.Static("/uploads", deps.UploadsDir)
	}
	if deps.Socket != nil {
		r.GET("/socket", gin.WrapH(deps.Socket))
	}

	api := r.Group("/api")
	api.GET("/workflow/transitions", Transitions)
	if deps.Exports != nil {
		api.GET("/exports/:token", deps.Exports.Download)
	}
	if deps.Accounts != nil {
		api.POST("/accounts/register", deps.Accounts.Register)
		api.POST("/mobile/register", deps.Accounts.RegisterMobile)
	}

	auth := internalmiddleware.JWT(deps.Tokens)

	admin := api.Group("/admin", auth, internalmiddleware.RequireRoles(models.RoleSuperAdmin))
	lgu := api.Group("/lgu", auth, internalmiddleware.RequireRoles(models.RoleLGU))
	brgy := api.Group("/brgy", auth, internalmiddleware.RequireRoles(models.RoleBarangay))
	mobile := api.Group("/mobile", auth, internalmiddleware.RequireRoles(models.RoleMobile))

	if h := deps.Announcements; h != nil {
		admin.GET("/get-all-announcements", h.List)
		admin.POST("/create-announcement", h.Create)
		admin.DELETE("/delete-announcement/:id", h.Delete)
		mobile.GET("/announcements", h.ListMine)
	}

	if h := deps.Reports; h != nil {
		admin.GET("/admin-get-all-reports", h.List)
		admin.PATCH("/update-report-status/:id", h.UpdateStatus)
		admin.DELETE("/delete-incident-report/:id", h.Delete)

		lgu.GET("/reports", h.List)
		lgu.PATCH("/update-report-status/:id", h.UpdateStatus)

		brgy.GET("/reports", h.List)
		brgy.DELETE("/barangay-delete-incident-report/:id", h.Delete)
		brgy.PATCH("/update-barangay-report-status/:id", h.UpdateStatus)
		brgy.PATCH("/transfer-report/:id", h.Transfer)
		brgy.GET("/barangays", h.Barangays)

		mobile.POST("/incident-reports", h.Submit)
		mobile.GET("/incident-reports", h.List)
	}

	if h := deps.Documents; h != nil {
		admin.GET("/document-requests", h.List)
		admin.PATCH("/update-document-request-status/:id", h.UpdateStatus)
		admin.PATCH("/reject-document-request/:id", h.Reject)

		lgu.GET("/document-requests", h.List)

		brgy.GET("/document-requests", h.List)
		brgy.PATCH("/update-document-request-status/:id", h.UpdateStatus)
		brgy.PATCH("/reject-document-request/:id", h.Reject)

		mobile.POST("/document-requests", h.Submit)
		mobile.GET("/document-requests", h.List)
	}

	if h := deps.Notifications; h != nil {
		for _, g := range []*gin.RouterGroup{admin, lgu, brgy} {
			g.GET("/notifications", h.List)
			g.PUT("/notifications/:id/mark-read", h.MarkRead)
			g.DELETE("/notifications/:id", h.Delete)
		}
	}

	if h := deps.Accounts; h != nil {
		admin.GET("/accounts", h.List)
		admin.PATCH("/accounts/:id/status", h.UpdateStatus)
		admin.PATCH("/mobile-users/:id/verification", h.ReviewVerification)
		brgy.PATCH("/mobile-users/:id/verification", h.ReviewVerification)
		mobile.POST("/verification-request", h.RequestVerification)
	}

	if h := deps.Dashboard; h != nil {
		admin.GET("/dashboard/summary", h.Summary)
		lgu.GET("/dashboard/summary", h.Summary)
		brgy.GET("/dashboard/summary", h.Summary)
	}

	if h := deps.Exports; h != nil {
		admin.POST("/reports/export", h.Export)
	}

	return r
}
