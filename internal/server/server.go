package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/agencydesk/agencydesk/internal/account"
	accountdomain "github.com/agencydesk/agencydesk/internal/account/domain"
	"github.com/agencydesk/agencydesk/internal/auth"
	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/authz"
	"github.com/agencydesk/agencydesk/internal/campaign"
	campaigndomain "github.com/agencydesk/agencydesk/internal/campaign/domain"
	"github.com/agencydesk/agencydesk/internal/changelog"
	changelogdomain "github.com/agencydesk/agencydesk/internal/changelog/domain"
	"github.com/agencydesk/agencydesk/internal/client"
	clientdomain "github.com/agencydesk/agencydesk/internal/client/domain"
	"github.com/agencydesk/agencydesk/internal/config"
	"github.com/agencydesk/agencydesk/internal/notification"
	notifdomain "github.com/agencydesk/agencydesk/internal/notification/domain"
	"github.com/agencydesk/agencydesk/internal/providers/email"
	"github.com/agencydesk/agencydesk/internal/report"
	reportdomain "github.com/agencydesk/agencydesk/internal/report/domain"
	"github.com/agencydesk/agencydesk/internal/settings"
	settingsdomain "github.com/agencydesk/agencydesk/internal/settings/domain"
	"github.com/agencydesk/agencydesk/internal/timeentry"
	timeentrydomain "github.com/agencydesk/agencydesk/internal/timeentry/domain"
	"github.com/agencydesk/agencydesk/internal/user"
	userdomain "github.com/agencydesk/agencydesk/internal/user/domain"
	"github.com/agencydesk/agencydesk/internal/website"
	websitedomain "github.com/agencydesk/agencydesk/internal/website/domain"
)

var Module = fx.Module("http.server",
	MetricsModule,
	fx.Provide(NewEngine),
	authz.Module,
	auth.Module,
	email.Module,
	client.Module,
	account.Module,
	website.Module,
	campaign.Module,
	timeentry.Module,
	changelog.Module,
	notification.Module,
	user.Module,
	report.Module,
	settings.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	db              *gorm.DB
	genID           *snowflake.Node
	authSvc         authdomain.Service
	authzSvc        authz.Service
	clientSvc       clientdomain.Service
	accountSvc      accountdomain.Service
	websiteSvc      websitedomain.Service
	campaignSvc     campaigndomain.Service
	timeEntrySvc    timeentrydomain.Service
	changeLogSvc    changelogdomain.Service
	notificationSvc notifdomain.Service
	userSvc         userdomain.Service
	reportSvc       reportdomain.Service
	settingsSvc     settingsdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	DB              *gorm.DB
	GenID           *snowflake.Node
	AuthSvc         authdomain.Service
	AuthzSvc        authz.Service
	ClientSvc       clientdomain.Service
	AccountSvc      accountdomain.Service
	WebsiteSvc      websitedomain.Service
	CampaignSvc     campaigndomain.Service
	TimeEntrySvc    timeentrydomain.Service
	ChangeLogSvc    changelogdomain.Service
	NotificationSvc notifdomain.Service
	UserSvc         userdomain.Service
	ReportSvc       reportdomain.Service
	SettingsSvc     settingsdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http"),
		db:              p.DB,
		genID:           p.GenID,
		authSvc:         p.AuthSvc,
		authzSvc:        p.AuthzSvc,
		clientSvc:       p.ClientSvc,
		accountSvc:      p.AccountSvc,
		websiteSvc:      p.WebsiteSvc,
		campaignSvc:     p.CampaignSvc,
		timeEntrySvc:    p.TimeEntrySvc,
		changeLogSvc:    p.ChangeLogSvc,
		notificationSvc: p.NotificationSvc,
		userSvc:         p.UserSvc,
		reportSvc:       p.ReportSvc,
		settingsSvc:     p.SettingsSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	grp := s.engine.Group("/api/v1/auth")
	grp.POST("/login", s.Login)
	grp.POST("/google", s.GoogleLogin)
	grp.POST("/forgot-password", s.ForgotPassword)
	grp.POST("/reset-password", s.ResetPassword)
	grp.POST("/accept-invite", s.AcceptInvite)
	grp.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", s.AuthRequired())

	clients := api.Group("/clients")
	clients.GET("", s.ListClients)
	clients.POST("", s.CreateClient)
	clients.GET("/:id", s.GetClient)
	clients.PATCH("/:id", s.UpdateClient)
	clients.DELETE("/:id", s.DeleteClient)
	clients.POST("/:id/managers", s.AssignClientManager)
	clients.DELETE("/:id/managers/:userID", s.RemoveClientManager)

	accounts := api.Group("/accounts")
	accounts.GET("", s.ListAccounts)
	accounts.POST("", s.CreateAccount)
	accounts.GET("/:id", s.GetAccount)
	accounts.PATCH("/:id", s.UpdateAccount)
	accounts.DELETE("/:id", s.DeleteAccount)

	websites := api.Group("/websites")
	websites.GET("", s.ListWebsites)
	websites.POST("", s.CreateWebsite)
	websites.GET("/:id", s.GetWebsite)
	websites.PATCH("/:id", s.UpdateWebsite)
	websites.DELETE("/:id", s.DeleteWebsite)

	campaigns := api.Group("/campaigns")
	campaigns.GET("", s.ListCampaigns)
	campaigns.POST("", s.CreateCampaign)
	campaigns.GET("/:id", s.GetCampaign)
	campaigns.PATCH("/:id", s.UpdateCampaign)
	campaigns.DELETE("/:id", s.DeleteCampaign)
	campaigns.PATCH("/:id/status", s.ChangeCampaignStatus)
	campaigns.POST("/:id/contributors", s.AssignCampaignContributor)
	campaigns.DELETE("/:id/contributors/:userID", s.RemoveCampaignContributor)

	entries := api.Group("/time-entries")
	entries.GET("", s.ListTimeEntries)
	entries.POST("", s.CreateTimeEntry)
	entries.GET("/:id", s.GetTimeEntry)
	entries.PATCH("/:id", s.UpdateTimeEntry)
	entries.DELETE("/:id", s.DeleteTimeEntry)

	changeLogs := api.Group("/change-logs")
	changeLogs.GET("", s.ListChangeLogs)
	changeLogs.POST("", s.CreateChangeLog)

	notifications := api.Group("/notifications")
	notifications.GET("", s.ListNotifications)
	notifications.POST("/:id/read", s.MarkNotificationRead)
	notifications.POST("/read-all", s.MarkAllNotificationsRead)

	users := api.Group("/users")
	users.GET("", s.ListUsers)
	users.POST("/invite", s.InviteUser)
	users.GET("/:id", s.GetUser)
	users.PATCH("/:id", s.UpdateUser)
	users.DELETE("/:id", s.DeleteUser)

	reports := api.Group("/reports")
	reports.GET("/dashboard", s.DashboardStats)
	reports.GET("/hours-by-client", s.HoursByClient)
	reports.GET("/hours-by-client.csv", s.ExportHoursByClient)
	reports.GET("/hours-by-campaign", s.HoursByCampaign)
	reports.GET("/hours-by-user", s.HoursByUser)
	reports.GET("/hours-by-month", s.HoursByMonth)
	reports.GET("/my-hours", s.MyHours)
	reports.GET("/client-summary/:id", s.ClientSummary)

	api.GET("/settings", s.GetSettings)
	api.PATCH("/settings", s.UpdateSettings)
}
