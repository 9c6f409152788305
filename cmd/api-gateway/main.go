package main

import (
	"context"
	"fmt"
	"log"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/shiftloom/roster-api/api/swagger"
	internalhandler "github.com/shiftloom/roster-api/internal/handler"
	internalmiddleware "github.com/shiftloom/roster-api/internal/middleware"
	"github.com/shiftloom/roster-api/internal/models"
	"github.com/shiftloom/roster-api/internal/repository"
	"github.com/shiftloom/roster-api/internal/service"
	"github.com/shiftloom/roster-api/pkg/cache"
	"github.com/shiftloom/roster-api/pkg/config"
	"github.com/shiftloom/roster-api/pkg/database"
	"github.com/shiftloom/roster-api/pkg/jobs"
	"github.com/shiftloom/roster-api/pkg/logger"
	corsmiddleware "github.com/shiftloom/roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/shiftloom/roster-api/pkg/middleware/requestid"
	"github.com/shiftloom/roster-api/pkg/storage"
)

// @title ShiftLoom Roster API
// @version 0.1.0
// @description Weekly roster build engine and operations surface
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)

	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "shiftloom-roster-api",
		Audience:           []string{"shiftloom-roster-clients"},
	})
	authHandler := internalhandler.NewAuthHandler(authSvc)
	userSvc := service.NewUserService(userRepo, nil, logr)
	userHandler := internalhandler.NewUserHandler(userSvc)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
	authRoutes.POST("/reset-password", authHandler.ResetPassword)
	protectedAuth := authRoutes.Group("")
	protectedAuth.Use(internalmiddleware.JWT(authSvc))
	protectedAuth.GET("/me", authHandler.Me)
	protectedAuth.POST("/logout", authHandler.Logout)
	protectedAuth.POST("/change-password", authHandler.ChangePassword)

	workerRepo := repository.NewWorkerRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	ruleRepo := repository.NewConstraintRuleRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	engineConfigRepo := repository.NewEngineConfigRepository(db)
	planRepo := repository.NewPlanRepository(db)
	slotRepo := repository.NewPlanSlotRepository(db)
	analyticsRepo := repository.NewRosterAnalyticsRepository(db)

	rosterSvc := service.NewRosterService(
		periodRepo,
		templateRepo,
		workerRepo,
		ruleRepo,
		historyRepo,
		engineConfigRepo,
		planRepo,
		slotRepo,
		db,
		metricsSvc,
		nil,
		logr,
		service.RosterConfig{
			ProposalTTL: cfg.Roster.ProposalTTL,
			HistoryDays: cfg.Roster.HistoryDays,
		},
	)
	rosterHandler := internalhandler.NewRosterHandler(rosterSvc)

	engineConfigSvc := service.NewEngineConfigService(engineConfigRepo, userRepo, nil, logr)
	engineConfigHandler := internalhandler.NewEngineConfigHandler(engineConfigSvc)

	var cacheRepo service.CacheRepository
	var cacheCloser interface{ Close() error }
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("cache disabled", "error", err)
	} else {
		cacheCloser = client
		cacheRepo = repository.NewCacheRepository(client, logr)
	}
	if cacheCloser != nil {
		defer cacheCloser.Close()
	}

	var reportHandler *internalhandler.ReportHandler
	if cfg.Export.Enabled {
		reportRepo := repository.NewReportRepository(db)
		fileStore, err := storage.NewLocalStorage(cfg.Export.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL)
		exportCfg := service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Export.SignedURLTTL}
		exportSvc := service.NewExportService(planRepo, slotRepo, fileStore, signer, exportCfg, logr, nil, nil)
		reportWorker := service.NewReportWorker(reportRepo, exportSvc, cfg.Export.WorkerRetries, logr)
		workers := cfg.Export.WorkerConcurrency
		if workers <= 0 {
			workers = 1
		}
		queueCfg := jobs.QueueConfig{
			Workers:    workers,
			BufferSize: workers * 4,
			MaxRetries: cfg.Export.WorkerRetries,
			RetryDelay: 5 * time.Second,
			Logger:     logr,
		}
		queueCtx, cancel := context.WithCancel(context.Background())
		reportQueue := jobs.NewQueue("reports", reportWorker.Handle, queueCfg)
		reportQueue.Start(queueCtx)
		defer func() {
			cancel()
			reportQueue.Stop()
		}()
		reportSvc := service.NewReportService(reportRepo, planRepo, reportQueue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Export.SignedURLTTL,
			CleanupInterval: cfg.Export.CleanupInterval,
			MaxRetries:      cfg.Export.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(queueCtx)
		reportSvc.StartCleanup(queueCtx)
		reportHandler = internalhandler.NewReportHandler(reportSvc)
	}

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	usersGroup := secured.Group("/users")
	usersGroup.Use(internalmiddleware.RBAC(string(models.RoleAdmin)))
	usersGroup.GET("", userHandler.List)
	usersGroup.POST("", userHandler.Create)
	usersGroup.GET("/:id", userHandler.Get)
	usersGroup.PUT("/:id", userHandler.Update)
	usersGroup.DELETE("/:id", userHandler.Delete)

	rostersGroup := secured.Group("/rosters")
	rostersGroup.Use(internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleManager)))
	rostersGroup.POST("/preview", rosterHandler.Preview)
	rostersGroup.POST("/commit", rosterHandler.Commit)
	rostersGroup.GET("", rosterHandler.List)
	rostersGroup.GET("/:id/slots", rosterHandler.Slots)
	rostersGroup.DELETE("/:id", rosterHandler.Delete)

	engineConfigGroup := secured.Group("/engine-config")
	engineConfigGroup.Use(internalmiddleware.RBAC(string(models.RoleAdmin)))
	engineConfigGroup.GET("", engineConfigHandler.List)
	engineConfigGroup.GET("/:key", engineConfigHandler.Get)
	engineConfigGroup.PUT("/:key", engineConfigHandler.Update)

	if reportHandler != nil {
		reportsGroup := secured.Group("/reports")
		reportsGroup.Use(internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleManager)))
		reportsGroup.POST("/generate", reportHandler.GenerateReport)
		reportsGroup.GET("/status/:id", reportHandler.ReportStatus)
		secured.GET("/export/:token", reportHandler.DownloadReport)
	}

	if cfg.Dashboard.Enabled {
		dashboardCache := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)
		dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
			Plans:        planRepo,
			Understaffed: slotRepo,
			Analytics:    analyticsRepo,
			Cache:        dashboardCache,
			Logger:       logr,
			Config: service.DashboardServiceConfig{
				CacheTTL:   cfg.Dashboard.CacheTTL,
				TrendWeeks: cfg.Dashboard.TrendWeeks,
			},
		})
		dashboardHandler := internalhandler.NewDashboardHandler(dashboardSvc)

		dashboardGroup := secured.Group("")
		dashboardGroup.Use(internalmiddleware.WithResponseMeta())
		dashboardGroup.GET("/dashboard", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleManager)), dashboardHandler.Operations)
	}

	registerPprof(r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerPprof(r *gin.Engine) {
	group := r.Group("/debug/pprof")
	group.GET("/", gin.WrapF(pprof.Index))
	group.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	group.GET("/profile", gin.WrapF(pprof.Profile))
	group.POST("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/trace", gin.WrapF(pprof.Trace))
	group.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
	group.GET("/block", gin.WrapH(pprof.Handler("block")))
	group.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	group.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	group.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
	group.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
}
