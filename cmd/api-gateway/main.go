package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/acadgrid/timetable-api/internal/handler"
	"github.com/acadgrid/timetable-api/internal/middleware"
	"github.com/acadgrid/timetable-api/internal/models"
	"github.com/acadgrid/timetable-api/internal/repository"
	"github.com/acadgrid/timetable-api/internal/service"
	"github.com/acadgrid/timetable-api/internal/timetable"
	"github.com/acadgrid/timetable-api/pkg/cache"
	"github.com/acadgrid/timetable-api/pkg/config"
	"github.com/acadgrid/timetable-api/pkg/database"
	"github.com/acadgrid/timetable-api/pkg/jobs"
	"github.com/acadgrid/timetable-api/pkg/logger"
	corsmiddleware "github.com/acadgrid/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadgrid/timetable-api/pkg/middleware/requestid"
	"github.com/acadgrid/timetable-api/pkg/storage"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	calendar, err := buildCalendar(cfg.Timetable)
	if err != nil {
		logr.Sugar().Fatalw("invalid timetable calendar", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	ttStore := repository.NewTimetableStore(redisClient, logr)

	auditSvc := service.NewAuditService(auditRepo, jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.MaxRetries,
		RetryDelay: cfg.Audit.RetryDelay,
		Logger:     logr,
	}, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Audit.Enabled {
		auditSvc.Start(rootCtx)
		defer auditSvc.Stop()
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "timetable-api",
	})
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	batchSvc := service.NewBatchService(batchRepo, validate, logr)

	ttSvc := service.NewTimetableService(ttStore, roomRepo, facultyRepo, courseRepo, auditSvc, metricsSvc, validate, logr, service.TimetableConfig{
		Calendar: calendar,
		Engine: timetable.EngineConfig{
			WorkloadCeiling: cfg.Timetable.WorkloadCeiling,
			HistoryLimit:    cfg.Timetable.HistoryLimit,
		},
		SaveTimeout: cfg.Timetable.SaveTimeout,
	})
	defer ttSvc.Shutdown()

	var exportSvc *service.ExportService
	if cfg.Export.Enabled {
		files, err := storage.NewLocalStorage(cfg.Export.Dir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Export.TokenSecret, cfg.Export.TokenTTL)
		exportSvc = service.NewExportService(ttStore, calendar, files, signer, service.ExportConfig{
			ResultTTL: cfg.Export.ResultTTL,
		}, logr)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	registerRoutes(r, cfg, handlers{
		auth:      handler.NewAuthHandler(authSvc),
		rooms:     handler.NewRoomHandler(roomSvc),
		faculty:   handler.NewFacultyHandler(facultySvc),
		courses:   handler.NewCourseHandler(courseSvc),
		batches:   handler.NewBatchHandler(batchSvc),
		timetable: handler.NewTimetableHandler(ttSvc),
		audit:     handler.NewAuditHandler(auditSvc),
		export:    exportHandlerOrNil(exportSvc),
	}, authSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}

type handlers struct {
	auth      *handler.AuthHandler
	rooms     *handler.RoomHandler
	faculty   *handler.FacultyHandler
	courses   *handler.CourseHandler
	batches   *handler.BatchHandler
	timetable *handler.TimetableHandler
	audit     *handler.AuditHandler
	export    *handler.ExportHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, h handlers, authSvc *service.AuthService) {
	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", h.auth.Login)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.GET("/auth/me", h.auth.Me)
	authed.POST("/auth/register", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), h.auth.Register)

	editors := middleware.RequireTimetableEditors()
	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	rooms := authed.Group("/rooms")
	rooms.GET("", h.rooms.List)
	rooms.GET("/:id", h.rooms.Get)
	rooms.POST("", admins, h.rooms.Create)
	rooms.PUT("/:id", admins, h.rooms.Update)
	rooms.DELETE("/:id", admins, h.rooms.Delete)

	faculty := authed.Group("/faculty")
	faculty.GET("", h.faculty.List)
	faculty.GET("/:id", h.faculty.Get)
	faculty.POST("", admins, h.faculty.Create)
	faculty.PUT("/:id", admins, h.faculty.Update)
	faculty.DELETE("/:id", admins, h.faculty.Deactivate)

	courses := authed.Group("/courses")
	courses.GET("", h.courses.List)
	courses.GET("/:id", h.courses.Get)
	courses.POST("", admins, h.courses.Create)
	courses.PUT("/:id", admins, h.courses.Update)
	courses.DELETE("/:id", admins, h.courses.Delete)

	batches := authed.Group("/batches")
	batches.GET("", h.batches.List)
	batches.GET("/:id", h.batches.Get)
	batches.POST("", admins, h.batches.Create)
	batches.PUT("/:id", admins, h.batches.Update)
	batches.DELETE("/:id", admins, h.batches.Delete)

	tt := authed.Group("/timetables")
	tt.GET("", h.timetable.List)
	key := tt.Group("/:semester/:branch/:batch/:type")
	key.GET("", h.timetable.Get)
	key.DELETE("", admins, h.timetable.Delete)
	key.POST("/place", editors, h.timetable.Place)
	key.POST("/evaluate", editors, h.timetable.Evaluate)
	key.POST("/move", editors, h.timetable.Move)
	key.POST("/remove", editors, h.timetable.Remove)
	key.POST("/undo", editors, h.timetable.Undo)
	key.POST("/redo", editors, h.timetable.Redo)
	key.POST("/suggestions", editors, h.timetable.Suggest)
	key.POST("/suggestions/apply", editors, h.timetable.ApplySuggestion)
	key.POST("/auto-arrange", editors, h.timetable.AutoArrange)
	key.POST("/save", editors, h.timetable.Save)
	key.GET("/index/validate", h.timetable.ValidateIndex)

	if h.export != nil {
		key.POST("/export", editors, h.export.Generate)
		api.GET("/exports/download", h.export.Download)
	}

	audit := authed.Group("/audit", admins)
	audit.GET("", h.audit.List)
}

func buildCalendar(cfg config.TimetableConfig) (*timetable.Calendar, error) {
	if len(cfg.Days) == 0 && len(cfg.Slots) == 0 {
		return timetable.DefaultCalendar(), nil
	}
	days := cfg.Days
	if len(days) == 0 {
		days = timetable.DefaultDays
	}
	slots := cfg.Slots
	if len(slots) == 0 {
		slots = timetable.DefaultSlots
	}
	return timetable.NewCalendar(days, slots)
}

func exportHandlerOrNil(svc *service.ExportService) *handler.ExportHandler {
	if svc == nil {
		return nil
	}
	return handler.NewExportHandler(svc)
}
