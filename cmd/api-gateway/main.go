package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-gradebook-api/api/swagger"
	"github.com/noah-isme/sma-gradebook-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-gradebook-api/internal/middleware"
	"github.com/noah-isme/sma-gradebook-api/internal/repository"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/cache"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
	"github.com/noah-isme/sma-gradebook-api/pkg/database"
	"github.com/noah-isme/sma-gradebook-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-gradebook-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-gradebook-api/pkg/storage"
)

// @title SMA Gradebook API
// @version 1.0.0
// @description Grade records, live grades table and printable reports.
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 10 * time.Second

type handlers struct {
	students *handler.StudentHandler
	subjects *handler.SubjectHandler
	grades   *handler.GradeHandler
	reports  *handler.ReportHandler
	metrics  *handler.MetricsHandler
}

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
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := repository.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to migrate schema", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.SnapshotTTL, logr, cfg.Cache.Enabled && redisClient != nil)
	gradebookSvc := service.NewGradebookService(studentRepo, subjectRepo, gradeRepo, cacheSvc, metricsSvc, service.GradebookConfig{
		SnapshotTTL:  cfg.Cache.SnapshotTTL,
		DefaultTitle: cfg.Reports.Title,
	}, logr)

	warmer := service.NewSnapshotWarmer(cacheSvc, gradebookSvc, logr)
	if cacheSvc.Enabled() {
		warmer.Start(ctx)
		defer warmer.Stop()
	}

	studentSvc := service.NewStudentService(studentRepo, warmer, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, warmer, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, studentRepo, subjectRepo, warmer, validate, logr)

	fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare report storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(fileStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, nil, nil)
	reportSvc := service.NewReportService(gradebookSvc, exportSvc, metricsSvc, validate, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	reportSvc.StartCleanup(ctx)

	checks := []handler.ReadinessCheck{{Name: "database", Check: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "cache", Check: cacheRepo.Ping})
	}

	r := newRouter(cfg, logr, metricsSvc, handlers{
		students: handler.NewStudentHandler(studentSvc),
		subjects: handler.NewSubjectHandler(subjectSvc),
		grades:   handler.NewGradeHandler(gradeSvc, gradebookSvc),
		reports:  handler.NewReportHandler(gradebookSvc, reportSvc, logr),
		metrics:  handler.NewMetricsHandler(metricsSvc, checks...),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, h handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())

	api.GET("/metrics/summary", h.metrics.Summary)

	students := api.Group("/students")
	students.GET("", h.students.List)
	students.POST("", h.students.Create)
	students.GET("/:id", h.students.Get)
	students.PUT("/:id", h.students.Update)
	students.DELETE("/:id", h.students.Delete)

	subjects := api.Group("/subjects")
	subjects.GET("", h.subjects.List)
	subjects.POST("", h.subjects.Create)
	subjects.GET("/:id", h.subjects.Get)
	subjects.PUT("/:id", h.subjects.Update)
	subjects.DELETE("/:id", h.subjects.Delete)

	grades := api.Group("/grades")
	grades.GET("", h.grades.List)
	grades.POST("", h.grades.Create)
	grades.GET("/table", h.grades.Table)
	grades.GET("/:id", h.grades.Get)
	grades.PUT("/:id", h.grades.Update)
	grades.DELETE("/:id", h.grades.Delete)

	reports := api.Group("/reports")
	reports.GET("/grades", h.reports.GradesReport)
	reports.POST("/export", h.reports.Export)

	api.GET("/export/:token", h.reports.Download)

	return r
}
