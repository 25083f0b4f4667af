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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ty-credit-api/api/swagger"
	"github.com/noah-isme/ty-credit-api/internal/handler"
	internalmiddleware "github.com/noah-isme/ty-credit-api/internal/middleware"
	"github.com/noah-isme/ty-credit-api/internal/repository"
	"github.com/noah-isme/ty-credit-api/internal/service"
	"github.com/noah-isme/ty-credit-api/pkg/cache"
	"github.com/noah-isme/ty-credit-api/pkg/config"
	"github.com/noah-isme/ty-credit-api/pkg/database"
	"github.com/noah-isme/ty-credit-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ty-credit-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ty-credit-api/pkg/middleware/requestid"
)

// @title TY Credit API
// @version 1.0.0
// @description Transition Year credit tracking service
// @BasePath /
// @schemes http

type handlers struct {
	metrics       *handler.MetricsHandler
	academicYears *handler.AcademicYearHandler
	classGroups   *handler.ClassGroupHandler
	subjects      *handler.SubjectHandler
	students      *handler.StudentHandler
	enrollments   *handler.EnrollmentHandler
	credits       *handler.CreditHandler
	records       *handler.CreditRecordHandler
	admin         *handler.AdminHandler
	reports       *handler.ReportHandler
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// credits are still served uncached
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	yearRepo := repository.NewAcademicYearRepository(db)
	groupRepo := repository.NewClassGroupRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	workRepo := repository.NewWorkExperienceRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Credits.CacheTTL, logr, cfg.Credits.CacheEnabled && redisClient != nil)

	creditSvc := service.NewCreditService(service.CreditServiceDeps{
		Sources:     repository.NewCreditSources(db),
		Students:    studentRepo,
		Cohorts:     studentRepo,
		Years:       yearRepo,
		ClassGroups: groupRepo,
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		CacheTTL:    cfg.Credits.CacheTTL,
	}, validate, logr)

	bulkFillSvc := service.NewBulkFillService(service.BulkFillDeps{
		Years:          yearRepo,
		Students:       studentRepo,
		Attendance:     attendanceRepo,
		WorkExperience: workRepo,
		Subjects:       subjectRepo,
		Enrollments:    enrollmentRepo,
		Cache:          cacheSvc,
		Metrics:        metricsSvc,
	}, service.BulkFillOptions{
		Enabled:             cfg.BulkFill.Enabled,
		PlaceholderBusiness: cfg.BulkFill.PlaceholderBusiness,
	}, validate, logr)

	recordSvc := service.NewCreditRecordService(service.CreditRecordDeps{
		Students:       studentRepo,
		Years:          yearRepo,
		Teachers:       teacherRepo,
		Attendance:     attendanceRepo,
		WorkExperience: workRepo,
		Portfolios:     portfolioRepo,
		Cache:          cacheSvc,
	}, validate, logr)

	h := handlers{
		metrics: handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
			"postgres": handler.PingFunc(db.PingContext),
			"redis":    cacheRepo,
		}),
		academicYears: handler.NewAcademicYearHandler(service.NewAcademicYearService(yearRepo, validate, logr)),
		classGroups:   handler.NewClassGroupHandler(service.NewClassGroupService(groupRepo, yearRepo, cacheSvc, validate, logr)),
		subjects:      handler.NewSubjectHandler(service.NewSubjectService(subjectRepo, yearRepo, cacheSvc, validate, logr)),
		students:      handler.NewStudentHandler(service.NewStudentService(studentRepo, groupRepo, cacheSvc, validate, logr)),
		enrollments: handler.NewEnrollmentHandler(service.NewEnrollmentService(enrollmentRepo, studentRepo, subjectRepo, cacheSvc, validate, logr,
			service.EnrollmentServiceOptions{AllowOptionalWithoutTerm: cfg.Enrollment.AllowOptionalWithoutTerm})),
		credits: handler.NewCreditHandler(creditSvc),
		records: handler.NewCreditRecordHandler(recordSvc),
		admin:   handler.NewAdminHandler(bulkFillSvc),
		reports: handler.NewReportHandler(service.NewReportService(creditSvc, service.ReportOptions{
			Enabled: cfg.Reports.Enabled,
			Title:   cfg.Reports.Title,
		}, logr)),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), h)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func registerRoutes(api *gin.RouterGroup, h handlers) {
	years := api.Group("/academic-years")
	years.GET("", h.academicYears.List)
	years.POST("", h.academicYears.Create)
	years.GET("/current", h.academicYears.Current)
	years.GET("/:id", h.academicYears.Get)
	years.PUT("/:id", h.academicYears.Update)
	years.DELETE("/:id", h.academicYears.Delete)
	years.POST("/:id/current", h.academicYears.SetCurrent)

	groups := api.Group("/class-groups")
	groups.GET("", h.classGroups.List)
	groups.POST("", h.classGroups.Create)
	groups.PUT("/:id", h.classGroups.Update)
	groups.DELETE("/:id", h.classGroups.Delete)

	subjects := api.Group("/subjects")
	subjects.GET("", h.subjects.List)
	subjects.POST("", h.subjects.Create)
	subjects.PUT("/:id", h.subjects.Update)
	subjects.DELETE("/:id", h.subjects.Delete)

	students := api.Group("/students")
	students.GET("", h.students.List)
	students.POST("", h.students.Create)
	students.GET("/:id", h.students.Get)
	students.PUT("/:id", h.students.Update)
	students.DELETE("/:id", h.students.Delete)
	students.GET("/:id/enrollments", h.enrollments.ListByStudent)
	students.GET("/:id/eligibility", h.enrollments.Eligibility)
	students.GET("/:id/credits", h.credits.StudentCredits)
	students.GET("/:id/credit-records", h.records.ListByStudent)

	enrollments := api.Group("/enrollments")
	enrollments.PUT("", h.enrollments.Set)
	enrollments.PUT("/bulk", h.enrollments.BulkSet)
	enrollments.PATCH("/:id/credits", h.enrollments.UpdateCredits)

	credits := api.Group("/credits")
	credits.POST("/batch", h.credits.BatchTotals)
	credits.GET("/cohort", h.credits.Cohort)
	credits.GET("/classify", h.credits.Classify)

	api.PUT("/attendance", h.records.Attendance)
	api.POST("/work-experience", h.records.CreateWorkExperience)
	api.PATCH("/work-experience/:id/credits", h.records.UpdateWorkExperienceCredits)
	api.DELETE("/work-experience/:id", h.records.DeleteWorkExperience)
	api.PUT("/portfolios", h.records.Portfolio)

	api.POST("/admin/fill-max", h.admin.FillMax)
	api.GET("/reports/cohort", h.reports.Cohort)
}
