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

	_ "github.com/noah-isme/attendance-dashboard-api/api/swagger"
	"github.com/noah-isme/attendance-dashboard-api/internal/handler"
	internalmiddleware "github.com/noah-isme/attendance-dashboard-api/internal/middleware"
	"github.com/noah-isme/attendance-dashboard-api/internal/repository"
	"github.com/noah-isme/attendance-dashboard-api/internal/service"
	"github.com/noah-isme/attendance-dashboard-api/pkg/cache"
	"github.com/noah-isme/attendance-dashboard-api/pkg/config"
	"github.com/noah-isme/attendance-dashboard-api/pkg/database"
	"github.com/noah-isme/attendance-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-dashboard-api/pkg/middleware/requestid"
)

// @title Attendance Dashboard API
// @version 1.0.0
// @description Attendance metrics and admin configuration for the dashboard front end
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	sessionRepo := repository.NewSessionRepository(nil, "")
	if cache.Enabled(cfg.Redis) {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer client.Close()
		sessionRepo = repository.NewSessionRepository(client, cache.Keyspace(cfg.Redis.KeyPrefix))
	} else {
		logr.Warn("redis disabled; logout will not revoke outstanding sessions")
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := validator.New()
	attendanceSvc := service.NewAttendanceService(
		repository.NewAttendanceMetricsRepository(db, cfg.Attendance),
		metricsSvc,
		logr.Named("attendance"),
		service.AttendanceServiceConfig{
			QueryTimeout:      cfg.Attendance.QueryTimeout,
			SyntheticFallback: cfg.Attendance.SyntheticFallback,
		},
	)
	exportSvc := service.NewExportService(attendanceSvc, validate, logr.Named("export"))
	configSvc := service.NewDashboardConfigService(repository.NewDashboardConfigRepository(db), validate, metricsSvc, logr.Named("config"))
	sessionSvc := service.NewSessionService(sessionRepo, metricsSvc, logr.Named("session"), service.SessionConfig{
		Username:     cfg.Admin.Username,
		Password:     cfg.Admin.Password,
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       cfg.Session.Secret,
		TTL:          cfg.Session.TTL,
	})
	if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		logr.Warn("no admin password configured; the admin console is closed")
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS))
	if metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics"))
	}

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	handler.Routes{
		Attendance:       handler.NewAttendanceHandler(attendanceSvc, exportSvc),
		AdminConfig:      handler.NewAdminConfigHandler(configSvc),
		Auth:             handler.NewAuthHandler(sessionSvc, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure}),
		Metrics:          metricsHandler,
		Sessions:         sessionSvc,
		CookieName:       cfg.Session.CookieName,
		PublicConfigRead: cfg.Admin.PublicConfigRead,
		AuditLogger:      logr.Named("audit"),
	}.Register(r, cfg.APIPrefix)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

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

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
