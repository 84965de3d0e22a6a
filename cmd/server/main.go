package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/gympulse/gym-notify/backend/internal/dispatch"
	"github.com/gympulse/gym-notify/backend/internal/handlers"
	"github.com/gympulse/gym-notify/backend/internal/metrics"
	"github.com/gympulse/gym-notify/backend/internal/models"
	"github.com/gympulse/gym-notify/backend/internal/repositories"
	"github.com/gympulse/gym-notify/backend/internal/router"
	"github.com/gympulse/gym-notify/backend/internal/sweeper"
	"github.com/gympulse/gym-notify/backend/pkg/config"
	"github.com/gympulse/gym-notify/backend/pkg/firebase"
	"github.com/gympulse/gym-notify/backend/validators"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	if err := db.Postgres.AutoMigrate(
		&models.Admin{},
		&models.Gym{},
		&models.AdminNotification{},
	); err != nil {
		logger.Fatal("failed to auto migrate models", zap.Error(err))
	}

	// Initialize Firebase messaging
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		logger.Fatal("failed to initialize Firebase", zap.Error(err))
	}

	// ---- repositories ----
	mongoDB := db.Mongo.Database(cfg.MongoDatabase)
	queueRepo := repositories.NewMongoQueueRepository(mongoDB)
	adminRepo := repositories.NewPostgresAdminRepository(db.Postgres)
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	feedRepo := repositories.NewPostgresFeedRepository(db.Postgres)
	locator := repositories.NewAdminLocator(adminRepo, userRepo, logger)

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	resolver := dispatch.NewResolver(logger,
		dispatch.NewAdminTokenSource(adminRepo),
		dispatch.NewUserTokenSource(userRepo))
	builder := dispatch.NewBuilder(cfg.NotificationBaseURL, cfg.NotificationIcon)
	gateway := dispatch.NewFCMGateway(firebaseApp.MessagingClient, logger)

	// ---- dispatch consumer ----
	consumer := dispatch.NewConsumer(queueRepo, feedRepo, resolver, builder, gateway, logger, dispatch.Options{
		PollInterval: cfg.DispatchPollInterval,
		BatchSize:    cfg.DispatchBatchSize,
		Workers:      cfg.DispatchWorkers,
		Hooks:        m.ConsumerHooks(),
	})

	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	defer cancelConsumer()
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		consumer.Run(consumerCtx)
	}()

	// ---- retention sweeper ----
	sw := sweeper.New(queueRepo,
		time.Duration(cfg.RetentionDays)*24*time.Hour,
		cfg.SweepBatchSize, logger, m.SweeperHook())
	cronRunner, err := sw.Start(cfg.SweepSchedule)
	if err != nil {
		logger.Fatal("failed to start retention sweeper", zap.Error(err))
	}

	// ---- HTTP server ----
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e)

	notificationHandler := handlers.NewNotificationHandler(queueRepo, feedRepo, locator, builder, gateway)
	router.SetupRoutes(e, notificationHandler, reg)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the sweep schedule and the consumer poll loop.
	cronRunner.Stop()
	cancelConsumer()

	// 3. Wait for the in-flight poll batch to finish.
	<-consumerDone

	logger.Info("server stopped cleanly")
}
