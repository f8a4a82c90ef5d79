package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/config"
	"github.com/taskdesk/taskdesk-api/internal/database"
	"github.com/taskdesk/taskdesk-api/internal/events"
	"github.com/taskdesk/taskdesk-api/internal/handler"
	"github.com/taskdesk/taskdesk-api/internal/middleware"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
	"github.com/taskdesk/taskdesk-api/internal/router"
	"github.com/taskdesk/taskdesk-api/internal/service"
	"github.com/taskdesk/taskdesk-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Task{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, token revocation disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, activity events disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	publisher := events.NewPublisher(natsConn, events.DefaultSubject, logger)

	activityService := service.NewActivityService(activityRepo, publisher, logger)
	taskService := service.NewTaskService(taskRepo, userRepo, activityService, validate, logger)
	userService := service.NewUserService(userRepo, activityService, validate, logger)
	authService := service.NewAuthService(userRepo, redisClient, cfg.JWTSecret, cfg.TokenTTL, validate, logger)
	overdueService := service.NewOverdueService(taskRepo, userRepo, activityService, cfg.SystemActorEmail, logger)
	seedService := service.NewSeedService(userRepo, taskRepo, cfg.SystemActorEmail, cfg.SeedEnabled, cfg.SeedToken, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	activityHandler := handler.NewActivityLogHandler(activityService, logger)
	adminHandler := handler.NewAdminHandler(overdueService, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        authHandler,
		TaskHandler:        taskHandler,
		UserHandler:        userHandler,
		ActivityLogHandler: activityHandler,
		AdminHandler:       adminHandler,
		SeedHandler:        seedHandler,
		UserRepository:     userRepo,
		TokenRevoker:       authService,
		LoginLimiter:       middleware.RateLimit("login", cfg.LoginRateLimit, cfg.LoginRateWindow),
	})

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	overdueWorker := worker.NewOverdueWorker(overdueService, cfg.OverdueScanInterval, logger)
	go overdueWorker.Start(workerCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopWorker)
}

func waitForShutdown(app *fiber.App, stopWorker context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
