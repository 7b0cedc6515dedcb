package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matelog-ae/course-service/internal/cache"
	"github.com/matelog-ae/course-service/internal/config"
	"github.com/matelog-ae/course-service/internal/events"
	"github.com/matelog-ae/course-service/internal/handlers"
	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories/postgres"
	"github.com/matelog-ae/course-service/internal/services"
	"github.com/matelog-ae/course-service/internal/utils"
	"github.com/matelog-ae/course-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Lesson{},
		&models.Topic{},
		&models.ContentBlock{},
		&models.Exercise{},
		&models.ChoiceOption{},
		&models.LearnerProfile{},
		&models.TopicProgress{},
		&models.AnswerRecord{},
		&models.TopicAttempt{},
		&models.LessonProgress{},
		&models.ScreenTimeEvent{},
		&models.ButtonClickEvent{},
	); err != nil {
		logger.LogError(err, "Failed to run migrations")
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to redis")
		os.Exit(1)
	}
	cacheService := cache.NewRedisCache(redisClient, logger)

	slogLogger := utils.ToSlogLogger(logger)
	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher, falling back to mock")
		publisher = events.NewMockEventPublisher(slogLogger)
	}

	repo := postgres.NewManager(db)
	validator := utils.NewValidator()

	exerciseService := services.NewExerciseService(repo, slogLogger, validator, publisher, cacheService)
	progressService := services.NewProgressService(repo, slogLogger, validator, publisher, cacheService)
	lessonService := services.NewLessonService(repo, slogLogger, validator, cacheService)
	telemetryService := services.NewTelemetryService(repo, slogLogger, validator, publisher)

	handlerManager := handlers.NewHandlerManager(
		lessonService,
		progressService,
		exerciseService,
		telemetryService,
		redisClient,
		logger,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.LogError(err, "Forced shutdown")
	}
	if err := publisher.Close(); err != nil {
		logger.LogError(err, "Failed to close event publisher")
	}
	if err := redisClient.Close(); err != nil {
		logger.LogError(err, "Failed to close redis client")
	}
	if err := repo.Close(); err != nil {
		logger.LogError(err, "Failed to close database")
	}

	logger.Info("Server stopped")
}
