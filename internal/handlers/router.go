package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/matelog-ae/course-service/internal/services"
	"github.com/matelog-ae/course-service/internal/utils"
)

type HandlerManager struct {
	lessonHandler    *LessonHandler
	topicHandler     *TopicHandler
	exerciseHandler  *ExerciseHandler
	telemetryHandler *TelemetryHandler

	redisClient *redis.Client
	logger      utils.Logger
}

func NewHandlerManager(
	lessonService services.LessonService,
	progressService services.ProgressService,
	exerciseService services.ExerciseService,
	telemetryService services.TelemetryService,
	redisClient *redis.Client,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		lessonHandler:    NewLessonHandler(lessonService, logger),
		topicHandler:     NewTopicHandler(progressService, logger),
		exerciseHandler:  NewExerciseHandler(exerciseService, logger),
		telemetryHandler: NewTelemetryHandler(telemetryService, logger),
		redisClient:      redisClient,
		logger:           logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "course-service",
		})
	})

	// API v1 routes, all behind the identity middleware
	v1 := router.Group("/api/v1")
	v1.Use(IdentityMiddleware())
	{
		// Lesson routes
		lessons := v1.Group("/lessons")
		{
			lessons.GET("", hm.lessonHandler.ListLessons)
			lessons.GET("/:id", hm.lessonHandler.GetLesson)
		}

		// Topic routes
		topics := v1.Group("/topics")
		{
			topics.GET("/:id", hm.topicHandler.GetTopic)
			topics.POST("/:id/finalize", hm.topicHandler.FinalizeTopic)
			topics.POST("/:id/retry", hm.topicHandler.RetryTopic)
			topics.POST("/:id/return", hm.topicHandler.ReturnToContent)
		}

		// Content routes
		contents := v1.Group("/contents")
		{
			contents.POST("/:id/viewed", hm.topicHandler.ContentViewed)
		}

		// Exercise routes
		exercises := v1.Group("/exercises")
		{
			exercises.POST("/validate",
				AnswerThrottle(hm.redisClient, hm.logger),
				hm.exerciseHandler.ValidateAnswer)
		}

		// Telemetry routes
		telemetry := v1.Group("/telemetry")
		{
			telemetry.POST("/screen-time", hm.telemetryHandler.RecordScreenTime)
			telemetry.POST("/clicks", hm.telemetryHandler.RecordButtonClick)
			telemetry.GET("/topics/:id/summary", hm.telemetryHandler.GetTopicSummary)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(AdminMiddleware())
		{
			admin.POST("/exercises", hm.exerciseHandler.CreateExercise)
			admin.PUT("/exercises/:id", hm.exerciseHandler.UpdateExercise)
		}
	}
}

// AdminMiddleware - placeholder for admin authorization middleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// TODO: Implement admin authorization logic
		c.Next()
	}
}
