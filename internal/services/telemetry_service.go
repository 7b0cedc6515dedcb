package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	apperrors "github.com/matelog-ae/course-service/internal/errors"
	"github.com/matelog-ae/course-service/internal/events"
	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
	"github.com/matelog-ae/course-service/internal/utils"
)

type TelemetryService interface {
	RecordScreenTime(ctx context.Context, req *ScreenTimeRequest, userID uint) error
	RecordButtonClick(ctx context.Context, req *ButtonClickRequest, userID uint) error
	TopicSummary(ctx context.Context, topicID, userID uint) (*models.TopicTelemetrySummary, error)
}

// ===== REQUEST TYPES =====

type ScreenTimeRequest struct {
	TopicID     uint              `json:"topic_id" validate:"required"`
	ContentID   *uint             `json:"content_id"`
	ExerciseID  *uint             `json:"exercise_id"`
	Kind        models.ScreenKind `json:"kind" validate:"required,screen_kind"`
	Ordinal     int               `json:"ordinal" validate:"min=0"`
	Seconds     float64           `json:"seconds" validate:"required,min=0"`
	TabSwitched bool              `json:"tab_switched"`
	Metadata    datatypes.JSON    `json:"metadata"`
}

type ButtonClickRequest struct {
	TopicID  *uint             `json:"topic_id"`
	Button   models.ButtonKind `json:"button" validate:"required,button_kind"`
	Metadata datatypes.JSON    `json:"metadata"`
}

type telemetryService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
}

func NewTelemetryService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, publisher events.EventPublisher) TelemetryService {
	return &telemetryService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// RecordScreenTime appends one dwell measurement. The log is write-only from
// the client's point of view; nothing here updates counters in place.
func (s *telemetryService) RecordScreenTime(ctx context.Context, req *ScreenTimeRequest, userID uint) error {
	if err := s.validator.Validate(req); err != nil {
		return apperrors.ToValidationErrors(err)
	}

	if _, err := s.repo.Topic().GetByID(ctx, req.TopicID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTopicNotFound
		}
		return fmt.Errorf("failed to get topic: %w", err)
	}

	event := &models.ScreenTimeEvent{
		UserID:      userID,
		TopicID:     req.TopicID,
		ContentID:   req.ContentID,
		ExerciseID:  req.ExerciseID,
		Kind:        req.Kind,
		Ordinal:     req.Ordinal,
		Seconds:     req.Seconds,
		TabSwitched: req.TabSwitched,
		Metadata:    req.Metadata,
	}
	if err := s.repo.Telemetry().CreateScreenTime(ctx, event); err != nil {
		return fmt.Errorf("failed to record screen time: %w", err)
	}

	if err := s.publisher.PublishLearningEvent(ctx,
		events.NewTelemetryEvent(events.EventScreenTime, event)); err != nil {
		s.logger.Warn("failed to publish screen time event", "topic_id", req.TopicID, "error", err)
	}
	return nil
}

func (s *telemetryService) RecordButtonClick(ctx context.Context, req *ButtonClickRequest, userID uint) error {
	if err := s.validator.Validate(req); err != nil {
		return apperrors.ToValidationErrors(err)
	}

	if req.TopicID != nil {
		if _, err := s.repo.Topic().GetByID(ctx, *req.TopicID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTopicNotFound
			}
			return fmt.Errorf("failed to get topic: %w", err)
		}
	}

	event := &models.ButtonClickEvent{
		UserID:   userID,
		TopicID:  req.TopicID,
		Button:   req.Button,
		Metadata: req.Metadata,
	}
	if err := s.repo.Telemetry().CreateButtonClick(ctx, event); err != nil {
		return fmt.Errorf("failed to record button click: %w", err)
	}

	if err := s.publisher.PublishLearningEvent(ctx,
		events.NewTelemetryEvent(events.EventButtonClick, event)); err != nil {
		s.logger.Warn("failed to publish button click event", "button", req.Button, "error", err)
	}
	return nil
}

// TopicSummary derives the per-topic aggregates from the event log on read.
func (s *telemetryService) TopicSummary(ctx context.Context, topicID, userID uint) (*models.TopicTelemetrySummary, error) {
	if _, err := s.repo.Topic().GetByID(ctx, topicID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	summary, err := s.repo.Telemetry().SummarizeTopic(ctx, userID, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize telemetry: %w", err)
	}
	return summary, nil
}
