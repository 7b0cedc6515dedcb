package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/matelog-ae/course-service/internal/cache"
	apperrors "github.com/matelog-ae/course-service/internal/errors"
	"github.com/matelog-ae/course-service/internal/events"
	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
	"github.com/matelog-ae/course-service/internal/utils"
)

type ExerciseService interface {
	SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest, userID uint) (*SubmitAnswerResponse, error)
	Save(ctx context.Context, req *SaveExerciseRequest) (*models.Exercise, error)
	Update(ctx context.Context, id uint, req *SaveExerciseRequest) (*models.Exercise, error)
}

// ===== REQUEST / RESPONSE TYPES =====

type SubmitAnswerRequest struct {
	ExerciseID      uint    `json:"exercise_id" validate:"required"`
	Answer          string  `json:"answer"`
	UsedHelp        bool    `json:"used_help"`
	ResponseSeconds float64 `json:"response_seconds" validate:"min=0"`
}

type SubmitAnswerResponse struct {
	ExerciseID    uint   `json:"exercise_id"`
	Correct       bool   `json:"correct"`
	Feedback      string `json:"feedback,omitempty"`
	Duplicate     bool   `json:"duplicate"`
	AnsweredCount int64  `json:"answered_count"`
	TotalCount    int    `json:"total_count"`
}

type SaveOptionRequest struct {
	Label string `json:"label" validate:"required,option_label"`
	Text  string `json:"text" validate:"required"`
}

type SaveExerciseRequest struct {
	TopicID           uint                   `json:"topic_id" validate:"required"`
	Kind              models.ExerciseKind    `json:"kind" validate:"required,exercise_kind"`
	Difficulty        models.DifficultyLevel `json:"difficulty" validate:"required,difficulty_level"`
	Instructions      string                 `json:"instructions"`
	Statement         string                 `json:"statement" validate:"required"`
	CorrectAnswer     string                 `json:"correct_answer" validate:"required"`
	HelpText          string                 `json:"help_text"`
	FeedbackCorrect   string                 `json:"feedback_correct"`
	FeedbackIncorrect string                 `json:"feedback_incorrect"`
	ShowDifficulty    bool                   `json:"show_difficulty"`
	Obligatory        bool                   `json:"obligatory"`
	Order             int                    `json:"order" validate:"required,min=1"`
	Options           []SaveOptionRequest    `json:"options" validate:"dive"`
}

type exerciseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	cache     cache.CacheService
}

func NewExerciseService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, publisher events.EventPublisher, cacheService cache.CacheService) ExerciseService {
	return &exerciseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		cache:     cacheService,
	}
}

// SubmitAnswer grades one answer inside the learner's current attempt epoch.
// Resubmitting an already answered exercise returns the stored verdict and
// changes nothing.
func (s *exerciseService) SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest, userID uint) (*SubmitAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	exercise, err := s.repo.Exercise().GetByID(ctx, req.ExerciseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	if !exercise.IsActive {
		return nil, ErrExerciseNotFound
	}

	topic, err := s.repo.Topic().GetByID(ctx, exercise.TopicID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	profile, err := s.repo.Profile().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get learner profile: %w", err)
	}
	if !InExerciseSet(exercise, profile) {
		return nil, ErrExerciseNotInSet
	}

	progress, err := s.repo.Progress().GetOrCreate(ctx, userID, topic.ID, topic.IsFirst())
	if err != nil {
		return nil, fmt.Errorf("failed to get topic progress: %w", err)
	}
	if !progress.Unlocked {
		return nil, ErrTopicLocked
	}
	if progress.State == models.TopicNotStarted {
		now := time.Now()
		progress.State = models.TopicStarted
		progress.StartedAt = &now
		if err := s.repo.Progress().Update(ctx, progress); err != nil {
			return nil, fmt.Errorf("failed to start topic: %w", err)
		}
	}

	if existing, err := s.repo.Answer().GetByExercise(ctx, userID, exercise.ID, progress.ID); err != nil {
		return nil, fmt.Errorf("failed to check existing answer: %w", err)
	} else if existing != nil {
		return s.buildResponse(ctx, exercise, profile, userID, progress.ID, existing.Correct, true)
	}

	correct := exercise.CheckAnswer(req.Answer)
	record := &models.AnswerRecord{
		UserID:          userID,
		ExerciseID:      exercise.ID,
		TopicProgressID: progress.ID,
		Answer:          req.Answer,
		Correct:         correct,
		UsedHelp:        req.UsedHelp,
		ResponseSeconds: req.ResponseSeconds,
	}
	if err := s.repo.Answer().Create(ctx, record); err != nil {
		// A concurrent submission may have won the unique index; fall back to
		// the stored verdict.
		existing, lookupErr := s.repo.Answer().GetByExercise(ctx, userID, exercise.ID, progress.ID)
		if lookupErr == nil && existing != nil {
			return s.buildResponse(ctx, exercise, profile, userID, progress.ID, existing.Correct, true)
		}
		return nil, fmt.Errorf("failed to store answer: %w", err)
	}

	if err := s.publisher.PublishLearningEvent(ctx, events.NewAnswerSubmittedEvent(
		userID, exercise.ID, topic.ID, correct, req.UsedHelp, req.ResponseSeconds)); err != nil {
		s.logger.Warn("failed to publish answer event", "exercise_id", exercise.ID, "error", err)
	}

	s.logger.Info("Answer submitted",
		"user_id", userID,
		"exercise_id", exercise.ID,
		"topic_id", topic.ID,
		"correct", correct)

	return s.buildResponse(ctx, exercise, profile, userID, progress.ID, correct, false)
}

func (s *exerciseService) buildResponse(ctx context.Context, exercise *models.Exercise, profile *models.LearnerProfile, userID, progressID uint, correct, duplicate bool) (*SubmitAnswerResponse, error) {
	answered, err := s.repo.Answer().CountByEpoch(ctx, userID, progressID)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}

	all, err := s.repo.Exercise().ListByTopic(ctx, exercise.TopicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic exercises: %w", err)
	}
	total := len(resolveWithCache(ctx, s.cache, s.logger, exercise.TopicID, all, profile))

	feedback := exercise.FeedbackIncorrect
	if correct {
		feedback = exercise.FeedbackCorrect
	}

	return &SubmitAnswerResponse{
		ExerciseID:    exercise.ID,
		Correct:       correct,
		Feedback:      feedback,
		Duplicate:     duplicate,
		AnsweredCount: answered,
		TotalCount:    total,
	}, nil
}

// Save creates or updates an exercise through the authoring path. The key is
// re-normalized and re-validated on every save, and the options land in the
// same transaction as the exercise row.
func (s *exerciseService) Save(ctx context.Context, req *SaveExerciseRequest) (*models.Exercise, error) {
	return s.save(ctx, 0, req)
}

func (s *exerciseService) save(ctx context.Context, id uint, req *SaveExerciseRequest) (*models.Exercise, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	if _, err := s.repo.Topic().GetByID(ctx, req.TopicID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	exercise := &models.Exercise{
		ID:                id,
		TopicID:           req.TopicID,
		Kind:              req.Kind,
		Difficulty:        req.Difficulty,
		Instructions:      req.Instructions,
		Statement:         req.Statement,
		CorrectAnswer:     req.CorrectAnswer,
		HelpText:          req.HelpText,
		FeedbackCorrect:   req.FeedbackCorrect,
		FeedbackIncorrect: req.FeedbackIncorrect,
		ShowDifficulty:    req.ShowDifficulty,
		Obligatory:        req.Obligatory,
		Order:             req.Order,
		IsActive:          true,
	}
	for _, opt := range req.Options {
		exercise.Options = append(exercise.Options, models.ChoiceOption{
			Label: opt.Label,
			Text:  opt.Text,
		})
	}

	exercise.Normalize()
	if err := exercise.ValidateAnswerKey(); err != nil {
		return nil, err
	}

	if err := s.repo.Exercise().Save(ctx, exercise); err != nil {
		return nil, fmt.Errorf("failed to save exercise: %w", err)
	}

	invalidateExerciseSetCache(ctx, s.cache, s.logger, req.TopicID)

	s.logger.Info("Exercise saved",
		"exercise_id", exercise.ID,
		"topic_id", exercise.TopicID,
		"kind", exercise.Kind,
		"difficulty", exercise.Difficulty)

	return exercise, nil
}

// Update rewrites an existing exercise under the same save-time contract.
func (s *exerciseService) Update(ctx context.Context, id uint, req *SaveExerciseRequest) (*models.Exercise, error) {
	if _, err := s.repo.Exercise().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	return s.save(ctx, id, req)
}
