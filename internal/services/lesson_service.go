package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matelog-ae/course-service/internal/cache"
	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
	"github.com/matelog-ae/course-service/internal/utils"
)

type LessonService interface {
	List(ctx context.Context, userID uint) ([]*LessonSummary, error)
	GetDetail(ctx context.Context, lessonID, userID uint) (*LessonDetail, error)
}

// ===== RESPONSE TYPES =====

type LessonSummary struct {
	Lesson            *models.Lesson             `json:"lesson"`
	State             models.LessonProgressState `json:"state"`
	CompletionPercent float64                    `json:"completion_percent"`
	TopicCount        int                        `json:"topic_count"`
}

type TopicSummary struct {
	Topic           models.Topic              `json:"topic"`
	State           models.TopicProgressState `json:"state"`
	Unlocked        bool                      `json:"unlocked"`
	AccuracyPercent float64                   `json:"accuracy_percent"`
	AttemptsMade    int                       `json:"attempts_made"`
	ExerciseCount   int                       `json:"exercise_count"`
	ContentCount    int                       `json:"content_count"`
}

type LessonDetail struct {
	Lesson   *models.Lesson         `json:"lesson"`
	Progress *models.LessonProgress `json:"progress"`
	Topics   []TopicSummary         `json:"topics"`
}

type lessonService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	cache     cache.CacheService
}

func NewLessonService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, cacheService cache.CacheService) LessonService {
	return &lessonService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cacheService,
	}
}

// List returns the active lessons with the learner's state on each. Lessons
// the learner never opened show as NOT_STARTED with zero percent.
func (s *lessonService) List(ctx context.Context, userID uint) ([]*LessonSummary, error) {
	lessons, err := s.repo.Lesson().List(ctx, repositories.LessonFilters{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	summaries := make([]*LessonSummary, 0, len(lessons))
	for _, lesson := range lessons {
		summary := &LessonSummary{
			Lesson:     lesson,
			State:      models.LessonNotStarted,
			TopicCount: len(lesson.ActiveTopics()),
		}

		progress, err := s.repo.LessonProgress().Get(ctx, userID, lesson.ID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to get lesson progress: %w", err)
		}
		if progress != nil && err == nil {
			summary.State = progress.State
			summary.CompletionPercent = progress.CompletionPercent
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// GetDetail opens a lesson for the learner: marks it IN_PROGRESS, makes sure
// the first topic is reachable, and lists every topic with its progress and
// the exercise count of the learner's own set.
func (s *lessonService) GetDetail(ctx context.Context, lessonID, userID uint) (*LessonDetail, error) {
	lesson, err := s.repo.Lesson().GetByIDWithTopics(ctx, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if !lesson.IsActive {
		return nil, ErrLessonNotFound
	}

	profile, err := s.repo.Profile().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get learner profile: %w", err)
	}

	topics := lesson.ActiveTopics()

	// Opening the lesson makes its first topic reachable even before the
	// learner requests the topic itself.
	for i := range topics {
		if topics[i].IsFirst() {
			if err := s.repo.Progress().EnsureUnlocked(ctx, userID, topics[i].ID); err != nil {
				return nil, fmt.Errorf("failed to unlock first topic: %w", err)
			}
			break
		}
	}

	rows, err := s.repo.Progress().ListByUserAndLesson(ctx, userID, lesson.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic progress: %w", err)
	}
	byTopic := make(map[uint]*models.TopicProgress, len(rows))
	for _, row := range rows {
		byTopic[row.TopicID] = row
	}

	summaries := make([]TopicSummary, 0, len(topics))
	for _, topic := range topics {
		exercises, err := s.repo.Exercise().ListByTopic(ctx, topic.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list topic exercises: %w", err)
		}
		contents, err := s.repo.Content().ListByTopic(ctx, topic.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list topic contents: %w", err)
		}

		summary := TopicSummary{
			Topic:         topic,
			State:         models.TopicNotStarted,
			Unlocked:      topic.IsFirst(),
			ExerciseCount: len(resolveWithCache(ctx, s.cache, s.logger, topic.ID, exercises, profile)),
			ContentCount:  models.CountCountable(contents),
		}
		if row, ok := byTopic[topic.ID]; ok {
			summary.State = row.State
			summary.Unlocked = row.Unlocked || topic.IsFirst()
			summary.AccuracyPercent = row.AccuracyPercent
			summary.AttemptsMade = row.AttemptsMade
		}
		summaries = append(summaries, summary)
	}

	progress, _, err := recomputeLessonProgress(ctx, s.repo, userID, lesson.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute lesson progress: %w", err)
	}

	return &LessonDetail{
		Lesson:   lesson,
		Progress: progress,
		Topics:   summaries,
	}, nil
}
