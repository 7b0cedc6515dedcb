package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/matelog-ae/course-service/internal/cache"
	"github.com/matelog-ae/course-service/internal/events"
	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
	"github.com/matelog-ae/course-service/internal/utils"
)

type ProgressService interface {
	GetTopicDetail(ctx context.Context, topicID, userID uint) (*TopicDetailResponse, error)
	RegisterContentViewed(ctx context.Context, contentID, userID uint) (*ContentViewedResponse, error)
	Finalize(ctx context.Context, topicID, userID uint) (*FinalizeResponse, error)
	Retry(ctx context.Context, topicID, userID uint) (*RetryResponse, error)
	ReturnToContent(ctx context.Context, topicID, userID uint) error
}

// ===== RESPONSE TYPES =====

type TopicDetailResponse struct {
	Topic               *models.Topic         `json:"topic"`
	Progress            *models.TopicProgress `json:"progress"`
	Exercises           []models.Exercise     `json:"exercises"`
	Answered            map[uint]bool         `json:"answered"`
	NextUnansweredIndex int                   `json:"next_unanswered_index"`
	ViewedCountable     int                   `json:"viewed_countable"`
	TotalCountable      int                   `json:"total_countable"`
}

type ContentViewedResponse struct {
	ContentID       uint                      `json:"content_id"`
	Counted         bool                      `json:"counted"`
	AlreadyViewed   bool                      `json:"already_viewed"`
	ViewedCountable int                       `json:"viewed_countable"`
	TotalCountable  int                       `json:"total_countable"`
	State           models.TopicProgressState `json:"state"`
	LessonPercent   *float64                  `json:"lesson_percent,omitempty"`
}

type FinalizeResponse struct {
	TopicID         uint                      `json:"topic_id"`
	Passed          bool                      `json:"passed"`
	AccuracyPercent float64                   `json:"accuracy_percent"`
	CorrectCount    int                       `json:"correct_count"`
	TotalCount      int                       `json:"total_count"`
	AttemptsMade    int                       `json:"attempts_made"`
	State           models.TopicProgressState `json:"state"`
	NextTopicID     *uint                     `json:"next_topic_id,omitempty"`
	LessonPercent   float64                   `json:"lesson_percent"`
	LessonCompleted bool                      `json:"lesson_completed"`
}

type RetryResponse struct {
	TopicID        uint                      `json:"topic_id"`
	State          models.TopicProgressState `json:"state"`
	AttemptsMade   int                       `json:"attempts_made"`
	AnswersDropped int64                     `json:"answers_dropped"`
}

type progressService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	cache     cache.CacheService
}

func NewProgressService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, publisher events.EventPublisher, cacheService cache.CacheService) ProgressService {
	return &progressService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		cache:     cacheService,
	}
}

// GetTopicDetail serves the learner's view of a topic: its content, the
// resolver-filtered exercise set, and which of those exercises are already
// answered in the current epoch. First access to an unlocked topic moves it
// to STARTED.
func (s *progressService) GetTopicDetail(ctx context.Context, topicID, userID uint) (*TopicDetailResponse, error) {
	topic, err := s.repo.Topic().GetByIDWithDetails(ctx, topicID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	if !topic.IsActive {
		return nil, ErrTopicNotFound
	}

	profile, err := s.repo.Profile().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get learner profile: %w", err)
	}

	progress, err := s.ensureStarted(ctx, topic, userID)
	if err != nil {
		return nil, err
	}

	exercises := resolveWithCache(ctx, s.cache, s.logger, topic.ID, topic.Exercises, profile)

	records, err := s.repo.Answer().ListByEpoch(ctx, userID, progress.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	answered := make(map[uint]bool, len(records))
	for _, rec := range records {
		answered[rec.ExerciseID] = rec.Correct
	}

	nextUnanswered := -1
	for i := range exercises {
		if _, ok := answered[exercises[i].ID]; !ok {
			nextUnanswered = i
			break
		}
	}

	// The full exercise list stays server-side; the resolver's output is the
	// only set the client ever sees.
	topic.Exercises = nil

	return &TopicDetailResponse{
		Topic:               topic,
		Progress:            progress,
		Exercises:           exercises,
		Answered:            answered,
		NextUnansweredIndex: nextUnanswered,
		ViewedCountable:     progress.ViewedCountable(),
		TotalCountable:      models.CountCountable(topic.Contents),
	}, nil
}

// ensureStarted applies the unlock gate and the NOT_STARTED -> STARTED
// transition. The first topic of a lesson bootstraps itself unlocked.
func (s *progressService) ensureStarted(ctx context.Context, topic *models.Topic, userID uint) (*models.TopicProgress, error) {
	progress, err := s.repo.Progress().GetOrCreate(ctx, userID, topic.ID, topic.IsFirst())
	if err != nil {
		return nil, fmt.Errorf("failed to get topic progress: %w", err)
	}
	if !progress.Unlocked && !topic.IsFirst() {
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
	return progress, nil
}

// RegisterContentViewed marks a content block as seen. Extra examples never
// enter the viewed set; repeat views are no-ops. A counted first view
// refreshes the lesson aggregate.
func (s *progressService) RegisterContentViewed(ctx context.Context, contentID, userID uint) (*ContentViewedResponse, error) {
	content, err := s.repo.Content().GetByID(ctx, contentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	topic, err := s.repo.Topic().GetByID(ctx, content.TopicID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	progress, err := s.ensureStarted(ctx, topic, userID)
	if err != nil {
		return nil, err
	}

	alreadyViewed := progress.HasViewed(content.ID)
	var lessonPercent *float64
	if content.Countable() && !alreadyViewed {
		if err := s.repo.Progress().AddViewedContent(ctx, progress, content); err != nil {
			return nil, fmt.Errorf("failed to register viewed content: %w", err)
		}
		progress.ViewedContent = append(progress.ViewedContent, *content)

		if err := s.publisher.PublishLearningEvent(ctx, events.NewContentViewedEvent(
			userID, content.ID, topic.ID, true)); err != nil {
			s.logger.Warn("failed to publish content viewed event", "content_id", content.ID, "error", err)
		}

		lessonProgress, _, err := recomputeLessonProgress(ctx, s.repo, userID, topic.LessonID)
		if err != nil {
			return nil, fmt.Errorf("failed to recompute lesson progress: %w", err)
		}
		lessonPercent = &lessonProgress.CompletionPercent
	}

	contents, err := s.repo.Content().ListByTopic(ctx, topic.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic contents: %w", err)
	}

	return &ContentViewedResponse{
		ContentID:       content.ID,
		Counted:         content.Countable(),
		AlreadyViewed:   alreadyViewed,
		ViewedCountable: progress.ViewedCountable(),
		TotalCountable:  models.CountCountable(contents),
		State:           progress.State,
		LessonPercent:   lessonPercent,
	}, nil
}

// Finalize grades the current attempt epoch under a row lock: accuracy over
// the learner's full exercise set (unanswered counts against), attempt
// counter up by one regardless of outcome, COMPLETED plus next-topic unlock
// at 80%, and the lesson aggregate recomputed in the same transaction.
func (s *progressService) Finalize(ctx context.Context, topicID, userID uint) (*FinalizeResponse, error) {
	topic, err := s.repo.Topic().GetByIDWithDetails(ctx, topicID)
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
	exerciseSet := ResolveExerciseSet(topic.Exercises, profile)
	inSet := make(map[uint]bool, len(exerciseSet))
	for i := range exerciseSet {
		inSet[exerciseSet[i].ID] = true
	}

	var (
		resp            FinalizeResponse
		unlockedTopicID *uint
		lessonCompleted bool
	)

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		progress, err := tx.Progress().GetForUpdate(ctx, userID, topic.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTopicNotStarted
			}
			return fmt.Errorf("failed to lock topic progress: %w", err)
		}
		if !progress.Unlocked {
			return ErrTopicLocked
		}

		records, err := tx.Answer().ListByEpoch(ctx, userID, progress.ID)
		if err != nil {
			return fmt.Errorf("failed to list answers: %w", err)
		}

		correct := 0
		helpUsed := 0
		totalSeconds := 0.0
		for _, rec := range records {
			if !inSet[rec.ExerciseID] {
				continue
			}
			if rec.Correct {
				correct++
			}
			if rec.UsedHelp {
				helpUsed++
			}
			totalSeconds += rec.ResponseSeconds
		}

		accuracy := Accuracy(correct, len(exerciseSet))
		passed := len(exerciseSet) > 0 && accuracy >= models.PassThreshold
		now := time.Now()

		previous, err := tx.Attempt().GetLatest(ctx, userID, topic.ID)
		if err != nil {
			return fmt.Errorf("failed to get previous attempt: %w", err)
		}

		progress.AttemptsMade++
		progress.AccuracyPercent = accuracy
		// A fail never changes state: a COMPLETED topic only drops back to
		// STARTED through an explicit retry.
		if passed {
			progress.State = models.TopicCompleted
			progress.CompletedAt = &now
		}
		if err := tx.Progress().Update(ctx, progress); err != nil {
			return fmt.Errorf("failed to update topic progress: %w", err)
		}

		attempt := &models.TopicAttempt{
			UserID:          userID,
			TopicID:         topic.ID,
			Number:          progress.AttemptsMade,
			CorrectCount:    correct,
			IncorrectCount:  len(exerciseSet) - correct,
			TotalCount:      len(exerciseSet),
			AccuracyPercent: accuracy,
			HelpUsedCount:   helpUsed,
			TotalSeconds:    totalSeconds,
			Passed:          passed,
			StartedAt:       progress.StartedAt,
			FinishedAt:      now,
		}
		if len(exerciseSet) > 0 {
			attempt.AvgSecondsPerItem = totalSeconds / float64(len(exerciseSet))
		}
		if previous != nil {
			improvement := accuracy - previous.AccuracyPercent
			attempt.ImprovementPercent = &improvement
		}
		if err := tx.Attempt().Create(ctx, attempt); err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}

		if passed {
			next, err := tx.Topic().GetNextInLesson(ctx, topic.LessonID, topic.Order)
			if err != nil {
				return fmt.Errorf("failed to find next topic: %w", err)
			}
			if next != nil {
				if err := tx.Progress().EnsureUnlocked(ctx, userID, next.ID); err != nil {
					return fmt.Errorf("failed to unlock next topic: %w", err)
				}
				unlockedTopicID = &next.ID
			}
		}

		lessonProgress, completedNow, err := recomputeLessonProgress(ctx, tx, userID, topic.LessonID)
		if err != nil {
			return fmt.Errorf("failed to recompute lesson progress: %w", err)
		}
		lessonCompleted = completedNow

		resp = FinalizeResponse{
			TopicID:         topic.ID,
			Passed:          passed,
			AccuracyPercent: accuracy,
			CorrectCount:    correct,
			TotalCount:      len(exerciseSet),
			AttemptsMade:    progress.AttemptsMade,
			State:           progress.State,
			NextTopicID:     unlockedTopicID,
			LessonPercent:   lessonProgress.CompletionPercent,
			LessonCompleted: lessonProgress.State == models.LessonCompleted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishFinalizeEvents(ctx, topic, userID, &resp, unlockedTopicID, lessonCompleted)

	s.logger.Info("Topic finalized",
		"user_id", userID,
		"topic_id", topic.ID,
		"accuracy", resp.AccuracyPercent,
		"passed", resp.Passed,
		"attempt", resp.AttemptsMade)

	return &resp, nil
}

func (s *progressService) publishFinalizeEvents(ctx context.Context, topic *models.Topic, userID uint, resp *FinalizeResponse, unlockedTopicID *uint, lessonCompleted bool) {
	if err := s.publisher.PublishLearningEvent(ctx, events.NewTopicFinalizedEvent(
		userID, topic.ID, topic.LessonID, resp.AttemptsMade, resp.AccuracyPercent, resp.Passed)); err != nil {
		s.logger.Warn("failed to publish finalize event", "topic_id", topic.ID, "error", err)
	}
	if unlockedTopicID != nil {
		if err := s.publisher.PublishLearningEvent(ctx, events.NewTopicUnlockedEvent(
			userID, *unlockedTopicID, topic.LessonID)); err != nil {
			s.logger.Warn("failed to publish unlock event", "topic_id", *unlockedTopicID, "error", err)
		}
	}
	if lessonCompleted {
		if err := s.publisher.PublishLearningEvent(ctx, events.NewLessonCompletedEvent(
			userID, topic.LessonID, resp.LessonPercent)); err != nil {
			s.logger.Warn("failed to publish lesson completed event", "lesson_id", topic.LessonID, "error", err)
		}
	}
}

// Retry clears the current attempt epoch so the learner can try the topic's
// exercises again. The attempt counter is history and stays put.
func (s *progressService) Retry(ctx context.Context, topicID, userID uint) (*RetryResponse, error) {
	topic, err := s.repo.Topic().GetByID(ctx, topicID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	var resp RetryResponse
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		progress, err := tx.Progress().GetForUpdate(ctx, userID, topic.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrProgressNotFound
			}
			return fmt.Errorf("failed to lock topic progress: %w", err)
		}
		if !progress.Unlocked {
			return ErrTopicLocked
		}

		dropped, err := tx.Answer().CountByEpoch(ctx, userID, progress.ID)
		if err != nil {
			return fmt.Errorf("failed to count answers: %w", err)
		}
		if err := tx.Answer().DeleteEpoch(ctx, userID, progress.ID); err != nil {
			return fmt.Errorf("failed to delete answers: %w", err)
		}

		now := time.Now()
		progress.State = models.TopicStarted
		progress.AccuracyPercent = 0
		progress.CompletedAt = nil
		if progress.StartedAt == nil {
			progress.StartedAt = &now
		}
		if err := tx.Progress().Update(ctx, progress); err != nil {
			return fmt.Errorf("failed to update topic progress: %w", err)
		}

		resp = RetryResponse{
			TopicID:        topic.ID,
			State:          progress.State,
			AttemptsMade:   progress.AttemptsMade,
			AnswersDropped: dropped,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishLearningEvent(ctx, events.NewTopicRetriedEvent(
		userID, topic.ID, resp.AttemptsMade, resp.AnswersDropped)); err != nil {
		s.logger.Warn("failed to publish retry event", "topic_id", topic.ID, "error", err)
	}

	s.logger.Info("Topic retried",
		"user_id", userID,
		"topic_id", topic.ID,
		"answers_dropped", resp.AnswersDropped)

	return &resp, nil
}

// ReturnToContent acknowledges the "back to content" navigation. No progress
// state changes; the click lands in the telemetry log.
func (s *progressService) ReturnToContent(ctx context.Context, topicID, userID uint) error {
	topic, err := s.repo.Topic().GetByID(ctx, topicID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTopicNotFound
		}
		return fmt.Errorf("failed to get topic: %w", err)
	}

	event := &models.ButtonClickEvent{
		UserID:  userID,
		TopicID: &topic.ID,
		Button:  models.ButtonReturn,
	}
	if err := s.repo.Telemetry().CreateButtonClick(ctx, event); err != nil {
		return fmt.Errorf("failed to record return click: %w", err)
	}
	return nil
}

// recomputeLessonProgress rebuilds the lesson aggregate from scratch: per
// active topic, half content coverage and half accuracy, averaged over all
// topics whether or not the learner touched them.
func recomputeLessonProgress(ctx context.Context, repo repositories.Repository, userID, lessonID uint) (*models.LessonProgress, bool, error) {
	lessonProgress, err := repo.LessonProgress().GetOrCreate(ctx, userID, lessonID)
	if err != nil {
		return nil, false, err
	}

	topics, err := repo.Topic().ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, false, err
	}

	rows, err := repo.Progress().ListByUserAndLesson(ctx, userID, lessonID)
	if err != nil {
		return nil, false, err
	}
	byTopic := make(map[uint]*models.TopicProgress, len(rows))
	for _, row := range rows {
		byTopic[row.TopicID] = row
	}

	scores := make([]float64, 0, len(topics))
	allCompleted := len(topics) > 0
	for _, topic := range topics {
		contents, err := repo.Content().ListByTopic(ctx, topic.ID)
		if err != nil {
			return nil, false, err
		}
		totalCountable := models.CountCountable(contents)

		viewed := 0
		accuracy := 0.0
		if row, ok := byTopic[topic.ID]; ok {
			viewed = row.ViewedCountable()
			accuracy = row.AccuracyPercent
			if row.State != models.TopicCompleted {
				allCompleted = false
			}
		} else {
			allCompleted = false
		}
		scores = append(scores, TopicScore(viewed, totalCountable, accuracy))
	}

	wasCompleted := lessonProgress.State == models.LessonCompleted
	now := time.Now()

	lessonProgress.CompletionPercent = LessonPercent(scores)
	if allCompleted {
		lessonProgress.State = models.LessonCompleted
		if lessonProgress.CompletedAt == nil {
			lessonProgress.CompletedAt = &now
		}
	} else if len(rows) > 0 {
		lessonProgress.State = models.LessonInProgress
		lessonProgress.CompletedAt = nil
		if lessonProgress.StartedAt == nil {
			lessonProgress.StartedAt = &now
		}
	}

	if err := repo.LessonProgress().Update(ctx, lessonProgress); err != nil {
		return nil, false, err
	}

	completedNow := !wasCompleted && lessonProgress.State == models.LessonCompleted
	return lessonProgress, completedNow, nil
}
