package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/matelog-ae/course-service/internal/events"
	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/utils"
)

func newTestProgressService(repo *MockRepository) (ProgressService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewProgressService(repo, logger, utils.NewValidator(), publisher, nil), publisher
}

// finalizeTopic is a five exercise topic where every exercise is obligatory,
// so the resolved set is the same for every learner.
func finalizeTopic() *models.Topic {
	return &models.Topic{
		ID:       10,
		LessonID: 5,
		Order:    1,
		IsActive: true,
		Exercises: []models.Exercise{
			{ID: 1, TopicID: 10, Obligatory: true},
			{ID: 2, TopicID: 10, Obligatory: true},
			{ID: 3, TopicID: 10, Obligatory: true},
			{ID: 4, TopicID: 10, Obligatory: true},
			{ID: 5, TopicID: 10, Obligatory: true},
		},
	}
}

func expectLessonRecompute(repo *MockRepository, topic *models.Topic) {
	repo.lessonProgress.On("GetOrCreate", mock.Anything, uint(1), topic.LessonID).
		Return(&models.LessonProgress{UserID: 1, LessonID: topic.LessonID}, nil)
	repo.topic.On("ListByLesson", mock.Anything, topic.LessonID).
		Return([]*models.Topic{topic}, nil)
	repo.progress.On("ListByUserAndLesson", mock.Anything, uint(1), topic.LessonID).
		Return([]*models.TopicProgress{}, nil)
	repo.content.On("ListByTopic", mock.Anything, topic.ID).
		Return([]models.ContentBlock{}, nil)
	repo.lessonProgress.On("Update", mock.Anything, mock.Anything).Return(nil)
}

func TestFinalize_PassAtThreshold(t *testing.T) {
	repo := newMockRepository()
	svc, publisher := newTestProgressService(repo)
	topic := finalizeTopic()
	started := time.Now().Add(-time.Hour)
	progress := &models.TopicProgress{
		ID: 100, UserID: 1, TopicID: 10,
		State: models.TopicStarted, Unlocked: true, StartedAt: &started,
	}
	next := &models.Topic{ID: 11, LessonID: 5, Order: 2, IsActive: true}

	repo.topic.On("GetByIDWithDetails", mock.Anything, uint(10)).Return(topic, nil)
	repo.profile.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)
	repo.progress.On("GetForUpdate", mock.Anything, uint(1), uint(10)).Return(progress, nil)
	// Four correct out of five, one unanswered; the out-of-set record with
	// exercise 99 must not move the needle.
	repo.answer.On("ListByEpoch", mock.Anything, uint(1), uint(100)).Return([]*models.AnswerRecord{
		{ExerciseID: 1, Correct: true},
		{ExerciseID: 2, Correct: true},
		{ExerciseID: 3, Correct: true},
		{ExerciseID: 4, Correct: true},
		{ExerciseID: 99, Correct: false},
	}, nil)
	repo.attempt.On("GetLatest", mock.Anything, uint(1), uint(10)).Return(nil, nil)
	repo.progress.On("Update", mock.Anything, progress).Return(nil)
	repo.attempt.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.topic.On("GetNextInLesson", mock.Anything, uint(5), 1).Return(next, nil)
	repo.progress.On("EnsureUnlocked", mock.Anything, uint(1), uint(11)).Return(nil)
	expectLessonRecompute(repo, topic)

	resp, err := svc.Finalize(context.Background(), 10, 1)

	assert.NoError(t, err)
	assert.True(t, resp.Passed)
	assert.Equal(t, 80.0, resp.AccuracyPercent)
	assert.Equal(t, 4, resp.CorrectCount)
	assert.Equal(t, 5, resp.TotalCount)
	assert.Equal(t, 1, resp.AttemptsMade)
	assert.Equal(t, models.TopicCompleted, resp.State)
	if assert.NotNil(t, resp.NextTopicID) {
		assert.Equal(t, uint(11), *resp.NextTopicID)
	}
	assert.Equal(t, models.TopicCompleted, progress.State)
	assert.NotNil(t, progress.CompletedAt)

	published := publisher.GetPublishedEvents()
	if assert.Len(t, published, 2) {
		assert.Equal(t, events.EventTopicFinalized, published[0].Type)
		assert.Equal(t, events.EventTopicUnlocked, published[1].Type)
	}
}

func TestFinalize_BelowThresholdStaysStarted(t *testing.T) {
	repo := newMockRepository()
	svc, publisher := newTestProgressService(repo)
	topic := finalizeTopic()
	started := time.Now().Add(-time.Hour)
	progress := &models.TopicProgress{
		ID: 100, UserID: 1, TopicID: 10,
		State: models.TopicStarted, Unlocked: true,
		AttemptsMade: 1, StartedAt: &started,
	}

	repo.topic.On("GetByIDWithDetails", mock.Anything, uint(10)).Return(topic, nil)
	repo.profile.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)
	repo.progress.On("GetForUpdate", mock.Anything, uint(1), uint(10)).Return(progress, nil)
	repo.answer.On("ListByEpoch", mock.Anything, uint(1), uint(100)).Return([]*models.AnswerRecord{
		{ExerciseID: 1, Correct: true},
		{ExerciseID: 2, Correct: true},
		{ExerciseID: 3, Correct: true},
		{ExerciseID: 4, Correct: false},
		{ExerciseID: 5, Correct: false},
	}, nil)
	repo.attempt.On("GetLatest", mock.Anything, uint(1), uint(10)).
		Return(&models.TopicAttempt{Number: 1, AccuracyPercent: 80}, nil)
	repo.progress.On("Update", mock.Anything, progress).Return(nil)
	var recorded *models.TopicAttempt
	repo.attempt.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		recorded = args.Get(1).(*models.TopicAttempt)
	}).Return(nil)
	expectLessonRecompute(repo, topic)

	resp, err := svc.Finalize(context.Background(), 10, 1)

	assert.NoError(t, err)
	assert.False(t, resp.Passed)
	assert.Equal(t, 60.0, resp.AccuracyPercent)
	assert.Equal(t, 2, resp.AttemptsMade)
	assert.Equal(t, models.TopicStarted, resp.State)
	assert.Nil(t, resp.NextTopicID)
	assert.Nil(t, progress.CompletedAt)

	// A failed run still lands in the attempt history, with the drop from the
	// previous attempt recorded.
	if assert.NotNil(t, recorded) {
		assert.Equal(t, 2, recorded.Number)
		assert.False(t, recorded.Passed)
		if assert.NotNil(t, recorded.ImprovementPercent) {
			assert.Equal(t, -20.0, *recorded.ImprovementPercent)
		}
	}

	// No unlock event on a fail.
	repo.topic.AssertNotCalled(t, "GetNextInLesson", mock.Anything, mock.Anything, mock.Anything)
	published := publisher.GetPublishedEvents()
	if assert.Len(t, published, 1) {
		assert.Equal(t, events.EventTopicFinalized, published[0].Type)
	}
}

func TestFinalize_FailDoesNotDemoteCompleted(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestProgressService(repo)
	topic := finalizeTopic()
	started := time.Now().Add(-time.Hour)
	completed := time.Now().Add(-time.Minute)
	progress := &models.TopicProgress{
		ID: 100, UserID: 1, TopicID: 10,
		State: models.TopicCompleted, Unlocked: true,
		AccuracyPercent: 80, AttemptsMade: 1,
		StartedAt: &started, CompletedAt: &completed,
	}

	repo.topic.On("GetByIDWithDetails", mock.Anything, uint(10)).Return(topic, nil)
	repo.profile.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)
	repo.progress.On("GetForUpdate", mock.Anything, uint(1), uint(10)).Return(progress, nil)
	repo.answer.On("ListByEpoch", mock.Anything, uint(1), uint(100)).Return([]*models.AnswerRecord{
		{ExerciseID: 1, Correct: true},
	}, nil)
	repo.attempt.On("GetLatest", mock.Anything, uint(1), uint(10)).
		Return(&models.TopicAttempt{Number: 1, AccuracyPercent: 80}, nil)
	repo.progress.On("Update", mock.Anything, progress).Return(nil)
	repo.attempt.On("Create", mock.Anything, mock.Anything).Return(nil)
	expectLessonRecompute(repo, topic)

	resp, err := svc.Finalize(context.Background(), 10, 1)

	assert.NoError(t, err)
	assert.False(t, resp.Passed)
	assert.Equal(t, 2, resp.AttemptsMade)

	// Only an explicit retry takes a completed topic back to started.
	assert.Equal(t, models.TopicCompleted, progress.State)
	assert.Equal(t, &completed, progress.CompletedAt)
	assert.Equal(t, 20.0, progress.AccuracyPercent)
}

func TestFinalize_EmptySetNeverPasses(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestProgressService(repo)
	topic := &models.Topic{ID: 10, LessonID: 5, Order: 1, IsActive: true}
	progress := &models.TopicProgress{ID: 100, UserID: 1, TopicID: 10, State: models.TopicStarted, Unlocked: true}

	repo.topic.On("GetByIDWithDetails", mock.Anything, uint(10)).Return(topic, nil)
	repo.profile.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)
	repo.progress.On("GetForUpdate", mock.Anything, uint(1), uint(10)).Return(progress, nil)
	repo.answer.On("ListByEpoch", mock.Anything, uint(1), uint(100)).Return([]*models.AnswerRecord{}, nil)
	repo.attempt.On("GetLatest", mock.Anything, uint(1), uint(10)).Return(nil, nil)
	repo.progress.On("Update", mock.Anything, progress).Return(nil)
	repo.attempt.On("Create", mock.Anything, mock.Anything).Return(nil)
	expectLessonRecompute(repo, topic)

	resp, err := svc.Finalize(context.Background(), 10, 1)

	assert.NoError(t, err)
	assert.False(t, resp.Passed)
	assert.Equal(t, 0.0, resp.AccuracyPercent)
	assert.Equal(t, 0, resp.TotalCount)
	assert.Equal(t, 1, resp.AttemptsMade)
}

func TestFinalize_WithoutProgressRow(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestProgressService(repo)
	topic := finalizeTopic()

	repo.topic.On("GetByIDWithDetails", mock.Anything, uint(10)).Return(topic, nil)
	repo.profile.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)
	repo.progress.On("GetForUpdate", mock.Anything, uint(1), uint(10)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Finalize(context.Background(), 10, 1)
	assert.ErrorIs(t, err, ErrTopicNotStarted)
}

func TestFinalize_LockedTopic(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestProgressService(repo)
	topic := finalizeTopic()
	progress := &models.TopicProgress{ID: 100, UserID: 1, TopicID: 10, Unlocked: false}

	repo.topic.On("GetByIDWithDetails", mock.Anything, uint(10)).Return(topic, nil)
	repo.profile.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)
	repo.progress.On("GetForUpdate", mock.Anything, uint(1), uint(10)).Return(progress, nil)

	_, err := svc.Finalize(context.Background(), 10, 1)
	assert.ErrorIs(t, err, ErrTopicLocked)
}

func TestRetry_DropsEpochKeepsAttempts(t *testing.T) {
	repo := newMockRepository()
	svc, publisher := newTestProgressService(repo)
	started := time.Now().Add(-time.Hour)
	completed := time.Now()
	progress := &models.TopicProgress{
		ID: 100, UserID: 1, TopicID: 10,
		State: models.TopicCompleted, Unlocked: true,
		AccuracyPercent: 90, AttemptsMade: 2,
		StartedAt: &started, CompletedAt: &completed,
	}

	repo.topic.On("GetByID", mock.Anything, uint(10)).
		Return(&models.Topic{ID: 10, LessonID: 5, Order: 1, IsActive: true}, nil)
	repo.progress.On("GetForUpdate", mock.Anything, uint(1), uint(10)).Return(progress, nil)
	repo.answer.On("CountByEpoch", mock.Anything, uint(1), uint(100)).Return(int64(5), nil)
	repo.answer.On("DeleteEpoch", mock.Anything, uint(1), uint(100)).Return(nil)
	repo.progress.On("Update", mock.Anything, progress).Return(nil)

	resp, err := svc.Retry(context.Background(), 10, 1)

	assert.NoError(t, err)
	assert.Equal(t, models.TopicStarted, resp.State)
	assert.Equal(t, 2, resp.AttemptsMade)
	assert.Equal(t, int64(5), resp.AnswersDropped)

	assert.Equal(t, models.TopicStarted, progress.State)
	assert.Equal(t, 0.0, progress.AccuracyPercent)
	assert.Equal(t, 2, progress.AttemptsMade)
	assert.Nil(t, progress.CompletedAt)

	published := publisher.GetPublishedEvents()
	if assert.Len(t, published, 1) {
		assert.Equal(t, events.EventTopicRetried, published[0].Type)
	}
}

func TestRetry_WithoutProgressRow(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestProgressService(repo)

	repo.topic.On("GetByID", mock.Anything, uint(10)).
		Return(&models.Topic{ID: 10, LessonID: 5, Order: 1, IsActive: true}, nil)
	repo.progress.On("GetForUpdate", mock.Anything, uint(1), uint(10)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Retry(context.Background(), 10, 1)
	assert.ErrorIs(t, err, ErrProgressNotFound)
}

func TestGetTopicDetail_LockedTopic(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestProgressService(repo)
	topic := &models.Topic{ID: 20, LessonID: 5, Order: 2, IsActive: true}

	repo.topic.On("GetByIDWithDetails", mock.Anything, uint(20)).Return(topic, nil)
	repo.profile.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)
	// A later topic bootstraps its row locked.
	repo.progress.On("GetOrCreate", mock.Anything, uint(1), uint(20), false).
		Return(&models.TopicProgress{ID: 200, UserID: 1, TopicID: 20, Unlocked: false}, nil)

	_, err := svc.GetTopicDetail(context.Background(), 20, 1)
	assert.ErrorIs(t, err, ErrTopicLocked)
}

func TestGetTopicDetail_FirstTopicBootstrapsUnlocked(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestProgressService(repo)
	topic := &models.Topic{
		ID: 10, LessonID: 5, Order: 1, IsActive: true,
		Contents: []models.ContentBlock{
			{ID: 1, TopicID: 10, Kind: models.ContentTheory},
			{ID: 2, TopicID: 10, Kind: models.ContentExample},
			{ID: 3, TopicID: 10, Kind: models.ContentExtraExample},
		},
		Exercises: []models.Exercise{
			{ID: 1, TopicID: 10, Obligatory: true},
			{ID: 2, TopicID: 10, Obligatory: true},
		},
	}
	progress := &models.TopicProgress{ID: 100, UserID: 1, TopicID: 10, State: models.TopicNotStarted, Unlocked: true}

	repo.topic.On("GetByIDWithDetails", mock.Anything, uint(10)).Return(topic, nil)
	repo.profile.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)
	repo.progress.On("GetOrCreate", mock.Anything, uint(1), uint(10), true).Return(progress, nil)
	repo.progress.On("Update", mock.Anything, progress).Return(nil)
	repo.answer.On("ListByEpoch", mock.Anything, uint(1), uint(100)).Return([]*models.AnswerRecord{
		{ExerciseID: 1, Correct: true},
	}, nil)

	detail, err := svc.GetTopicDetail(context.Background(), 10, 1)

	assert.NoError(t, err)
	assert.Equal(t, models.TopicStarted, progress.State)
	assert.NotNil(t, progress.StartedAt)
	assert.Len(t, detail.Exercises, 2)
	assert.Nil(t, detail.Topic.Exercises)
	assert.Equal(t, map[uint]bool{1: true}, detail.Answered)
	assert.Equal(t, 1, detail.NextUnansweredIndex)
	// The extra example never counts toward the total.
	assert.Equal(t, 2, detail.TotalCountable)
}

func TestGetTopicDetail_FirstTopicIgnoresPersistedLock(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestProgressService(repo)
	topic := &models.Topic{ID: 10, LessonID: 5, Order: 1, IsActive: true}
	progress := &models.TopicProgress{ID: 100, UserID: 1, TopicID: 10, State: models.TopicNotStarted, Unlocked: false}

	repo.topic.On("GetByIDWithDetails", mock.Anything, uint(10)).Return(topic, nil)
	repo.profile.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)
	repo.progress.On("GetOrCreate", mock.Anything, uint(1), uint(10), true).Return(progress, nil)
	repo.progress.On("Update", mock.Anything, progress).Return(nil)
	repo.answer.On("ListByEpoch", mock.Anything, uint(1), uint(100)).Return([]*models.AnswerRecord{}, nil)

	detail, err := svc.GetTopicDetail(context.Background(), 10, 1)

	// The lesson's first topic opens even when its stored row says locked.
	assert.NoError(t, err)
	assert.Equal(t, models.TopicStarted, detail.Progress.State)
}

func TestRegisterContentViewed_RepeatViewIsNoOp(t *testing.T) {
	repo := newMockRepository()
	svc, publisher := newTestProgressService(repo)
	content := &models.ContentBlock{ID: 1, TopicID: 10, Kind: models.ContentTheory}
	started := time.Now()
	progress := &models.TopicProgress{
		ID: 100, UserID: 1, TopicID: 10,
		State: models.TopicStarted, Unlocked: true, StartedAt: &started,
		ViewedContent: []models.ContentBlock{*content},
	}

	repo.content.On("GetByID", mock.Anything, uint(1)).Return(content, nil)
	repo.topic.On("GetByID", mock.Anything, uint(10)).
		Return(&models.Topic{ID: 10, LessonID: 5, Order: 1, IsActive: true}, nil)
	repo.progress.On("GetOrCreate", mock.Anything, uint(1), uint(10), true).Return(progress, nil)
	repo.content.On("ListByTopic", mock.Anything, uint(10)).
		Return([]models.ContentBlock{*content}, nil)

	resp, err := svc.RegisterContentViewed(context.Background(), 1, 1)

	assert.NoError(t, err)
	assert.True(t, resp.AlreadyViewed)
	assert.Equal(t, 1, resp.ViewedCountable)
	assert.Nil(t, resp.LessonPercent)
	repo.progress.AssertNotCalled(t, "AddViewedContent", mock.Anything, mock.Anything, mock.Anything)
	repo.lessonProgress.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestRegisterContentViewed_RecomputesLessonAggregate(t *testing.T) {
	repo := newMockRepository()
	svc, publisher := newTestProgressService(repo)
	topic := &models.Topic{ID: 10, LessonID: 5, Order: 1, IsActive: true}
	content := &models.ContentBlock{ID: 1, TopicID: 10, Kind: models.ContentTheory}
	started := time.Now()
	progress := &models.TopicProgress{
		ID: 100, UserID: 1, TopicID: 10,
		State: models.TopicStarted, Unlocked: true, StartedAt: &started,
	}

	repo.content.On("GetByID", mock.Anything, uint(1)).Return(content, nil)
	repo.topic.On("GetByID", mock.Anything, uint(10)).Return(topic, nil)
	repo.progress.On("GetOrCreate", mock.Anything, uint(1), uint(10), true).Return(progress, nil)
	repo.progress.On("AddViewedContent", mock.Anything, progress, content).Return(nil)
	repo.lessonProgress.On("GetOrCreate", mock.Anything, uint(1), uint(5)).
		Return(&models.LessonProgress{UserID: 1, LessonID: 5}, nil)
	repo.topic.On("ListByLesson", mock.Anything, uint(5)).Return([]*models.Topic{topic}, nil)
	repo.progress.On("ListByUserAndLesson", mock.Anything, uint(1), uint(5)).
		Return([]*models.TopicProgress{progress}, nil)
	repo.content.On("ListByTopic", mock.Anything, uint(10)).
		Return([]models.ContentBlock{*content}, nil)
	var saved *models.LessonProgress
	repo.lessonProgress.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*models.LessonProgress)
	}).Return(nil)

	resp, err := svc.RegisterContentViewed(context.Background(), 1, 1)

	assert.NoError(t, err)
	assert.True(t, resp.Counted)
	assert.False(t, resp.AlreadyViewed)
	assert.Equal(t, 1, resp.ViewedCountable)

	// One topic, all content seen, no accuracy yet: half weight earned.
	if assert.NotNil(t, resp.LessonPercent) {
		assert.Equal(t, 50.0, *resp.LessonPercent)
	}
	if assert.NotNil(t, saved) {
		assert.Equal(t, 50.0, saved.CompletionPercent)
		assert.Equal(t, models.LessonInProgress, saved.State)
	}

	published := publisher.GetPublishedEvents()
	if assert.Len(t, published, 1) {
		assert.Equal(t, events.EventContentViewed, published[0].Type)
	}
}

func TestRegisterContentViewed_ExtraExampleNotCounted(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestProgressService(repo)
	extra := &models.ContentBlock{ID: 3, TopicID: 10, Kind: models.ContentExtraExample}
	started := time.Now()
	progress := &models.TopicProgress{
		ID: 100, UserID: 1, TopicID: 10,
		State: models.TopicStarted, Unlocked: true, StartedAt: &started,
	}
	contents := []models.ContentBlock{
		{ID: 1, TopicID: 10, Kind: models.ContentTheory},
		{ID: 2, TopicID: 10, Kind: models.ContentExample},
		*extra,
	}

	repo.content.On("GetByID", mock.Anything, uint(3)).Return(extra, nil)
	repo.topic.On("GetByID", mock.Anything, uint(10)).
		Return(&models.Topic{ID: 10, LessonID: 5, Order: 1, IsActive: true}, nil)
	repo.progress.On("GetOrCreate", mock.Anything, uint(1), uint(10), true).Return(progress, nil)
	repo.content.On("ListByTopic", mock.Anything, uint(10)).Return(contents, nil)

	resp, err := svc.RegisterContentViewed(context.Background(), 3, 1)

	assert.NoError(t, err)
	assert.False(t, resp.Counted)
	assert.False(t, resp.AlreadyViewed)
	assert.Equal(t, 0, resp.ViewedCountable)
	assert.Equal(t, 2, resp.TotalCountable)
	assert.Nil(t, resp.LessonPercent)

	// The extra example stays out of the viewed set and the aggregate.
	repo.progress.AssertNotCalled(t, "AddViewedContent", mock.Anything, mock.Anything, mock.Anything)
	repo.lessonProgress.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
