package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

// ===== REPOSITORY MOCKS =====

type MockLessonRepository struct {
	mock.Mock
}

func (m *MockLessonRepository) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockLessonRepository) GetByIDWithTopics(ctx context.Context, id uint) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockLessonRepository) List(ctx context.Context, filters repositories.LessonFilters) ([]*models.Lesson, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lesson), args.Error(1)
}

type MockTopicRepository struct {
	mock.Mock
}

func (m *MockTopicRepository) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Topic), args.Error(1)
}

func (m *MockTopicRepository) GetByIDWithDetails(ctx context.Context, id uint) (*models.Topic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Topic), args.Error(1)
}

func (m *MockTopicRepository) ListByLesson(ctx context.Context, lessonID uint) ([]*models.Topic, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Topic), args.Error(1)
}

func (m *MockTopicRepository) GetNextInLesson(ctx context.Context, lessonID uint, afterOrder int) (*models.Topic, error) {
	args := m.Called(ctx, lessonID, afterOrder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Topic), args.Error(1)
}

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) GetByID(ctx context.Context, id uint) (*models.ContentBlock, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContentBlock), args.Error(1)
}

func (m *MockContentRepository) ListByTopic(ctx context.Context, topicID uint) ([]models.ContentBlock, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContentBlock), args.Error(1)
}

type MockExerciseRepository struct {
	mock.Mock
}

func (m *MockExerciseRepository) GetByID(ctx context.Context, id uint) (*models.Exercise, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exercise), args.Error(1)
}

func (m *MockExerciseRepository) ListByTopic(ctx context.Context, topicID uint) ([]models.Exercise, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Exercise), args.Error(1)
}

func (m *MockExerciseRepository) Save(ctx context.Context, exercise *models.Exercise) error {
	args := m.Called(ctx, exercise)
	return args.Error(0)
}

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) GetOrCreate(ctx context.Context, userID, topicID uint, unlocked bool) (*models.TopicProgress, error) {
	args := m.Called(ctx, userID, topicID, unlocked)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TopicProgress), args.Error(1)
}

func (m *MockProgressRepository) Get(ctx context.Context, userID, topicID uint) (*models.TopicProgress, error) {
	args := m.Called(ctx, userID, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TopicProgress), args.Error(1)
}

func (m *MockProgressRepository) GetForUpdate(ctx context.Context, userID, topicID uint) (*models.TopicProgress, error) {
	args := m.Called(ctx, userID, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TopicProgress), args.Error(1)
}

func (m *MockProgressRepository) Update(ctx context.Context, progress *models.TopicProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockProgressRepository) EnsureUnlocked(ctx context.Context, userID, topicID uint) error {
	args := m.Called(ctx, userID, topicID)
	return args.Error(0)
}

func (m *MockProgressRepository) AddViewedContent(ctx context.Context, progress *models.TopicProgress, content *models.ContentBlock) error {
	args := m.Called(ctx, progress, content)
	return args.Error(0)
}

func (m *MockProgressRepository) ListByUserAndLesson(ctx context.Context, userID, lessonID uint) ([]*models.TopicProgress, error) {
	args := m.Called(ctx, userID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TopicProgress), args.Error(1)
}

type MockLessonProgressRepository struct {
	mock.Mock
}

func (m *MockLessonProgressRepository) GetOrCreate(ctx context.Context, userID, lessonID uint) (*models.LessonProgress, error) {
	args := m.Called(ctx, userID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LessonProgress), args.Error(1)
}

func (m *MockLessonProgressRepository) Get(ctx context.Context, userID, lessonID uint) (*models.LessonProgress, error) {
	args := m.Called(ctx, userID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LessonProgress), args.Error(1)
}

func (m *MockLessonProgressRepository) Update(ctx context.Context, progress *models.LessonProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) Create(ctx context.Context, record *models.AnswerRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAnswerRepository) GetByExercise(ctx context.Context, userID, exerciseID, progressID uint) (*models.AnswerRecord, error) {
	args := m.Called(ctx, userID, exerciseID, progressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnswerRecord), args.Error(1)
}

func (m *MockAnswerRepository) ListByEpoch(ctx context.Context, userID, progressID uint) ([]*models.AnswerRecord, error) {
	args := m.Called(ctx, userID, progressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AnswerRecord), args.Error(1)
}

func (m *MockAnswerRepository) DeleteEpoch(ctx context.Context, userID, progressID uint) error {
	args := m.Called(ctx, userID, progressID)
	return args.Error(0)
}

func (m *MockAnswerRepository) CountByEpoch(ctx context.Context, userID, progressID uint) (int64, error) {
	args := m.Called(ctx, userID, progressID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.TopicAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetLatest(ctx context.Context, userID, topicID uint) (*models.TopicAttempt, error) {
	args := m.Called(ctx, userID, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TopicAttempt), args.Error(1)
}

func (m *MockAttemptRepository) ListByUserAndTopic(ctx context.Context, userID, topicID uint, filters repositories.AttemptFilters) ([]*models.TopicAttempt, error) {
	args := m.Called(ctx, userID, topicID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TopicAttempt), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID uint) (*models.LearnerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LearnerProfile), args.Error(1)
}

type MockTelemetryRepository struct {
	mock.Mock
}

func (m *MockTelemetryRepository) CreateScreenTime(ctx context.Context, event *models.ScreenTimeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockTelemetryRepository) CreateButtonClick(ctx context.Context, event *models.ButtonClickEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockTelemetryRepository) SummarizeTopic(ctx context.Context, userID, topicID uint) (*models.TopicTelemetrySummary, error) {
	args := m.Called(ctx, userID, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TopicTelemetrySummary), args.Error(1)
}

// ===== REPOSITORY MANAGER MOCK =====

// MockRepository bundles the mocks and runs transactions against itself, so
// a test sees every call regardless of transaction boundaries.
type MockRepository struct {
	lesson         *MockLessonRepository
	topic          *MockTopicRepository
	content        *MockContentRepository
	exercise       *MockExerciseRepository
	progress       *MockProgressRepository
	lessonProgress *MockLessonProgressRepository
	answer         *MockAnswerRepository
	attempt        *MockAttemptRepository
	profile        *MockProfileRepository
	telemetry      *MockTelemetryRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		lesson:         new(MockLessonRepository),
		topic:          new(MockTopicRepository),
		content:        new(MockContentRepository),
		exercise:       new(MockExerciseRepository),
		progress:       new(MockProgressRepository),
		lessonProgress: new(MockLessonProgressRepository),
		answer:         new(MockAnswerRepository),
		attempt:        new(MockAttemptRepository),
		profile:        new(MockProfileRepository),
		telemetry:      new(MockTelemetryRepository),
	}
}

func (m *MockRepository) Lesson() repositories.LessonRepository                 { return m.lesson }
func (m *MockRepository) Topic() repositories.TopicRepository                   { return m.topic }
func (m *MockRepository) Content() repositories.ContentRepository               { return m.content }
func (m *MockRepository) Exercise() repositories.ExerciseRepository             { return m.exercise }
func (m *MockRepository) Progress() repositories.ProgressRepository             { return m.progress }
func (m *MockRepository) LessonProgress() repositories.LessonProgressRepository { return m.lessonProgress }
func (m *MockRepository) Answer() repositories.AnswerRepository                 { return m.answer }
func (m *MockRepository) Attempt() repositories.AttemptRepository               { return m.attempt }
func (m *MockRepository) Profile() repositories.ProfileRepository               { return m.profile }
func (m *MockRepository) Telemetry() repositories.TelemetryRepository           { return m.telemetry }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }
