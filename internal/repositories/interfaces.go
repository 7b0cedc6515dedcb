package repositories

import (
	"context"
	"time"

	"github.com/matelog-ae/course-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type LessonFilters struct {
	ActiveOnly bool `json:"active_only"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}

type AttemptFilters struct {
	Passed   *bool      `json:"passed"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== ENTITY REPOSITORIES =====

// LessonRepository reads the lesson catalog. Lessons are authored elsewhere;
// this service never writes them.
type LessonRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Lesson, error)
	GetByIDWithTopics(ctx context.Context, id uint) (*models.Lesson, error)
	List(ctx context.Context, filters LessonFilters) ([]*models.Lesson, error)
}

type TopicRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Topic, error)
	// GetByIDWithDetails loads contents, exercises and options in sort order.
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Topic, error)
	ListByLesson(ctx context.Context, lessonID uint) ([]*models.Topic, error)
	// GetNextInLesson returns the active topic right after the given order,
	// or nil when the lesson has no further topics.
	GetNextInLesson(ctx context.Context, lessonID uint, afterOrder int) (*models.Topic, error)
}

type ContentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.ContentBlock, error)
	ListByTopic(ctx context.Context, topicID uint) ([]models.ContentBlock, error)
}

type ExerciseRepository interface {
	// GetByID loads the exercise with its options.
	GetByID(ctx context.Context, id uint) (*models.Exercise, error)
	ListByTopic(ctx context.Context, topicID uint) ([]models.Exercise, error)
	// Save persists the exercise together with its options in one
	// transaction, replacing any previously stored options.
	Save(ctx context.Context, exercise *models.Exercise) error
}

type ProgressRepository interface {
	// GetOrCreate returns the learner's row for the topic, inserting one in
	// the given initial state when none exists. Safe under concurrent calls.
	GetOrCreate(ctx context.Context, userID, topicID uint, unlocked bool) (*models.TopicProgress, error)
	Get(ctx context.Context, userID, topicID uint) (*models.TopicProgress, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID, topicID uint) (*models.TopicProgress, error)
	Update(ctx context.Context, progress *models.TopicProgress) error
	// EnsureUnlocked creates the row unlocked, or flips an existing row's
	// unlocked flag. Never relocks.
	EnsureUnlocked(ctx context.Context, userID, topicID uint) error
	AddViewedContent(ctx context.Context, progress *models.TopicProgress, content *models.ContentBlock) error
	ListByUserAndLesson(ctx context.Context, userID, lessonID uint) ([]*models.TopicProgress, error)
}

type LessonProgressRepository interface {
	GetOrCreate(ctx context.Context, userID, lessonID uint) (*models.LessonProgress, error)
	Get(ctx context.Context, userID, lessonID uint) (*models.LessonProgress, error)
	Update(ctx context.Context, progress *models.LessonProgress) error
}

type AnswerRepository interface {
	Create(ctx context.Context, record *models.AnswerRecord) error
	GetByExercise(ctx context.Context, userID, exerciseID, progressID uint) (*models.AnswerRecord, error)
	// ListByEpoch returns every record of the learner's current attempt epoch.
	ListByEpoch(ctx context.Context, userID, progressID uint) ([]*models.AnswerRecord, error)
	// DeleteEpoch removes the epoch's records; used when a topic is retried.
	DeleteEpoch(ctx context.Context, userID, progressID uint) error
	CountByEpoch(ctx context.Context, userID, progressID uint) (int64, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.TopicAttempt) error
	GetLatest(ctx context.Context, userID, topicID uint) (*models.TopicAttempt, error)
	ListByUserAndTopic(ctx context.Context, userID, topicID uint, filters AttemptFilters) ([]*models.TopicAttempt, error)
}

type ProfileRepository interface {
	// GetByUserID returns (nil, nil) when the learner has no profile.
	GetByUserID(ctx context.Context, userID uint) (*models.LearnerProfile, error)
}

type TelemetryRepository interface {
	CreateScreenTime(ctx context.Context, event *models.ScreenTimeEvent) error
	CreateButtonClick(ctx context.Context, event *models.ButtonClickEvent) error
	// SummarizeTopic folds the event log into per-topic aggregates.
	SummarizeTopic(ctx context.Context, userID, topicID uint) (*models.TopicTelemetrySummary, error)
}

// ===== MANAGER =====

// Repository bundles the entity repositories and transaction control.
type Repository interface {
	Lesson() LessonRepository
	Topic() TopicRepository
	Content() ContentRepository
	Exercise() ExerciseRepository
	Progress() ProgressRepository
	LessonProgress() LessonProgressRepository
	Answer() AnswerRepository
	Attempt() AttemptRepository
	Profile() ProfileRepository
	Telemetry() TelemetryRepository

	// WithTransaction runs fn against a repository bound to one database
	// transaction, committing on nil and rolling back on error.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}
